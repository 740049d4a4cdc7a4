package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
)

// DefaultBridgeChannel is the Redis channel the REST servers publish on and
// the hub server subscribes to.
const DefaultBridgeChannel = "chat-hub:events"

// BridgeEvent is an envelope that originated outside the hub process, e.g.
// a message persisted through the REST surface or a group created there.
// It rides the same routing path as socket-originated envelopes.
type BridgeEvent struct {
	SenderEmail string `json:"senderEmail"`
	Envelope
}

// Publish pushes a bridge event onto the Redis channel. Used by the REST
// servers; the hub itself never publishes.
func Publish(ctx context.Context, rdb *redis.Client, channel string, event BridgeEvent) error {
	if channel == "" {
		channel = DefaultBridgeChannel
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("hub publish: marshal event: %w", err)
	}
	if err := rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("hub publish: redis publish: %w", err)
	}
	return nil
}

// Bridge subscribes to the Redis channel and feeds incoming events through
// the hub's router.
type Bridge struct {
	rdb     *redis.Client
	hub     *Hub
	channel string
}

func NewBridge(rdb *redis.Client, h *Hub, channel string) *Bridge {
	if channel == "" {
		channel = DefaultBridgeChannel
	}
	return &Bridge{
		rdb:     rdb,
		hub:     h,
		channel: channel,
	}
}

func (b *Bridge) Run(ctx context.Context) {
	subscriber := b.rdb.Subscribe(ctx, b.channel)
	defer subscriber.Close()

	log.Printf("Bridge subscribed to Redis channel: %s", b.channel)

	ch := subscriber.Channel()
	for msg := range ch {
		var event BridgeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("Dropping unparsable bridge event: %v", err)
			continue
		}
		if err := b.hub.Route(ctx, event.SenderEmail, event.Envelope); err != nil {
			log.Printf("Dropping bridge event from %s: %v", event.SenderEmail, err)
		}
	}
	log.Printf("Bridge unsubscribed from Redis channel: %s", b.channel)
}
