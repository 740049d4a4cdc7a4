package hub

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 16

// Client is one live transport session bound to exactly one identity for
// its lifetime. The frames channel is written only by the hub loop and
// closed only by the hub loop, when the client leaves the registry.
type Client struct {
	conn        *websocket.Conn
	frames      chan interface{}
	identity    string
	connectedAt time.Time
	done        chan struct{} // signal for coordinating goroutine shutdown
	mu          sync.Mutex    // mutex for connection access
	isClosed    bool
}

func NewClient(conn *websocket.Conn, identity string) *Client {
	return &Client{
		conn:        conn,
		frames:      make(chan interface{}, sendBufferSize),
		identity:    identity,
		connectedAt: time.Now(),
		done:        make(chan struct{}),
	}
}

func (cl *Client) Identity() string {
	return cl.identity
}

func (cl *Client) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Ping error for client %s: %v", cl.identity, err)
				return
			}
		}
	}
}

func (cl *Client) writePump() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case frame, ok := <-cl.frames:
			if !ok {
				return
			}

			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.conn.WriteJSON(frame)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Error sending frame to client %s: %v", cl.identity, err)
				return
			}
		}
	}
}

// readPump parses inbound envelopes and routes them. Malformed payloads and
// failed membership lookups drop the one message and keep the connection
// alive; only transport errors end the session.
func (cl *Client) readPump(h *Hub) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in readPump: %v", r)
		}

		close(cl.done)
		h.Unregister(cl)
		log.Printf("Client %s disconnected", cl.identity)
	}()

	cl.conn.SetReadLimit(512 * 1024)

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("Error reading message from client %s: %v", cl.identity, err)
			break
		}

		env, _, err := decodeEnvelope(raw)
		if err != nil {
			log.Printf("Dropping malformed envelope from client %s", cl.identity)
			continue
		}

		if err := h.Route(context.Background(), cl.identity, env); err != nil {
			log.Printf("Dropping message from client %s: %v", cl.identity, err)
		}
	}
}
