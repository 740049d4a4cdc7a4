package main

import (
	"chat-hub-backend/internal/api"
	"chat-hub-backend/internal/api/router"
	"chat-hub-backend/internal/database"
	"chat-hub-backend/internal/env"
	"chat-hub-backend/internal/hub"
	internaljwt "chat-hub-backend/internal/jwt"
	"chat-hub-backend/internal/queue"
	groupsvc "chat-hub-backend/internal/service/group"
	"context"
	"log"

	"github.com/go-redis/redis/v8"
)

func main() {
	env.Require(env.UserSecretKey, env.HubRedisURL)

	queueManager := queue.NewRequestQueueManager(10, 10)
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	authority := internaljwt.NewAuthority([]byte(env.Get(env.UserSecretKey)), internaljwt.DefaultTokenTTL)
	resolver := groupsvc.New(groupsvc.NewDynamoRepository(db))

	h := hub.NewHub(resolver)
	go h.Run()
	handler := hub.NewHandler(h, authority)

	rdb := redis.NewClient(&redis.Options{
		Addr:     env.Get(env.HubRedisURL),
		Password: env.Get(env.HubRedisPass),
		DB:       0,
	})
	bridge := hub.NewBridge(rdb, h, hub.DefaultBridgeChannel)
	go bridge.Run(context.Background())

	server := api.NewAPIServer(
		":83",
		queueManager,
		db,
		authority,
		handler,
		nil,
		router.UtilsRoutes("/api/ws/v1"),
		router.HubRoutes("/api/ws/v1"),
	)

	server.Run()
}
