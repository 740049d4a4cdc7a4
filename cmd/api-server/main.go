package main

import (
	"chat-hub-backend/internal/api"
	"chat-hub-backend/internal/api/router"
	"chat-hub-backend/internal/database"
	"chat-hub-backend/internal/env"
	internaljwt "chat-hub-backend/internal/jwt"
	"chat-hub-backend/internal/queue"
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

	publisher := redis.NewClient(&redis.Options{
		Addr:     env.Get(env.HubRedisURL),
		Password: env.Get(env.HubRedisPass),
		DB:       0,
	})

	server := api.NewAPIServer(
		":81",
		queueManager,
		db,
		authority,
		nil,
		publisher,
		router.UtilsRoutes("/api/v1"),
		router.AuthRoutes("/api/v1"),
		router.ChatRoutes("/api/v1"),
	)

	server.Run()
}
