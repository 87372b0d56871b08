package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"mathquest/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// RDB is nil when REDIS_ADDR is unset or redis could not be reached.
var RDB *redis.Client

// ConnectRedis connects to the configured redis. Redis is optional: when it
// is not configured or not reachable the server runs without caching and
// rate limiting.
func ConnectRedis() {
	if config.AppConfig.RedisAddr == "" {
		log.Println("INFO: REDIS_ADDR not set, problem cache and rate limiting disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("WARN: Could not connect to Redis at %s, continuing without it: %v", config.AppConfig.RedisAddr, err)
		client.Close()
		return
	}
	RDB = client
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}
