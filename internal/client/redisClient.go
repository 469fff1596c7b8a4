package client

import (
	"log"

	"github.com/redis/go-redis/v9"
)

func InitRedisClient(redisURL string) *redis.Client {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("failed to parse redis url:", err)
	}

	return redis.NewClient(opts)
}
