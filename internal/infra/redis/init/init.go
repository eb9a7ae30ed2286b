package infra_redis_init

import (
	"fmt"
	"log"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/livepoll/internal/config"
)

func NewClient(cfg config.RedisCache) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func MustEstablishConn(cfg config.RedisCache) *redis.Client {
	client := NewClient(cfg)
	if err := client.Ping().Err(); err != nil {
		log.Fatal("redis ping failed: ", err)
	}
	return client
}
