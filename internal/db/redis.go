// internal/db/redis.go
package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisDB struct {
	Client *redis.Client
}

func NewRedisDB(redisURL string) (*RedisDB, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("[Redis] ✅ Connected to Redis")
	return &RedisDB{Client: client}, nil
}

func (r *RedisDB) Close() {
	if r.Client != nil {
		r.Client.Close()
		log.Println("[Redis] Connection closed")
	}
}

// Experiment variant assignment. A session keeps the variant it was first
// dealt for the lifetime of the key.

func (r *RedisDB) GetVariant(ctx context.Context, sessionKey string) (string, error) {
	return r.Client.Get(ctx, "abtest:variant:"+sessionKey).Result()
}

func (r *RedisDB) SetVariant(ctx context.Context, sessionKey, variant string, expiration time.Duration) error {
	return r.Client.Set(ctx, "abtest:variant:"+sessionKey, variant, expiration).Err()
}
