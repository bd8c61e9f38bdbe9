package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis constructs a Redis client and verifies connectivity. A ping
// failure is returned to the caller so it can decide whether to degrade.
func NewRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return client, err
	}
	return client, nil
}
