package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/eventlink-api/pkg/config"
)

// NewRedis returns a configured Redis client. Every network timeout is set to
// timeout and commands are not retried.
func NewRedis(cfg config.RedisConfig, timeout time.Duration) *redis.Client {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   -1,
	})
}

// Ping checks connectivity without closing the client on failure.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return client.Ping(ctx).Err()
}
