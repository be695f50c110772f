package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// incrementScript increments the counter, sets the expiry on creation and
// heals counters that lost their TTL. Returns {count, ttl_ms}.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// ErrNoCounterStore is returned when no Redis client is configured.
var ErrNoCounterStore = errors.New("counter store not configured")

// CounterRepository keeps rate limit counters in Redis so every API instance
// shares the same windows.
type CounterRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCounterRepository constructs a Redis-backed counter repository.
func NewCounterRepository(client *redis.Client, logger *zap.Logger) *CounterRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterRepository{client: client, logger: logger}
}

// Increment runs the increment script in a single round trip.
func (r *CounterRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, ErrNoCounterStore
	}

	values, err := incrementScript.Run(ctx, r.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		r.logger.Warn("counter increment failed", zap.String("key", key), zap.Error(err))
		return 0, 0, fmt.Errorf("redis increment %s: %w", key, err)
	}
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("redis increment %s: unexpected reply length %d", key, len(values))
	}

	return values[0], time.Duration(values[1]) * time.Millisecond, nil
}

// Close releases the underlying Redis connection if present.
func (r *CounterRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
