package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/eventlink-api/internal/models"
	"github.com/noah-isme/eventlink-api/pkg/config"
)

// ParseEventEndpoint names the parse endpoint in rate limit keys.
const ParseEventEndpoint = "parse-event"

// CounterStore increments a windowed counter atomically. When the increment
// creates the counter its expiry is set to window. It returns the new count
// and the remaining time to live.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimiter applies a fixed window limit per client and endpoint. It fails
// open: store errors allow the request.
type RateLimiter struct {
	store    CounterStore
	endpoint string
	enabled  bool
	limit    int64
	window   time.Duration
	timeout  time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewRateLimiter constructs a limiter for endpoint.
func NewRateLimiter(store CounterStore, cfg config.RateLimitConfig, endpoint string, metrics *MetricsService, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Window <= 0 {
		cfg.Window = 180 * time.Second
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 500 * time.Millisecond
	}
	return &RateLimiter{
		store:    store,
		endpoint: endpoint,
		enabled:  cfg.Enabled,
		limit:    int64(cfg.MaxRequests),
		window:   cfg.Window,
		timeout:  cfg.Timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// Key returns the counter key for clientID.
func (r *RateLimiter) Key(clientID string) string {
	return fmt.Sprintf("rate_limit:%s:%s", r.endpoint, clientID)
}

// Allow consumes one request for clientID and reports whether it may proceed.
func (r *RateLimiter) Allow(ctx context.Context, clientID string) models.RateLimitDecision {
	if r == nil || !r.enabled || r.store == nil {
		return models.RateLimitDecision{Allowed: true}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	count, ttl, err := r.store.Increment(ctx, r.Key(clientID), r.window)
	elapsed := time.Since(start)
	if err != nil {
		r.metrics.RecordRateLimit(r.endpoint, RateLimitFailOpen, elapsed)
		r.logger.Warn("rate limit store unavailable, allowing request",
			zap.String("endpoint", r.endpoint),
			zap.String("client_id", clientID),
			zap.Error(err),
		)
		return models.RateLimitDecision{Allowed: true, Limit: r.limit, FailedOpen: true}
	}

	decision := models.RateLimitDecision{Allowed: count <= r.limit, Count: count, Limit: r.limit}
	if decision.Allowed {
		r.metrics.RecordRateLimit(r.endpoint, RateLimitAllowed, elapsed)
		return decision
	}

	if ttl <= 0 {
		ttl = r.window
	}
	decision.RetryAfter = ttl
	r.metrics.RecordRateLimit(r.endpoint, RateLimitDenied, elapsed)
	r.logger.Info("rate limit exceeded",
		zap.String("endpoint", r.endpoint),
		zap.String("client_id", clientID),
		zap.Int64("count", count),
		zap.Duration("retry_after", ttl),
	)
	return decision
}

// RetryAfterSeconds rounds a retry delay up to whole seconds, never below one.
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	seconds := int((d + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
