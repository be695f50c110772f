package models

import "time"

// RateLimitDecision captures the outcome of a rate limit check. RetryAfter is
// zero when the request is allowed or when the limiter failed open.
type RateLimitDecision struct {
	Allowed    bool
	Count      int64
	Limit      int64
	RetryAfter time.Duration
	FailedOpen bool
}
