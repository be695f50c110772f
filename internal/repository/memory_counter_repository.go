package repository

import (
	"context"
	"sync"
	"time"
)

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounterRepository is a process-local counter store for single
// instance deployments and tests.
type MemoryCounterRepository struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	now      func() time.Time
}

// NewMemoryCounterRepository constructs an empty in-memory store. A nil clock
// defaults to time.Now.
func NewMemoryCounterRepository(now func() time.Time) *MemoryCounterRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryCounterRepository{counters: make(map[string]*memoryCounter), now: now}
}

// Increment bumps the counter for key, starting a new window when the
// previous one has expired.
func (r *MemoryCounterRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	counter, ok := r.counters[key]
	if !ok || !now.Before(counter.expiresAt) {
		counter = &memoryCounter{expiresAt: now.Add(window)}
		r.counters[key] = counter
	}
	counter.count++

	r.sweep(now)

	return counter.count, counter.expiresAt.Sub(now), nil
}

// sweep drops expired counters; caller holds mu.
func (r *MemoryCounterRepository) sweep(now time.Time) {
	if len(r.counters) < 1024 {
		return
	}
	for key, counter := range r.counters {
		if !now.Before(counter.expiresAt) {
			delete(r.counters, key)
		}
	}
}

// Len returns the number of tracked counters.
func (r *MemoryCounterRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.counters)
}
