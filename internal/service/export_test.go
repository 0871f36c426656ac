package service

import "time"

// NewTokenBucketWithClock exposes the clock-injected constructor to tests.
func NewTokenBucketWithClock(rate, capacity float64, now func() time.Time) *TokenBucket {
	return newTokenBucket(rate, capacity, now)
}

// EvictIdle runs one sweep synchronously.
func (tb *TokenBucket) EvictIdle() { tb.evictIdle() }

// BucketCount returns the number of tracked keys.
func (tb *TokenBucket) BucketCount() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}
