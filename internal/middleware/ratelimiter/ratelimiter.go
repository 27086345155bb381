package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a token bucket for a single key.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// KeyRateLimiter keeps one token bucket per key (a client host). Buckets
// idle for longer than expiration are dropped by Sweep.
type KeyRateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	rate       float64
	capacity   float64
	expiration time.Duration
	now        func() time.Time
}

// New creates a limiter refilling rate tokens per second up to capacity.
func New(rate float64, capacity float64, expiration time.Duration) *KeyRateLimiter {
	return &KeyRateLimiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		now:        time.Now,
	}
}

func (l *KeyRateLimiter) get(key string, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

// Allow takes a token from the bucket of key if one is available.
func (l *KeyRateLimiter) Allow(key string) bool {
	now := l.now()
	b := l.get(key, now)

	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Sweep drops buckets not used within the expiration window.
func (l *KeyRateLimiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.expiration {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until stop is closed.
func (l *KeyRateLimiter) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Sweep()
			case <-stop:
				return
			}
		}
	}()
}

func (l *KeyRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
