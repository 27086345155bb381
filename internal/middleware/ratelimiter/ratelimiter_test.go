package ratelimiter

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(rate, capacity float64) (*KeyRateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := New(rate, capacity, time.Minute)
	l.now = clock.Now
	return l, clock
}

func TestKeyRateLimiter_Allow(t *testing.T) {
	t.Run("allows up to capacity", func(t *testing.T) {
		l, _ := newTestLimiter(1, 3)

		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		l, _ := newTestLimiter(1, 1)

		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		assert.True(t, l.Allow("b"))
	})

	t.Run("refills over time", func(t *testing.T) {
		l, clock := newTestLimiter(1, 1)

		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		clock.Advance(1500 * time.Millisecond)
		assert.True(t, l.Allow("a"))
	})

	t.Run("does not exceed capacity", func(t *testing.T) {
		l, clock := newTestLimiter(10, 2)

		assert.True(t, l.Allow("a"))
		clock.Advance(time.Hour)
		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
	})

	t.Run("concurrent requests", func(t *testing.T) {
		l, _ := newTestLimiter(1, 10)

		var allowed atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if l.Allow("a") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(10), allowed.Load())
	})
}

func TestKeyRateLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(1, 1)
	l.Allow("old")
	clock.Advance(30 * time.Second)
	l.Allow("fresh")
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.size())
}
