package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Strategy returns the wait before attempt n, n starts at 0
type Strategy interface {
	Duration(n int, start time.Duration) time.Duration
}

// Backoff hands out growing waits between retries of one operation
type Backoff struct {
	strategy Strategy
	start    time.Duration
	limit    time.Duration
	jitter   time.Duration
	rand     *rand.Rand
	count    int
}

func New(strategy Strategy, start, limit time.Duration) *Backoff {
	return &Backoff{
		strategy: strategy,
		start:    start,
		limit:    limit,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func NewExponential(start, limit time.Duration) *Backoff {
	return New(exponential{}, start, limit)
}

func NewLinear(start, limit time.Duration) *Backoff {
	return New(linear{}, start, limit)
}

// WithJitter adds a random wait in [0, max) to every step
func (b *Backoff) WithJitter(max time.Duration) *Backoff {
	b.jitter = max
	return b
}

// Attempts is the number of completed waits
func (b *Backoff) Attempts() int {
	return b.count
}

// Next is the wait the following call to Wait sleeps, jitter excluded
func (b *Backoff) Next() time.Duration {
	d := b.strategy.Duration(b.count, b.start)
	if b.limit > 0 && d > b.limit {
		d = b.limit
	}
	return d
}

func (b *Backoff) Reset() {
	b.count = 0
}

// Wait sleeps for the next step, it returns early with the ctx error when c
// is done first
func (b *Backoff) Wait(c context.Context) error {
	d := b.Next()
	if b.jitter > 0 {
		d += time.Duration(b.rand.Int63n(int64(b.jitter)))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.Done():
		return c.Err()
	case <-t.C:
		b.count++
		return nil
	}
}

type exponential struct{}

func (exponential) Duration(n int, start time.Duration) time.Duration {
	return time.Duration(math.Pow(2, float64(n))) * start
}

type linear struct{}

func (linear) Duration(n int, start time.Duration) time.Duration {
	return time.Duration(n+1) * start
}
