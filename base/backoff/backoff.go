package backoff

import (
	"context"
	"time"
)

// Backoff yields growing sleeps between retries of one operation
type Backoff struct {
	step  func(n int, start time.Duration) time.Duration
	start time.Duration
	limit time.Duration
	n     int
}

// NewExponential sleeps start, 2*start, 4*start... capped at limit
func NewExponential(start, limit time.Duration) *Backoff {
	return &Backoff{
		step: func(n int, start time.Duration) time.Duration {
			return start << uint(n)
		},
		start: start,
		limit: limit,
	}
}

// NewLinear sleeps start, 2*start, 3*start... capped at limit
func NewLinear(start, limit time.Duration) *Backoff {
	return &Backoff{
		step: func(n int, start time.Duration) time.Duration {
			return time.Duration(n+1) * start
		},
		start: start,
		limit: limit,
	}
}

// Next is the duration the following Wait sleeps
func (b *Backoff) Next() time.Duration {
	d := b.step(b.n, b.start)
	if b.limit > 0 && (d > b.limit || d <= 0) {
		d = b.limit
	}
	return d
}

// Attempts counts the completed waits since the last Reset
func (b *Backoff) Attempts() int {
	return b.n
}

func (b *Backoff) Reset() {
	b.n = 0
}

// Wait sleeps Next or returns early with the context error
func (b *Backoff) Wait(ctx context.Context) error {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		b.n++
		return nil
	}
}
