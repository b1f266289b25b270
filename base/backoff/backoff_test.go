package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExponential(t *testing.T) {
	req := require.New(t)
	b := NewExponential(time.Millisecond, 4*time.Millisecond)

	var got []time.Duration
	for i := 0; i < 4; i++ {
		got = append(got, b.Next())
		req.NoError(b.Wait(context.Background()))
	}
	req.Equal([]time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond, 4 * time.Millisecond}, got)
	req.Equal(4, b.Attempts())

	b.Reset()
	req.Equal(time.Millisecond, b.Next())
}

func TestLinear(t *testing.T) {
	req := require.New(t)
	b := NewLinear(time.Millisecond, 0)
	req.Equal(time.Millisecond, b.Next())
	req.NoError(b.Wait(context.Background()))
	req.Equal(2*time.Millisecond, b.Next())
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewLinear(time.Hour, 0)
	require.ErrorIs(t, b.Wait(ctx), context.Canceled)
	require.Equal(t, 0, b.Attempts())
}
