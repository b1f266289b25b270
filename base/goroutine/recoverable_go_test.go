package goroutine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverableGo(t *testing.T) {
	res := []string{}

	ev := <-RecoverableGo("task",
		func() {
			res = append(res, "run task")
			panic("panic")
		},
		WithBeforeStart(func() {
			res = append(res, "before start")
		}),
		WithAfterEnded(func() {
			res = append(res, "after ended")
		}),
		WithAfterRecovered(func(p interface{}, stack []byte) {
			res = append(res, "after recovered")
			res = append(res, p.(string))
		}),
	)

	require.NotNil(t, ev)
	assert.Equal(t, "task", ev.Name)
	assert.NotEmpty(t, ev.Stack)
	assert.Equal(t, []string{
		"before start",
		"run task",
		"after ended",
		"after recovered",
		"panic",
	}, res)
}

func TestRecoverableGoReturns(t *testing.T) {
	done := false
	ev, ok := <-RecoverableGo("task", func() { done = true })
	assert.Nil(t, ev)
	assert.False(t, ok)
	assert.True(t, done)
}
