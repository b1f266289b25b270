package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/x-xyz/settlement/base/ctx"
)

type fakePinger struct {
	name string
	err  error
}

func (f *fakePinger) Name() string { return f.name }

func (f *fakePinger) Ping(c ctx.Ctx) error { return f.err }

func TestCheck(t *testing.T) {
	down := errors.New("connection refused")
	uc := New(&fakePinger{name: "mongo"}, &fakePinger{name: "redis", err: down})

	res, err := uc.Check(ctx.Background())
	assert.Equal(t, down, err)
	assert.Equal(t, map[string]string{"mongo": "ok", "redis": "connection refused"}, res)

	res, err = New().Check(ctx.Background())
	assert.NoError(t, err)
	assert.Empty(t, res)
}
