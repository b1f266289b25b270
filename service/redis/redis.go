package redis

import (
	"errors"
	"time"

	"github.com/x-xyz/settlement/base/ctx"
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis: key not found")
	// ErrNoPool is returned when no connection pool was configured
	ErrNoPool = errors.New("redis: no pool")
)

// Service is the subset of redis commands the settlement service relies on
type Service interface {
	Get(c ctx.Ctx, key string) ([]byte, error)
	Set(c ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(c ctx.Ctx, keys ...string) (int, error)
	Exists(c ctx.Ctx, key string) (bool, error)
	TTL(c ctx.Ctx, key string) (int, error)

	// Publish sends msg to channel and returns the number of receivers
	Publish(c ctx.Ctx, channel string, msg []byte) (int, error)
	// LPushTrim prepends val to key and keeps the newest size elements
	LPushTrim(c ctx.Ctx, key string, val []byte, size int) error
	LRange(c ctx.Ctx, key string, offset, count int) ([][]byte, error)
}
