package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/x-xyz/settlement/base/ctx"
)

// Service is a mock type for the redis.Service type
type Service struct {
	mock.Mock
}

func (_m *Service) Get(c ctx.Ctx, key string) ([]byte, error) {
	ret := _m.Called(c, key)
	var r0 []byte
	if v := ret.Get(0); v != nil {
		r0 = v.([]byte)
	}
	return r0, ret.Error(1)
}

func (_m *Service) Set(c ctx.Ctx, key string, val []byte, expire time.Duration) error {
	ret := _m.Called(c, key, val, expire)
	return ret.Error(0)
}

func (_m *Service) Del(c ctx.Ctx, keys ...string) (int, error) {
	args := []interface{}{c}
	for _, k := range keys {
		args = append(args, k)
	}
	ret := _m.Called(args...)
	return ret.Int(0), ret.Error(1)
}

func (_m *Service) Exists(c ctx.Ctx, key string) (bool, error) {
	ret := _m.Called(c, key)
	return ret.Bool(0), ret.Error(1)
}

func (_m *Service) TTL(c ctx.Ctx, key string) (int, error) {
	ret := _m.Called(c, key)
	return ret.Int(0), ret.Error(1)
}

func (_m *Service) Publish(c ctx.Ctx, channel string, msg []byte) (int, error) {
	ret := _m.Called(c, channel, msg)
	return ret.Int(0), ret.Error(1)
}

func (_m *Service) LPushTrim(c ctx.Ctx, key string, val []byte, size int) error {
	ret := _m.Called(c, key, val, size)
	return ret.Error(0)
}

func (_m *Service) LRange(c ctx.Ctx, key string, offset, count int) ([][]byte, error) {
	ret := _m.Called(c, key, offset, count)
	var r0 [][]byte
	if v := ret.Get(0); v != nil {
		r0 = v.([][]byte)
	}
	return r0, ret.Error(1)
}
