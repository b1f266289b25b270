package redisclient

import (
	"context"
	"runtime"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/settlement/base/backoff"
	"github.com/x-xyz/settlement/base/log"
)

const (
	dialTimeout  = 2 * time.Second
	readTimeout  = 1500 * time.Millisecond
	writeTimeout = 1500 * time.Millisecond
)

type Config struct {
	Uri      string
	Password string
	// PoolMultiplier scales the pool by the number of cpus, 0 keeps the
	// fixed 200 idle / 1024 active defaults
	PoolMultiplier float64
	// Retries is the number of extra dial attempts at start
	Retries int
}

// MustConnect panics when redis stays unreachable after the retries
func MustConnect(cfg Config) *redis.Pool {
	p, err := Connect(cfg)
	if err != nil {
		log.Log().WithFields(log.Fields{"redisURI": cfg.Uri, "err": err}).Panic("fail to dial Redis")
	}
	return p
}

func Connect(cfg Config) (*redis.Pool, error) {
	maxIdle := 200
	maxActive := 1024
	if cfg.PoolMultiplier > 0 {
		cpu := float64(runtime.NumCPU())
		// 25% idle
		maxIdle = int(cpu * cfg.PoolMultiplier / 4)
		maxActive = int(cpu * cfg.PoolMultiplier)
	}

	opts := []redis.DialOption{
		redis.DialConnectTimeout(dialTimeout),
		redis.DialReadTimeout(readTimeout),
		redis.DialWriteTimeout(writeTimeout),
	}
	if cfg.Password != "" {
		opts = append(opts, redis.DialPassword(cfg.Password))
	}
	p := &redis.Pool{
		MaxIdle:     maxIdle,
		MaxActive:   maxActive,
		Wait:        true,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", cfg.Uri, opts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Second {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	bo := backoff.NewExponential(time.Second, 8*time.Second)
	for {
		err := ping(p)
		if err == nil {
			break
		}
		logger := log.Log().WithFields(log.Fields{
			"redisURI": cfg.Uri,
			"err":      err,
			"attempt":  bo.Attempts() + 1,
		})
		if bo.Attempts() >= cfg.Retries {
			logger.Error("fail to dial Redis")
			return nil, err
		}
		logger.Warn("fail to dial Redis, retrying")
		if err := bo.Wait(context.Background()); err != nil {
			return nil, err
		}
	}

	log.Log().WithField("redisURI", cfg.Uri).Info("redis connected")
	return p, nil
}

func ping(p *redis.Pool) error {
	c, err := p.Dial()
	if err != nil {
		return err
	}
	defer c.Close()
	_, err = c.Do("PING")
	return err
}
