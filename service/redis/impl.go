package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/base/metrics"
)

const (
	// retTTLNoKey is the return value of TTL when the key does not exist
	retTTLNoKey = -2
)

type redImpl struct {
	name string
	met  metrics.Service
	pool *redis.Pool
}

// New wraps a redigo pool, name tags every metric
func New(name string, met metrics.Service, pool *redis.Pool) Service {
	return &redImpl{
		name: name,
		met:  met,
		pool: pool,
	}
}

func (r *redImpl) getConn() (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()
	if r.pool == nil {
		return nil, ErrNoPool
	}

	conn := r.pool.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name, "reason", err.Error())
		return nil, err
	}
	return conn, nil
}

func (r *redImpl) connDo(c ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	defer r.met.BumpTime("time", "cluster", r.name, "cmd", commandName).End()
	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}

	reply, err := redis.DoContext(conn, c, commandName, args...)

	// close asap, a conn held longer makes the pool juggle more connections
	if err := conn.Close(); err != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) Get(c ctx.Ctx, key string) ([]byte, error) {
	val, err := redis.Bytes(r.connDo(c, "GET", key))
	if err == redis.ErrNil {
		return nil, ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("GET failed")
		return nil, err
	}
	return val, nil
}

func (r *redImpl) Set(c ctx.Ctx, key string, val []byte, expire time.Duration) error {
	args := []interface{}{key, val}
	if expire > 0 {
		args = append(args, "PX", expire.Milliseconds())
	}
	if _, err := r.connDo(c, "SET", args...); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("SET failed")
		return err
	}
	return nil
}

func (r *redImpl) Del(c ctx.Ctx, ks ...string) (int, error) {
	if len(ks) == 0 {
		return 0, nil
	}
	args := make([]interface{}, 0, len(ks))
	for _, k := range ks {
		args = append(args, k)
	}
	n, err := redis.Int(r.connDo(c, "DEL", args...))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "keys": ks}).Error("DEL failed")
		return 0, err
	}
	return n, nil
}

func (r *redImpl) Exists(c ctx.Ctx, key string) (bool, error) {
	return redis.Bool(r.connDo(c, "EXISTS", key))
}

func (r *redImpl) TTL(c ctx.Ctx, key string) (int, error) {
	ttl, err := redis.Int(r.connDo(c, "TTL", key))
	if err != nil {
		return 0, err
	}
	if ttl == retTTLNoKey {
		return 0, ErrNotFound
	}
	return ttl, nil
}

func (r *redImpl) Publish(c ctx.Ctx, channel string, msg []byte) (int, error) {
	n, err := redis.Int(r.connDo(c, "PUBLISH", channel, msg))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "channel": channel}).Error("PUBLISH failed")
		return 0, err
	}
	r.met.BumpSum("publish", 1, "cluster", r.name, "channel", channel)
	return n, nil
}

func (r *redImpl) LPushTrim(c ctx.Ctx, key string, val []byte, size int) error {
	conn, err := r.getConn()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Send("MULTI"); err != nil {
		return err
	}
	if err := conn.Send("LPUSH", key, val); err != nil {
		return err
	}
	if err := conn.Send("LTRIM", key, 0, size-1); err != nil {
		return err
	}
	if _, err := redis.DoContext(conn, c, "EXEC"); err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("LPUSH/LTRIM failed")
		return err
	}
	return nil
}

func (r *redImpl) LRange(c ctx.Ctx, key string, offset, count int) ([][]byte, error) {
	vals, err := redis.ByteSlices(r.connDo(c, "LRANGE", key, offset, offset+count-1))
	if err != nil {
		c.WithFields(log.Fields{"err": err, "key": key}).Error("LRANGE failed")
		return nil, err
	}
	return vals, nil
}
