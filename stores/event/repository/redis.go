package repository

import (
	"encoding/json"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/redis"
)

type RedisPublisherCfg struct {
	Redis   redis.Service
	Channel string
	// HistorySize is the length of the recent event list, 0 disables it
	HistorySize int
}

type RedisPublisher struct {
	redis       redis.Service
	channel     string
	historyKey  string
	historySize int
}

// NewRedisPublisher PUBLISHes events on a channel and keeps a capped history list
func NewRedisPublisher(cfg *RedisPublisherCfg) *RedisPublisher {
	return &RedisPublisher{
		redis:       cfg.Redis,
		channel:     keys.RedisKey(keys.PfxEvents, cfg.Channel),
		historyKey:  keys.RedisKey(keys.PfxEvents, cfg.Channel, "history"),
		historySize: cfg.HistorySize,
	}
}

func (p *RedisPublisher) Name() string {
	return "redis"
}

func (p *RedisPublisher) Publish(c ctx.Ctx, e *event.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "eventId": e.Id}).Error("json.Marshal failed")
		return err
	}
	if _, err := p.redis.Publish(c, p.channel, b); err != nil {
		return err
	}
	if p.historySize > 0 {
		return p.redis.LPushTrim(c, p.historyKey, b, p.historySize)
	}
	return nil
}

func (p *RedisPublisher) Recent(c ctx.Ctx, offset, limit int) ([]*event.Event, error) {
	vals, err := p.redis.LRange(c, p.historyKey, offset, limit)
	if err != nil {
		return nil, err
	}
	res := make([]*event.Event, 0, len(vals))
	for _, v := range vals {
		e := &event.Event{}
		if err := json.Unmarshal(v, e); err != nil {
			c.WithFields(log.Fields{"err": err}).Warn("skip malformed event")
			continue
		}
		res = append(res, e)
	}
	return res, nil
}
