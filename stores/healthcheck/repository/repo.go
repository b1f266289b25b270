package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/database/mongoclient"
	hcdomain "github.com/x-xyz/settlement/domain/healthcheck"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/redis"
)

type mongoPinger struct {
	client *mongoclient.Client
}

func NewMongoPinger(client *mongoclient.Client) hcdomain.Pinger {
	return &mongoPinger{client}
}

func (im *mongoPinger) Name() string {
	return "mongo"
}

func (im *mongoPinger) Ping(c ctx.Ctx) error {
	if err := im.client.Ping(c, readpref.Primary()); err != nil {
		c.WithField("err", err).Error("ping mongo error")
		return err
	}
	return nil
}

type redisPinger struct {
	redis redis.Service
}

func NewRedisPinger(redis redis.Service) hcdomain.Pinger {
	return &redisPinger{redis}
}

func (im *redisPinger) Name() string {
	return "redis"
}

func (im *redisPinger) Ping(c ctx.Ctx) error {
	if err := im.redis.Set(c, keys.RedisKey(keys.PfxHealthCheck, "testset"), []byte("1"), 30*time.Second); err != nil {
		c.WithField("err", err).Error("test redis set failed")
		return err
	}
	return nil
}
