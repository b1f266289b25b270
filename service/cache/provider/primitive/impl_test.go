package primitive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/service/cache/provider"
)

type primitiveSuite struct {
	suite.Suite

	ctx ctx.Ctx
	im  provider.Provider
}

func TestPrimitiveSuite(t *testing.T) {
	suite.Run(t, new(primitiveSuite))
}

func (s *primitiveSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.im = NewPrimitive("test", 1)
}

func (s *primitiveSuite) TestMiss() {
	v, ttl, err := s.im.Get(s.ctx, "erc2981:1:0xabc")
	s.Require().Equal(provider.ErrNotFound, err)
	s.Nil(v)
	s.Zero(ttl)
}

func (s *primitiveSuite) TestSetGetDel() {
	req := s.Require()
	key := "erc2981:1:0xabc"

	req.NoError(s.im.Set(s.ctx, key, []byte("true"), time.Minute))
	v, ttl, err := s.im.Get(s.ctx, key)
	req.NoError(err)
	req.Equal([]byte("true"), v)
	req.InDelta(time.Minute.Seconds(), ttl.Seconds(), 2)

	req.NoError(s.im.Del(s.ctx, key))
	_, _, err = s.im.Get(s.ctx, key)
	req.Equal(provider.ErrNotFound, err)
}

func (s *primitiveSuite) TestNoExpiry() {
	req := s.Require()
	req.NoError(s.im.Set(s.ctx, "k", []byte("v"), 0))
	_, ttl, err := s.im.Get(s.ctx, "k")
	req.NoError(err)
	req.Zero(ttl)
}

func (s *primitiveSuite) TestExpire() {
	req := s.Require()
	req.NoError(s.im.Set(s.ctx, "k", []byte("v"), time.Second))
	time.Sleep(1100 * time.Millisecond)
	_, _, err := s.im.Get(s.ctx, "k")
	req.Equal(provider.ErrNotFound, err)
}
