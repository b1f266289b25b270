package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain/event"
	mEvent "github.com/x-xyz/settlement/domain/event/mocks"
	"github.com/x-xyz/settlement/service/kv/memory"
	"github.com/x-xyz/settlement/stores/event/repository"
)

type emitterSuite struct {
	suite.Suite

	ctx     ctx.Ctx
	store   *memory.Store
	memory  *repository.MemoryPublisher
	failing *mEvent.Publisher
	im      *Emitter
}

func TestEmitterSuite(t *testing.T) {
	suite.Run(t, new(emitterSuite))
}

func (s *emitterSuite) SetupTest() {
	s.ctx = ctx.Background()
	s.store = memory.New()
	s.memory = repository.NewMemoryPublisher(10)
	s.failing = &mEvent.Publisher{}
	s.failing.On("Name").Return("failing")
	s.im = NewEmitter(&EmitterCfg{
		Store:      s.store,
		Publishers: []event.Publisher{s.failing, s.memory},
		Metrics:    metrics.New("test"),
		TimeNow:    func() time.Time { return time.Unix(1000, 0) },
	})
}

func (s *emitterSuite) TestEmitAfterCommit() {
	req := s.Require()
	s.failing.On("Publish", mock.Anything, mock.Anything).Return(errors.New("down")).Once()

	err := s.store.RunWithTransaction(s.ctx, func(c ctx.Ctx) error {
		s.im.Emit(c, "exchange", event.NameTakerBid, event.Fields{"nonce": "1"})
		req.Empty(s.memory.Names(), "nothing is delivered before commit")
		return nil
	})
	req.NoError(err)

	events, err := s.memory.Recent(s.ctx, 0, 10)
	req.NoError(err)
	req.Len(events, 1)
	req.Equal(event.NameTakerBid, events[0].Name)
	req.Equal("exchange", events[0].Contract)
	req.Equal(int64(1000), events[0].Time)
	req.NotEmpty(events[0].Id)
	s.failing.AssertExpectations(s.T())
}

func (s *emitterSuite) TestRollbackDropsEvent() {
	req := s.Require()
	err := s.store.RunWithTransaction(s.ctx, func(c ctx.Ctx) error {
		s.im.Emit(c, "exchange", event.NameTakerAsk, nil)
		return errors.New("boom")
	})
	req.Error(err)
	req.Empty(s.memory.Names())
	s.failing.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *emitterSuite) TestAsyncDelivery() {
	req := s.Require()
	im := NewEmitter(&EmitterCfg{
		Store:      s.store,
		Publishers: []event.Publisher{s.memory},
		Metrics:    metrics.New("test"),
		Async:      true,
	})
	im.Emit(s.ctx, "auctionHouse", event.NameDutchAuctionStart, nil)
	im.Close()
	req.Eventually(func() bool {
		return len(s.memory.Names()) == 1
	}, time.Second, 10*time.Millisecond)
}
