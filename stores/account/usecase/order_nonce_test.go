package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/account"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/service/kv/memory"
	"github.com/x-xyz/settlement/stores/account/repository"
	eventRepository "github.com/x-xyz/settlement/stores/event/repository"
	eventUsecase "github.com/x-xyz/settlement/stores/event/usecase"
)

const alice = domain.Address("0x00000000000000000000000000000000000000A1")

type orderNonceSuite struct {
	suite.Suite

	ctx    ctx.Ctx
	events *eventRepository.MemoryPublisher
	im     account.OrderNonceUseCase
}

func TestOrderNonceSuite(t *testing.T) {
	suite.Run(t, new(orderNonceSuite))
}

func (s *orderNonceSuite) SetupTest() {
	s.ctx = ctx.Background()
	store := memory.New()
	s.events = eventRepository.NewMemoryPublisher(100)
	s.im = NewOrderNonceUseCase(&OrderNonceUseCaseCfg{
		Store: store,
		Repo:  repository.NewOrderNonceRepo(store),
		Emitter: eventUsecase.NewEmitter(&eventUsecase.EmitterCfg{
			Store:      store,
			Publishers: []event.Publisher{s.events},
			Metrics:    metrics.New("test"),
		}),
	})
}

func (s *orderNonceSuite) TestConsume() {
	req := s.Require()
	req.NoError(s.im.IsValid(s.ctx, alice, big.NewInt(3)))
	req.NoError(s.im.Consume(s.ctx, alice, big.NewInt(3)))
	req.ErrorIs(s.im.IsValid(s.ctx, alice, big.NewInt(3)), domain.ErrOrderExpired)
	req.ErrorIs(s.im.IsValid(s.ctx, alice.ToLower(), big.NewInt(3)), domain.ErrState)
	req.NoError(s.im.IsValid(s.ctx, alice, big.NewInt(4)))

	used, err := s.im.IsUserOrderNonceExecutedOrCancelled(s.ctx, alice, big.NewInt(3))
	req.NoError(err)
	req.True(used)
}

func (s *orderNonceSuite) TestCancelAllOrdersForSender() {
	req := s.Require()
	req.ErrorIs(s.im.CancelAllOrdersForSender(s.ctx, alice, big.NewInt(0)), domain.ErrOrderNonceLowerThanCurrent)
	req.ErrorIs(s.im.CancelAllOrdersForSender(s.ctx, alice, big.NewInt(500000)), domain.ErrOrderNonceTooHigh)

	req.NoError(s.im.CancelAllOrdersForSender(s.ctx, alice, big.NewInt(10)))
	min, err := s.im.UserMinOrderNonce(s.ctx, alice)
	req.NoError(err)
	req.Equal(int64(10), min.Int64())

	req.ErrorIs(s.im.IsValid(s.ctx, alice, big.NewInt(9)), domain.ErrOrderExpired)
	req.NoError(s.im.IsValid(s.ctx, alice, big.NewInt(10)))
	req.ErrorIs(s.im.CancelAllOrdersForSender(s.ctx, alice, big.NewInt(10)), domain.ErrOrderNonceLowerThanCurrent)
	req.ErrorIs(s.im.CancelAllOrdersForSender(s.ctx, domain.EmptyAddress, big.NewInt(10)), domain.ErrUnauthorized)

	req.Equal([]event.Name{event.NameCancelAllOrders}, s.events.Names())
}

func (s *orderNonceSuite) TestCancelMultipleMakerOrders() {
	req := s.Require()
	req.ErrorIs(s.im.CancelMultipleMakerOrders(s.ctx, alice, nil), domain.ErrEmptyNonces)

	nonces := []*big.Int{big.NewInt(2), big.NewInt(5)}
	req.NoError(s.im.CancelMultipleMakerOrders(s.ctx, alice, nonces))
	req.NoError(s.im.CancelMultipleMakerOrders(s.ctx, alice, nonces), "cancelling twice has no extra effect")
	req.Equal([]event.Name{event.NameCancelMultipleOrders}, s.events.Names())

	req.NoError(s.im.CancelMultipleMakerOrders(s.ctx, alice, []*big.Int{big.NewInt(5), big.NewInt(6), big.NewInt(6)}))
	recent, err := s.events.Recent(s.ctx, 0, 10)
	req.NoError(err)
	req.Len(recent, 2)
	req.Equal([]string{"6"}, recent[0].Fields["orderNonces"])

	min, err := s.im.UserMinOrderNonce(s.ctx, alice)
	req.NoError(err)
	req.Zero(min.Sign())
	req.ErrorIs(s.im.IsValid(s.ctx, alice, big.NewInt(5)), domain.ErrOrderExpired)
	req.NoError(s.im.IsValid(s.ctx, alice, big.NewInt(4)))

	req.NoError(s.im.CancelAllOrdersForSender(s.ctx, alice, big.NewInt(3)))
	err = s.im.CancelMultipleMakerOrders(s.ctx, alice, []*big.Int{big.NewInt(7), big.NewInt(1)})
	req.ErrorIs(err, domain.ErrOrderNonceLowerThanCurrent)
	req.NoError(s.im.IsValid(s.ctx, alice, big.NewInt(7)), "a failed cancel is reverted as a whole")
}
