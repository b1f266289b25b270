package usecase

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/order"
	"github.com/x-xyz/settlement/domain/strategy"
	"github.com/x-xyz/settlement/service/kv/memory"
	adminRepository "github.com/x-xyz/settlement/stores/admin/repository"
	adminUsecase "github.com/x-xyz/settlement/stores/admin/usecase"
	eventRepository "github.com/x-xyz/settlement/stores/event/repository"
	eventUsecase "github.com/x-xyz/settlement/stores/event/usecase"
	"github.com/x-xyz/settlement/stores/strategy/repository"
)

const (
	owner    = domain.Address("0x00000000000000000000000000000000000000d1")
	alice    = domain.Address("0x00000000000000000000000000000000000000a1")
	bob      = domain.Address("0x00000000000000000000000000000000000000b1")
	standard = domain.Address("0x0000000000000000000000000000000000005701")
	private  = domain.Address("0x0000000000000000000000000000000000005702")
	anyItem  = domain.Address("0x0000000000000000000000000000000000005703")
	unknown  = domain.Address("0x0000000000000000000000000000000000005799")
)

type strategySuite struct {
	suite.Suite

	ctx ctx.Ctx
	im  strategy.Registry
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(strategySuite))
}

func (s *strategySuite) SetupTest() {
	s.ctx = ctx.Background()
	store := memory.New()
	emitter := eventUsecase.NewEmitter(&eventUsecase.EmitterCfg{
		Store:      store,
		Publishers: []event.Publisher{eventRepository.NewMemoryPublisher(10)},
		Metrics:    metrics.New("test"),
	})
	adminUC := adminUsecase.New(&adminUsecase.UseCaseCfg{
		Store:   store,
		Repo:    adminRepository.New(store),
		Emitter: emitter,
	})
	s.Require().NoError(adminUC.Init(s.ctx, admin.ContractExecutionManager, owner))
	s.im = NewRegistry(&RegistryCfg{
		Store:   store,
		Repo:    repository.New(store),
		Admin:   adminUC,
		Emitter: emitter,
		Strategies: []strategy.Strategy{
			NewStandardSaleForFixedPrice(standard, 100),
			NewPrivateSale(private, 0),
			NewAnyItemFromCollectionForFixedPrice(anyItem, 100),
		},
	})
}

func (s *strategySuite) TestRegistry() {
	req := s.Require()
	req.ErrorIs(s.im.Add(s.ctx, alice, standard), domain.ErrNotOwner)
	req.ErrorIs(s.im.Add(s.ctx, owner, unknown), domain.ErrUnsupportedStrategy)
	req.NoError(s.im.Add(s.ctx, owner, standard))
	req.ErrorIs(s.im.Add(s.ctx, owner, standard), domain.ErrStrategyAlreadyWhitelisted)

	ok, err := s.im.IsAllowed(s.ctx, standard)
	req.NoError(err)
	req.True(ok)

	st, err := s.im.Get(s.ctx, standard)
	req.NoError(err)
	req.Equal(uint64(100), st.ProtocolFee())

	_, err = s.im.Get(s.ctx, private)
	req.ErrorIs(err, domain.ErrUnsupportedStrategy)

	req.NoError(s.im.Remove(s.ctx, owner, standard))
	req.ErrorIs(s.im.Remove(s.ctx, owner, standard), domain.ErrStrategyNotWhitelisted)
	list, err := s.im.List(s.ctx)
	req.NoError(err)
	req.Empty(list)
}

func (s *strategySuite) TestStandardSaleForFixedPrice() {
	req := s.Require()
	st := NewStandardSaleForFixedPrice(standard, 100)
	maker := &order.MakerOrder{IsOrderAsk: true, Price: big.NewInt(100), TokenId: big.NewInt(1), Amount: big.NewInt(1)}

	ok, tokenId, amount := st.CanExecuteTakerBid(&order.TakerOrder{Price: big.NewInt(100), TokenId: big.NewInt(1)}, maker)
	req.True(ok)
	req.Equal(int64(1), tokenId.Int64())
	req.Equal(int64(1), amount.Int64())

	ok, _, _ = st.CanExecuteTakerBid(&order.TakerOrder{Price: big.NewInt(99), TokenId: big.NewInt(1)}, maker)
	req.False(ok)
	ok, _, _ = st.CanExecuteTakerAsk(&order.TakerOrder{Price: big.NewInt(100), TokenId: big.NewInt(2)}, maker)
	req.False(ok)
}

func (s *strategySuite) TestAnyItemFromCollection() {
	req := s.Require()
	st := NewAnyItemFromCollectionForFixedPrice(anyItem, 100)
	maker := &order.MakerOrder{Price: big.NewInt(100), TokenId: big.NewInt(0), Amount: big.NewInt(1)}

	ok, tokenId, _ := st.CanExecuteTakerAsk(&order.TakerOrder{IsOrderAsk: true, Price: big.NewInt(100), TokenId: big.NewInt(42)}, maker)
	req.True(ok)
	req.Equal(int64(42), tokenId.Int64())

	ok, _, _ = st.CanExecuteTakerBid(&order.TakerOrder{Price: big.NewInt(100), TokenId: big.NewInt(42)}, maker)
	req.False(ok, "only collection bids")
}

func (s *strategySuite) TestPrivateSale() {
	req := s.Require()
	st := NewPrivateSale(private, 0)
	params, err := EncodePrivateSaleParams(alice)
	req.NoError(err)
	req.Len(params, 32)
	maker := &order.MakerOrder{IsOrderAsk: true, Price: big.NewInt(100), TokenId: big.NewInt(1), Amount: big.NewInt(1), Params: params}

	ok, _, _ := st.CanExecuteTakerBid(&order.TakerOrder{Taker: alice, Price: big.NewInt(100), TokenId: big.NewInt(1)}, maker)
	req.True(ok)
	ok, _, _ = st.CanExecuteTakerBid(&order.TakerOrder{Taker: bob, Price: big.NewInt(100), TokenId: big.NewInt(1)}, maker)
	req.False(ok)

	maker.Params = nil
	ok, _, _ = st.CanExecuteTakerBid(&order.TakerOrder{Taker: alice, Price: big.NewInt(100), TokenId: big.NewInt(1)}, maker)
	req.False(ok)
	ok, _, _ = st.CanExecuteTakerAsk(&order.TakerOrder{Taker: alice, Price: big.NewInt(100), TokenId: big.NewInt(1)}, maker)
	req.False(ok)
}
