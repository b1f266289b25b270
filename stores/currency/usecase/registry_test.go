package usecase

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/currency"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/service/kv/memory"
	adminRepository "github.com/x-xyz/settlement/stores/admin/repository"
	adminUsecase "github.com/x-xyz/settlement/stores/admin/usecase"
	"github.com/x-xyz/settlement/stores/currency/repository"
	eventRepository "github.com/x-xyz/settlement/stores/event/repository"
	eventUsecase "github.com/x-xyz/settlement/stores/event/usecase"
)

const (
	owner = domain.Address("0x00000000000000000000000000000000000000d1")
	alice = domain.Address("0x00000000000000000000000000000000000000a1")
	wavax = domain.Address("0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7")
)

type registrySuite struct {
	suite.Suite

	ctx    ctx.Ctx
	events *eventRepository.MemoryPublisher
	im     currency.Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(registrySuite))
}

func (s *registrySuite) SetupTest() {
	s.ctx = ctx.Background()
	store := memory.New()
	s.events = eventRepository.NewMemoryPublisher(10)
	emitter := eventUsecase.NewEmitter(&eventUsecase.EmitterCfg{
		Store:      store,
		Publishers: []event.Publisher{s.events},
		Metrics:    metrics.New("test"),
	})
	adminUC := adminUsecase.New(&adminUsecase.UseCaseCfg{
		Store: store,
		Repo:  adminRepository.New(store),
	})
	s.Require().NoError(adminUC.Init(s.ctx, admin.ContractCurrencyManager, owner))
	s.im = NewRegistry(&RegistryCfg{
		Store:   store,
		Repo:    repository.New(store),
		Admin:   adminUC,
		Emitter: emitter,
	})
}

func (s *registrySuite) TestAddRemove() {
	req := s.Require()
	req.ErrorIs(s.im.Add(s.ctx, alice, wavax), domain.ErrNotOwner)
	req.ErrorIs(s.im.Add(s.ctx, owner, domain.EmptyAddress), domain.ErrInvalidAddress)

	req.NoError(s.im.Add(s.ctx, owner, wavax))
	req.ErrorIs(s.im.Add(s.ctx, owner, wavax.ToLower()), domain.ErrCurrencyAlreadyWhitelisted)

	ok, err := s.im.IsAllowed(s.ctx, wavax.ToLower())
	req.NoError(err)
	req.True(ok)
	list, err := s.im.List(s.ctx)
	req.NoError(err)
	req.Equal([]domain.Address{wavax.ToLower()}, list)

	req.NoError(s.im.Remove(s.ctx, owner, wavax))
	req.ErrorIs(s.im.Remove(s.ctx, owner, wavax), domain.ErrCurrencyNotWhitelisted)
	ok, err = s.im.IsAllowed(s.ctx, wavax)
	req.NoError(err)
	req.False(ok)

	req.Equal([]event.Name{event.NameCurrencyAdded, event.NameCurrencyRemoved}, s.events.Names())
}
