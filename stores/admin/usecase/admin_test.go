package usecase

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/service/kv/memory"
	"github.com/x-xyz/settlement/stores/admin/repository"
	eventRepository "github.com/x-xyz/settlement/stores/event/repository"
	eventUsecase "github.com/x-xyz/settlement/stores/event/usecase"
)

const (
	dev   = domain.Address("0x00000000000000000000000000000000000000d1")
	alice = domain.Address("0x00000000000000000000000000000000000000a1")
	bob   = domain.Address("0x00000000000000000000000000000000000000b1")
)

type adminSuite struct {
	suite.Suite

	ctx    ctx.Ctx
	events *eventRepository.MemoryPublisher
	im     admin.UseCase
}

func TestAdminSuite(t *testing.T) {
	suite.Run(t, new(adminSuite))
}

func (s *adminSuite) SetupTest() {
	s.ctx = ctx.Background()
	store := memory.New()
	s.events = eventRepository.NewMemoryPublisher(100)
	s.im = New(&UseCaseCfg{
		Store: store,
		Repo:  repository.New(store),
		Emitter: eventUsecase.NewEmitter(&eventUsecase.EmitterCfg{
			Store:      store,
			Publishers: []event.Publisher{s.events},
			Metrics:    metrics.New("test"),
		}),
	})
	s.Require().NoError(s.im.Init(s.ctx, admin.ContractExchange, dev))
}

func (s *adminSuite) TestInitOnce() {
	req := s.Require()
	req.NoError(s.im.Init(s.ctx, admin.ContractExchange, alice))

	o, err := s.im.Get(s.ctx, admin.ContractExchange)
	req.NoError(err)
	req.True(o.Owner.Equals(dev))
	req.Equal([]event.Name{event.NameOwnershipTransferred, event.NamePauseAdminAdded}, s.events.Names())
}

func (s *adminSuite) TestOwnerOnly() {
	req := s.Require()
	req.ErrorIs(s.im.SetPendingOwner(s.ctx, admin.ContractExchange, alice, alice), domain.ErrNotOwner)
	req.ErrorIs(s.im.RevokePendingOwner(s.ctx, admin.ContractExchange, alice), domain.ErrNotOwner)
	req.ErrorIs(s.im.BecomeOwner(s.ctx, admin.ContractExchange, alice), domain.ErrNotPendingOwner)
	req.ErrorIs(s.im.RenounceOwnership(s.ctx, admin.ContractExchange, alice), domain.ErrNotOwner)
	req.ErrorIs(s.im.RenounceOwnership(s.ctx, admin.ContractExchange, alice), domain.ErrAuthorization)
}

func (s *adminSuite) TestPendingOwner() {
	req := s.Require()
	req.ErrorIs(s.im.RevokePendingOwner(s.ctx, admin.ContractExchange, dev), domain.ErrNoPendingOwner)
	req.ErrorIs(s.im.SetPendingOwner(s.ctx, admin.ContractExchange, dev, domain.EmptyAddress), domain.ErrExpectedNonNullAddress)

	req.NoError(s.im.SetPendingOwner(s.ctx, admin.ContractExchange, dev, alice))
	req.ErrorIs(s.im.SetPendingOwner(s.ctx, admin.ContractExchange, dev, bob), domain.ErrPendingOwnerAlreadySet)
	req.NoError(s.im.RevokePendingOwner(s.ctx, admin.ContractExchange, dev))
	req.ErrorIs(s.im.RevokePendingOwner(s.ctx, admin.ContractExchange, dev), domain.ErrNoPendingOwner)

	req.NoError(s.im.SetPendingOwner(s.ctx, admin.ContractExchange, dev, alice))
	req.ErrorIs(s.im.BecomeOwner(s.ctx, admin.ContractExchange, bob), domain.ErrNotPendingOwner)
	req.NoError(s.im.BecomeOwner(s.ctx, admin.ContractExchange, alice))

	o, err := s.im.Get(s.ctx, admin.ContractExchange)
	req.NoError(err)
	req.True(o.Owner.Equals(alice))
	req.True(o.PendingOwner.IsNull())
	req.ErrorIs(s.im.OnlyOwner(s.ctx, admin.ContractExchange, dev), domain.ErrNotOwner)
	req.ErrorIs(s.im.BecomeOwner(s.ctx, admin.ContractExchange, alice), domain.ErrNotPendingOwner)
}

func (s *adminSuite) TestRenounceOwnership() {
	req := s.Require()
	req.NoError(s.im.RenounceOwnership(s.ctx, admin.ContractExchange, dev))
	req.ErrorIs(s.im.OnlyOwner(s.ctx, admin.ContractExchange, dev), domain.ErrNotOwner)
	req.ErrorIs(s.im.OnlyOwner(s.ctx, admin.ContractExchange, domain.EmptyAddress), domain.ErrNotOwner)
}

func (s *adminSuite) TestPauseUnpause() {
	req := s.Require()
	req.NoError(s.im.WhenNotPaused(s.ctx, admin.ContractExchange))
	req.NoError(s.im.Pause(s.ctx, admin.ContractExchange, dev))
	req.ErrorIs(s.im.WhenNotPaused(s.ctx, admin.ContractExchange), domain.ErrPaused)
	req.ErrorIs(s.im.Pause(s.ctx, admin.ContractExchange, dev), domain.ErrAlreadyPaused)

	req.NoError(s.im.Unpause(s.ctx, admin.ContractExchange, dev))
	req.NoError(s.im.WhenNotPaused(s.ctx, admin.ContractExchange))
	req.ErrorIs(s.im.Unpause(s.ctx, admin.ContractExchange, dev), domain.ErrAlreadyUnpaused)

	// contracts pause independently
	req.NoError(s.im.Init(s.ctx, admin.ContractAuctionHouse, dev))
	req.NoError(s.im.Pause(s.ctx, admin.ContractAuctionHouse, dev))
	req.NoError(s.im.WhenNotPaused(s.ctx, admin.ContractExchange))
}

func (s *adminSuite) TestPauseAdmins() {
	req := s.Require()
	req.ErrorIs(s.im.Pause(s.ctx, admin.ContractExchange, alice), domain.ErrOnlyPauseAdmin)
	req.ErrorIs(s.im.Unpause(s.ctx, admin.ContractExchange, alice), domain.ErrNotOwner)

	req.ErrorIs(s.im.AddPauseAdmin(s.ctx, admin.ContractExchange, bob, bob), domain.ErrNotOwner)
	req.NoError(s.im.AddPauseAdmin(s.ctx, admin.ContractExchange, dev, alice))
	req.ErrorIs(s.im.AddPauseAdmin(s.ctx, admin.ContractExchange, alice, bob), domain.ErrNotOwner)
	req.ErrorIs(s.im.RemovePauseAdmin(s.ctx, admin.ContractExchange, alice, dev), domain.ErrNotOwner)

	admins, err := s.im.PauseAdmins(s.ctx, admin.ContractExchange)
	req.NoError(err)
	req.Len(admins, 2)

	req.NoError(s.im.Pause(s.ctx, admin.ContractExchange, alice))
	req.ErrorIs(s.im.Unpause(s.ctx, admin.ContractExchange, alice), domain.ErrNotOwner)

	req.NoError(s.im.RenouncePauseAdmin(s.ctx, admin.ContractExchange, dev))
	req.ErrorIs(s.im.RenouncePauseAdmin(s.ctx, admin.ContractExchange, dev), domain.ErrAddressIsNotPauseAdmin)

	req.NoError(s.im.RemovePauseAdmin(s.ctx, admin.ContractExchange, dev, alice))
	ok, err := s.im.IsPauseAdmin(s.ctx, admin.ContractExchange, alice)
	req.NoError(err)
	req.False(ok)
}
