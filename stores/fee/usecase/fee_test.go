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
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/service/kv/memory"
	ledgerService "github.com/x-xyz/settlement/service/ledger"
	adminRepository "github.com/x-xyz/settlement/stores/admin/repository"
	adminUsecase "github.com/x-xyz/settlement/stores/admin/usecase"
	eventRepository "github.com/x-xyz/settlement/stores/event/repository"
	eventUsecase "github.com/x-xyz/settlement/stores/event/usecase"
	"github.com/x-xyz/settlement/stores/fee/repository"
)

var (
	dev          = domain.Address("0x00000000000000000000000000000000000000d1")
	alice        = domain.Address("0x00000000000000000000000000000000000000a1")
	bob          = domain.Address("0x00000000000000000000000000000000000000b1")
	carol        = domain.Address("0x00000000000000000000000000000000000000c1")
	david        = domain.Address("0x00000000000000000000000000000000000000d2")
	eric         = domain.Address("0x00000000000000000000000000000000000000e1")
	registryV2   = domain.Address("0x0000000000000000000000000000000000000f02")
	withRoyalty  = domain.Address("0x0000000000000000000000000000000000000721")
	noRoyalty    = domain.Address("0x0000000000000000000000000000000000000722")
	amount       = big.NewInt(1000000)
	tokenId      = big.NewInt(1)
	feeLimit     = uint64(1000)
	maxRecipient = 2
)

type feeSuite struct {
	suite.Suite

	ctx      ctx.Ctx
	events   *eventRepository.MemoryPublisher
	protocol fee.ProtocolFeeManager
	royalty  fee.RoyaltyFeeManager
}

func TestFeeSuite(t *testing.T) {
	suite.Run(t, new(feeSuite))
}

func (s *feeSuite) SetupTest() {
	req := s.Require()
	s.ctx = ctx.Background()
	store := memory.New()
	s.events = eventRepository.NewMemoryPublisher(100)
	emitter := eventUsecase.NewEmitter(&eventUsecase.EmitterCfg{
		Store:      store,
		Publishers: []event.Publisher{s.events},
		Metrics:    metrics.New("test"),
	})
	adminUC := adminUsecase.New(&adminUsecase.UseCaseCfg{
		Store: store,
		Repo:  adminRepository.New(store),
	})
	req.NoError(adminUC.Init(s.ctx, admin.ContractFeeManager, dev))

	assets := ledgerService.NewAssetLedger(store)
	req.NoError(assets.RegisterCollection(s.ctx, ledger.Collection{
		Address:  withRoyalty,
		Standard: domain.TokenType721,
		Owner:    alice,
		ERC2981:  &ledger.RoyaltyInfo{Receiver: alice, Fee: 250},
	}))
	req.NoError(assets.RegisterCollection(s.ctx, ledger.Collection{
		Address:  noRoyalty,
		Standard: domain.TokenType721,
		Owner:    alice,
		Admin:    carol,
	}))

	s.protocol = NewProtocolFeeManager(&ProtocolFeeManagerCfg{
		Store:              store,
		Repo:               repository.NewProtocolFeeRepo(store),
		Admin:              adminUC,
		Emitter:            emitter,
		DefaultProtocolFee: 100,
	})
	s.royalty = NewRoyaltyFeeManager(&RoyaltyFeeManagerCfg{
		Store:                   store,
		Repo:                    repository.NewRoyaltyRepo(store),
		Admin:                   adminUC,
		Emitter:                 emitter,
		ERC2981:                 repository.NewLedgerERC2981(assets),
		Assets:                  assets,
		DefaultRoyaltyFeeLimit:  feeLimit,
		DefaultMaxNumRecipients: maxRecipient,
	})
	req.NoError(s.royalty.InitializeRoyaltyFeeRegistryV2(s.ctx, dev, registryV2))
}

func (s *feeSuite) twoParts() []fee.RoyaltyFeeTypes {
	return []fee.RoyaltyFeeTypes{
		{Receiver: david, Fee: 500},
		{Receiver: eric, Fee: 100},
	}
}

func (s *feeSuite) TestProtocolFee() {
	req := s.Require()
	f, err := s.protocol.ProtocolFeeForCollection(s.ctx, noRoyalty)
	req.NoError(err)
	req.Equal(uint64(100), f)

	req.ErrorIs(s.protocol.SetDefaultProtocolFee(s.ctx, alice, 200), domain.ErrNotOwner)
	req.ErrorIs(s.protocol.SetDefaultProtocolFee(s.ctx, dev, 10001), domain.ErrInvalidProtocolFee)
	req.NoError(s.protocol.SetDefaultProtocolFee(s.ctx, dev, 200))

	req.ErrorIs(s.protocol.SetProtocolFeeForCollection(s.ctx, alice, noRoyalty, 50), domain.ErrNotOwner)
	req.ErrorIs(s.protocol.SetProtocolFeeForCollection(s.ctx, dev, noRoyalty, 10001), domain.ErrInvalidProtocolFee)
	req.NoError(s.protocol.SetProtocolFeeForCollection(s.ctx, dev, noRoyalty, 50))

	f, err = s.protocol.ProtocolFeeForCollection(s.ctx, noRoyalty)
	req.NoError(err)
	req.Equal(uint64(50), f)
	f, err = s.protocol.ProtocolFeeForCollection(s.ctx, withRoyalty)
	req.NoError(err)
	req.Equal(uint64(200), f)

	req.ErrorIs(s.protocol.UnsetProtocolFeeForCollection(s.ctx, alice, noRoyalty), domain.ErrNotOwner)
	req.NoError(s.protocol.UnsetProtocolFeeForCollection(s.ctx, dev, noRoyalty))
	f, err = s.protocol.ProtocolFeeForCollection(s.ctx, noRoyalty)
	req.NoError(err)
	req.Equal(uint64(200), f)
}

func (s *feeSuite) TestRegistryV2AlreadySet() {
	req := s.Require()
	req.ErrorIs(s.royalty.InitializeRoyaltyFeeRegistryV2(s.ctx, dev, registryV2), domain.ErrRoyaltyFeeRegistryV2AlreadyInitial)
}

func (s *feeSuite) TestRoyaltyConfig() {
	req := s.Require()
	req.ErrorIs(s.royalty.UpdateRoyaltyFeeLimit(s.ctx, dev, 9501), domain.ErrRoyaltyFeeLimitTooHigh)
	req.NoError(s.royalty.UpdateRoyaltyFeeLimit(s.ctx, dev, 2000))
	req.ErrorIs(s.royalty.UpdateRoyaltyFeeLimit(s.ctx, alice, 2000), domain.ErrNotOwner)
	req.ErrorIs(s.royalty.UpdateMaxNumRecipients(s.ctx, dev, 0), domain.ErrInvalidMaxNumRecipients)
	req.NoError(s.royalty.UpdateMaxNumRecipients(s.ctx, dev, 3))

	cfg, err := s.royalty.RoyaltyConfig(s.ctx)
	req.NoError(err)
	req.Equal(uint64(2000), cfg.RoyaltyFeeLimit)
	req.Equal(3, cfg.MaxNumRecipients)
	req.True(cfg.RegistryV2.Equals(registryV2))
}

func (s *feeSuite) TestUpdateRoyaltyInfoParts() {
	req := s.Require()
	tooMany := append(s.twoParts(), fee.RoyaltyFeeTypes{Receiver: bob, Fee: 10})
	req.ErrorIs(s.royalty.UpdateRoyaltyInfoPartsForCollection(s.ctx, dev, noRoyalty, dev, tooMany), domain.ErrTooManyFeeRecipients)
	req.ErrorIs(s.royalty.UpdateRoyaltyInfoPartsForCollection(s.ctx, dev, noRoyalty, domain.EmptyAddress, s.twoParts()), domain.ErrExpectedNonNullAddress)
	req.ErrorIs(s.royalty.UpdateRoyaltyInfoPartsForCollection(s.ctx, dev, noRoyalty, dev, []fee.RoyaltyFeeTypes{{Receiver: domain.EmptyAddress, Fee: 100}}), domain.ErrExpectedNonNullAddress)
	req.ErrorIs(s.royalty.UpdateRoyaltyInfoPartsForCollection(s.ctx, dev, noRoyalty, dev, []fee.RoyaltyFeeTypes{{Receiver: alice, Fee: 0}}), domain.ErrInvalidRoyaltyFee)
	req.ErrorIs(s.royalty.UpdateRoyaltyInfoPartsForCollection(s.ctx, dev, noRoyalty, dev, []fee.RoyaltyFeeTypes{{Receiver: alice, Fee: 900}, {Receiver: bob, Fee: 200}}), domain.ErrRoyaltyFeeTooHigh)
	req.ErrorIs(s.royalty.UpdateRoyaltyInfoPartsForCollection(s.ctx, alice, noRoyalty, dev, s.twoParts()), domain.ErrNotOwner)

	req.NoError(s.royalty.UpdateRoyaltyInfoPartsForCollection(s.ctx, dev, noRoyalty, alice, s.twoParts()))
	info, err := s.royalty.RoyaltyFeeInfoPartsCollection(s.ctx, noRoyalty)
	req.NoError(err)
	req.True(info.Setter.Equals(alice))
	req.Equal(s.twoParts(), info.Parts)

	parts, err := s.royalty.CalculateRoyaltyFeeAmountParts(s.ctx, noRoyalty, tokenId, amount)
	req.NoError(err)
	req.Len(parts, 2)
	req.True(parts[0].Receiver.Equals(david))
	req.Equal(int64(50000), parts[0].Amount.Int64())
	req.True(parts[1].Receiver.Equals(eric))
	req.Equal(int64(10000), parts[1].Amount.Int64())
}

func (s *feeSuite) TestSetterPaths() {
	req := s.Require()
	err := s.royalty.UpdateRoyaltyInfoPartsForCollectionIfSetter(s.ctx, alice, withRoyalty, dev, s.twoParts())
	req.ErrorIs(err, domain.ErrCollectionSupportsERC2981)

	err = s.royalty.UpdateRoyaltyInfoPartsForCollectionIfSetter(s.ctx, bob, noRoyalty, dev, s.twoParts())
	req.ErrorIs(err, domain.ErrNotCollectionAdmin)

	// owner, admin and the current setter may update
	req.NoError(s.royalty.UpdateRoyaltyInfoPartsForCollectionIfSetter(s.ctx, alice, noRoyalty, bob, s.twoParts()))
	req.NoError(s.royalty.UpdateRoyaltyInfoPartsForCollectionIfSetter(s.ctx, carol, noRoyalty, bob, s.twoParts()))
	half := []fee.RoyaltyFeeTypes{{Receiver: david, Fee: 250}, {Receiver: eric, Fee: 50}}
	req.NoError(s.royalty.UpdateRoyaltyInfoPartsForCollectionIfSetter(s.ctx, bob, noRoyalty, bob, half))

	parts, err := s.royalty.CalculateRoyaltyFeeAmountParts(s.ctx, noRoyalty, tokenId, amount)
	req.NoError(err)
	req.Equal(int64(25000), parts[0].Amount.Int64())
	req.Equal(int64(5000), parts[1].Amount.Int64())
}

func (s *feeSuite) TestFallbackOrder() {
	req := s.Require()
	parts, err := s.royalty.CalculateRoyaltyFeeAmountParts(s.ctx, noRoyalty, tokenId, amount)
	req.NoError(err)
	req.Empty(parts)

	req.ErrorIs(s.royalty.UpdateRoyaltyInfoForCollection(s.ctx, dev, noRoyalty, dev, alice, 1001), domain.ErrRoyaltyFeeTooHigh)
	req.NoError(s.royalty.UpdateRoyaltyInfoForCollection(s.ctx, dev, noRoyalty, dev, alice, 1000))
	parts, err = s.royalty.CalculateRoyaltyFeeAmountParts(s.ctx, noRoyalty, tokenId, amount)
	req.NoError(err)
	req.Len(parts, 1)
	req.True(parts[0].Receiver.Equals(alice))
	req.Equal(int64(100000), parts[0].Amount.Int64())

	// the multi recipient registry shadows the legacy one
	req.NoError(s.royalty.UpdateRoyaltyInfoPartsForCollection(s.ctx, dev, noRoyalty, dev, s.twoParts()))
	parts, err = s.royalty.CalculateRoyaltyFeeAmountParts(s.ctx, noRoyalty, tokenId, amount)
	req.NoError(err)
	req.Len(parts, 2)

	// native ERC-2981 answers shadow both registries
	req.NoError(s.royalty.UpdateRoyaltyInfoForCollection(s.ctx, dev, withRoyalty, dev, bob, 1000))
	req.NoError(s.royalty.UpdateRoyaltyInfoPartsForCollection(s.ctx, dev, withRoyalty, dev, s.twoParts()))
	parts, err = s.royalty.CalculateRoyaltyFeeAmountParts(s.ctx, withRoyalty, tokenId, amount)
	req.NoError(err)
	req.Len(parts, 1)
	req.True(parts[0].Receiver.Equals(alice))
	req.Equal(int64(25000), parts[0].Amount.Int64())
}
