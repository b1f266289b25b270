package usecase

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/auction"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/service/kv/memory"
	ledgerService "github.com/x-xyz/settlement/service/ledger"
	adminRepository "github.com/x-xyz/settlement/stores/admin/repository"
	adminUsecase "github.com/x-xyz/settlement/stores/admin/usecase"
	"github.com/x-xyz/settlement/stores/auction/repository"
	currencyRepository "github.com/x-xyz/settlement/stores/currency/repository"
	currencyUsecase "github.com/x-xyz/settlement/stores/currency/usecase"
	eventRepository "github.com/x-xyz/settlement/stores/event/repository"
	eventUsecase "github.com/x-xyz/settlement/stores/event/usecase"
	feeRepository "github.com/x-xyz/settlement/stores/fee/repository"
	feeUsecase "github.com/x-xyz/settlement/stores/fee/usecase"
)

var (
	owner        = domain.Address("0x00000000000000000000000000000000000000d1")
	feeRecipient = domain.Address("0x00000000000000000000000000000000000000d2")
	alice        = domain.Address("0x00000000000000000000000000000000000000a1")
	bob          = domain.Address("0x00000000000000000000000000000000000000b1")
	carol        = domain.Address("0x00000000000000000000000000000000000000c1")
	receiver     = domain.Address("0x00000000000000000000000000000000000000c2")
	house        = domain.Address("0x00000000000000000000000000000000000a0c71")
	wavax        = domain.Address("0x000000000000000000000000000000000000a0a1")
	usdc         = domain.Address("0x000000000000000000000000000000000000a0a2")
	joe          = domain.Address("0x000000000000000000000000000000000000a0a3")
	collection   = domain.Address("0x0000000000000000000000000000000000000721")

	tokenId = big.NewInt(1)
)

const (
	auctionDuration = 86400
	refreshTime     = 300
	bidIncrement    = 500
)

type auctionSuite struct {
	suite.Suite

	ctx        ctx.Ctx
	now        time.Time
	events     *eventRepository.MemoryPublisher
	currencies ledger.CurrencyLedger
	native     ledger.NativeLedger
	assets     ledger.AssetLedger
	admin      admin.UseCase
	house      auction.UseCase
}

func TestAuctionSuite(t *testing.T) {
	suite.Run(t, new(auctionSuite))
}

func (s *auctionSuite) SetupTest() {
	req := s.Require()
	s.ctx = ctx.Background()
	s.now = time.Unix(1700000000, 0)

	store := memory.New()
	s.events = eventRepository.NewMemoryPublisher(100)
	emitter := eventUsecase.NewEmitter(&eventUsecase.EmitterCfg{
		Store:      store,
		Publishers: []event.Publisher{s.events},
		Metrics:    metrics.New("test"),
	})
	s.admin = adminUsecase.New(&adminUsecase.UseCaseCfg{
		Store:   store,
		Repo:    adminRepository.New(store),
		Emitter: emitter,
	})
	for _, c := range admin.Contracts {
		req.NoError(s.admin.Init(s.ctx, c, owner))
	}

	s.currencies = ledgerService.NewCurrencyLedger(store)
	s.native = ledgerService.NewNativeLedger(store, s.currencies, wavax)
	s.assets = ledgerService.NewAssetLedger(store)
	req.NoError(s.assets.RegisterCollection(s.ctx, ledger.Collection{
		Address:  collection,
		Standard: domain.TokenType721,
		Owner:    owner,
		ERC2981:  &ledger.RoyaltyInfo{Receiver: receiver, Fee: 250},
	}))

	currencies := currencyUsecase.NewRegistry(&currencyUsecase.RegistryCfg{
		Store:   store,
		Repo:    currencyRepository.New(store),
		Admin:   s.admin,
		Emitter: emitter,
	})
	req.NoError(currencies.Add(s.ctx, owner, wavax))
	req.NoError(currencies.Add(s.ctx, owner, usdc))

	protocol := feeUsecase.NewProtocolFeeManager(&feeUsecase.ProtocolFeeManagerCfg{
		Store:              store,
		Repo:               feeRepository.NewProtocolFeeRepo(store),
		Admin:              s.admin,
		Emitter:            emitter,
		DefaultProtocolFee: 100,
	})
	royalty := feeUsecase.NewRoyaltyFeeManager(&feeUsecase.RoyaltyFeeManagerCfg{
		Store:                   store,
		Repo:                    feeRepository.NewRoyaltyRepo(store),
		Admin:                   s.admin,
		Emitter:                 emitter,
		ERC2981:                 feeRepository.NewLedgerERC2981(s.assets),
		Assets:                  s.assets,
		DefaultRoyaltyFeeLimit:  1000,
		DefaultMaxNumRecipients: 5,
	})

	s.house = NewAuctionUseCase(&AuctionUseCaseCfg{
		Address:    house,
		Store:      store,
		Repo:       repository.New(store),
		Admin:      s.admin,
		Emitter:    emitter,
		Currencies: currencies,
		Assets:     s.assets,
		Payout: feeUsecase.NewPayout(&feeUsecase.PayoutCfg{
			Protocol:   protocol,
			Royalty:    royalty,
			Currencies: s.currencies,
			Emitter:    emitter,
		}),
		Ledger:  s.currencies,
		Native:  s.native,
		Metrics: metrics.New("test"),
		Defaults: auction.Config{
			MinBidIncrementPct:   bidIncrement,
			RefreshTime:          refreshTime,
			ProtocolFeeRecipient: feeRecipient,
		},
		TimeNow: func() time.Time {
			return s.now
		},
	})

	// alice owns tokens 1..3 and approved the house, bob and carol hold wavax
	for i := int64(1); i <= 3; i++ {
		req.NoError(s.assets.Mint(s.ctx, collection, alice, big.NewInt(i), big.NewInt(1)))
	}
	req.NoError(s.assets.SetApprovalForAll(s.ctx, collection, alice, house, true))
	for _, addr := range []domain.Address{bob, carol} {
		req.NoError(s.currencies.Mint(s.ctx, wavax, addr, big.NewInt(100000)))
		req.NoError(s.currencies.Approve(s.ctx, wavax, addr, house, big.NewInt(100000)))
		req.NoError(s.native.Credit(s.ctx, addr, big.NewInt(100000)))
	}
}

func (s *auctionSuite) balance(addr domain.Address) int64 {
	b, err := s.currencies.BalanceOf(s.ctx, wavax, addr)
	s.Require().NoError(err)
	return b.Int64()
}

func (s *auctionSuite) ownerOf(id *big.Int) domain.Address {
	o, err := s.assets.OwnerOf(s.ctx, collection, id)
	s.Require().NoError(err)
	return o
}

func (s *auctionSuite) advance(seconds int64) {
	s.now = s.now.Add(time.Duration(seconds) * time.Second)
}

func (s *auctionSuite) startEnglish(startPrice int64) {
	s.Require().NoError(s.house.StartEnglishAuction(s.ctx, alice, auction.StartEnglishAuctionParams{
		Collection:         collection,
		TokenId:            tokenId,
		Currency:           wavax,
		StartPrice:         big.NewInt(startPrice),
		Duration:           auctionDuration,
		MinPercentageToAsk: 8500,
	}))
}

func (s *auctionSuite) startDutch() {
	s.Require().NoError(s.house.StartDutchAuction(s.ctx, alice, auction.StartDutchAuctionParams{
		Collection:         collection,
		TokenId:            tokenId,
		Currency:           wavax,
		Duration:           6000,
		DropInterval:       600,
		StartPrice:         big.NewInt(11000),
		EndPrice:           big.NewInt(1000),
		MinPercentageToAsk: 8500,
	}))
}

func (s *auctionSuite) bid(bidder domain.Address, amount int64) error {
	return s.house.PlaceEnglishAuctionBid(s.ctx, bidder, collection, tokenId, big.NewInt(amount))
}

func (s *auctionSuite) TestStartEnglishAuction() {
	req := s.Require()
	s.startEnglish(1000)

	req.Equal(house, s.ownerOf(tokenId))
	a, err := s.house.GetEnglishAuction(s.ctx, collection, tokenId)
	req.NoError(err)
	req.Equal(alice, a.Creator)
	req.Equal(s.now.Unix()+auctionDuration, a.EndTime)
	req.False(a.HasBid())
	req.Equal("0", a.Nonce.String())
	req.Contains(s.events.Names(), event.NameEnglishAuctionStart)

	err = s.house.StartDutchAuction(s.ctx, alice, auction.StartDutchAuctionParams{
		Collection:         collection,
		TokenId:            tokenId,
		Currency:           wavax,
		Duration:           6000,
		DropInterval:       600,
		StartPrice:         big.NewInt(11000),
		EndPrice:           big.NewInt(1000),
		MinPercentageToAsk: 8500,
	})
	req.ErrorIs(err, domain.ErrAuctionAlreadyExists)
}

func (s *auctionSuite) TestStartValidation() {
	base := auction.StartEnglishAuctionParams{
		Collection:         collection,
		TokenId:            tokenId,
		Currency:           wavax,
		StartPrice:         big.NewInt(1000),
		Duration:           auctionDuration,
		MinPercentageToAsk: 8500,
	}
	tests := []struct {
		desc   string
		caller domain.Address
		modify func(p *auction.StartEnglishAuctionParams)
		expErr error
	}{
		{
			desc:   "unsupported currency",
			caller: alice,
			modify: func(p *auction.StartEnglishAuctionParams) { p.Currency = joe },
			expErr: domain.ErrUnsupportedCurrency,
		},
		{
			desc:   "zero duration",
			caller: alice,
			modify: func(p *auction.StartEnglishAuctionParams) { p.Duration = 0 },
			expErr: domain.ErrInvalidDuration,
		},
		{
			desc:   "zero min percentage",
			caller: alice,
			modify: func(p *auction.StartEnglishAuctionParams) { p.MinPercentageToAsk = 0 },
			expErr: domain.ErrInvalidMinPercentageToAsk,
		},
		{
			desc:   "min percentage above 10000",
			caller: alice,
			modify: func(p *auction.StartEnglishAuctionParams) { p.MinPercentageToAsk = 10001 },
			expErr: domain.ErrInvalidMinPercentageToAsk,
		},
		{
			desc:   "zero start price",
			caller: alice,
			modify: func(p *auction.StartEnglishAuctionParams) { p.StartPrice = big.NewInt(0) },
			expErr: domain.ErrInvalidStartPrice,
		},
		{
			desc:   "token not owned",
			caller: bob,
			modify: func(p *auction.StartEnglishAuctionParams) {},
			expErr: domain.ErrTransfer,
		},
	}

	for _, t := range tests {
		p := base
		t.modify(&p)
		err := s.house.StartEnglishAuction(s.ctx, t.caller, p)
		s.Require().ErrorIs(err, t.expErr, t.desc)
	}
	s.Equal(alice, s.ownerOf(tokenId))
}

func (s *auctionSuite) TestStartDutchValidation() {
	req := s.Require()
	start := func(modify func(p *auction.StartDutchAuctionParams)) error {
		p := auction.StartDutchAuctionParams{
			Collection:         collection,
			TokenId:            tokenId,
			Currency:           wavax,
			Duration:           6000,
			DropInterval:       600,
			StartPrice:         big.NewInt(11000),
			EndPrice:           big.NewInt(1000),
			MinPercentageToAsk: 8500,
		}
		modify(&p)
		return s.house.StartDutchAuction(s.ctx, alice, p)
	}

	req.ErrorIs(start(func(p *auction.StartDutchAuctionParams) { p.DropInterval = 0 }), domain.ErrInvalidDropInterval)
	req.ErrorIs(start(func(p *auction.StartDutchAuctionParams) { p.DropInterval = 6001 }), domain.ErrInvalidDuration)
	req.ErrorIs(start(func(p *auction.StartDutchAuctionParams) { p.EndPrice = big.NewInt(0) }), domain.ErrDutchAuctionInvalidStartEnd)
	req.ErrorIs(start(func(p *auction.StartDutchAuctionParams) { p.EndPrice = big.NewInt(11000) }), domain.ErrDutchAuctionInvalidStartEnd)
	req.ErrorIs(start(func(p *auction.StartDutchAuctionParams) { p.Currency = joe }), domain.ErrValidation)
}

func (s *auctionSuite) TestPlaceEnglishAuctionBid() {
	req := s.Require()
	req.ErrorIs(s.bid(bob, 1000), domain.ErrNoAuctionExists)

	s.startEnglish(1000)
	req.ErrorIs(s.bid(bob, 0), domain.ErrInsufficientBidAmount)
	req.ErrorIs(s.bid(alice, 1000), domain.ErrCreatorCannotPlaceBid)
	req.ErrorIs(s.bid(bob, 999), domain.ErrInsufficientBidAmount)

	req.NoError(s.bid(bob, 1000))
	req.Equal(int64(99000), s.balance(bob))
	req.Equal(int64(1000), s.balance(house))

	// same bidder tops up by at least 5% of the standing bid
	req.ErrorIs(s.bid(bob, 49), domain.ErrInsufficientBidAmount)
	req.NoError(s.bid(bob, 50))
	a, err := s.house.GetEnglishAuction(s.ctx, collection, tokenId)
	req.NoError(err)
	req.Equal("1050", a.LastBidPrice.String())

	// a new bidder must beat the standing bid by 5% and refunds bob
	req.ErrorIs(s.bid(carol, 1101), domain.ErrInsufficientBidAmount)
	req.NoError(s.bid(carol, 1102))
	req.Equal(int64(100000), s.balance(bob))
	req.Equal(int64(100000-1102), s.balance(carol))
	req.Equal(int64(1102), s.balance(house))

	a, err = s.house.GetEnglishAuction(s.ctx, collection, tokenId)
	req.NoError(err)
	req.Equal(carol, a.LastBidder)
	req.Equal(s.now.Unix()+auctionDuration, a.EndTime)

	s.advance(auctionDuration)
	req.ErrorIs(s.bid(bob, 5000), domain.ErrCannotBidOnEndedAuction)
}

func (s *auctionSuite) TestBidRefreshesEndTime() {
	req := s.Require()
	s.startEnglish(1000)
	a, err := s.house.GetEnglishAuction(s.ctx, collection, tokenId)
	req.NoError(err)
	before := a.EndTime

	s.advance(auctionDuration - refreshTime)
	req.NoError(s.bid(bob, 1000))
	a, err = s.house.GetEnglishAuction(s.ctx, collection, tokenId)
	req.NoError(err)
	req.Equal(before+refreshTime, a.EndTime)
}

func (s *auctionSuite) TestBidWithNativeAndWrapped() {
	req := s.Require()
	err := s.house.PlaceEnglishAuctionBidWithNativeAndWrapped(s.ctx, bob, collection, tokenId, big.NewInt(500), big.NewInt(500))
	req.ErrorIs(err, domain.ErrCurrencyMismatch)

	s.startEnglish(1000)
	req.NoError(s.house.PlaceEnglishAuctionBidWithNativeAndWrapped(s.ctx, bob, collection, tokenId, big.NewInt(500), big.NewInt(500)))

	a, err := s.house.GetEnglishAuction(s.ctx, collection, tokenId)
	req.NoError(err)
	req.Equal(bob, a.LastBidder)
	req.Equal("1000", a.LastBidPrice.String())
	req.Equal(int64(99500), s.balance(bob))
	native, err := s.native.BalanceOf(s.ctx, bob)
	req.NoError(err)
	req.Equal("99500", native.String())
	req.Equal(int64(1000), s.balance(house))
}

func (s *auctionSuite) TestSettleEnglishAuction() {
	req := s.Require()
	s.startEnglish(1000)
	req.ErrorIs(s.house.SettleEnglishAuction(s.ctx, alice, collection, tokenId), domain.ErrCannotSettleWithoutBid)

	req.NoError(s.bid(bob, 10000))
	req.ErrorIs(s.house.SettleEnglishAuction(s.ctx, bob, collection, tokenId), domain.ErrOnlyCreatorCanSettleBeforeEndTime)

	s.advance(auctionDuration)
	req.NoError(s.house.SettleEnglishAuction(s.ctx, carol, collection, tokenId))

	req.Equal(bob, s.ownerOf(tokenId))
	req.Equal(int64(100), s.balance(feeRecipient))
	req.Equal(int64(250), s.balance(receiver))
	req.Equal(int64(9650), s.balance(alice))
	req.Equal(int64(0), s.balance(house))

	_, err := s.house.GetEnglishAuction(s.ctx, collection, tokenId)
	req.ErrorIs(err, domain.ErrNotFound)

	err = s.house.SettleEnglishAuction(s.ctx, alice, collection, tokenId)
	req.ErrorIs(err, domain.ErrState)
	req.ErrorIs(err, domain.ErrNoAuctionExists)
}

func (s *auctionSuite) TestCreatorSettlesEarly() {
	req := s.Require()
	s.startEnglish(1000)
	req.NoError(s.bid(bob, 1000))
	req.NoError(s.house.SettleEnglishAuction(s.ctx, alice, collection, tokenId))
	req.Equal(bob, s.ownerOf(tokenId))
	req.Equal(int64(965), s.balance(alice))
}

func (s *auctionSuite) TestCancelEnglishAuction() {
	req := s.Require()
	req.ErrorIs(s.house.CancelEnglishAuction(s.ctx, alice, collection, tokenId), domain.ErrOnlyAuctionCreatorCanCancel)

	s.startEnglish(1000)
	req.ErrorIs(s.house.CancelEnglishAuction(s.ctx, bob, collection, tokenId), domain.ErrOnlyAuctionCreatorCanCancel)
	req.NoError(s.house.CancelEnglishAuction(s.ctx, alice, collection, tokenId))
	req.Equal(alice, s.ownerOf(tokenId))

	s.startEnglish(1000)
	req.NoError(s.bid(bob, 1000))
	req.ErrorIs(s.house.CancelEnglishAuction(s.ctx, alice, collection, tokenId), domain.ErrCannotCancelWithExistingBid)
}

func (s *auctionSuite) TestEmergencyCancelEnglishAuction() {
	req := s.Require()
	req.ErrorIs(s.house.EmergencyCancelEnglishAuction(s.ctx, owner, collection, tokenId), domain.ErrNoAuctionExists)

	s.startEnglish(1000)
	req.NoError(s.bid(bob, 1000))
	req.NoError(s.admin.Pause(s.ctx, admin.ContractAuctionHouse, owner))
	req.ErrorIs(s.bid(carol, 2000), domain.ErrPaused)

	req.ErrorIs(s.house.EmergencyCancelEnglishAuction(s.ctx, alice, collection, tokenId), domain.ErrNotOwner)
	req.NoError(s.house.EmergencyCancelEnglishAuction(s.ctx, owner, collection, tokenId))
	req.Equal(alice, s.ownerOf(tokenId))
	req.Equal(int64(100000), s.balance(bob))
	req.Equal(int64(0), s.balance(house))
}

func (s *auctionSuite) TestDutchAuctionSalePrice() {
	req := s.Require()
	price, err := s.house.GetDutchAuctionSalePrice(s.ctx, collection, tokenId)
	req.NoError(err)
	req.Equal("0", price.String())

	s.startDutch()
	tests := []struct {
		elapsed  int64
		expPrice string
	}{
		{0, "11000"},
		{599, "11000"},
		{600, "10000"},
		{3000, "6000"},
		{5999, "2000"},
		{6000, "1000"},
		{60000, "1000"},
	}
	start := s.now
	for _, t := range tests {
		s.now = start.Add(time.Duration(t.elapsed) * time.Second)
		price, err := s.house.GetDutchAuctionSalePrice(s.ctx, collection, tokenId)
		req.NoError(err)
		req.Equal(t.expPrice, price.String(), "elapsed %d", t.elapsed)
	}
}

func (s *auctionSuite) TestSettleDutchAuction() {
	req := s.Require()
	req.ErrorIs(s.house.SettleDutchAuction(s.ctx, bob, collection, tokenId), domain.ErrNoAuctionExists)

	s.startDutch()
	req.ErrorIs(s.house.SettleDutchAuction(s.ctx, alice, collection, tokenId), domain.ErrDutchAuctionCreatorCannotSettle)

	s.advance(600)
	req.NoError(s.house.SettleDutchAuction(s.ctx, bob, collection, tokenId))
	req.Equal(bob, s.ownerOf(tokenId))
	req.Equal(int64(90000), s.balance(bob))
	req.Equal(int64(100), s.balance(feeRecipient))
	req.Equal(int64(250), s.balance(receiver))
	req.Equal(int64(9650), s.balance(alice))

	_, err := s.house.GetDutchAuction(s.ctx, collection, tokenId)
	req.ErrorIs(err, domain.ErrNotFound)
	req.ErrorIs(s.house.SettleDutchAuction(s.ctx, bob, collection, tokenId), domain.ErrState)
}

func (s *auctionSuite) TestSettleDutchAuctionInsufficientFunds() {
	req := s.Require()
	s.startDutch()
	req.NoError(s.currencies.Approve(s.ctx, wavax, bob, house, big.NewInt(100)))
	err := s.house.SettleDutchAuction(s.ctx, bob, collection, tokenId)
	req.ErrorIs(err, domain.ErrFunds)
	req.Equal(house, s.ownerOf(tokenId))
	req.Equal(int64(100000), s.balance(bob))
}

func (s *auctionSuite) TestSettleDutchAuctionWithNativeRefund() {
	req := s.Require()
	s.startDutch()
	err := s.house.SettleDutchAuctionWithNativeAndWrapped(s.ctx, bob, collection, tokenId, big.NewInt(14000))
	req.NoError(err)

	req.Equal(bob, s.ownerOf(tokenId))
	native, err := s.native.BalanceOf(s.ctx, bob)
	req.NoError(err)
	req.Equal("86000", native.String())
	// the excess 3000 comes back as wrapped native
	req.Equal(int64(103000), s.balance(bob))
	req.Equal(int64(0), s.balance(house))
	req.Equal(int64(11000-110-275), s.balance(alice))
}

func (s *auctionSuite) TestSettleDutchAuctionWithNativeAndWrapped() {
	req := s.Require()
	s.startDutch()
	err := s.house.SettleDutchAuctionWithNativeAndWrapped(s.ctx, bob, collection, tokenId, big.NewInt(5500))
	req.NoError(err)

	native, err := s.native.BalanceOf(s.ctx, bob)
	req.NoError(err)
	req.Equal("94500", native.String())
	req.Equal(int64(94500), s.balance(bob))
	req.Equal(int64(0), s.balance(house))
}

func (s *auctionSuite) TestCancelDutchAuction() {
	req := s.Require()
	req.ErrorIs(s.house.CancelDutchAuction(s.ctx, alice, collection, tokenId), domain.ErrOnlyAuctionCreatorCanCancel)
	s.startDutch()
	req.ErrorIs(s.house.CancelDutchAuction(s.ctx, bob, collection, tokenId), domain.ErrOnlyAuctionCreatorCanCancel)

	req.NoError(s.admin.Pause(s.ctx, admin.ContractAuctionHouse, owner))
	req.ErrorIs(s.house.CancelDutchAuction(s.ctx, alice, collection, tokenId), domain.ErrPaused)
	req.ErrorIs(s.house.EmergencyCancelDutchAuction(s.ctx, bob, collection, tokenId), domain.ErrNotOwner)
	req.NoError(s.house.EmergencyCancelDutchAuction(s.ctx, owner, collection, tokenId))
	req.Equal(alice, s.ownerOf(tokenId))
	req.ErrorIs(s.house.EmergencyCancelDutchAuction(s.ctx, owner, collection, tokenId), domain.ErrNoAuctionExists)

	req.NoError(s.admin.Unpause(s.ctx, admin.ContractAuctionHouse, owner))
	s.startDutch()
	req.NoError(s.house.CancelDutchAuction(s.ctx, alice, collection, tokenId))
	req.Equal(alice, s.ownerOf(tokenId))
	req.Contains(s.events.Names(), event.NameDutchAuctionCancel)
}

func (s *auctionSuite) TestListAuctions() {
	req := s.Require()
	s.startEnglish(1000)
	req.NoError(s.house.StartDutchAuction(s.ctx, alice, auction.StartDutchAuctionParams{
		Collection:         collection,
		TokenId:            big.NewInt(2),
		Currency:           wavax,
		Duration:           6000,
		DropInterval:       600,
		StartPrice:         big.NewInt(11000),
		EndPrice:           big.NewInt(1000),
		MinPercentageToAsk: 8500,
	}))

	english, err := s.house.ListEnglishAuctions(s.ctx)
	req.NoError(err)
	req.Len(english, 1)
	dutch, err := s.house.ListDutchAuctions(s.ctx)
	req.NoError(err)
	req.Len(dutch, 1)
	req.Equal("1", dutch[0].Nonce.String())
}

func (s *auctionSuite) TestConfig() {
	req := s.Require()
	cfg, err := s.house.Config(s.ctx)
	req.NoError(err)
	req.Equal(uint64(bidIncrement), cfg.MinBidIncrementPct)

	req.ErrorIs(s.house.UpdateMinBidIncrementPct(s.ctx, alice, 1000), domain.ErrNotOwner)
	req.ErrorIs(s.house.UpdateMinBidIncrementPct(s.ctx, owner, 0), domain.ErrInvalidMinBidIncrementPct)
	req.ErrorIs(s.house.UpdateMinBidIncrementPct(s.ctx, owner, 10001), domain.ErrInvalidMinBidIncrementPct)
	req.NoError(s.house.UpdateMinBidIncrementPct(s.ctx, owner, 1000))

	req.ErrorIs(s.house.UpdateRefreshTime(s.ctx, owner, 0), domain.ErrInvalidRefreshTime)
	req.NoError(s.house.UpdateRefreshTime(s.ctx, owner, 600))

	req.ErrorIs(s.house.UpdateProtocolFeeRecipient(s.ctx, owner, domain.EmptyAddress), domain.ErrExpectedNonNullAddress)
	req.ErrorIs(s.house.UpdateProtocolFeeRecipient(s.ctx, bob, carol), domain.ErrNotOwner)
	req.NoError(s.house.UpdateProtocolFeeRecipient(s.ctx, owner, carol))
	req.ErrorIs(s.house.UpdateCurrencyManager(s.ctx, owner, domain.EmptyAddress), domain.ErrExpectedNonNullAddress)
	req.NoError(s.house.UpdateCurrencyManager(s.ctx, owner, carol))
	req.NoError(s.house.UpdateProtocolFeeManager(s.ctx, owner, carol))
	req.NoError(s.house.UpdateRoyaltyFeeManager(s.ctx, owner, carol))

	cfg, err = s.house.Config(s.ctx)
	req.NoError(err)
	req.Equal(uint64(1000), cfg.MinBidIncrementPct)
	req.Equal(int64(600), cfg.RefreshTime)
	req.Equal(carol, cfg.ProtocolFeeRecipient)
	req.Equal(carol, cfg.RoyaltyFeeManager)
}
