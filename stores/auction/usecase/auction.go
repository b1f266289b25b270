package usecase

import (
	"math/big"
	"time"

	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/auction"
	"github.com/x-xyz/settlement/domain/currency"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/service/kv"
)

type AuctionUseCaseCfg struct {
	// Address is the auction house identity, it holds auctioned assets and
	// standing English bids in custody
	Address domain.Address

	Store      kv.Store
	Repo       auction.Repo
	Admin      admin.UseCase
	Emitter    event.Emitter
	Currencies currency.Registry
	Assets     ledger.AssetLedger
	Payout     fee.Payout
	Ledger     ledger.CurrencyLedger
	Native     ledger.NativeLedger
	Metrics    metrics.Service

	Defaults auction.Config
	TimeNow  func() time.Time
}

type auctionUCImpl struct {
	address    domain.Address
	store      kv.Store
	repo       auction.Repo
	admin      admin.UseCase
	emitter    event.Emitter
	currencies currency.Registry
	assets     ledger.AssetLedger
	payout     fee.Payout
	ledger     ledger.CurrencyLedger
	native     ledger.NativeLedger
	metrics    metrics.Service
	defaults   auction.Config
	now        func() time.Time
}

func NewAuctionUseCase(cfg *AuctionUseCaseCfg) auction.UseCase {
	now := cfg.TimeNow
	if now == nil {
		now = time.Now
	}
	return &auctionUCImpl{
		address:    cfg.Address.ToLower(),
		store:      cfg.Store,
		repo:       cfg.Repo,
		admin:      cfg.Admin,
		emitter:    cfg.Emitter,
		currencies: cfg.Currencies,
		assets:     cfg.Assets,
		payout:     cfg.Payout,
		ledger:     cfg.Ledger,
		native:     cfg.Native,
		metrics:    cfg.Metrics,
		defaults:   cfg.Defaults,
		now:        now,
	}
}

func (im *auctionUCImpl) emit(ctx bCtx.Ctx, name event.Name, fields event.Fields) {
	im.emitter.Emit(ctx, string(admin.ContractAuctionHouse), name, fields)
}

// whenNotPaused runs fn in a transaction that fails while the house is paused
func (im *auctionUCImpl) whenNotPaused(ctx bCtx.Ctx, fn func(bCtx.Ctx) error) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.WhenNotPaused(ctx, admin.ContractAuctionHouse); err != nil {
			return err
		}
		return fn(ctx)
	})
}

// validateStart covers the checks English and Dutch auctions share
func (im *auctionUCImpl) validateStart(ctx bCtx.Ctx, caller, collection, currency domain.Address, tokenId *big.Int, duration int64, minPct uint64, startPrice *big.Int) error {
	if caller.IsNull() {
		return domain.ErrUnauthorized
	}
	if ok, err := im.currencies.IsAllowed(ctx, currency); err != nil {
		return err
	} else if !ok {
		return domain.ErrUnsupportedCurrency
	}
	if duration <= 0 {
		return domain.ErrInvalidDuration
	}
	if minPct == 0 || minPct > domain.PercentageDenominator {
		return domain.ErrInvalidMinPercentageToAsk
	}
	if startPrice == nil || startPrice.Sign() <= 0 {
		return domain.ErrInvalidStartPrice
	}
	if tokenId == nil || tokenId.Sign() < 0 {
		return domain.ErrBadParamInput
	}
	return nil
}

// ensureVacant fails when either auction kind already holds the slot
func (im *auctionUCImpl) ensureVacant(ctx bCtx.Ctx, collection domain.Address, tokenId *big.Int) error {
	if _, err := im.repo.FindEnglishAuction(ctx, collection, tokenId); err == nil {
		return domain.ErrAuctionAlreadyExists
	} else if err != domain.ErrNotFound {
		return err
	}
	if _, err := im.repo.FindDutchAuction(ctx, collection, tokenId); err == nil {
		return domain.ErrAuctionAlreadyExists
	} else if err != domain.ErrNotFound {
		return err
	}
	return nil
}

// moveAsset transfers one ERC-721 token with the house as operator, the
// creator must have approved the house before starting an auction
func (im *auctionUCImpl) moveAsset(ctx bCtx.Ctx, collection, from, to domain.Address, tokenId *big.Int) error {
	col, err := im.assets.GetCollection(ctx, collection)
	if err != nil {
		return err
	}
	if col.Standard != domain.TokenType721 {
		return domain.ErrUnsupportedCollectionStandard
	}
	if err := im.assets.TransferFrom(ctx, collection, im.address, from, to, tokenId, big.NewInt(1)); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"from":       from,
			"to":         to,
			"tokenId":    domain.BigString(tokenId),
		}).Info("assets.TransferFrom failed")
		return err
	}
	return nil
}

// collect moves amount of currency from payer into custody. value is native
// that gets wrapped first; it is only accepted for the wrapped native currency.
func (im *auctionUCImpl) collect(ctx bCtx.Ctx, currency, payer domain.Address, amount, value *big.Int) error {
	if value != nil && value.Sign() > 0 {
		if err := im.native.Wrap(ctx, payer, im.address, value); err != nil {
			ctx.WithFields(log.Fields{
				"err":    err,
				"payer":  payer,
				"amount": value.String(),
			}).Info("native.Wrap failed")
			return err
		}
	}
	if amount != nil && amount.Sign() > 0 {
		if err := im.ledger.TransferFrom(ctx, currency, im.address, payer, im.address, amount); err != nil {
			ctx.WithFields(log.Fields{
				"err":    err,
				"payer":  payer,
				"amount": amount.String(),
			}).Info("ledger.TransferFrom failed")
			return err
		}
	}
	return nil
}

// refund returns custody funds
func (im *auctionUCImpl) refund(ctx bCtx.Ctx, currency, to domain.Address, amount *big.Int) error {
	if to.IsNull() || amount == nil || amount.Sign() <= 0 {
		return nil
	}
	if err := im.ledger.Transfer(ctx, currency, im.address, to, amount); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"to":     to,
			"amount": amount.String(),
		}).Error("ledger.Transfer failed")
		return err
	}
	return nil
}

func (im *auctionUCImpl) custody(currency domain.Address) fee.Source {
	return fee.Source{
		Currency: currency,
		Payer:    im.address,
		Spender:  im.address,
	}
}

func (im *auctionUCImpl) Config(ctx bCtx.Ctx) (*auction.Config, error) {
	cfg, err := im.repo.FindConfig(ctx)
	if err == domain.ErrNotFound {
		d := im.defaults
		return &d, nil
	} else if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (im *auctionUCImpl) updateConfig(ctx bCtx.Ctx, caller domain.Address, field string, value interface{}, check func() error, apply func(cfg *auction.Config)) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractAuctionHouse, caller); err != nil {
			return err
		}
		if err := check(); err != nil {
			return err
		}
		cfg, err := im.Config(ctx)
		if err != nil {
			return err
		}
		apply(cfg)
		if err := im.repo.UpsertConfig(ctx, cfg); err != nil {
			return err
		}
		im.emit(ctx, event.NameConfigUpdated, event.Fields{
			"field": field,
			"value": value,
		})
		return nil
	})
}

func nonNull(addr domain.Address) func() error {
	return func() error {
		if addr.IsNull() {
			return domain.ErrExpectedNonNullAddress
		}
		return nil
	}
}

func (im *auctionUCImpl) UpdateMinBidIncrementPct(ctx bCtx.Ctx, caller domain.Address, pct uint64) error {
	check := func() error {
		if pct == 0 || pct > domain.PercentageDenominator {
			return domain.ErrInvalidMinBidIncrementPct
		}
		return nil
	}
	return im.updateConfig(ctx, caller, "minBidIncrementPct", pct, check, func(cfg *auction.Config) {
		cfg.MinBidIncrementPct = pct
	})
}

func (im *auctionUCImpl) UpdateRefreshTime(ctx bCtx.Ctx, caller domain.Address, refreshTime int64) error {
	check := func() error {
		if refreshTime <= 0 {
			return domain.ErrInvalidRefreshTime
		}
		return nil
	}
	return im.updateConfig(ctx, caller, "refreshTime", refreshTime, check, func(cfg *auction.Config) {
		cfg.RefreshTime = refreshTime
	})
}

func (im *auctionUCImpl) UpdateCurrencyManager(ctx bCtx.Ctx, caller, manager domain.Address) error {
	return im.updateConfig(ctx, caller, "currencyManager", manager.ToLower(), nonNull(manager), func(cfg *auction.Config) {
		cfg.CurrencyManager = manager.ToLower()
	})
}

func (im *auctionUCImpl) UpdateProtocolFeeManager(ctx bCtx.Ctx, caller, manager domain.Address) error {
	return im.updateConfig(ctx, caller, "protocolFeeManager", manager.ToLower(), nonNull(manager), func(cfg *auction.Config) {
		cfg.ProtocolFeeManager = manager.ToLower()
	})
}

func (im *auctionUCImpl) UpdateRoyaltyFeeManager(ctx bCtx.Ctx, caller, manager domain.Address) error {
	return im.updateConfig(ctx, caller, "royaltyFeeManager", manager.ToLower(), nonNull(manager), func(cfg *auction.Config) {
		cfg.RoyaltyFeeManager = manager.ToLower()
	})
}

func (im *auctionUCImpl) UpdateProtocolFeeRecipient(ctx bCtx.Ctx, caller, recipient domain.Address) error {
	return im.updateConfig(ctx, caller, "protocolFeeRecipient", recipient.ToLower(), nonNull(recipient), func(cfg *auction.Config) {
		cfg.ProtocolFeeRecipient = recipient.ToLower()
	})
}
