package usecase

import (
	"math/big"

	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/auction"
	"github.com/x-xyz/settlement/domain/event"
)

func (im *auctionUCImpl) StartEnglishAuction(ctx bCtx.Ctx, caller domain.Address, p auction.StartEnglishAuctionParams) error {
	return im.whenNotPaused(ctx, func(ctx bCtx.Ctx) error {
		if err := im.validateStart(ctx, caller, p.Collection, p.Currency, p.TokenId, p.Duration, p.MinPercentageToAsk, p.StartPrice); err != nil {
			return err
		}
		if err := im.ensureVacant(ctx, p.Collection, p.TokenId); err != nil {
			return err
		}
		if err := im.moveAsset(ctx, p.Collection, caller, im.address, p.TokenId); err != nil {
			return err
		}
		nonce, err := im.repo.NextNonce(ctx, caller)
		if err != nil {
			return err
		}
		a := &auction.EnglishAuction{
			Collection:         p.Collection.ToLower(),
			TokenId:            new(big.Int).Set(p.TokenId),
			Creator:            caller.ToLower(),
			Nonce:              nonce,
			Currency:           p.Currency.ToLower(),
			LastBidPrice:       new(big.Int),
			StartPrice:         new(big.Int).Set(p.StartPrice),
			EndTime:            im.now().Unix() + p.Duration,
			MinPercentageToAsk: p.MinPercentageToAsk,
		}
		if err := im.repo.UpsertEnglishAuction(ctx, a); err != nil {
			return err
		}
		im.emit(ctx, event.NameEnglishAuctionStart, event.Fields{
			"auctionNonce":       domain.BigString(a.Nonce),
			"creator":            a.Creator,
			"currency":           a.Currency,
			"collection":         a.Collection,
			"tokenId":            domain.BigString(a.TokenId),
			"startPrice":         event.Amount(a.StartPrice),
			"endTime":            a.EndTime,
			"minPercentageToAsk": a.MinPercentageToAsk,
		})
		im.metrics.BumpSum("auction.start", 1, "kind:english")
		return nil
	})
}

// findEnglish returns an empty auction for a vacant slot, callers check
// the creator to tell the two apart
func (im *auctionUCImpl) findEnglish(ctx bCtx.Ctx, collection domain.Address, tokenId *big.Int) (*auction.EnglishAuction, error) {
	a, err := im.repo.FindEnglishAuction(ctx, collection, tokenId)
	if err == domain.ErrNotFound {
		return &auction.EnglishAuction{LastBidPrice: new(big.Int)}, nil
	} else if err != nil {
		return nil, err
	}
	return a, nil
}

func (im *auctionUCImpl) PlaceEnglishAuctionBid(ctx bCtx.Ctx, caller, collection domain.Address, tokenId, amount *big.Int) error {
	return im.whenNotPaused(ctx, func(ctx bCtx.Ctx) error {
		a, err := im.findEnglish(ctx, collection, tokenId)
		if err != nil {
			return err
		}
		return im.placeBid(ctx, caller, a, amount, nil)
	})
}

func (im *auctionUCImpl) PlaceEnglishAuctionBidWithNativeAndWrapped(ctx bCtx.Ctx, caller, collection domain.Address, tokenId, wrappedAmount, value *big.Int) error {
	if wrappedAmount == nil {
		wrappedAmount = new(big.Int)
	}
	if value == nil {
		value = new(big.Int)
	}
	if wrappedAmount.Sign() < 0 || value.Sign() < 0 {
		return domain.ErrBadParamInput
	}
	return im.whenNotPaused(ctx, func(ctx bCtx.Ctx) error {
		a, err := im.findEnglish(ctx, collection, tokenId)
		if err != nil {
			return err
		}
		if !a.Currency.Equals(im.native.WrappedNative()) {
			return domain.ErrCurrencyMismatch
		}
		return im.placeBid(ctx, caller, a, wrappedAmount, value)
	})
}

// placeBid escrows amount+value into custody. A bidder raising its own bid
// only tops up; outbidding someone else refunds them in full.
func (im *auctionUCImpl) placeBid(ctx bCtx.Ctx, caller domain.Address, a *auction.EnglishAuction, amount, value *big.Int) error {
	if caller.IsNull() {
		return domain.ErrUnauthorized
	}
	if a.Creator.IsNull() {
		return domain.ErrNoAuctionExists
	}
	bid := new(big.Int)
	if amount != nil {
		bid.Add(bid, amount)
	}
	if value != nil {
		bid.Add(bid, value)
	}
	if bid.Sign() <= 0 {
		return domain.ErrInsufficientBidAmount
	}
	if caller.Equals(a.Creator) {
		return domain.ErrCreatorCannotPlaceBid
	}
	now := im.now().Unix()
	if now >= a.EndTime {
		return domain.ErrCannotBidOnEndedAuction
	}

	cfg, err := im.Config(ctx)
	if err != nil {
		return err
	}
	pct := new(big.Int).SetUint64(cfg.MinBidIncrementPct)
	denominator := big.NewInt(domain.PercentageDenominator)
	previous := a.LastBidder
	refund := new(big.Int)
	switch {
	case !a.HasBid():
		if bid.Cmp(a.StartPrice) < 0 {
			return domain.ErrInsufficientBidAmount
		}
		a.LastBidPrice = bid
	case caller.Equals(a.LastBidder):
		increment := new(big.Int).Mul(a.LastBidPrice, pct)
		increment.Div(increment, denominator)
		if bid.Cmp(increment) < 0 {
			return domain.ErrInsufficientBidAmount
		}
		a.LastBidPrice = new(big.Int).Add(a.LastBidPrice, bid)
	default:
		required := new(big.Int).Add(denominator, pct)
		required.Mul(required, a.LastBidPrice)
		required.Div(required, denominator)
		if bid.Cmp(required) < 0 {
			return domain.ErrInsufficientBidAmount
		}
		refund.Set(a.LastBidPrice)
		a.LastBidPrice = bid
	}
	a.LastBidder = caller.ToLower()
	if a.EndTime-now <= cfg.RefreshTime {
		a.EndTime += cfg.RefreshTime
	}

	if err := im.repo.UpsertEnglishAuction(ctx, a); err != nil {
		return err
	}
	if err := im.collect(ctx, a.Currency, caller, amount, value); err != nil {
		return err
	}
	if err := im.refund(ctx, a.Currency, previous, refund); err != nil {
		return err
	}

	im.emit(ctx, event.NameEnglishAuctionPlaceBid, event.Fields{
		"auctionNonce": domain.BigString(a.Nonce),
		"bidder":       a.LastBidder,
		"creator":      a.Creator,
		"currency":     a.Currency,
		"collection":   a.Collection,
		"tokenId":      domain.BigString(a.TokenId),
		"bidAmount":    event.Amount(bid),
		"lastBidPrice": event.Amount(a.LastBidPrice),
		"endTime":      a.EndTime,
	})
	im.metrics.BumpSum("auction.bid", 1, "kind:english")
	return nil
}

func (im *auctionUCImpl) SettleEnglishAuction(ctx bCtx.Ctx, caller, collection domain.Address, tokenId *big.Int) error {
	return im.whenNotPaused(ctx, func(ctx bCtx.Ctx) error {
		a, err := im.findEnglish(ctx, collection, tokenId)
		if err != nil {
			return err
		}
		if a.Creator.IsNull() {
			return domain.ErrNoAuctionExists
		}
		if !a.HasBid() {
			return domain.ErrCannotSettleWithoutBid
		}
		if !caller.Equals(a.Creator) && im.now().Unix() < a.EndTime {
			return domain.ErrOnlyCreatorCanSettleBeforeEndTime
		}

		cfg, err := im.Config(ctx)
		if err != nil {
			return err
		}
		split, err := im.payout.Split(ctx, a.Collection, a.TokenId, a.LastBidPrice, a.MinPercentageToAsk, cfg.ProtocolFeeRecipient)
		if err != nil {
			return err
		}
		if err := im.repo.RemoveEnglishAuction(ctx, a.Collection, a.TokenId); err != nil {
			return err
		}
		if err := im.moveAsset(ctx, a.Collection, im.address, a.LastBidder, a.TokenId); err != nil {
			return err
		}
		if err := im.payout.Pay(ctx, string(admin.ContractAuctionHouse), im.custody(a.Currency), split, a.Collection, a.TokenId, a.Creator); err != nil {
			return err
		}

		im.emit(ctx, event.NameEnglishAuctionSettle, event.Fields{
			"auctionNonce": domain.BigString(a.Nonce),
			"creator":      a.Creator,
			"winner":       a.LastBidder,
			"currency":     a.Currency,
			"collection":   a.Collection,
			"tokenId":      domain.BigString(a.TokenId),
			"price":        event.Amount(split.Price),
			"protocolFee":  event.Amount(split.ProtocolFee),
			"remainder":    event.Amount(split.Remainder),
		})
		im.metrics.BumpSum("auction.settle", 1, "kind:english")
		return nil
	})
}

func (im *auctionUCImpl) CancelEnglishAuction(ctx bCtx.Ctx, caller, collection domain.Address, tokenId *big.Int) error {
	return im.whenNotPaused(ctx, func(ctx bCtx.Ctx) error {
		a, err := im.findEnglish(ctx, collection, tokenId)
		if err != nil {
			return err
		}
		if a.Creator.IsNull() || !caller.Equals(a.Creator) {
			return domain.ErrOnlyAuctionCreatorCanCancel
		}
		if a.HasBid() {
			return domain.ErrCannotCancelWithExistingBid
		}
		return im.cancelEnglish(ctx, a)
	})
}

// EmergencyCancelEnglishAuction is the owner's escape hatch, it also runs
// while the house is paused
func (im *auctionUCImpl) EmergencyCancelEnglishAuction(ctx bCtx.Ctx, caller, collection domain.Address, tokenId *big.Int) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractAuctionHouse, caller); err != nil {
			return err
		}
		a, err := im.findEnglish(ctx, collection, tokenId)
		if err != nil {
			return err
		}
		if a.Creator.IsNull() {
			return domain.ErrNoAuctionExists
		}
		if err := im.refund(ctx, a.Currency, a.LastBidder, a.LastBidPrice); err != nil {
			return err
		}
		ctx.WithFields(log.Fields{
			"collection": a.Collection,
			"tokenId":    domain.BigString(a.TokenId),
			"bidder":     a.LastBidder,
		}).Warn("english auction emergency cancelled")
		return im.cancelEnglish(ctx, a)
	})
}

func (im *auctionUCImpl) cancelEnglish(ctx bCtx.Ctx, a *auction.EnglishAuction) error {
	if err := im.repo.RemoveEnglishAuction(ctx, a.Collection, a.TokenId); err != nil {
		return err
	}
	if err := im.moveAsset(ctx, a.Collection, im.address, a.Creator, a.TokenId); err != nil {
		return err
	}
	im.emit(ctx, event.NameEnglishAuctionCancel, event.Fields{
		"auctionNonce": domain.BigString(a.Nonce),
		"creator":      a.Creator,
		"collection":   a.Collection,
		"tokenId":      domain.BigString(a.TokenId),
	})
	im.metrics.BumpSum("auction.cancel", 1, "kind:english")
	return nil
}

func (im *auctionUCImpl) GetEnglishAuction(ctx bCtx.Ctx, collection domain.Address, tokenId *big.Int) (*auction.EnglishAuction, error) {
	return im.repo.FindEnglishAuction(ctx, collection, tokenId)
}

func (im *auctionUCImpl) ListEnglishAuctions(ctx bCtx.Ctx) ([]*auction.EnglishAuction, error) {
	return im.repo.ListEnglishAuctions(ctx)
}
