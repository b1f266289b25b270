package usecase

import (
	"math/big"

	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/auction"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/fee"
)

func (im *auctionUCImpl) StartDutchAuction(ctx bCtx.Ctx, caller domain.Address, p auction.StartDutchAuctionParams) error {
	return im.whenNotPaused(ctx, func(ctx bCtx.Ctx) error {
		if err := im.validateStart(ctx, caller, p.Collection, p.Currency, p.TokenId, p.Duration, p.MinPercentageToAsk, p.StartPrice); err != nil {
			return err
		}
		if p.DropInterval <= 0 {
			return domain.ErrInvalidDropInterval
		}
		if p.Duration < p.DropInterval {
			return domain.ErrInvalidDuration
		}
		if p.EndPrice == nil || p.EndPrice.Sign() <= 0 || p.StartPrice.Cmp(p.EndPrice) <= 0 {
			return domain.ErrDutchAuctionInvalidStartEnd
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
		now := im.now().Unix()
		a := &auction.DutchAuction{
			Collection:         p.Collection.ToLower(),
			TokenId:            new(big.Int).Set(p.TokenId),
			Creator:            caller.ToLower(),
			Nonce:              nonce,
			Currency:           p.Currency.ToLower(),
			StartPrice:         new(big.Int).Set(p.StartPrice),
			EndPrice:           new(big.Int).Set(p.EndPrice),
			StartTime:          now,
			EndTime:            now + p.Duration,
			DropInterval:       p.DropInterval,
			MinPercentageToAsk: p.MinPercentageToAsk,
		}
		if err := im.repo.UpsertDutchAuction(ctx, a); err != nil {
			return err
		}
		im.emit(ctx, event.NameDutchAuctionStart, event.Fields{
			"auctionNonce":       domain.BigString(a.Nonce),
			"creator":            a.Creator,
			"currency":           a.Currency,
			"collection":         a.Collection,
			"tokenId":            domain.BigString(a.TokenId),
			"startPrice":         event.Amount(a.StartPrice),
			"endPrice":           event.Amount(a.EndPrice),
			"startTime":          a.StartTime,
			"endTime":            a.EndTime,
			"dropInterval":       a.DropInterval,
			"minPercentageToAsk": a.MinPercentageToAsk,
		})
		im.metrics.BumpSum("auction.start", 1, "kind:dutch")
		return nil
	})
}

func (im *auctionUCImpl) findDutch(ctx bCtx.Ctx, collection domain.Address, tokenId *big.Int) (*auction.DutchAuction, error) {
	a, err := im.repo.FindDutchAuction(ctx, collection, tokenId)
	if err == domain.ErrNotFound {
		return &auction.DutchAuction{}, nil
	} else if err != nil {
		return nil, err
	}
	return a, nil
}

func (im *auctionUCImpl) SettleDutchAuction(ctx bCtx.Ctx, caller, collection domain.Address, tokenId *big.Int) error {
	return im.whenNotPaused(ctx, func(ctx bCtx.Ctx) error {
		a, err := im.findDutch(ctx, collection, tokenId)
		if err != nil {
			return err
		}
		return im.settleDutch(ctx, caller, a, nil)
	})
}

// SettleDutchAuctionWithNativeAndWrapped wraps value into custody, pulls any
// shortfall from the buyer's allowance and refunds the excess as wrapped native
func (im *auctionUCImpl) SettleDutchAuctionWithNativeAndWrapped(ctx bCtx.Ctx, caller, collection domain.Address, tokenId, value *big.Int) error {
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return domain.ErrBadParamInput
	}
	return im.whenNotPaused(ctx, func(ctx bCtx.Ctx) error {
		a, err := im.findDutch(ctx, collection, tokenId)
		if err != nil {
			return err
		}
		if !a.Currency.Equals(im.native.WrappedNative()) {
			return domain.ErrCurrencyMismatch
		}
		return im.settleDutch(ctx, caller, a, value)
	})
}

func (im *auctionUCImpl) settleDutch(ctx bCtx.Ctx, caller domain.Address, a *auction.DutchAuction, value *big.Int) error {
	if caller.IsNull() {
		return domain.ErrUnauthorized
	}
	if a.Creator.IsNull() {
		return domain.ErrNoAuctionExists
	}
	if caller.Equals(a.Creator) {
		return domain.ErrDutchAuctionCreatorCannotSettle
	}

	price := a.SalePrice(im.now().Unix())
	cfg, err := im.Config(ctx)
	if err != nil {
		return err
	}
	split, err := im.payout.Split(ctx, a.Collection, a.TokenId, price, a.MinPercentageToAsk, cfg.ProtocolFeeRecipient)
	if err != nil {
		return err
	}
	if err := im.repo.RemoveDutchAuction(ctx, a.Collection, a.TokenId); err != nil {
		return err
	}
	if err := im.moveAsset(ctx, a.Collection, im.address, caller, a.TokenId); err != nil {
		return err
	}

	src := fee.Source{
		Currency: a.Currency,
		Payer:    caller,
		Spender:  im.address,
	}
	if value != nil {
		shortfall := new(big.Int).Sub(price, value)
		if err := im.collect(ctx, a.Currency, caller, shortfall, value); err != nil {
			return err
		}
		src = im.custody(a.Currency)
	}
	if err := im.payout.Pay(ctx, string(admin.ContractAuctionHouse), src, split, a.Collection, a.TokenId, a.Creator); err != nil {
		return err
	}
	if value != nil && value.Cmp(price) > 0 {
		excess := new(big.Int).Sub(value, price)
		if err := im.refund(ctx, a.Currency, caller, excess); err != nil {
			return err
		}
	}

	im.emit(ctx, event.NameDutchAuctionSettle, event.Fields{
		"auctionNonce": domain.BigString(a.Nonce),
		"creator":      a.Creator,
		"buyer":        caller.ToLower(),
		"currency":     a.Currency,
		"collection":   a.Collection,
		"tokenId":      domain.BigString(a.TokenId),
		"price":        event.Amount(split.Price),
		"protocolFee":  event.Amount(split.ProtocolFee),
		"remainder":    event.Amount(split.Remainder),
	})
	im.metrics.BumpSum("auction.settle", 1, "kind:dutch")
	return nil
}

func (im *auctionUCImpl) CancelDutchAuction(ctx bCtx.Ctx, caller, collection domain.Address, tokenId *big.Int) error {
	return im.whenNotPaused(ctx, func(ctx bCtx.Ctx) error {
		a, err := im.findDutch(ctx, collection, tokenId)
		if err != nil {
			return err
		}
		if a.Creator.IsNull() || !caller.Equals(a.Creator) {
			return domain.ErrOnlyAuctionCreatorCanCancel
		}
		return im.cancelDutch(ctx, a)
	})
}

func (im *auctionUCImpl) EmergencyCancelDutchAuction(ctx bCtx.Ctx, caller, collection domain.Address, tokenId *big.Int) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractAuctionHouse, caller); err != nil {
			return err
		}
		a, err := im.findDutch(ctx, collection, tokenId)
		if err != nil {
			return err
		}
		if a.Creator.IsNull() {
			return domain.ErrNoAuctionExists
		}
		ctx.WithFields(log.Fields{
			"collection": a.Collection,
			"tokenId":    domain.BigString(a.TokenId),
		}).Warn("dutch auction emergency cancelled")
		return im.cancelDutch(ctx, a)
	})
}

func (im *auctionUCImpl) cancelDutch(ctx bCtx.Ctx, a *auction.DutchAuction) error {
	if err := im.repo.RemoveDutchAuction(ctx, a.Collection, a.TokenId); err != nil {
		return err
	}
	if err := im.moveAsset(ctx, a.Collection, im.address, a.Creator, a.TokenId); err != nil {
		return err
	}
	im.emit(ctx, event.NameDutchAuctionCancel, event.Fields{
		"auctionNonce": domain.BigString(a.Nonce),
		"creator":      a.Creator,
		"collection":   a.Collection,
		"tokenId":      domain.BigString(a.TokenId),
	})
	im.metrics.BumpSum("auction.cancel", 1, "kind:dutch")
	return nil
}

func (im *auctionUCImpl) GetDutchAuction(ctx bCtx.Ctx, collection domain.Address, tokenId *big.Int) (*auction.DutchAuction, error) {
	return im.repo.FindDutchAuction(ctx, collection, tokenId)
}

// GetDutchAuctionSalePrice is zero for a vacant slot
func (im *auctionUCImpl) GetDutchAuctionSalePrice(ctx bCtx.Ctx, collection domain.Address, tokenId *big.Int) (*big.Int, error) {
	a, err := im.repo.FindDutchAuction(ctx, collection, tokenId)
	if err == domain.ErrNotFound {
		return new(big.Int), nil
	} else if err != nil {
		return nil, err
	}
	return a.SalePrice(im.now().Unix()), nil
}

func (im *auctionUCImpl) ListDutchAuctions(ctx bCtx.Ctx) ([]*auction.DutchAuction, error) {
	return im.repo.ListDutchAuctions(ctx)
}
