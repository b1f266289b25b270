package usecase

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/xerrors"

	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/exchange"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/order"
	"github.com/x-xyz/settlement/domain/strategy"
)

// validMaker is a maker order that passed every read-only check
type validMaker struct {
	hash     domain.OrderHash
	strategy strategy.Strategy
}

// validateMaker performs no write, so an expired order is rejected before
// anything changed
func (im *exchangeUCImpl) validateMaker(ctx bCtx.Ctx, maker *order.MakerOrder) (*validMaker, error) {
	if maker.Signer.IsNull() {
		return nil, domain.ErrInvalidSigner
	}
	if maker.Price == nil || maker.Price.Sign() <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if maker.Amount == nil || maker.Amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if maker.MinPercentageToAsk == 0 || maker.MinPercentageToAsk > domain.PercentageDenominator {
		return nil, domain.ErrInvalidMinPercentageToAsk
	}

	digest, err := maker.Digest(im.separator)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": maker.Signer,
		}).Warn("maker.Digest failed")
		return nil, domain.ErrBadParamInput
	}
	if err := im.verifier.Verify(ctx, maker, digest); err != nil {
		return nil, err
	}

	if ok, err := im.currencies.IsAllowed(ctx, maker.Currency); err != nil {
		return nil, err
	} else if !ok {
		return nil, domain.ErrUnsupportedCurrency
	}
	s, err := im.strategies.Get(ctx, maker.Strategy)
	if err != nil {
		return nil, err
	}

	if err := im.nonces.IsValid(ctx, maker.Signer, maker.Nonce); err != nil {
		return nil, err
	}
	now := im.now().Unix()
	if now < maker.StartTime {
		return nil, domain.ErrOrderNotStarted
	}
	if now > maker.EndTime {
		return nil, domain.ErrOrderExpired
	}

	hash, err := maker.Hash()
	if err != nil {
		return nil, domain.ErrBadParamInput
	}
	return &validMaker{
		hash:     domain.OrderHash(hexutil.Encode(hash)),
		strategy: s,
	}, nil
}

// fill is one validated trade ready to settle
type fill struct {
	taker   *order.TakerOrder
	maker   *order.MakerOrder
	valid   *validMaker
	buyer   domain.Address
	seller  domain.Address
	tokenId *big.Int
	amount  *big.Int
	split   *fee.Split
}

func (im *exchangeUCImpl) prepare(ctx bCtx.Ctx, taker *order.TakerOrder, maker *order.MakerOrder) (*fill, error) {
	if taker.Taker.IsNull() {
		return nil, domain.ErrUnauthorized
	}
	if taker.IsOrderAsk == maker.IsOrderAsk {
		return nil, domain.ErrInvalidOrderSide
	}
	if taker.MinPercentageToAsk > domain.PercentageDenominator {
		return nil, domain.ErrInvalidMinPercentageToAsk
	}
	valid, err := im.validateMaker(ctx, maker)
	if err != nil {
		return nil, err
	}

	f := &fill{taker: taker, maker: maker, valid: valid}
	var ok bool
	var minPct uint64
	if maker.IsOrderAsk {
		ok, f.tokenId, f.amount = valid.strategy.CanExecuteTakerBid(taker, maker)
		f.buyer, f.seller = taker.Taker, maker.Signer
		minPct = maker.MinPercentageToAsk
	} else {
		ok, f.tokenId, f.amount = valid.strategy.CanExecuteTakerAsk(taker, maker)
		f.buyer, f.seller = maker.Signer, taker.Taker
		minPct = taker.MinPercentageToAsk
	}
	if !ok {
		return nil, domain.ErrTakerMakerMismatch
	}

	cfg, err := im.Config(ctx)
	if err != nil {
		return nil, err
	}
	f.split, err = im.payout.Split(ctx, maker.Collection, f.tokenId, maker.Price, minPct, cfg.ProtocolFeeRecipient)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// settle consumes the nonce, moves the asset and pays out from src
func (im *exchangeUCImpl) settle(ctx bCtx.Ctx, f *fill, src fee.Source) error {
	if err := im.nonces.Consume(ctx, f.maker.Signer, f.maker.Nonce); err != nil {
		return err
	}

	manager, err := im.transfers.ManagerFor(ctx, f.maker.Collection)
	if err != nil {
		return err
	}
	if err := manager.TransferNonFungibleToken(ctx, f.maker.Collection, f.seller, f.buyer, f.tokenId, f.amount); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": f.maker.Collection,
			"tokenId":    domain.BigString(f.tokenId),
		}).Info("manager.TransferNonFungibleToken failed")
		return xerrors.Errorf("transfer %s #%s: %w", f.maker.Collection, f.tokenId, err)
	}

	if err := im.payout.Pay(ctx, string(admin.ContractExchange), src, f.split, f.maker.Collection, f.tokenId, f.seller); err != nil {
		return err
	}

	name := event.NameTakerBid
	side := "ask"
	if !f.maker.IsOrderAsk {
		name = event.NameTakerAsk
		side = "bid"
	}
	im.emit(ctx, name, event.Fields{
		"orderHash":   f.valid.hash,
		"orderNonce":  domain.BigString(f.maker.Nonce),
		"taker":       f.taker.Taker.ToLower(),
		"maker":       f.maker.Signer.ToLower(),
		"strategy":    f.maker.Strategy.ToLower(),
		"currency":    f.maker.Currency.ToLower(),
		"collection":  f.maker.Collection.ToLower(),
		"tokenId":     domain.BigString(f.tokenId),
		"amount":      domain.BigString(f.amount),
		"price":       event.Amount(f.split.Price),
		"protocolFee": event.Amount(f.split.ProtocolFee),
		"remainder":   event.Amount(f.split.Remainder),
	})
	im.metrics.BumpSum("fill", 1, "side:"+side)
	return nil
}

// pull pays straight from the buyer's allowance
func (im *exchangeUCImpl) pull(f *fill) fee.Source {
	return fee.Source{
		Currency: f.maker.Currency,
		Payer:    f.buyer,
		Spender:  im.address,
	}
}

// fundWithNative wraps up to budget of the buyer's native value into the
// exchange, pulls the rest of the price in wrapped native and returns the
// custody source paying the fill. budget is decreased by what was used.
func (im *exchangeUCImpl) fundWithNative(ctx bCtx.Ctx, f *fill, budget *big.Int) (fee.Source, error) {
	price := f.split.Price
	useNative := new(big.Int).Set(budget)
	if useNative.Cmp(price) > 0 {
		useNative.Set(price)
	}
	if useNative.Sign() > 0 {
		if err := im.native.Wrap(ctx, f.buyer, im.address, useNative); err != nil {
			ctx.WithFields(log.Fields{
				"err":    err,
				"buyer":  f.buyer,
				"amount": useNative.String(),
			}).Info("native.Wrap failed")
			return fee.Source{}, err
		}
		budget.Sub(budget, useNative)
	}
	if rest := new(big.Int).Sub(price, useNative); rest.Sign() > 0 {
		if err := im.ledger.TransferFrom(ctx, f.maker.Currency, im.address, f.buyer, im.address, rest); err != nil {
			ctx.WithFields(log.Fields{
				"err":    err,
				"buyer":  f.buyer,
				"amount": rest.String(),
			}).Info("ledger.TransferFrom failed")
			return fee.Source{}, err
		}
	}
	return fee.Source{
		Currency: f.maker.Currency,
		Payer:    im.address,
		Spender:  im.address,
	}, nil
}

func (im *exchangeUCImpl) requireWrappedNative(maker *order.MakerOrder) error {
	if !maker.Currency.Equals(im.native.WrappedNative()) {
		return domain.ErrCurrencyMismatch
	}
	return nil
}

func (im *exchangeUCImpl) matchAsk(ctx bCtx.Ctx, taker *order.TakerOrder, maker *order.MakerOrder, budget *big.Int) error {
	if !maker.IsOrderAsk || taker.IsOrderAsk {
		return domain.ErrInvalidOrderSide
	}
	if budget != nil {
		if err := im.requireWrappedNative(maker); err != nil {
			return err
		}
	}
	f, err := im.prepare(ctx, taker, maker)
	if err != nil {
		return err
	}
	src := im.pull(f)
	if budget != nil {
		if src, err = im.fundWithNative(ctx, f, budget); err != nil {
			return err
		}
	}
	return im.settle(ctx, f, src)
}

func (im *exchangeUCImpl) MatchAskWithTakerBid(ctx bCtx.Ctx, taker *order.TakerOrder, maker *order.MakerOrder) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.WhenNotPaused(ctx, admin.ContractExchange); err != nil {
			return err
		}
		return im.matchAsk(ctx, taker, maker, nil)
	})
}

func (im *exchangeUCImpl) MatchAskWithTakerBidUsingNativeAndWrapped(ctx bCtx.Ctx, taker *order.TakerOrder, maker *order.MakerOrder, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return domain.ErrBadParamInput
	}
	if taker.Price != nil && value.Cmp(taker.Price) > 0 {
		return domain.ErrInvalidNativeValue
	}
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.WhenNotPaused(ctx, admin.ContractExchange); err != nil {
			return err
		}
		return im.matchAsk(ctx, taker, maker, new(big.Int).Set(value))
	})
}

func (im *exchangeUCImpl) MatchBidWithTakerAsk(ctx bCtx.Ctx, taker *order.TakerOrder, maker *order.MakerOrder) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.WhenNotPaused(ctx, admin.ContractExchange); err != nil {
			return err
		}
		if maker.IsOrderAsk || !taker.IsOrderAsk {
			return domain.ErrInvalidOrderSide
		}
		f, err := im.prepare(ctx, taker, maker)
		if err != nil {
			return err
		}
		if err := im.settle(ctx, f, im.pull(f)); err != nil {
			return err
		}
		return im.notify(ctx, f)
	})
}

// notify calls back an allow-listed maker after its bid was filled. A failing
// callback does not revert the fill.
func (im *exchangeUCImpl) notify(ctx bCtx.Ctx, f *fill) error {
	ok, err := im.repo.IsNotifiable(ctx, f.maker.Signer)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	cb, found := im.callbacks[f.maker.Signer.ToLower()]
	if !found {
		ctx.WithFields(log.Fields{
			"maker": f.maker.Signer,
		}).Warn("no callback receiver for notifiable maker")
		return nil
	}
	// a failing receiver keeps none of its writes
	err = im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		return cb.OnBidFilled(ctx, f.maker, f.taker, f.tokenId, f.amount)
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"maker": f.maker.Signer,
		}).Warn("OnBidFilled failed")
		im.emit(ctx, event.NameNotificationFailed, event.Fields{
			"maker":      f.maker.Signer.ToLower(),
			"orderHash":  f.valid.hash,
			"orderNonce": domain.BigString(f.maker.Nonce),
			"reason":     err.Error(),
		})
		im.metrics.BumpSum("notification.failed", 1)
	}
	return nil
}

type batchOpt struct {
	ignoreExpired bool
	// value is the native budget, nil pays everything from allowances
	value *big.Int
}

func (im *exchangeUCImpl) batchBuy(ctx bCtx.Ctx, caller domain.Address, trades []exchange.Trade, opt batchOpt) error {
	if caller.IsNull() {
		return domain.ErrUnauthorized
	}
	if len(trades) == 0 {
		return domain.ErrEmptyTrades
	}
	if opt.value != nil {
		if opt.value.Sign() < 0 {
			return domain.ErrBadParamInput
		}
		total := new(big.Int)
		for _, t := range trades {
			if t.Maker.Price != nil {
				total.Add(total, t.Maker.Price)
			}
		}
		if opt.value.Cmp(total) > 0 {
			return domain.ErrInvalidNativeValue
		}
	}

	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.WhenNotPaused(ctx, admin.ContractExchange); err != nil {
			return err
		}
		var budget *big.Int
		if opt.value != nil {
			budget = new(big.Int).Set(opt.value)
		}
		filled := 0
		for i := range trades {
			taker := trades[i].Taker
			maker := trades[i].Maker
			if taker.Taker.IsNull() {
				taker.Taker = caller
			} else if !taker.Taker.Equals(caller) {
				return domain.ErrUnauthorized
			}
			err := im.matchAsk(ctx, &taker, &maker, budget)
			if err != nil && opt.ignoreExpired && errors.Is(err, domain.ErrOrderExpired) {
				ctx.WithFields(log.Fields{
					"maker": maker.Signer,
					"nonce": domain.BigString(maker.Nonce),
				}).Info("skip expired maker ask")
				continue
			}
			if err != nil {
				return err
			}
			filled++
		}
		im.metrics.BumpSum("batch.filled", float64(filled))
		im.metrics.BumpSum("batch.skipped", float64(len(trades)-filled))
		return nil
	})
}

func (im *exchangeUCImpl) BatchBuy(ctx bCtx.Ctx, caller domain.Address, trades []exchange.Trade) error {
	return im.batchBuy(ctx, caller, trades, batchOpt{})
}

func (im *exchangeUCImpl) BatchBuyIgnoringExpiredAsks(ctx bCtx.Ctx, caller domain.Address, trades []exchange.Trade) error {
	return im.batchBuy(ctx, caller, trades, batchOpt{ignoreExpired: true})
}

func (im *exchangeUCImpl) BatchBuyWithNativeAndWrapped(ctx bCtx.Ctx, caller domain.Address, trades []exchange.Trade, value *big.Int) error {
	if value == nil {
		value = new(big.Int)
	}
	return im.batchBuy(ctx, caller, trades, batchOpt{value: value})
}

func (im *exchangeUCImpl) BatchBuyWithNativeAndWrappedIgnoringExpiredAsks(ctx bCtx.Ctx, caller domain.Address, trades []exchange.Trade, value *big.Int) error {
	if value == nil {
		value = new(big.Int)
	}
	return im.batchBuy(ctx, caller, trades, batchOpt{ignoreExpired: true, value: value})
}
