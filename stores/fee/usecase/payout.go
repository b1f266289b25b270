package usecase

import (
	"math/big"

	"golang.org/x/xerrors"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/ledger"
)

type PayoutCfg struct {
	Protocol   fee.ProtocolFeeManager
	Royalty    fee.RoyaltyFeeManager
	Currencies ledger.CurrencyLedger
	Emitter    event.Emitter
}

type payoutImpl struct {
	protocol   fee.ProtocolFeeManager
	royalty    fee.RoyaltyFeeManager
	currencies ledger.CurrencyLedger
	emitter    event.Emitter
}

func NewPayout(cfg *PayoutCfg) fee.Payout {
	return &payoutImpl{
		protocol:   cfg.Protocol,
		royalty:    cfg.Royalty,
		currencies: cfg.Currencies,
		emitter:    cfg.Emitter,
	}
}

func (im *payoutImpl) Split(ctx ctx.Ctx, collection domain.Address, tokenId, price *big.Int, minPercentageToAsk uint64, protocolFeeRecipient domain.Address) (*fee.Split, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	split := &fee.Split{
		Price:                new(big.Int).Set(price),
		ProtocolFeeRecipient: protocolFeeRecipient,
		ProtocolFee:          new(big.Int),
		Remainder:            new(big.Int).Set(price),
	}

	// with no recipient the protocol fee stays with the seller
	if !protocolFeeRecipient.IsNull() {
		rate, err := im.protocol.ProtocolFeeForCollection(ctx, collection)
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":        err,
				"collection": collection,
			}).Error("protocol.ProtocolFeeForCollection failed")
			return nil, err
		}
		split.ProtocolFee = percentOf(price, rate)
		split.Remainder.Sub(split.Remainder, split.ProtocolFee)
	}

	parts, err := im.royalty.CalculateRoyaltyFeeAmountParts(ctx, collection, tokenId, price)
	if err != nil {
		return nil, err
	}
	split.Royalties = make([]fee.FeeAmountPart, 0, len(parts))
	for _, p := range parts {
		if p.Receiver.IsNull() || p.Amount == nil || p.Amount.Sign() == 0 {
			continue
		}
		split.Royalties = append(split.Royalties, p)
		split.Remainder.Sub(split.Remainder, p.Amount)
	}

	if split.Remainder.Sign() < 0 {
		return nil, domain.ErrFeesHigherThanExpected
	}
	lhs := new(big.Int).Mul(split.Remainder, big.NewInt(domain.PercentageDenominator))
	rhs := new(big.Int).Mul(price, new(big.Int).SetUint64(minPercentageToAsk))
	if lhs.Cmp(rhs) < 0 {
		return nil, domain.ErrFeesHigherThanExpected
	}
	return split, nil
}

func (im *payoutImpl) transfer(ctx ctx.Ctx, src fee.Source, to domain.Address, amount *big.Int) error {
	if amount.Sign() == 0 || src.Payer.Equals(to) {
		return nil
	}
	var err error
	if src.Payer.Equals(src.Spender) {
		err = im.currencies.Transfer(ctx, src.Currency, src.Payer, to, amount)
	} else {
		err = im.currencies.TransferFrom(ctx, src.Currency, src.Spender, src.Payer, to, amount)
	}
	if err != nil {
		return xerrors.Errorf("pay %s to %s: %w", amount, to, err)
	}
	return nil
}

func (im *payoutImpl) Pay(ctx ctx.Ctx, contract string, src fee.Source, split *fee.Split, collection domain.Address, tokenId *big.Int, seller domain.Address) error {
	if split.ProtocolFee.Sign() > 0 {
		if err := im.transfer(ctx, src, split.ProtocolFeeRecipient, split.ProtocolFee); err != nil {
			return err
		}
	}
	for _, p := range split.Royalties {
		if err := im.transfer(ctx, src, p.Receiver, p.Amount); err != nil {
			return err
		}
		im.emitter.Emit(ctx, contract, event.NameRoyaltyPayment, event.Fields{
			"collection":       collection.ToLower(),
			"tokenId":          domain.BigString(tokenId),
			"royaltyRecipient": p.Receiver.ToLower(),
			"currency":         src.Currency.ToLower(),
			"amount":           event.Amount(p.Amount),
		})
	}
	return im.transfer(ctx, src, seller, split.Remainder)
}
