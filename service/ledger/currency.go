package ledger

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/service/kv"
)

type currencyLedger struct {
	store kv.Store
}

func NewCurrencyLedger(store kv.Store) ledger.CurrencyLedger {
	return &currencyLedger{store: store}
}

func balanceKey(currency, owner domain.Address) string {
	return keys.StoreKey(currency.ToLowerStr(), owner.ToLowerStr())
}

func allowanceKey(currency, owner, spender domain.Address) string {
	return keys.StoreKey(currency.ToLowerStr(), owner.ToLowerStr(), spender.ToLowerStr())
}

func (l *currencyLedger) BalanceOf(c ctx.Ctx, currency, owner domain.Address) (*big.Int, error) {
	return getAmount(c, l.store, domain.TableBalances, balanceKey(currency, owner))
}

func (l *currencyLedger) Allowance(c ctx.Ctx, currency, owner, spender domain.Address) (*big.Int, error) {
	return getAmount(c, l.store, domain.TableAllowances, allowanceKey(currency, owner, spender))
}

func (l *currencyLedger) Approve(c ctx.Ctx, currency, owner, spender domain.Address, amount *big.Int) error {
	if spender.IsNull() {
		return domain.ErrExpectedNonNullAddress
	}
	return putAmount(c, l.store, domain.TableAllowances, allowanceKey(currency, owner, spender), amount)
}

func (l *currencyLedger) Mint(c ctx.Ctx, currency, to domain.Address, amount *big.Int) error {
	return credit(c, l.store, domain.TableBalances, balanceKey(currency, to), amount)
}

func (l *currencyLedger) Transfer(c ctx.Ctx, currency, from, to domain.Address, amount *big.Int) error {
	if to.IsNull() {
		return domain.ErrExpectedNonNullAddress
	}
	if err := move(c, l.store, domain.TableBalances, balanceKey(currency, from), balanceKey(currency, to), amount); err != nil {
		c.WithFields(log.Fields{
			"err":      err,
			"currency": currency,
			"from":     from,
			"to":       to,
			"amount":   amount.String(),
		}).Warn("transfer failed")
		return err
	}
	return nil
}

func (l *currencyLedger) TransferFrom(c ctx.Ctx, currency, spender, from, to domain.Address, amount *big.Int) error {
	if !spender.Equals(from) {
		allowed, err := l.Allowance(c, currency, from, spender)
		if err != nil {
			return err
		}
		if allowed.Cmp(amount) < 0 {
			c.WithFields(log.Fields{
				"currency":  currency,
				"owner":     from,
				"spender":   spender,
				"allowance": allowed.String(),
				"amount":    amount.String(),
			}).Warn("insufficient allowance")
			return domain.ErrInsufficientAllowance
		}
		if err := l.Approve(c, currency, from, spender, allowed.Sub(allowed, amount)); err != nil {
			return err
		}
	}
	return l.Transfer(c, currency, from, to, amount)
}
