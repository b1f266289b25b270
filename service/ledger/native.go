package ledger

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/service/kv"
)

type nativeLedger struct {
	store         kv.Store
	currencies    ledger.CurrencyLedger
	wrappedNative domain.Address
}

// NewNativeLedger returns the native value ledger, wrapped value is minted
// into currencies under wrappedNative
func NewNativeLedger(store kv.Store, currencies ledger.CurrencyLedger, wrappedNative domain.Address) ledger.NativeLedger {
	return &nativeLedger{
		store:         store,
		currencies:    currencies,
		wrappedNative: wrappedNative.ToLower(),
	}
}

func (l *nativeLedger) WrappedNative() domain.Address {
	return l.wrappedNative
}

func (l *nativeLedger) BalanceOf(c ctx.Ctx, owner domain.Address) (*big.Int, error) {
	return getAmount(c, l.store, domain.TableNativeBalances, owner.ToLowerStr())
}

func (l *nativeLedger) Credit(c ctx.Ctx, owner domain.Address, amount *big.Int) error {
	return credit(c, l.store, domain.TableNativeBalances, owner.ToLowerStr(), amount)
}

func (l *nativeLedger) Wrap(c ctx.Ctx, from, to domain.Address, amount *big.Int) error {
	bal, err := l.BalanceOf(c, from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	if err := putAmount(c, l.store, domain.TableNativeBalances, from.ToLowerStr(), bal.Sub(bal, amount)); err != nil {
		return err
	}
	return l.currencies.Mint(c, l.wrappedNative, to, amount)
}

func (l *nativeLedger) Unwrap(c ctx.Ctx, owner domain.Address, amount *big.Int) error {
	bal, err := l.currencies.BalanceOf(c, l.wrappedNative, owner)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	if err := putAmount(c, l.store, domain.TableBalances, balanceKey(l.wrappedNative, owner), bal.Sub(bal, amount)); err != nil {
		return err
	}
	return l.Credit(c, owner, amount)
}
