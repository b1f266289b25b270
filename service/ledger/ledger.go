/*
Package ledger is an in-store rendition of the custody contracts the engine
settles against: a fungible currency ledger, the native value ledger with its
wrapped currency, and a non-fungible asset ledger for ERC-721 and ERC-1155
collections. Its records live in the same kv.Store as the engine state so a
failing engine call rolls the ledger back too.
*/
package ledger

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/service/kv"
)

type amountDoc struct {
	Amount string `bson:"amount"`
}

func getAmount(c ctx.Ctx, store kv.Store, table domain.Table, key string) (*big.Int, error) {
	doc := amountDoc{}
	if err := store.Get(c, table, key, &doc); err == kv.ErrNotFound {
		return new(big.Int), nil
	} else if err != nil {
		return nil, err
	}
	return domain.ParseBig(doc.Amount)
}

func putAmount(c ctx.Ctx, store kv.Store, table domain.Table, key string, amount *big.Int) error {
	if amount.Sign() == 0 {
		if err := store.Delete(c, table, key); err != nil && err != kv.ErrNotFound {
			return err
		}
		return nil
	}
	return store.Put(c, table, key, amountDoc{Amount: amount.String()})
}

// move debits from and credits to under the same table
func move(c ctx.Ctx, store kv.Store, table domain.Table, fromKey, toKey string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	bal, err := getAmount(c, store, table, fromKey)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return domain.ErrInsufficientBalance
	}
	if err := putAmount(c, store, table, fromKey, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	to, err := getAmount(c, store, table, toKey)
	if err != nil {
		return err
	}
	return putAmount(c, store, table, toKey, to.Add(to, amount))
}

func credit(c ctx.Ctx, store kv.Store, table domain.Table, key string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	bal, err := getAmount(c, store, table, key)
	if err != nil {
		return err
	}
	return putAmount(c, store, table, key, bal.Add(bal, amount))
}
