package repository

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/ledger"
)

type ledgerERC2981 struct {
	assets ledger.AssetLedger
}

// NewLedgerERC2981 answers royalty queries from the collection records of the
// simulated asset ledger
func NewLedgerERC2981(assets ledger.AssetLedger) fee.ERC2981 {
	return &ledgerERC2981{assets}
}

func (im *ledgerERC2981) info(ctx ctx.Ctx, collection domain.Address) (*ledger.RoyaltyInfo, error) {
	col, err := im.assets.GetCollection(ctx, collection)
	if err == domain.ErrNotFound {
		return nil, nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("assets.GetCollection failed")
		return nil, err
	}
	return col.ERC2981, nil
}

func (im *ledgerERC2981) SupportsERC2981(ctx ctx.Ctx, collection domain.Address) (bool, error) {
	info, err := im.info(ctx, collection)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

func (im *ledgerERC2981) RoyaltyInfo(ctx ctx.Ctx, collection domain.Address, tokenId, price *big.Int) (domain.Address, *big.Int, error) {
	info, err := im.info(ctx, collection)
	if err != nil {
		return "", nil, err
	}
	if info == nil {
		return domain.EmptyAddress, new(big.Int), nil
	}
	amount := new(big.Int).Mul(price, new(big.Int).SetUint64(info.Fee))
	return info.Receiver, amount.Div(amount, big.NewInt(domain.PercentageDenominator)), nil
}
