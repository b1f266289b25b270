package usecase

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/domain/transfer"
)

type erc721Manager struct {
	address domain.Address
	assets  ledger.AssetLedger
}

// NewERC721TransferManager moves exactly one token, the amount is ignored
func NewERC721TransferManager(address domain.Address, assets ledger.AssetLedger) transfer.Manager {
	return &erc721Manager{address.ToLower(), assets}
}

func (m *erc721Manager) Address() domain.Address {
	return m.address
}

func (m *erc721Manager) TransferNonFungibleToken(ctx ctx.Ctx, collection, from, to domain.Address, tokenId, amount *big.Int) error {
	if err := m.assets.TransferFrom(ctx, collection, m.address, from, to, tokenId, big.NewInt(1)); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"from":       from,
			"to":         to,
			"tokenId":    domain.BigString(tokenId),
		}).Warn("erc721 transfer failed")
		return err
	}
	return nil
}

type erc1155Manager struct {
	address domain.Address
	assets  ledger.AssetLedger
}

func NewERC1155TransferManager(address domain.Address, assets ledger.AssetLedger) transfer.Manager {
	return &erc1155Manager{address.ToLower(), assets}
}

func (m *erc1155Manager) Address() domain.Address {
	return m.address
}

func (m *erc1155Manager) TransferNonFungibleToken(ctx ctx.Ctx, collection, from, to domain.Address, tokenId, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	if err := m.assets.TransferFrom(ctx, collection, m.address, from, to, tokenId, amount); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"from":       from,
			"to":         to,
			"tokenId":    domain.BigString(tokenId),
			"amount":     domain.BigString(amount),
		}).Warn("erc1155 transfer failed")
		return err
	}
	return nil
}
