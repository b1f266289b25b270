package usecase

import (
	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/transfer"
	"github.com/x-xyz/settlement/service/kv"
)

type BatchTransfererCfg struct {
	Store     kv.Store
	Transfers transfer.Selector
}

type batchTransfererImpl struct {
	store     kv.Store
	transfers transfer.Selector
}

func NewBatchTransferer(cfg *BatchTransfererCfg) transfer.BatchTransferer {
	return &batchTransfererImpl{
		store:     cfg.Store,
		transfers: cfg.Transfers,
	}
}

func (im *batchTransfererImpl) BatchTransfer(ctx bCtx.Ctx, caller domain.Address, items []transfer.Item) error {
	if caller.IsNull() {
		return domain.ErrUnauthorized
	}
	if len(items) == 0 {
		return domain.ErrEmptyTransfers
	}
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		for i, it := range items {
			if it.Recipient.IsNull() {
				return domain.ErrExpectedNonNullAddress
			}
			m, err := im.transfers.ManagerFor(ctx, it.Collection)
			if err != nil {
				return err
			}
			if err := m.TransferNonFungibleToken(ctx, it.Collection, caller, it.Recipient, it.TokenId, it.Amount); err != nil {
				ctx.WithFields(log.Fields{
					"err":        err,
					"index":      i,
					"caller":     caller,
					"collection": it.Collection,
					"tokenId":    domain.BigString(it.TokenId),
				}).Info("batch transfer reverted")
				return err
			}
		}
		return nil
	})
}

func (im *batchTransfererImpl) BatchTransferNonFungibleTokens(ctx bCtx.Ctx, caller, from, to domain.Address, items []transfer.Item) error {
	if !caller.Equals(from) {
		return domain.ErrOnlyAssetsOwner
	}
	routed := make([]transfer.Item, len(items))
	for i, it := range items {
		it.Recipient = to
		routed[i] = it
	}
	return im.BatchTransfer(ctx, caller, routed)
}
