package usecase

import (
	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/domain/transfer"
	"github.com/x-xyz/settlement/service/kv"
)

type TransferSelectorCfg struct {
	Store   kv.Store
	Repo    transfer.Repo
	Admin   admin.UseCase
	Emitter event.Emitter
	Assets  ledger.AssetLedger

	ERC721  transfer.Manager
	ERC1155 transfer.Manager
	// Extra managers usable as overrides only
	Extra []transfer.Manager
}

type selectorImpl struct {
	store    kv.Store
	repo     transfer.Repo
	admin    admin.UseCase
	emitter  event.Emitter
	assets   ledger.AssetLedger
	defaults map[domain.TokenType]transfer.Manager
	managers map[domain.Address]transfer.Manager
}

func NewTransferSelector(cfg *TransferSelectorCfg) transfer.Selector {
	im := &selectorImpl{
		store:   cfg.Store,
		repo:    cfg.Repo,
		admin:   cfg.Admin,
		emitter: cfg.Emitter,
		assets:  cfg.Assets,
		defaults: map[domain.TokenType]transfer.Manager{
			domain.TokenType721:  cfg.ERC721,
			domain.TokenType1155: cfg.ERC1155,
		},
		managers: make(map[domain.Address]transfer.Manager),
	}
	for _, m := range append([]transfer.Manager{cfg.ERC721, cfg.ERC1155}, cfg.Extra...) {
		im.managers[m.Address().ToLower()] = m
	}
	return im
}

func (im *selectorImpl) ManagerFor(ctx bCtx.Ctx, collection domain.Address) (transfer.Manager, error) {
	override, err := im.repo.FindOverride(ctx, collection)
	if err == nil {
		if m, ok := im.managers[override.ToLower()]; ok {
			return m, nil
		}
		ctx.WithFields(log.Fields{
			"collection": collection,
			"manager":    override,
		}).Warn("unknown transfer manager override")
		return nil, domain.ErrNoTransferManager
	} else if err != domain.ErrNotFound {
		return nil, err
	}

	col, err := im.assets.GetCollection(ctx, collection)
	if err == domain.ErrNotFound {
		return nil, domain.ErrNoTransferManager
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("assets.GetCollection failed")
		return nil, err
	}
	m, ok := im.defaults[col.Standard]
	if !ok || m == nil {
		return nil, domain.ErrNoTransferManager
	}
	return m, nil
}

func (im *selectorImpl) AddCollectionTransferManager(ctx bCtx.Ctx, caller, collection, manager domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractTransferSelector, caller); err != nil {
			return err
		}
		if collection.IsNull() || manager.IsNull() {
			return domain.ErrExpectedNonNullAddress
		}
		if _, ok := im.managers[manager.ToLower()]; !ok {
			return domain.ErrNoTransferManager
		}
		if err := im.repo.UpsertOverride(ctx, collection, manager); err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractTransferSelector), event.NameCollectionTransferManagerAdded, event.Fields{
			"collection":      collection.ToLower(),
			"transferManager": manager.ToLower(),
		})
		return nil
	})
}

func (im *selectorImpl) RemoveCollectionTransferManager(ctx bCtx.Ctx, caller, collection domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractTransferSelector, caller); err != nil {
			return err
		}
		if err := im.repo.RemoveOverride(ctx, collection); err == domain.ErrNotFound {
			return domain.ErrNoTransferManager
		} else if err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractTransferSelector), event.NameCollectionTransferManagerRemoved, event.Fields{
			"collection": collection.ToLower(),
		})
		return nil
	})
}
