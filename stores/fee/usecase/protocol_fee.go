package usecase

import (
	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/service/kv"
)

type ProtocolFeeManagerCfg struct {
	Store   kv.Store
	Repo    fee.ProtocolFeeRepo
	Admin   admin.UseCase
	Emitter event.Emitter

	// DefaultProtocolFee applies until the owner sets one
	DefaultProtocolFee uint64
}

type protocolFeeManagerImpl struct {
	store      kv.Store
	repo       fee.ProtocolFeeRepo
	admin      admin.UseCase
	emitter    event.Emitter
	defaultFee uint64
}

func NewProtocolFeeManager(cfg *ProtocolFeeManagerCfg) fee.ProtocolFeeManager {
	return &protocolFeeManagerImpl{
		store:      cfg.Store,
		repo:       cfg.Repo,
		admin:      cfg.Admin,
		emitter:    cfg.Emitter,
		defaultFee: cfg.DefaultProtocolFee,
	}
}

func (im *protocolFeeManagerImpl) DefaultProtocolFee(ctx bCtx.Ctx) (uint64, error) {
	f, err := im.repo.FindDefault(ctx)
	if err == domain.ErrNotFound {
		return im.defaultFee, nil
	} else if err != nil {
		return 0, err
	}
	return f, nil
}

func (im *protocolFeeManagerImpl) ProtocolFeeForCollection(ctx bCtx.Ctx, collection domain.Address) (uint64, error) {
	f, found, err := im.repo.FindForCollection(ctx, collection)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("repo.FindForCollection failed")
		return 0, err
	}
	if found {
		return f, nil
	}
	return im.DefaultProtocolFee(ctx)
}

func (im *protocolFeeManagerImpl) SetDefaultProtocolFee(ctx bCtx.Ctx, caller domain.Address, f uint64) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractFeeManager, caller); err != nil {
			return err
		}
		if f > domain.PercentageDenominator {
			return domain.ErrInvalidProtocolFee
		}
		if err := im.repo.UpsertDefault(ctx, f); err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractFeeManager), event.NameProtocolFeeUpdated, event.Fields{"fee": f})
		return nil
	})
}

func (im *protocolFeeManagerImpl) SetProtocolFeeForCollection(ctx bCtx.Ctx, caller, collection domain.Address, f uint64) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractFeeManager, caller); err != nil {
			return err
		}
		if f > domain.PercentageDenominator {
			return domain.ErrInvalidProtocolFee
		}
		if err := im.repo.UpsertForCollection(ctx, collection, f); err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractFeeManager), event.NameProtocolFeeUpdated, event.Fields{
			"collection": collection.ToLower(),
			"fee":        f,
		})
		return nil
	})
}

func (im *protocolFeeManagerImpl) UnsetProtocolFeeForCollection(ctx bCtx.Ctx, caller, collection domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractFeeManager, caller); err != nil {
			return err
		}
		if err := im.repo.RemoveForCollection(ctx, collection); err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractFeeManager), event.NameProtocolFeeUpdated, event.Fields{
			"collection": collection.ToLower(),
			"unset":      true,
		})
		return nil
	})
}
