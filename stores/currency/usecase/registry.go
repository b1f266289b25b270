package usecase

import (
	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/currency"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/service/kv"
)

type RegistryCfg struct {
	Store   kv.Store
	Repo    currency.Repo
	Admin   admin.UseCase
	Emitter event.Emitter
}

type registryImpl struct {
	store   kv.Store
	repo    currency.Repo
	admin   admin.UseCase
	emitter event.Emitter
}

func NewRegistry(cfg *RegistryCfg) currency.Registry {
	return &registryImpl{
		store:   cfg.Store,
		repo:    cfg.Repo,
		admin:   cfg.Admin,
		emitter: cfg.Emitter,
	}
}

func (im *registryImpl) IsAllowed(ctx bCtx.Ctx, cur domain.Address) (bool, error) {
	if cur.IsNull() {
		return false, nil
	}
	return im.repo.Exists(ctx, cur)
}

func (im *registryImpl) List(ctx bCtx.Ctx) ([]domain.Address, error) {
	return im.repo.List(ctx)
}

func (im *registryImpl) Add(ctx bCtx.Ctx, caller, cur domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractCurrencyManager, caller); err != nil {
			return err
		}
		if cur.IsNull() || !cur.IsValid() {
			return domain.ErrInvalidAddress
		}
		if ok, err := im.repo.Exists(ctx, cur); err != nil {
			return err
		} else if ok {
			return domain.ErrCurrencyAlreadyWhitelisted
		}
		if err := im.repo.Add(ctx, cur); err != nil {
			ctx.WithFields(log.Fields{
				"err":      err,
				"currency": cur,
			}).Error("repo.Add failed")
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractCurrencyManager), event.NameCurrencyAdded, event.Fields{"currency": cur.ToLower()})
		return nil
	})
}

func (im *registryImpl) Remove(ctx bCtx.Ctx, caller, cur domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractCurrencyManager, caller); err != nil {
			return err
		}
		if err := im.repo.Remove(ctx, cur); err == domain.ErrNotFound {
			return domain.ErrCurrencyNotWhitelisted
		} else if err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractCurrencyManager), event.NameCurrencyRemoved, event.Fields{"currency": cur.ToLower()})
		return nil
	})
}
