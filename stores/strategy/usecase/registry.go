package usecase

import (
	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/strategy"
	"github.com/x-xyz/settlement/service/kv"
)

type RegistryCfg struct {
	Store   kv.Store
	Repo    strategy.Repo
	Admin   admin.UseCase
	Emitter event.Emitter

	// Strategies are the deployed implementations, only those can be allow-listed
	Strategies []strategy.Strategy
}

type registryImpl struct {
	store   kv.Store
	repo    strategy.Repo
	admin   admin.UseCase
	emitter event.Emitter
	impls   map[domain.Address]strategy.Strategy
}

func NewRegistry(cfg *RegistryCfg) strategy.Registry {
	impls := make(map[domain.Address]strategy.Strategy)
	for _, s := range cfg.Strategies {
		impls[s.Address().ToLower()] = s
	}
	return &registryImpl{
		store:   cfg.Store,
		repo:    cfg.Repo,
		admin:   cfg.Admin,
		emitter: cfg.Emitter,
		impls:   impls,
	}
}

func (im *registryImpl) Get(ctx bCtx.Ctx, addr domain.Address) (strategy.Strategy, error) {
	ok, err := im.IsAllowed(ctx, addr)
	if err != nil {
		return nil, err
	}
	s, known := im.impls[addr.ToLower()]
	if !ok || !known {
		return nil, domain.ErrUnsupportedStrategy
	}
	return s, nil
}

func (im *registryImpl) IsAllowed(ctx bCtx.Ctx, addr domain.Address) (bool, error) {
	if addr.IsNull() {
		return false, nil
	}
	return im.repo.Exists(ctx, addr)
}

func (im *registryImpl) List(ctx bCtx.Ctx) ([]domain.Address, error) {
	return im.repo.List(ctx)
}

func (im *registryImpl) Add(ctx bCtx.Ctx, caller, addr domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractExecutionManager, caller); err != nil {
			return err
		}
		if addr.IsNull() || !addr.IsValid() {
			return domain.ErrInvalidAddress
		}
		if _, ok := im.impls[addr.ToLower()]; !ok {
			return domain.ErrUnsupportedStrategy
		}
		if ok, err := im.repo.Exists(ctx, addr); err != nil {
			return err
		} else if ok {
			return domain.ErrStrategyAlreadyWhitelisted
		}
		if err := im.repo.Add(ctx, addr); err != nil {
			ctx.WithFields(log.Fields{
				"err":      err,
				"strategy": addr,
			}).Error("repo.Add failed")
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractExecutionManager), event.NameStrategyAdded, event.Fields{"strategy": addr.ToLower()})
		return nil
	})
}

func (im *registryImpl) Remove(ctx bCtx.Ctx, caller, addr domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractExecutionManager, caller); err != nil {
			return err
		}
		if err := im.repo.Remove(ctx, addr); err == domain.ErrNotFound {
			return domain.ErrStrategyNotWhitelisted
		} else if err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractExecutionManager), event.NameStrategyRemoved, event.Fields{"strategy": addr.ToLower()})
		return nil
	})
}
