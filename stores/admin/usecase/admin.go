package usecase

import (
	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/service/kv"
)

type UseCaseCfg struct {
	Store   kv.Store
	Repo    admin.Repo
	Emitter event.Emitter
}

type impl struct {
	store   kv.Store
	repo    admin.Repo
	emitter event.Emitter
}

func New(cfg *UseCaseCfg) admin.UseCase {
	return &impl{
		store:   cfg.Store,
		repo:    cfg.Repo,
		emitter: cfg.Emitter,
	}
}

func (im *impl) Init(ctx bCtx.Ctx, contract admin.Contract, owner domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if _, err := im.repo.FindOne(ctx, contract); err == nil {
			return nil
		} else if err != domain.ErrNotFound {
			return err
		}
		if owner.IsNull() {
			return domain.ErrExpectedNonNullAddress
		}
		if err := im.repo.Upsert(ctx, &admin.Ownership{Contract: contract, Owner: owner.ToLower()}); err != nil {
			return err
		}
		// the deployer starts as a pause admin and may renounce it later
		if err := im.repo.AddPauseAdmin(ctx, contract, owner); err != nil {
			return err
		}
		im.emit(ctx, contract, event.NameOwnershipTransferred, event.Fields{
			"previousOwner": domain.EmptyAddress,
			"newOwner":      owner.ToLower(),
		})
		im.emit(ctx, contract, event.NamePauseAdminAdded, event.Fields{"pauseAdmin": owner.ToLower()})
		return nil
	})
}

func (im *impl) Get(ctx bCtx.Ctx, contract admin.Contract) (*admin.Ownership, error) {
	o, err := im.repo.FindOne(ctx, contract)
	if err == domain.ErrNotFound {
		return &admin.Ownership{Contract: contract}, nil
	} else if err != nil {
		return nil, err
	}
	return o, nil
}

func (im *impl) OnlyOwner(ctx bCtx.Ctx, contract admin.Contract, caller domain.Address) error {
	_, err := im.ownedBy(ctx, contract, caller)
	return err
}

func (im *impl) ownedBy(ctx bCtx.Ctx, contract admin.Contract, caller domain.Address) (*admin.Ownership, error) {
	o, err := im.Get(ctx, contract)
	if err != nil {
		return nil, err
	}
	if o.Owner.IsNull() || !o.Owner.Equals(caller) {
		return nil, domain.ErrNotOwner
	}
	return o, nil
}

func (im *impl) SetPendingOwner(ctx bCtx.Ctx, contract admin.Contract, caller, pendingOwner domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		o, err := im.ownedBy(ctx, contract, caller)
		if err != nil {
			return err
		}
		if pendingOwner.IsNull() {
			return domain.ErrExpectedNonNullAddress
		}
		if !o.PendingOwner.IsNull() {
			return domain.ErrPendingOwnerAlreadySet
		}
		o.PendingOwner = pendingOwner.ToLower()
		if err := im.repo.Upsert(ctx, o); err != nil {
			return err
		}
		im.emit(ctx, contract, event.NamePendingOwnerSet, event.Fields{"pendingOwner": o.PendingOwner})
		return nil
	})
}

func (im *impl) RevokePendingOwner(ctx bCtx.Ctx, contract admin.Contract, caller domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		o, err := im.ownedBy(ctx, contract, caller)
		if err != nil {
			return err
		}
		if o.PendingOwner.IsNull() {
			return domain.ErrNoPendingOwner
		}
		o.PendingOwner = ""
		if err := im.repo.Upsert(ctx, o); err != nil {
			return err
		}
		im.emit(ctx, contract, event.NamePendingOwnerSet, event.Fields{"pendingOwner": domain.EmptyAddress})
		return nil
	})
}

func (im *impl) BecomeOwner(ctx bCtx.Ctx, contract admin.Contract, caller domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		o, err := im.Get(ctx, contract)
		if err != nil {
			return err
		}
		if o.PendingOwner.IsNull() || !o.PendingOwner.Equals(caller) {
			return domain.ErrNotPendingOwner
		}
		return im.transferOwnership(ctx, o, caller.ToLower())
	})
}

func (im *impl) RenounceOwnership(ctx bCtx.Ctx, contract admin.Contract, caller domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		o, err := im.ownedBy(ctx, contract, caller)
		if err != nil {
			return err
		}
		return im.transferOwnership(ctx, o, domain.EmptyAddress)
	})
}

func (im *impl) transferOwnership(ctx bCtx.Ctx, o *admin.Ownership, newOwner domain.Address) error {
	prev := o.Owner
	o.Owner = newOwner
	o.PendingOwner = ""
	if err := im.repo.Upsert(ctx, o); err != nil {
		return err
	}
	im.emit(ctx, o.Contract, event.NameOwnershipTransferred, event.Fields{
		"previousOwner": prev,
		"newOwner":      newOwner,
	})
	return nil
}

func (im *impl) IsPauseAdmin(ctx bCtx.Ctx, contract admin.Contract, addr domain.Address) (bool, error) {
	return im.repo.IsPauseAdmin(ctx, contract, addr)
}

func (im *impl) PauseAdmins(ctx bCtx.Ctx, contract admin.Contract) ([]domain.Address, error) {
	return im.repo.PauseAdmins(ctx, contract)
}

func (im *impl) AddPauseAdmin(ctx bCtx.Ctx, contract admin.Contract, caller, pauseAdmin domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.OnlyOwner(ctx, contract, caller); err != nil {
			return err
		}
		if pauseAdmin.IsNull() {
			return domain.ErrExpectedNonNullAddress
		}
		if err := im.repo.AddPauseAdmin(ctx, contract, pauseAdmin); err != nil {
			return err
		}
		im.emit(ctx, contract, event.NamePauseAdminAdded, event.Fields{"pauseAdmin": pauseAdmin.ToLower()})
		return nil
	})
}

func (im *impl) RemovePauseAdmin(ctx bCtx.Ctx, contract admin.Contract, caller, pauseAdmin domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.OnlyOwner(ctx, contract, caller); err != nil {
			return err
		}
		return im.removePauseAdmin(ctx, contract, pauseAdmin)
	})
}

func (im *impl) RenouncePauseAdmin(ctx bCtx.Ctx, contract admin.Contract, caller domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		return im.removePauseAdmin(ctx, contract, caller)
	})
}

func (im *impl) removePauseAdmin(ctx bCtx.Ctx, contract admin.Contract, addr domain.Address) error {
	ok, err := im.repo.IsPauseAdmin(ctx, contract, addr)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAddressIsNotPauseAdmin
	}
	if err := im.repo.RemovePauseAdmin(ctx, contract, addr); err != nil {
		return err
	}
	im.emit(ctx, contract, event.NamePauseAdminRemoved, event.Fields{"pauseAdmin": addr.ToLower()})
	return nil
}

func (im *impl) Pause(ctx bCtx.Ctx, contract admin.Contract, caller domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		ok, err := im.repo.IsPauseAdmin(ctx, contract, caller)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrOnlyPauseAdmin
		}
		o, err := im.Get(ctx, contract)
		if err != nil {
			return err
		}
		if o.Paused {
			return domain.ErrAlreadyPaused
		}
		o.Paused = true
		if err := im.repo.Upsert(ctx, o); err != nil {
			return err
		}
		im.emit(ctx, contract, event.NamePaused, event.Fields{"account": caller.ToLower()})
		return nil
	})
}

func (im *impl) Unpause(ctx bCtx.Ctx, contract admin.Contract, caller domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		o, err := im.ownedBy(ctx, contract, caller)
		if err != nil {
			return err
		}
		if !o.Paused {
			return domain.ErrAlreadyUnpaused
		}
		o.Paused = false
		if err := im.repo.Upsert(ctx, o); err != nil {
			return err
		}
		im.emit(ctx, contract, event.NameUnpaused, event.Fields{"account": caller.ToLower()})
		return nil
	})
}

func (im *impl) WhenNotPaused(ctx bCtx.Ctx, contract admin.Contract) error {
	o, err := im.Get(ctx, contract)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"contract": contract,
		}).Error("Get failed")
		return err
	}
	if o.Paused {
		return domain.ErrPaused
	}
	return nil
}

func (im *impl) emit(ctx bCtx.Ctx, contract admin.Contract, name event.Name, fields event.Fields) {
	if im.emitter == nil {
		return
	}
	im.emitter.Emit(ctx, string(contract), name, fields)
}
