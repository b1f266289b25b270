package repository

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/kv"
)

type ownershipDoc struct {
	Contract     string `bson:"contract"`
	Owner        string `bson:"owner"`
	PendingOwner string `bson:"pendingOwner"`
	Paused       bool   `bson:"paused"`
}

type pauseAdminDoc struct {
	Address string `bson:"address"`
}

type repoImpl struct {
	store kv.Store
}

func New(store kv.Store) admin.Repo {
	return &repoImpl{store}
}

func (im *repoImpl) FindOne(ctx ctx.Ctx, contract admin.Contract) (*admin.Ownership, error) {
	doc := ownershipDoc{}
	if err := im.store.Get(ctx, domain.TableOwnerships, string(contract), &doc); err == kv.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"contract": contract,
		}).Error("store.Get failed")
		return nil, err
	}
	return &admin.Ownership{
		Contract:     admin.Contract(doc.Contract),
		Owner:        domain.Address(doc.Owner),
		PendingOwner: domain.Address(doc.PendingOwner),
		Paused:       doc.Paused,
	}, nil
}

func (im *repoImpl) Upsert(ctx ctx.Ctx, o *admin.Ownership) error {
	doc := ownershipDoc{
		Contract:     string(o.Contract),
		Owner:        o.Owner.ToLowerStr(),
		PendingOwner: o.PendingOwner.ToLowerStr(),
		Paused:       o.Paused,
	}
	if err := im.store.Put(ctx, domain.TableOwnerships, string(o.Contract), doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"ownership": o,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func pauseAdminKey(contract admin.Contract, addr domain.Address) string {
	return keys.StoreKey(string(contract), keys.AddressKey(addr))
}

func (im *repoImpl) IsPauseAdmin(ctx ctx.Ctx, contract admin.Contract, addr domain.Address) (bool, error) {
	ok, err := kv.Exists(ctx, im.store, domain.TablePauseAdmins, pauseAdminKey(contract, addr), &pauseAdminDoc{})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"contract": contract,
			"address":  addr,
		}).Error("kv.Exists failed")
		return false, err
	}
	return ok, nil
}

func (im *repoImpl) AddPauseAdmin(ctx ctx.Ctx, contract admin.Contract, addr domain.Address) error {
	doc := pauseAdminDoc{Address: addr.ToLowerStr()}
	if err := im.store.Put(ctx, domain.TablePauseAdmins, pauseAdminKey(contract, addr), doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"contract": contract,
			"address":  addr,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *repoImpl) RemovePauseAdmin(ctx ctx.Ctx, contract admin.Contract, addr domain.Address) error {
	if err := im.store.Delete(ctx, domain.TablePauseAdmins, pauseAdminKey(contract, addr)); err != nil && err != kv.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err":      err,
			"contract": contract,
			"address":  addr,
		}).Error("store.Delete failed")
		return err
	}
	return nil
}

func (im *repoImpl) PauseAdmins(ctx ctx.Ctx, contract admin.Contract) ([]domain.Address, error) {
	res := []domain.Address{}
	err := im.store.Scan(ctx, domain.TablePauseAdmins, keys.Prefix(string(contract)), func(_ string, decode kv.DecodeFunc) error {
		doc := pauseAdminDoc{}
		if err := decode(&doc); err != nil {
			return err
		}
		res = append(res, domain.Address(doc.Address))
		return nil
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"contract": contract,
		}).Error("store.Scan failed")
		return nil, err
	}
	return res, nil
}
