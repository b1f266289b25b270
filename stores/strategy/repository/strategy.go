package repository

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/strategy"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/kv"
)

type strategyDoc struct {
	Address string `bson:"address"`
}

type repoImpl struct {
	store kv.Store
}

func New(store kv.Store) strategy.Repo {
	return &repoImpl{store}
}

func (im *repoImpl) Exists(ctx ctx.Ctx, addr domain.Address) (bool, error) {
	ok, err := kv.Exists(ctx, im.store, domain.TableStrategies, keys.AddressKey(addr), &strategyDoc{})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"strategy": addr,
		}).Error("kv.Exists failed")
		return false, err
	}
	return ok, nil
}

func (im *repoImpl) List(ctx ctx.Ctx) ([]domain.Address, error) {
	res := []domain.Address{}
	err := im.store.Scan(ctx, domain.TableStrategies, "", func(_ string, decode kv.DecodeFunc) error {
		doc := strategyDoc{}
		if err := decode(&doc); err != nil {
			return err
		}
		res = append(res, domain.Address(doc.Address))
		return nil
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("store.Scan failed")
		return nil, err
	}
	return res, nil
}

func (im *repoImpl) Add(ctx ctx.Ctx, addr domain.Address) error {
	if err := im.store.Put(ctx, domain.TableStrategies, keys.AddressKey(addr), strategyDoc{addr.ToLowerStr()}); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"strategy": addr,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *repoImpl) Remove(ctx ctx.Ctx, addr domain.Address) error {
	if err := im.store.Delete(ctx, domain.TableStrategies, keys.AddressKey(addr)); err == kv.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"strategy": addr,
		}).Error("store.Delete failed")
		return err
	}
	return nil
}
