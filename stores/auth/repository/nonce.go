package repository

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/kv"
)

type nonceDoc struct {
	Address string `bson:"address"`
	Nonce   int32  `bson:"nonce"`
}

type nonceRepoImpl struct {
	store kv.Store
}

func NewNonceRepo(store kv.Store) domain.AuthNonceRepo {
	return &nonceRepoImpl{store}
}

func (im *nonceRepoImpl) Find(ctx ctx.Ctx, address domain.Address) (int32, error) {
	doc := nonceDoc{}
	if err := im.store.Get(ctx, domain.TableAuthNonces, keys.AddressKey(address), &doc); err == kv.ErrNotFound {
		return 0, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": address,
		}).Error("store.Get failed")
		return 0, err
	}
	return doc.Nonce, nil
}

func (im *nonceRepoImpl) Upsert(ctx ctx.Ctx, address domain.Address, nonce int32) error {
	doc := nonceDoc{
		Address: address.ToLowerStr(),
		Nonce:   nonce,
	}
	if err := im.store.Put(ctx, domain.TableAuthNonces, keys.AddressKey(address), doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": address,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *nonceRepoImpl) Remove(ctx ctx.Ctx, address domain.Address) error {
	if err := im.store.Delete(ctx, domain.TableAuthNonces, keys.AddressKey(address)); err == kv.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"address": address,
		}).Error("store.Delete failed")
		return err
	}
	return nil
}
