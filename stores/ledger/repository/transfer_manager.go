package repository

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/domain/transfer"
	"github.com/x-xyz/settlement/service/kv"
)

type overrideDoc struct {
	Collection string `bson:"collection"`
	Manager    string `bson:"manager"`
}

type transferRepoImpl struct {
	store kv.Store
}

func NewTransferManagerRepo(store kv.Store) transfer.Repo {
	return &transferRepoImpl{store}
}

func (im *transferRepoImpl) FindOverride(ctx ctx.Ctx, collection domain.Address) (domain.Address, error) {
	doc := overrideDoc{}
	if err := im.store.Get(ctx, domain.TableTransferManagers, keys.AddressKey(collection), &doc); err == kv.ErrNotFound {
		return "", domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("store.Get failed")
		return "", err
	}
	return domain.Address(doc.Manager), nil
}

func (im *transferRepoImpl) UpsertOverride(ctx ctx.Ctx, collection, manager domain.Address) error {
	doc := overrideDoc{Collection: collection.ToLowerStr(), Manager: manager.ToLowerStr()}
	if err := im.store.Put(ctx, domain.TableTransferManagers, keys.AddressKey(collection), doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"manager":    manager,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *transferRepoImpl) RemoveOverride(ctx ctx.Ctx, collection domain.Address) error {
	if err := im.store.Delete(ctx, domain.TableTransferManagers, keys.AddressKey(collection)); err == kv.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("store.Delete failed")
		return err
	}
	return nil
}
