package repository

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/kv"
)

const pfxCollection = "collection"

type protocolFeeDoc struct {
	Collection string `bson:"collection,omitempty"`
	Fee        uint64 `bson:"fee"`
}

type protocolFeeRepoImpl struct {
	store kv.Store
}

func NewProtocolFeeRepo(store kv.Store) fee.ProtocolFeeRepo {
	return &protocolFeeRepoImpl{store}
}

func collectionFeeKey(collection domain.Address) string {
	return keys.StoreKey(pfxCollection, keys.AddressKey(collection))
}

func (im *protocolFeeRepoImpl) FindDefault(ctx ctx.Ctx) (uint64, error) {
	doc := protocolFeeDoc{}
	if err := im.store.Get(ctx, domain.TableProtocolFees, keys.PfxDefault, &doc); err == kv.ErrNotFound {
		return 0, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("store.Get failed")
		return 0, err
	}
	return doc.Fee, nil
}

func (im *protocolFeeRepoImpl) UpsertDefault(ctx ctx.Ctx, f uint64) error {
	if err := im.store.Put(ctx, domain.TableProtocolFees, keys.PfxDefault, protocolFeeDoc{Fee: f}); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"fee": f,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *protocolFeeRepoImpl) FindForCollection(ctx ctx.Ctx, collection domain.Address) (uint64, bool, error) {
	doc := protocolFeeDoc{}
	if err := im.store.Get(ctx, domain.TableProtocolFees, collectionFeeKey(collection), &doc); err == kv.ErrNotFound {
		return 0, false, nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("store.Get failed")
		return 0, false, err
	}
	return doc.Fee, true, nil
}

func (im *protocolFeeRepoImpl) UpsertForCollection(ctx ctx.Ctx, collection domain.Address, f uint64) error {
	doc := protocolFeeDoc{Collection: collection.ToLowerStr(), Fee: f}
	if err := im.store.Put(ctx, domain.TableProtocolFees, collectionFeeKey(collection), doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"fee":        f,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *protocolFeeRepoImpl) RemoveForCollection(ctx ctx.Ctx, collection domain.Address) error {
	if err := im.store.Delete(ctx, domain.TableProtocolFees, collectionFeeKey(collection)); err != nil && err != kv.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("store.Delete failed")
		return err
	}
	return nil
}
