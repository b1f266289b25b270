package repository

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/order"
	"github.com/x-xyz/settlement/service/kv"
)

type registeredOrderDoc struct {
	Digest       string `bson:"digest"`
	Signer       string `bson:"signer"`
	RegisteredAt int64  `bson:"registeredAt"`
}

type registeredOrderRepoImpl struct {
	store kv.Store
}

func NewRegisteredOrderRepo(store kv.Store) order.RegisteredOrderRepo {
	return &registeredOrderRepoImpl{store}
}

func (im *registeredOrderRepoImpl) FindOne(ctx ctx.Ctx, digest domain.OrderHash) (*order.RegisteredOrder, error) {
	doc := registeredOrderDoc{}
	if err := im.store.Get(ctx, domain.TableRegisteredOrders, string(digest.ToLower()), &doc); err == kv.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"digest": digest,
		}).Error("store.Get failed")
		return nil, err
	}
	return &order.RegisteredOrder{
		Digest:       domain.OrderHash(doc.Digest),
		Signer:       domain.Address(doc.Signer),
		RegisteredAt: doc.RegisteredAt,
	}, nil
}

func (im *registeredOrderRepoImpl) Create(ctx ctx.Ctx, o order.RegisteredOrder) error {
	key := string(o.Digest.ToLower())
	if ok, err := kv.Exists(ctx, im.store, domain.TableRegisteredOrders, key, &registeredOrderDoc{}); err != nil {
		return err
	} else if ok {
		return domain.ErrOrderAlreadyRegistered
	}
	doc := registeredOrderDoc{
		Digest:       key,
		Signer:       o.Signer.ToLowerStr(),
		RegisteredAt: o.RegisteredAt,
	}
	if err := im.store.Put(ctx, domain.TableRegisteredOrders, key, doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"digest": key,
		}).Error("store.Put failed")
		return err
	}
	return nil
}
