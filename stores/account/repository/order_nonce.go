package repository

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/account"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/kv"
)

type orderNonceDoc struct {
	Address            string `bson:"address"`
	MinValidOrderNonce string `bson:"minValidOrderNonce"`
}

type executedNonceDoc struct {
	Address string `bson:"address"`
	Nonce   string `bson:"nonce"`
}

type orderNonceRepoImpl struct {
	store kv.Store
}

func NewOrderNonceRepo(store kv.Store) account.OrderNonceRepo {
	return &orderNonceRepoImpl{store}
}

func (im *orderNonceRepoImpl) FindMinNonce(ctx ctx.Ctx, signer domain.Address) (*big.Int, error) {
	doc := orderNonceDoc{}
	if err := im.store.Get(ctx, domain.TableOrderNonces, keys.AddressKey(signer), &doc); err == kv.ErrNotFound {
		return new(big.Int), nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": signer,
		}).Error("store.Get failed")
		return nil, err
	}
	return domain.ParseBig(doc.MinValidOrderNonce)
}

func (im *orderNonceRepoImpl) UpdateMinNonce(ctx ctx.Ctx, signer domain.Address, nonce *big.Int) error {
	doc := orderNonceDoc{
		Address:            signer.ToLowerStr(),
		MinValidOrderNonce: domain.BigString(nonce),
	}
	if err := im.store.Put(ctx, domain.TableOrderNonces, keys.AddressKey(signer), doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": signer,
			"nonce":  doc.MinValidOrderNonce,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *orderNonceRepoImpl) IsExecutedOrCancelled(ctx ctx.Ctx, signer domain.Address, nonce *big.Int) (bool, error) {
	ok, err := kv.Exists(ctx, im.store, domain.TableExecutedNonces, keys.NonceKey(signer, nonce), &executedNonceDoc{})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": signer,
			"nonce":  domain.BigString(nonce),
		}).Error("kv.Exists failed")
		return false, err
	}
	return ok, nil
}

func (im *orderNonceRepoImpl) MarkExecutedOrCancelled(ctx ctx.Ctx, signer domain.Address, nonce *big.Int) error {
	doc := executedNonceDoc{
		Address: signer.ToLowerStr(),
		Nonce:   domain.BigString(nonce),
	}
	if err := im.store.Put(ctx, domain.TableExecutedNonces, keys.NonceKey(signer, nonce), doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": signer,
			"nonce":  doc.Nonce,
		}).Error("store.Put failed")
		return err
	}
	return nil
}
