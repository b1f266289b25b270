package repository

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/exchange"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/kv"
)

type configDoc struct {
	ProtocolFeeRecipient string `bson:"protocolFeeRecipient"`
	CurrencyManager      string `bson:"currencyManager"`
	ExecutionManager     string `bson:"executionManager"`
	ProtocolFeeManager   string `bson:"protocolFeeManager"`
	RoyaltyFeeManager    string `bson:"royaltyFeeManager"`
	TransferSelector     string `bson:"transferSelector"`
}

type notifiableDoc struct {
	Address string `bson:"address"`
}

type repoImpl struct {
	store kv.Store
}

func New(store kv.Store) exchange.Repo {
	return &repoImpl{store}
}

func (im *repoImpl) FindConfig(ctx ctx.Ctx) (*exchange.Config, error) {
	doc := configDoc{}
	if err := im.store.Get(ctx, domain.TableExchangeConfigs, keys.PfxDefault, &doc); err == kv.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("store.Get failed")
		return nil, err
	}
	return &exchange.Config{
		ProtocolFeeRecipient: domain.Address(doc.ProtocolFeeRecipient),
		CurrencyManager:      domain.Address(doc.CurrencyManager),
		ExecutionManager:     domain.Address(doc.ExecutionManager),
		ProtocolFeeManager:   domain.Address(doc.ProtocolFeeManager),
		RoyaltyFeeManager:    domain.Address(doc.RoyaltyFeeManager),
		TransferSelector:     domain.Address(doc.TransferSelector),
	}, nil
}

func (im *repoImpl) UpsertConfig(ctx ctx.Ctx, cfg *exchange.Config) error {
	doc := configDoc{
		ProtocolFeeRecipient: cfg.ProtocolFeeRecipient.ToLowerStr(),
		CurrencyManager:      cfg.CurrencyManager.ToLowerStr(),
		ExecutionManager:     cfg.ExecutionManager.ToLowerStr(),
		ProtocolFeeManager:   cfg.ProtocolFeeManager.ToLowerStr(),
		RoyaltyFeeManager:    cfg.RoyaltyFeeManager.ToLowerStr(),
		TransferSelector:     cfg.TransferSelector.ToLowerStr(),
	}
	if err := im.store.Put(ctx, domain.TableExchangeConfigs, keys.PfxDefault, doc); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *repoImpl) IsNotifiable(ctx ctx.Ctx, addr domain.Address) (bool, error) {
	ok, err := kv.Exists(ctx, im.store, domain.TableNotifiables, keys.AddressKey(addr), &notifiableDoc{})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"notifiable": addr,
		}).Error("kv.Exists failed")
		return false, err
	}
	return ok, nil
}

func (im *repoImpl) AddNotifiable(ctx ctx.Ctx, addr domain.Address) error {
	if err := im.store.Put(ctx, domain.TableNotifiables, keys.AddressKey(addr), notifiableDoc{addr.ToLowerStr()}); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"notifiable": addr,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *repoImpl) RemoveNotifiable(ctx ctx.Ctx, addr domain.Address) error {
	if err := im.store.Delete(ctx, domain.TableNotifiables, keys.AddressKey(addr)); err == kv.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"notifiable": addr,
		}).Error("store.Delete failed")
		return err
	}
	return nil
}
