package repository

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/kv"
)

type royaltyConfigDoc struct {
	RoyaltyFeeLimit  uint64 `bson:"royaltyFeeLimit"`
	MaxNumRecipients int    `bson:"maxNumRecipients"`
	RegistryV2       string `bson:"registryV2"`
}

type royaltyInfoDoc struct {
	Collection string `bson:"collection"`
	Setter     string `bson:"setter"`
	Receiver   string `bson:"receiver"`
	Fee        uint64 `bson:"fee"`
}

type royaltyPartDoc struct {
	Receiver string `bson:"receiver"`
	Fee      uint64 `bson:"fee"`
}

type royaltyInfoPartsDoc struct {
	Collection string           `bson:"collection"`
	Setter     string           `bson:"setter"`
	Parts      []royaltyPartDoc `bson:"parts"`
}

type royaltyRepoImpl struct {
	store kv.Store
}

func NewRoyaltyRepo(store kv.Store) fee.RoyaltyRepo {
	return &royaltyRepoImpl{store}
}

func (im *royaltyRepoImpl) find(ctx ctx.Ctx, table domain.Table, key string, out interface{}) error {
	if err := im.store.Get(ctx, table, key, out); err == kv.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"table": table,
			"key":   key,
		}).Error("store.Get failed")
		return err
	}
	return nil
}

func (im *royaltyRepoImpl) put(ctx ctx.Ctx, table domain.Table, key string, val interface{}) error {
	if err := im.store.Put(ctx, table, key, val); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"table": table,
			"key":   key,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *royaltyRepoImpl) FindConfig(ctx ctx.Ctx) (*fee.RoyaltyConfig, error) {
	doc := royaltyConfigDoc{}
	if err := im.find(ctx, domain.TableRoyaltyConfigs, keys.PfxDefault, &doc); err != nil {
		return nil, err
	}
	return &fee.RoyaltyConfig{
		RoyaltyFeeLimit:  doc.RoyaltyFeeLimit,
		MaxNumRecipients: doc.MaxNumRecipients,
		RegistryV2:       domain.Address(doc.RegistryV2),
	}, nil
}

func (im *royaltyRepoImpl) UpsertConfig(ctx ctx.Ctx, cfg *fee.RoyaltyConfig) error {
	doc := royaltyConfigDoc{
		RoyaltyFeeLimit:  cfg.RoyaltyFeeLimit,
		MaxNumRecipients: cfg.MaxNumRecipients,
		RegistryV2:       cfg.RegistryV2.ToLowerStr(),
	}
	return im.put(ctx, domain.TableRoyaltyConfigs, keys.PfxDefault, doc)
}

func (im *royaltyRepoImpl) FindInfo(ctx ctx.Ctx, collection domain.Address) (*fee.RoyaltyFeeInfo, error) {
	doc := royaltyInfoDoc{}
	if err := im.find(ctx, domain.TableRoyaltyFeesV1, keys.AddressKey(collection), &doc); err != nil {
		return nil, err
	}
	return &fee.RoyaltyFeeInfo{
		Collection: domain.Address(doc.Collection),
		Setter:     domain.Address(doc.Setter),
		Receiver:   domain.Address(doc.Receiver),
		Fee:        doc.Fee,
	}, nil
}

func (im *royaltyRepoImpl) UpsertInfo(ctx ctx.Ctx, info *fee.RoyaltyFeeInfo) error {
	doc := royaltyInfoDoc{
		Collection: info.Collection.ToLowerStr(),
		Setter:     info.Setter.ToLowerStr(),
		Receiver:   info.Receiver.ToLowerStr(),
		Fee:        info.Fee,
	}
	return im.put(ctx, domain.TableRoyaltyFeesV1, keys.AddressKey(info.Collection), doc)
}

func (im *royaltyRepoImpl) FindInfoParts(ctx ctx.Ctx, collection domain.Address) (*fee.RoyaltyFeeInfoParts, error) {
	doc := royaltyInfoPartsDoc{}
	if err := im.find(ctx, domain.TableRoyaltyFeesV2, keys.AddressKey(collection), &doc); err != nil {
		return nil, err
	}
	res := &fee.RoyaltyFeeInfoParts{
		Collection: domain.Address(doc.Collection),
		Setter:     domain.Address(doc.Setter),
		Parts:      make([]fee.RoyaltyFeeTypes, 0, len(doc.Parts)),
	}
	for _, p := range doc.Parts {
		res.Parts = append(res.Parts, fee.RoyaltyFeeTypes{Receiver: domain.Address(p.Receiver), Fee: p.Fee})
	}
	return res, nil
}

func (im *royaltyRepoImpl) UpsertInfoParts(ctx ctx.Ctx, parts *fee.RoyaltyFeeInfoParts) error {
	doc := royaltyInfoPartsDoc{
		Collection: parts.Collection.ToLowerStr(),
		Setter:     parts.Setter.ToLowerStr(),
		Parts:      make([]royaltyPartDoc, 0, len(parts.Parts)),
	}
	for _, p := range parts.Parts {
		doc.Parts = append(doc.Parts, royaltyPartDoc{Receiver: p.Receiver.ToLowerStr(), Fee: p.Fee})
	}
	return im.put(ctx, domain.TableRoyaltyFeesV2, keys.AddressKey(parts.Collection), doc)
}
