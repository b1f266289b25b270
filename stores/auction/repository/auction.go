package repository

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/auction"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/kv"
)

type englishAuctionDoc struct {
	Collection         string `bson:"collection"`
	TokenId            string `bson:"tokenId"`
	Creator            string `bson:"creator"`
	Nonce              string `bson:"nonce"`
	Currency           string `bson:"currency"`
	LastBidder         string `bson:"lastBidder"`
	LastBidPrice       string `bson:"lastBidPrice"`
	StartPrice         string `bson:"startPrice"`
	EndTime            int64  `bson:"endTime"`
	MinPercentageToAsk uint64 `bson:"minPercentageToAsk"`
}

func (d *englishAuctionDoc) toDomain() (*auction.EnglishAuction, error) {
	a := &auction.EnglishAuction{
		Collection:         domain.Address(d.Collection),
		Creator:            domain.Address(d.Creator),
		Currency:           domain.Address(d.Currency),
		LastBidder:         domain.Address(d.LastBidder),
		EndTime:            d.EndTime,
		MinPercentageToAsk: d.MinPercentageToAsk,
	}
	var err error
	if a.TokenId, err = domain.ParseBig(d.TokenId); err != nil {
		return nil, err
	}
	if a.Nonce, err = domain.ParseBig(d.Nonce); err != nil {
		return nil, err
	}
	if a.LastBidPrice, err = domain.ParseBig(d.LastBidPrice); err != nil {
		return nil, err
	}
	if a.StartPrice, err = domain.ParseBig(d.StartPrice); err != nil {
		return nil, err
	}
	return a, nil
}

type dutchAuctionDoc struct {
	Collection         string `bson:"collection"`
	TokenId            string `bson:"tokenId"`
	Creator            string `bson:"creator"`
	Nonce              string `bson:"nonce"`
	Currency           string `bson:"currency"`
	StartPrice         string `bson:"startPrice"`
	EndPrice           string `bson:"endPrice"`
	StartTime          int64  `bson:"startTime"`
	EndTime            int64  `bson:"endTime"`
	DropInterval       int64  `bson:"dropInterval"`
	MinPercentageToAsk uint64 `bson:"minPercentageToAsk"`
}

func (d *dutchAuctionDoc) toDomain() (*auction.DutchAuction, error) {
	a := &auction.DutchAuction{
		Collection:         domain.Address(d.Collection),
		Creator:            domain.Address(d.Creator),
		Currency:           domain.Address(d.Currency),
		StartTime:          d.StartTime,
		EndTime:            d.EndTime,
		DropInterval:       d.DropInterval,
		MinPercentageToAsk: d.MinPercentageToAsk,
	}
	var err error
	if a.TokenId, err = domain.ParseBig(d.TokenId); err != nil {
		return nil, err
	}
	if a.Nonce, err = domain.ParseBig(d.Nonce); err != nil {
		return nil, err
	}
	if a.StartPrice, err = domain.ParseBig(d.StartPrice); err != nil {
		return nil, err
	}
	if a.EndPrice, err = domain.ParseBig(d.EndPrice); err != nil {
		return nil, err
	}
	return a, nil
}

type configDoc struct {
	MinBidIncrementPct   uint64 `bson:"minBidIncrementPct"`
	RefreshTime          int64  `bson:"refreshTime"`
	ProtocolFeeRecipient string `bson:"protocolFeeRecipient"`
	CurrencyManager      string `bson:"currencyManager"`
	ProtocolFeeManager   string `bson:"protocolFeeManager"`
	RoyaltyFeeManager    string `bson:"royaltyFeeManager"`
}

type nonceDoc struct {
	Creator string `bson:"creator"`
	Nonce   string `bson:"nonce"`
}

type auctionRepoImpl struct {
	store kv.Store
}

func New(store kv.Store) auction.Repo {
	return &auctionRepoImpl{store}
}

func (im *auctionRepoImpl) FindEnglishAuction(ctx ctx.Ctx, collection domain.Address, tokenId *big.Int) (*auction.EnglishAuction, error) {
	doc := englishAuctionDoc{}
	if err := im.store.Get(ctx, domain.TableEnglishAuctions, keys.TokenKey(collection, tokenId), &doc); err == kv.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"tokenId":    domain.BigString(tokenId),
		}).Error("store.Get failed")
		return nil, err
	}
	return doc.toDomain()
}

func (im *auctionRepoImpl) UpsertEnglishAuction(ctx ctx.Ctx, a *auction.EnglishAuction) error {
	doc := englishAuctionDoc{
		Collection:         a.Collection.ToLowerStr(),
		TokenId:            domain.BigString(a.TokenId),
		Creator:            a.Creator.ToLowerStr(),
		Nonce:              domain.BigString(a.Nonce),
		Currency:           a.Currency.ToLowerStr(),
		LastBidder:         a.LastBidder.ToLowerStr(),
		LastBidPrice:       domain.BigString(a.LastBidPrice),
		StartPrice:         domain.BigString(a.StartPrice),
		EndTime:            a.EndTime,
		MinPercentageToAsk: a.MinPercentageToAsk,
	}
	if err := im.store.Put(ctx, domain.TableEnglishAuctions, keys.TokenKey(a.Collection, a.TokenId), doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": a.Collection,
			"tokenId":    doc.TokenId,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *auctionRepoImpl) RemoveEnglishAuction(ctx ctx.Ctx, collection domain.Address, tokenId *big.Int) error {
	return im.remove(ctx, domain.TableEnglishAuctions, collection, tokenId)
}

func (im *auctionRepoImpl) ListEnglishAuctions(ctx ctx.Ctx) ([]*auction.EnglishAuction, error) {
	res := []*auction.EnglishAuction{}
	err := im.store.Scan(ctx, domain.TableEnglishAuctions, "", func(key string, decode kv.DecodeFunc) error {
		doc := englishAuctionDoc{}
		if err := decode(&doc); err != nil {
			return err
		}
		a, err := doc.toDomain()
		if err != nil {
			return err
		}
		res = append(res, a)
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

func (im *auctionRepoImpl) FindDutchAuction(ctx ctx.Ctx, collection domain.Address, tokenId *big.Int) (*auction.DutchAuction, error) {
	doc := dutchAuctionDoc{}
	if err := im.store.Get(ctx, domain.TableDutchAuctions, keys.TokenKey(collection, tokenId), &doc); err == kv.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
			"tokenId":    domain.BigString(tokenId),
		}).Error("store.Get failed")
		return nil, err
	}
	return doc.toDomain()
}

func (im *auctionRepoImpl) UpsertDutchAuction(ctx ctx.Ctx, a *auction.DutchAuction) error {
	doc := dutchAuctionDoc{
		Collection:         a.Collection.ToLowerStr(),
		TokenId:            domain.BigString(a.TokenId),
		Creator:            a.Creator.ToLowerStr(),
		Nonce:              domain.BigString(a.Nonce),
		Currency:           a.Currency.ToLowerStr(),
		StartPrice:         domain.BigString(a.StartPrice),
		EndPrice:           domain.BigString(a.EndPrice),
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		DropInterval:       a.DropInterval,
		MinPercentageToAsk: a.MinPercentageToAsk,
	}
	if err := im.store.Put(ctx, domain.TableDutchAuctions, keys.TokenKey(a.Collection, a.TokenId), doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": a.Collection,
			"tokenId":    doc.TokenId,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *auctionRepoImpl) RemoveDutchAuction(ctx ctx.Ctx, collection domain.Address, tokenId *big.Int) error {
	return im.remove(ctx, domain.TableDutchAuctions, collection, tokenId)
}

func (im *auctionRepoImpl) ListDutchAuctions(ctx ctx.Ctx) ([]*auction.DutchAuction, error) {
	res := []*auction.DutchAuction{}
	err := im.store.Scan(ctx, domain.TableDutchAuctions, "", func(key string, decode kv.DecodeFunc) error {
		doc := dutchAuctionDoc{}
		if err := decode(&doc); err != nil {
			return err
		}
		a, err := doc.toDomain()
		if err != nil {
			return err
		}
		res = append(res, a)
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

func (im *auctionRepoImpl) remove(ctx ctx.Ctx, table domain.Table, collection domain.Address, tokenId *big.Int) error {
	if err := im.store.Delete(ctx, table, keys.TokenKey(collection, tokenId)); err == kv.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"table":      table,
			"collection": collection,
			"tokenId":    domain.BigString(tokenId),
		}).Error("store.Delete failed")
		return err
	}
	return nil
}

func (im *auctionRepoImpl) FindConfig(ctx ctx.Ctx) (*auction.Config, error) {
	doc := configDoc{}
	if err := im.store.Get(ctx, domain.TableAuctionHouseConfigs, keys.PfxDefault, &doc); err == kv.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("store.Get failed")
		return nil, err
	}
	return &auction.Config{
		MinBidIncrementPct:   doc.MinBidIncrementPct,
		RefreshTime:          doc.RefreshTime,
		ProtocolFeeRecipient: domain.Address(doc.ProtocolFeeRecipient),
		CurrencyManager:      domain.Address(doc.CurrencyManager),
		ProtocolFeeManager:   domain.Address(doc.ProtocolFeeManager),
		RoyaltyFeeManager:    domain.Address(doc.RoyaltyFeeManager),
	}, nil
}

func (im *auctionRepoImpl) UpsertConfig(ctx ctx.Ctx, cfg *auction.Config) error {
	doc := configDoc{
		MinBidIncrementPct:   cfg.MinBidIncrementPct,
		RefreshTime:          cfg.RefreshTime,
		ProtocolFeeRecipient: cfg.ProtocolFeeRecipient.ToLowerStr(),
		CurrencyManager:      cfg.CurrencyManager.ToLowerStr(),
		ProtocolFeeManager:   cfg.ProtocolFeeManager.ToLowerStr(),
		RoyaltyFeeManager:    cfg.RoyaltyFeeManager.ToLowerStr(),
	}
	if err := im.store.Put(ctx, domain.TableAuctionHouseConfigs, keys.PfxDefault, doc); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("store.Put failed")
		return err
	}
	return nil
}

func (im *auctionRepoImpl) NextNonce(ctx ctx.Ctx, creator domain.Address) (*big.Int, error) {
	doc := nonceDoc{}
	nonce := new(big.Int)
	if err := im.store.Get(ctx, domain.TableAuctionNonces, keys.AddressKey(creator), &doc); err == nil {
		n, err := domain.ParseBig(doc.Nonce)
		if err != nil {
			return nil, err
		}
		nonce = n
	} else if err != kv.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err":     err,
			"creator": creator,
		}).Error("store.Get failed")
		return nil, err
	}
	next := nonceDoc{
		Creator: creator.ToLowerStr(),
		Nonce:   domain.BigString(new(big.Int).Add(nonce, big.NewInt(1))),
	}
	if err := im.store.Put(ctx, domain.TableAuctionNonces, keys.AddressKey(creator), next); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"creator": creator,
		}).Error("store.Put failed")
		return nil, err
	}
	return nonce, nil
}
