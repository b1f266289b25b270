package ledger

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/service/kv"
)

type collectionDoc struct {
	Address     string `bson:"address"`
	Standard    int    `bson:"standard"`
	Owner       string `bson:"owner"`
	Admin       string `bson:"admin"`
	HasERC2981  bool   `bson:"hasErc2981"`
	RoyaltyTo   string `bson:"royaltyTo,omitempty"`
	RoyaltyRate uint64 `bson:"royaltyRate,omitempty"`
}

type ownerDoc struct {
	Owner string `bson:"owner"`
}

type approvalDoc struct {
	Approved bool `bson:"approved"`
}

type assetLedger struct {
	store kv.Store
}

func NewAssetLedger(store kv.Store) ledger.AssetLedger {
	return &assetLedger{store: store}
}

func (l *assetLedger) RegisterCollection(c ctx.Ctx, col ledger.Collection) error {
	if !col.Address.IsValid() {
		return domain.ErrInvalidAddress
	}
	if col.Standard != domain.TokenType721 && col.Standard != domain.TokenType1155 {
		return domain.ErrUnsupportedCollectionStandard
	}
	doc := collectionDoc{
		Address:  col.Address.ToLowerStr(),
		Standard: int(col.Standard),
		Owner:    col.Owner.ToLowerStr(),
		Admin:    col.Admin.ToLowerStr(),
	}
	if col.ERC2981 != nil {
		doc.HasERC2981 = true
		doc.RoyaltyTo = col.ERC2981.Receiver.ToLowerStr()
		doc.RoyaltyRate = col.ERC2981.Fee
	}
	return l.store.Put(c, domain.TableCollections, keys.AddressKey(col.Address), doc)
}

func (l *assetLedger) GetCollection(c ctx.Ctx, address domain.Address) (*ledger.Collection, error) {
	doc := collectionDoc{}
	if err := l.store.Get(c, domain.TableCollections, keys.AddressKey(address), &doc); err == kv.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	col := &ledger.Collection{
		Address:  domain.Address(doc.Address),
		Standard: domain.TokenType(doc.Standard),
		Owner:    domain.Address(doc.Owner),
		Admin:    domain.Address(doc.Admin),
	}
	if doc.HasERC2981 {
		col.ERC2981 = &ledger.RoyaltyInfo{Receiver: domain.Address(doc.RoyaltyTo), Fee: doc.RoyaltyRate}
	}
	return col, nil
}

func tokenKey(collection domain.Address, tokenId *big.Int) string {
	return keys.TokenKey(collection, tokenId)
}

func holdingKey(collection, owner domain.Address, tokenId *big.Int) string {
	return keys.StoreKey(collection.ToLowerStr(), domain.BigString(tokenId), owner.ToLowerStr())
}

func (l *assetLedger) Mint(c ctx.Ctx, collection, to domain.Address, tokenId, amount *big.Int) error {
	col, err := l.GetCollection(c, collection)
	if err != nil {
		return err
	}
	if to.IsNull() {
		return domain.ErrExpectedNonNullAddress
	}
	switch col.Standard {
	case domain.TokenType721:
		if _, err := l.OwnerOf(c, collection, tokenId); err == nil {
			return domain.ErrTransferNotOwner
		} else if err != domain.ErrNotFound {
			return err
		}
		return l.store.Put(c, domain.TableTokenOwners, tokenKey(collection, tokenId), ownerDoc{Owner: to.ToLowerStr()})
	default:
		return credit(c, l.store, domain.TableTokenBalances, holdingKey(collection, to, tokenId), amount)
	}
}

func (l *assetLedger) OwnerOf(c ctx.Ctx, collection domain.Address, tokenId *big.Int) (domain.Address, error) {
	doc := ownerDoc{}
	if err := l.store.Get(c, domain.TableTokenOwners, tokenKey(collection, tokenId), &doc); err == kv.ErrNotFound {
		return domain.EmptyAddress, domain.ErrNotFound
	} else if err != nil {
		return domain.EmptyAddress, err
	}
	return domain.Address(doc.Owner), nil
}

func (l *assetLedger) BalanceOf(c ctx.Ctx, collection, owner domain.Address, tokenId *big.Int) (*big.Int, error) {
	col, err := l.GetCollection(c, collection)
	if err != nil {
		return nil, err
	}
	if col.Standard == domain.TokenType1155 {
		return getAmount(c, l.store, domain.TableTokenBalances, holdingKey(collection, owner, tokenId))
	}
	holder, err := l.OwnerOf(c, collection, tokenId)
	if err == domain.ErrNotFound || (err == nil && !holder.Equals(owner)) {
		return new(big.Int), nil
	} else if err != nil {
		return nil, err
	}
	return big.NewInt(1), nil
}

func approvalKey(collection, owner, operator domain.Address) string {
	return keys.StoreKey(collection.ToLowerStr(), owner.ToLowerStr(), operator.ToLowerStr())
}

func (l *assetLedger) SetApprovalForAll(c ctx.Ctx, collection, owner, operator domain.Address, approved bool) error {
	if operator.IsNull() {
		return domain.ErrExpectedNonNullAddress
	}
	key := approvalKey(collection, owner, operator)
	if !approved {
		if err := l.store.Delete(c, domain.TableOperatorApprovals, key); err != nil && err != kv.ErrNotFound {
			return err
		}
		return nil
	}
	return l.store.Put(c, domain.TableOperatorApprovals, key, approvalDoc{Approved: true})
}

func (l *assetLedger) IsApprovedForAll(c ctx.Ctx, collection, owner, operator domain.Address) (bool, error) {
	return kv.Exists(c, l.store, domain.TableOperatorApprovals, approvalKey(collection, owner, operator), &approvalDoc{})
}

func (l *assetLedger) TransferFrom(c ctx.Ctx, collection, operator, from, to domain.Address, tokenId, amount *big.Int) error {
	col, err := l.GetCollection(c, collection)
	if err == domain.ErrNotFound {
		return domain.ErrUnsupportedCollectionStandard
	} else if err != nil {
		return err
	}
	if to.IsNull() {
		return domain.ErrExpectedNonNullAddress
	}
	if !operator.Equals(from) {
		approved, err := l.IsApprovedForAll(c, collection, from, operator)
		if err != nil {
			return err
		}
		if !approved {
			c.WithFields(log.Fields{
				"collection": collection,
				"tokenId":    domain.BigString(tokenId),
				"from":       from,
				"operator":   operator,
			}).Warn("transfer not approved")
			return domain.ErrTransferNotApproved
		}
	}

	if col.Standard == domain.TokenType721 {
		owner, err := l.OwnerOf(c, collection, tokenId)
		if err == domain.ErrNotFound || (err == nil && !owner.Equals(from)) {
			return domain.ErrTransferNotOwner
		} else if err != nil {
			return err
		}
		return l.store.Put(c, domain.TableTokenOwners, tokenKey(collection, tokenId), ownerDoc{Owner: to.ToLowerStr()})
	}

	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	if err := move(c, l.store, domain.TableTokenBalances, holdingKey(collection, from, tokenId), holdingKey(collection, to, tokenId), amount); err == domain.ErrInsufficientBalance {
		return domain.ErrTransferNotEnoughToken
	} else if err != nil {
		return err
	}
	return nil
}
