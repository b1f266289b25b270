package transfer

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
)

// Manager moves one asset of a given token standard
type Manager interface {
	Address() domain.Address
	TransferNonFungibleToken(c ctx.Ctx, collection, from, to domain.Address, tokenId, amount *big.Int) error
}

// Selector resolves the transfer manager of a collection, a per collection
// override wins over the standard based default
type Selector interface {
	ManagerFor(c ctx.Ctx, collection domain.Address) (Manager, error)
	AddCollectionTransferManager(c ctx.Ctx, caller, collection, manager domain.Address) error
	RemoveCollectionTransferManager(c ctx.Ctx, caller, collection domain.Address) error
}

// Repo keeps the per collection manager overrides
type Repo interface {
	FindOverride(c ctx.Ctx, collection domain.Address) (domain.Address, error)
	UpsertOverride(c ctx.Ctx, collection, manager domain.Address) error
	RemoveOverride(c ctx.Ctx, collection domain.Address) error
}

// Item is one asset of a batch transfer. Amount is ignored for ERC-721.
type Item struct {
	Collection domain.Address `json:"collection"`
	Recipient  domain.Address `json:"recipient"`
	TokenId    *big.Int       `json:"tokenId"`
	Amount     *big.Int       `json:"amount"`
}

// BatchTransferer moves several assets of one holder in a single atomic
// call, through the transfer manager of each collection
type BatchTransferer interface {
	BatchTransfer(c ctx.Ctx, caller domain.Address, items []Item) error
	// BatchTransferNonFungibleTokens sends every item from from to to, caller must be from
	BatchTransferNonFungibleTokens(c ctx.Ctx, caller, from, to domain.Address, items []Item) error
}
