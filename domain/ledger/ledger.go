package ledger

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
)

// CurrencyLedger is the fungible custody ledger (ERC-20 semantics)
type CurrencyLedger interface {
	BalanceOf(c ctx.Ctx, currency, owner domain.Address) (*big.Int, error)
	Allowance(c ctx.Ctx, currency, owner, spender domain.Address) (*big.Int, error)
	Approve(c ctx.Ctx, currency, owner, spender domain.Address, amount *big.Int) error
	Mint(c ctx.Ctx, currency, to domain.Address, amount *big.Int) error

	// Transfer moves from's own funds
	Transfer(c ctx.Ctx, currency, from, to domain.Address, amount *big.Int) error
	// TransferFrom moves from's funds on behalf of spender and consumes allowance
	TransferFrom(c ctx.Ctx, currency, spender, from, to domain.Address, amount *big.Int) error
}

// NativeLedger holds the chain's native value and wraps it into the
// wrapped-native currency of the CurrencyLedger
type NativeLedger interface {
	WrappedNative() domain.Address
	BalanceOf(c ctx.Ctx, owner domain.Address) (*big.Int, error)
	Credit(c ctx.Ctx, owner domain.Address, amount *big.Int) error

	// Wrap debits from's native balance and credits to with wrapped native
	Wrap(c ctx.Ctx, from, to domain.Address, amount *big.Int) error
	// Unwrap burns owner's wrapped native and credits the native balance
	Unwrap(c ctx.Ctx, owner domain.Address, amount *big.Int) error
}

// RoyaltyInfo is a collection level ERC-2981 answer
type RoyaltyInfo struct {
	Receiver domain.Address `json:"receiver"`
	Fee      uint64         `json:"fee"`
}

type Collection struct {
	Address  domain.Address   `json:"address"`
	Standard domain.TokenType `json:"standard"`
	Owner    domain.Address   `json:"owner"`
	Admin    domain.Address   `json:"admin"`

	// ERC2981 is nil when the collection does not implement the standard
	ERC2981 *RoyaltyInfo `json:"erc2981,omitempty"`
}

// AssetLedger is the non-fungible custody ledger (ERC-721 and ERC-1155)
type AssetLedger interface {
	RegisterCollection(c ctx.Ctx, col Collection) error
	GetCollection(c ctx.Ctx, address domain.Address) (*Collection, error)

	Mint(c ctx.Ctx, collection, to domain.Address, tokenId, amount *big.Int) error
	OwnerOf(c ctx.Ctx, collection domain.Address, tokenId *big.Int) (domain.Address, error)
	BalanceOf(c ctx.Ctx, collection, owner domain.Address, tokenId *big.Int) (*big.Int, error)

	SetApprovalForAll(c ctx.Ctx, collection, owner, operator domain.Address, approved bool) error
	IsApprovedForAll(c ctx.Ctx, collection, owner, operator domain.Address) (bool, error)

	// TransferFrom moves amount units of tokenId, operator must be from or approved by from
	TransferFrom(c ctx.Ctx, collection, operator, from, to domain.Address, tokenId, amount *big.Int) error
}
