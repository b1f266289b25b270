package fee

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
)

// MaxRoyaltyFeeLimit bounds the sum of royalty rates of a collection
const MaxRoyaltyFeeLimit = 9500

// FeeAmountPart is one royalty payout, a resolved list is ordered and its sum
// never exceeds the sale price
type FeeAmountPart struct {
	Receiver domain.Address `json:"receiver"`
	Amount   *big.Int       `json:"amount"`
}

// RoyaltyFeeTypes is one recipient of the multi recipient registry
type RoyaltyFeeTypes struct {
	Receiver domain.Address `json:"receiver"`
	Fee      uint64         `json:"fee"`
}

// RoyaltyFeeInfo is the record of the legacy single recipient registry
type RoyaltyFeeInfo struct {
	Collection domain.Address `json:"collection"`
	Setter     domain.Address `json:"setter"`
	Receiver   domain.Address `json:"receiver"`
	Fee        uint64         `json:"fee"`
}

// RoyaltyFeeInfoParts is the record of the multi recipient registry
type RoyaltyFeeInfoParts struct {
	Collection domain.Address    `json:"collection"`
	Setter     domain.Address    `json:"setter"`
	Parts      []RoyaltyFeeTypes `json:"parts"`
}

type RoyaltyConfig struct {
	RoyaltyFeeLimit  uint64         `json:"royaltyFeeLimit"`
	MaxNumRecipients int            `json:"maxNumRecipients"`
	RegistryV2       domain.Address `json:"registryV2"`
}

type ProtocolFeeRepo interface {
	FindDefault(c ctx.Ctx) (uint64, error)
	UpsertDefault(c ctx.Ctx, fee uint64) error
	FindForCollection(c ctx.Ctx, collection domain.Address) (uint64, bool, error)
	UpsertForCollection(c ctx.Ctx, collection domain.Address, fee uint64) error
	RemoveForCollection(c ctx.Ctx, collection domain.Address) error
}

type RoyaltyRepo interface {
	FindConfig(c ctx.Ctx) (*RoyaltyConfig, error)
	UpsertConfig(c ctx.Ctx, cfg *RoyaltyConfig) error
	FindInfo(c ctx.Ctx, collection domain.Address) (*RoyaltyFeeInfo, error)
	UpsertInfo(c ctx.Ctx, info *RoyaltyFeeInfo) error
	FindInfoParts(c ctx.Ctx, collection domain.Address) (*RoyaltyFeeInfoParts, error)
	UpsertInfoParts(c ctx.Ctx, parts *RoyaltyFeeInfoParts) error
}

// ERC2981 is the native per token royalty query of a collection
type ERC2981 interface {
	SupportsERC2981(c ctx.Ctx, collection domain.Address) (bool, error)
	RoyaltyInfo(c ctx.Ctx, collection domain.Address, tokenId, price *big.Int) (domain.Address, *big.Int, error)
}

// RoyaltyProvider is one link of the royalty fallback chain, an empty result
// passes resolution on to the next provider
type RoyaltyProvider interface {
	RoyaltyFeeAmountParts(c ctx.Ctx, collection domain.Address, tokenId, price *big.Int) ([]FeeAmountPart, error)
}

type ProtocolFeeManager interface {
	DefaultProtocolFee(c ctx.Ctx) (uint64, error)
	ProtocolFeeForCollection(c ctx.Ctx, collection domain.Address) (uint64, error)
	SetDefaultProtocolFee(c ctx.Ctx, caller domain.Address, fee uint64) error
	SetProtocolFeeForCollection(c ctx.Ctx, caller, collection domain.Address, fee uint64) error
	UnsetProtocolFeeForCollection(c ctx.Ctx, caller, collection domain.Address) error
}

type RoyaltyFeeManager interface {
	CalculateRoyaltyFeeAmountParts(c ctx.Ctx, collection domain.Address, tokenId, price *big.Int) ([]FeeAmountPart, error)

	RoyaltyConfig(c ctx.Ctx) (*RoyaltyConfig, error)
	InitializeRoyaltyFeeRegistryV2(c ctx.Ctx, caller, registry domain.Address) error

	// legacy single recipient registry
	RoyaltyFeeInfoCollection(c ctx.Ctx, collection domain.Address) (*RoyaltyFeeInfo, error)
	UpdateRoyaltyInfoForCollection(c ctx.Ctx, caller, collection, setter, receiver domain.Address, fee uint64) error

	// multi recipient registry
	RoyaltyFeeInfoPartsCollection(c ctx.Ctx, collection domain.Address) (*RoyaltyFeeInfoParts, error)
	UpdateRoyaltyFeeLimit(c ctx.Ctx, caller domain.Address, limit uint64) error
	UpdateMaxNumRecipients(c ctx.Ctx, caller domain.Address, max int) error
	UpdateRoyaltyInfoPartsForCollection(c ctx.Ctx, caller, collection, setter domain.Address, parts []RoyaltyFeeTypes) error

	// UpdateRoyaltyInfoPartsForCollectionIfSetter is the setter entry point,
	// open to the collection owner, its admin or the current setter
	UpdateRoyaltyInfoPartsForCollectionIfSetter(c ctx.Ctx, caller, collection, setter domain.Address, parts []RoyaltyFeeTypes) error
}

// Split is the three way division of a sale price:
// ProtocolFee + sum(Royalties) + Remainder == Price
type Split struct {
	Price                *big.Int
	ProtocolFeeRecipient domain.Address
	ProtocolFee          *big.Int
	Royalties            []FeeAmountPart
	Remainder            *big.Int
}

// Source is where sale proceeds are drawn from. Spender pulls Payer's
// allowance; when Payer is Spender the funds are already held in custody.
type Source struct {
	Currency domain.Address
	Payer    domain.Address
	Spender  domain.Address
}

// Payout computes splits and pays them out
type Payout interface {
	// Split fails with domain.ErrFeesHigherThanExpected when the seller would
	// receive less than minPercentageToAsk of price
	Split(c ctx.Ctx, collection domain.Address, tokenId, price *big.Int, minPercentageToAsk uint64, protocolFeeRecipient domain.Address) (*Split, error)
	Pay(c ctx.Ctx, contract string, src Source, split *Split, collection domain.Address, tokenId *big.Int, seller domain.Address) error
}
