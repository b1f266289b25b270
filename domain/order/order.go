package order

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
)

// MakerOrder is a signed, reusable trade intent. Every field except
// Signature is covered by the EIP-712 digest.
type MakerOrder struct {
	IsOrderAsk         bool           `json:"isOrderAsk"`
	Signer             domain.Address `json:"signer"`
	Collection         domain.Address `json:"collection"`
	Price              *big.Int       `json:"price"`
	TokenId            *big.Int       `json:"tokenId"`
	Amount             *big.Int       `json:"amount"`
	Strategy           domain.Address `json:"strategy"`
	Currency           domain.Address `json:"currency"`
	Nonce              *big.Int       `json:"nonce"`
	StartTime          int64          `json:"startTime"`
	EndTime            int64          `json:"endTime"`
	MinPercentageToAsk uint64         `json:"minPercentageToAsk"`
	Params             []byte         `json:"params"`
	Signature          []byte         `json:"signature"`
}

// TakerOrder is the one-shot counter-intent of the party filling a maker order
type TakerOrder struct {
	IsOrderAsk         bool           `json:"isOrderAsk"`
	Taker              domain.Address `json:"taker"`
	Price              *big.Int       `json:"price"`
	TokenId            *big.Int       `json:"tokenId"`
	MinPercentageToAsk uint64         `json:"minPercentageToAsk"`
	Params             []byte         `json:"params"`
}

// IsActiveAt reports whether now lies in [StartTime, EndTime]
func (o *MakerOrder) IsActiveAt(now int64) bool {
	return o.StartTime <= now && now <= o.EndTime
}

// Verifier is the authenticity proof capability: it accepts the order when
// the asserted signer vouches for the digest of its fields.
type Verifier interface {
	Verify(c ctx.Ctx, o *MakerOrder, digest []byte) error
}

// RegisteredOrder marks an order digest approved in-band by its signer,
// which stands in for an off-band signature.
type RegisteredOrder struct {
	Digest       domain.OrderHash `json:"digest"`
	Signer       domain.Address   `json:"signer"`
	RegisteredAt int64            `json:"registeredAt"`
}

type RegisteredOrderRepo interface {
	FindOne(c ctx.Ctx, digest domain.OrderHash) (*RegisteredOrder, error)
	Create(c ctx.Ctx, o RegisteredOrder) error
}
