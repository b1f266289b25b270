package account

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
)

// OrderNonce is the cancellation state of one signer: every nonce below
// MinValidOrderNonce is dead, and so is every nonce in the executed or
// cancelled set.
type OrderNonce struct {
	Address            domain.Address `json:"address"`
	MinValidOrderNonce *big.Int       `json:"minValidOrderNonce"`
}

type OrderNonceRepo interface {
	FindMinNonce(c ctx.Ctx, signer domain.Address) (*big.Int, error)
	UpdateMinNonce(c ctx.Ctx, signer domain.Address, nonce *big.Int) error
	IsExecutedOrCancelled(c ctx.Ctx, signer domain.Address, nonce *big.Int) (bool, error)
	MarkExecutedOrCancelled(c ctx.Ctx, signer domain.Address, nonce *big.Int) error
}

type OrderNonceUseCase interface {
	UserMinOrderNonce(c ctx.Ctx, signer domain.Address) (*big.Int, error)
	IsUserOrderNonceExecutedOrCancelled(c ctx.Ctx, signer domain.Address, nonce *big.Int) (bool, error)

	// IsValid fails with domain.ErrOrderExpired when nonce is below the floor
	// or was already executed or cancelled
	IsValid(c ctx.Ctx, signer domain.Address, nonce *big.Int) error
	Consume(c ctx.Ctx, signer domain.Address, nonce *big.Int) error

	CancelAllOrdersForSender(c ctx.Ctx, caller domain.Address, minNonce *big.Int) error
	CancelMultipleMakerOrders(c ctx.Ctx, caller domain.Address, nonces []*big.Int) error
}
