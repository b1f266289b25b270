package strategy

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/order"
)

// Strategy is an execution predicate for a maker/taker pair. On success it
// returns the token id and amount to settle.
type Strategy interface {
	Address() domain.Address
	ProtocolFee() uint64
	CanExecuteTakerAsk(taker *order.TakerOrder, maker *order.MakerOrder) (bool, *big.Int, *big.Int)
	CanExecuteTakerBid(taker *order.TakerOrder, maker *order.MakerOrder) (bool, *big.Int, *big.Int)
}

// Registry is the strategy allow-list (execution manager)
type Registry interface {
	IsAllowed(c ctx.Ctx, strategy domain.Address) (bool, error)
	Get(c ctx.Ctx, strategy domain.Address) (Strategy, error)
	List(c ctx.Ctx) ([]domain.Address, error)
	Add(c ctx.Ctx, caller, strategy domain.Address) error
	Remove(c ctx.Ctx, caller, strategy domain.Address) error
}

type Repo interface {
	Exists(c ctx.Ctx, addr domain.Address) (bool, error)
	List(c ctx.Ctx) ([]domain.Address, error)
	Add(c ctx.Ctx, addr domain.Address) error
	Remove(c ctx.Ctx, addr domain.Address) error
}
