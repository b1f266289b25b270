package currency

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
)

// Registry is the currency allow-list
type Registry interface {
	IsAllowed(c ctx.Ctx, currency domain.Address) (bool, error)
	List(c ctx.Ctx) ([]domain.Address, error)
	Add(c ctx.Ctx, caller, currency domain.Address) error
	Remove(c ctx.Ctx, caller, currency domain.Address) error
}

type Repo interface {
	Exists(c ctx.Ctx, addr domain.Address) (bool, error)
	List(c ctx.Ctx) ([]domain.Address, error)
	Add(c ctx.Ctx, addr domain.Address) error
	Remove(c ctx.Ctx, addr domain.Address) error
}
