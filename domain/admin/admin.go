package admin

import (
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
)

// Contract names an ownable unit of the engine
type Contract string

const (
	ContractExchange         Contract = "exchange"
	ContractAuctionHouse     Contract = "auctionHouse"
	ContractFeeManager       Contract = "feeManager"
	ContractCurrencyManager  Contract = "currencyManager"
	ContractExecutionManager Contract = "executionManager"
	ContractTransferSelector Contract = "transferSelector"
)

// Contracts lists every ownable unit
var Contracts = []Contract{
	ContractExchange,
	ContractAuctionHouse,
	ContractFeeManager,
	ContractCurrencyManager,
	ContractExecutionManager,
	ContractTransferSelector,
}

type Ownership struct {
	Contract     Contract       `json:"contract"`
	Owner        domain.Address `json:"owner"`
	PendingOwner domain.Address `json:"pendingOwner"`
	Paused       bool           `json:"paused"`
}

type Repo interface {
	FindOne(c ctx.Ctx, contract Contract) (*Ownership, error)
	Upsert(c ctx.Ctx, o *Ownership) error
	IsPauseAdmin(c ctx.Ctx, contract Contract, addr domain.Address) (bool, error)
	AddPauseAdmin(c ctx.Ctx, contract Contract, addr domain.Address) error
	RemovePauseAdmin(c ctx.Ctx, contract Contract, addr domain.Address) error
	PauseAdmins(c ctx.Ctx, contract Contract) ([]domain.Address, error)
}

// UseCase carries two-step ownership and role based pausing
type UseCase interface {
	// Init sets the first owner, it is a no-op once an owner ever existed
	Init(c ctx.Ctx, contract Contract, owner domain.Address) error
	Get(c ctx.Ctx, contract Contract) (*Ownership, error)

	OnlyOwner(c ctx.Ctx, contract Contract, caller domain.Address) error
	SetPendingOwner(c ctx.Ctx, contract Contract, caller, pendingOwner domain.Address) error
	RevokePendingOwner(c ctx.Ctx, contract Contract, caller domain.Address) error
	BecomeOwner(c ctx.Ctx, contract Contract, caller domain.Address) error
	RenounceOwnership(c ctx.Ctx, contract Contract, caller domain.Address) error

	IsPauseAdmin(c ctx.Ctx, contract Contract, addr domain.Address) (bool, error)
	PauseAdmins(c ctx.Ctx, contract Contract) ([]domain.Address, error)
	AddPauseAdmin(c ctx.Ctx, contract Contract, caller, pauseAdmin domain.Address) error
	RemovePauseAdmin(c ctx.Ctx, contract Contract, caller, pauseAdmin domain.Address) error
	RenouncePauseAdmin(c ctx.Ctx, contract Contract, caller domain.Address) error

	Pause(c ctx.Ctx, contract Contract, caller domain.Address) error
	Unpause(c ctx.Ctx, contract Contract, caller domain.Address) error
	// WhenNotPaused fails with domain.ErrPaused while contract is paused
	WhenNotPaused(c ctx.Ctx, contract Contract) error
}
