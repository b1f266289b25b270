package exchange

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/order"
)

// Trade pairs a taker bid with the maker ask it fills
type Trade struct {
	Taker order.TakerOrder `json:"taker"`
	Maker order.MakerOrder `json:"maker"`
}

type Config struct {
	ProtocolFeeRecipient domain.Address `json:"protocolFeeRecipient"`
	CurrencyManager      domain.Address `json:"currencyManager"`
	ExecutionManager     domain.Address `json:"executionManager"`
	ProtocolFeeManager   domain.Address `json:"protocolFeeManager"`
	RoyaltyFeeManager    domain.Address `json:"royaltyFeeManager"`
	TransferSelector     domain.Address `json:"transferSelector"`
}

// Notifiable is a maker that wants a callback after its bids are filled
type Notifiable interface {
	OnBidFilled(c ctx.Ctx, maker *order.MakerOrder, taker *order.TakerOrder, tokenId, amount *big.Int) error
}

type Repo interface {
	FindConfig(c ctx.Ctx) (*Config, error)
	UpsertConfig(c ctx.Ctx, cfg *Config) error
	IsNotifiable(c ctx.Ctx, addr domain.Address) (bool, error)
	AddNotifiable(c ctx.Ctx, addr domain.Address) error
	RemoveNotifiable(c ctx.Ctx, addr domain.Address) error
}

type UseCase interface {
	MatchAskWithTakerBid(c ctx.Ctx, taker *order.TakerOrder, maker *order.MakerOrder) error
	// MatchAskWithTakerBidUsingNativeAndWrapped wraps value and pulls the rest of the price in wrapped native
	MatchAskWithTakerBidUsingNativeAndWrapped(c ctx.Ctx, taker *order.TakerOrder, maker *order.MakerOrder, value *big.Int) error
	MatchBidWithTakerAsk(c ctx.Ctx, taker *order.TakerOrder, maker *order.MakerOrder) error

	BatchBuy(c ctx.Ctx, caller domain.Address, trades []Trade) error
	BatchBuyIgnoringExpiredAsks(c ctx.Ctx, caller domain.Address, trades []Trade) error
	BatchBuyWithNativeAndWrapped(c ctx.Ctx, caller domain.Address, trades []Trade, value *big.Int) error
	BatchBuyWithNativeAndWrappedIgnoringExpiredAsks(c ctx.Ctx, caller domain.Address, trades []Trade, value *big.Int) error

	CancelAllOrdersForSender(c ctx.Ctx, caller domain.Address, minNonce *big.Int) error
	CancelMultipleMakerOrders(c ctx.Ctx, caller domain.Address, nonces []*big.Int) error
	RegisterOrder(c ctx.Ctx, caller domain.Address, maker *order.MakerOrder) (domain.OrderHash, error)

	Config(c ctx.Ctx) (*Config, error)
	UpdateProtocolFeeRecipient(c ctx.Ctx, caller, recipient domain.Address) error

	// The registry pointer setters record and announce the new address only.
	// Matching keeps using the currency, strategy, fee and transfer components
	// wired in at construction.
	UpdateCurrencyManager(c ctx.Ctx, caller, manager domain.Address) error
	UpdateExecutionManager(c ctx.Ctx, caller, manager domain.Address) error
	UpdateProtocolFeeManager(c ctx.Ctx, caller, manager domain.Address) error
	UpdateRoyaltyFeeManager(c ctx.Ctx, caller, manager domain.Address) error
	UpdateTransferSelector(c ctx.Ctx, caller, selector domain.Address) error
	AddNotifiable(c ctx.Ctx, caller, notifiable domain.Address) error
	RemoveNotifiable(c ctx.Ctx, caller, notifiable domain.Address) error
}
