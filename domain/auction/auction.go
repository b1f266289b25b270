package auction

import (
	"math/big"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
)

type EnglishAuction struct {
	Collection         domain.Address `json:"collection"`
	TokenId            *big.Int       `json:"tokenId"`
	Creator            domain.Address `json:"creator"`
	Nonce              *big.Int       `json:"nonce"`
	Currency           domain.Address `json:"currency"`
	LastBidder         domain.Address `json:"lastBidder"`
	LastBidPrice       *big.Int       `json:"lastBidPrice"`
	StartPrice         *big.Int       `json:"startPrice"`
	EndTime            int64          `json:"endTime"`
	MinPercentageToAsk uint64         `json:"minPercentageToAsk"`
}

func (a *EnglishAuction) HasBid() bool {
	return !a.LastBidder.IsNull()
}

type DutchAuction struct {
	Collection         domain.Address `json:"collection"`
	TokenId            *big.Int       `json:"tokenId"`
	Creator            domain.Address `json:"creator"`
	Nonce              *big.Int       `json:"nonce"`
	Currency           domain.Address `json:"currency"`
	StartPrice         *big.Int       `json:"startPrice"`
	EndPrice           *big.Int       `json:"endPrice"`
	StartTime          int64          `json:"startTime"`
	EndTime            int64          `json:"endTime"`
	DropInterval       int64          `json:"dropInterval"`
	MinPercentageToAsk uint64         `json:"minPercentageToAsk"`
}

// SalePrice is the price a buyer pays at now. It drops by an equal step
// every dropInterval and stays at EndPrice from EndTime on.
func (a *DutchAuction) SalePrice(now int64) *big.Int {
	if now >= a.EndTime {
		return new(big.Int).Set(a.EndPrice)
	}
	if now <= a.StartTime {
		return new(big.Int).Set(a.StartPrice)
	}
	numDrops := (a.EndTime - a.StartTime) / a.DropInterval
	elapsedDrops := (now - a.StartTime) / a.DropInterval
	priceDiff := new(big.Int).Sub(a.StartPrice, a.EndPrice)
	drop := new(big.Int).Mul(big.NewInt(elapsedDrops), priceDiff)
	drop.Div(drop, big.NewInt(numDrops))
	price := new(big.Int).Sub(a.StartPrice, drop)
	if price.Cmp(a.EndPrice) < 0 {
		return new(big.Int).Set(a.EndPrice)
	}
	return price
}

// Config is the auction house's owner managed parameters
type Config struct {
	MinBidIncrementPct   uint64         `json:"minBidIncrementPct"`
	RefreshTime          int64          `json:"refreshTime"`
	ProtocolFeeRecipient domain.Address `json:"protocolFeeRecipient"`
	CurrencyManager      domain.Address `json:"currencyManager"`
	ProtocolFeeManager   domain.Address `json:"protocolFeeManager"`
	RoyaltyFeeManager    domain.Address `json:"royaltyFeeManager"`
}

type Repo interface {
	FindEnglishAuction(c ctx.Ctx, collection domain.Address, tokenId *big.Int) (*EnglishAuction, error)
	UpsertEnglishAuction(c ctx.Ctx, a *EnglishAuction) error
	RemoveEnglishAuction(c ctx.Ctx, collection domain.Address, tokenId *big.Int) error
	ListEnglishAuctions(c ctx.Ctx) ([]*EnglishAuction, error)

	FindDutchAuction(c ctx.Ctx, collection domain.Address, tokenId *big.Int) (*DutchAuction, error)
	UpsertDutchAuction(c ctx.Ctx, a *DutchAuction) error
	RemoveDutchAuction(c ctx.Ctx, collection domain.Address, tokenId *big.Int) error
	ListDutchAuctions(c ctx.Ctx) ([]*DutchAuction, error)

	FindConfig(c ctx.Ctx) (*Config, error)
	UpsertConfig(c ctx.Ctx, cfg *Config) error

	// NextNonce returns creator's auction counter and increments it
	NextNonce(c ctx.Ctx, creator domain.Address) (*big.Int, error)
}

type StartEnglishAuctionParams struct {
	Collection         domain.Address
	TokenId            *big.Int
	Currency           domain.Address
	StartPrice         *big.Int
	Duration           int64
	MinPercentageToAsk uint64
}

type StartDutchAuctionParams struct {
	Collection         domain.Address
	TokenId            *big.Int
	Currency           domain.Address
	Duration           int64
	DropInterval       int64
	StartPrice         *big.Int
	EndPrice           *big.Int
	MinPercentageToAsk uint64
}

type UseCase interface {
	StartEnglishAuction(c ctx.Ctx, caller domain.Address, p StartEnglishAuctionParams) error
	PlaceEnglishAuctionBid(c ctx.Ctx, caller, collection domain.Address, tokenId, amount *big.Int) error
	// PlaceEnglishAuctionBidWithNativeAndWrapped bids value+wrappedAmount, value is wrapped first
	PlaceEnglishAuctionBidWithNativeAndWrapped(c ctx.Ctx, caller, collection domain.Address, tokenId, wrappedAmount, value *big.Int) error
	SettleEnglishAuction(c ctx.Ctx, caller, collection domain.Address, tokenId *big.Int) error
	CancelEnglishAuction(c ctx.Ctx, caller, collection domain.Address, tokenId *big.Int) error
	EmergencyCancelEnglishAuction(c ctx.Ctx, caller, collection domain.Address, tokenId *big.Int) error
	GetEnglishAuction(c ctx.Ctx, collection domain.Address, tokenId *big.Int) (*EnglishAuction, error)
	ListEnglishAuctions(c ctx.Ctx) ([]*EnglishAuction, error)

	StartDutchAuction(c ctx.Ctx, caller domain.Address, p StartDutchAuctionParams) error
	SettleDutchAuction(c ctx.Ctx, caller, collection domain.Address, tokenId *big.Int) error
	SettleDutchAuctionWithNativeAndWrapped(c ctx.Ctx, caller, collection domain.Address, tokenId, value *big.Int) error
	CancelDutchAuction(c ctx.Ctx, caller, collection domain.Address, tokenId *big.Int) error
	EmergencyCancelDutchAuction(c ctx.Ctx, caller, collection domain.Address, tokenId *big.Int) error
	GetDutchAuction(c ctx.Ctx, collection domain.Address, tokenId *big.Int) (*DutchAuction, error)
	GetDutchAuctionSalePrice(c ctx.Ctx, collection domain.Address, tokenId *big.Int) (*big.Int, error)
	ListDutchAuctions(c ctx.Ctx) ([]*DutchAuction, error)

	Config(c ctx.Ctx) (*Config, error)
	UpdateMinBidIncrementPct(c ctx.Ctx, caller domain.Address, pct uint64) error
	UpdateRefreshTime(c ctx.Ctx, caller domain.Address, refreshTime int64) error
	UpdateCurrencyManager(c ctx.Ctx, caller, manager domain.Address) error
	UpdateProtocolFeeManager(c ctx.Ctx, caller, manager domain.Address) error
	UpdateRoyaltyFeeManager(c ctx.Ctx, caller, manager domain.Address) error
	UpdateProtocolFeeRecipient(c ctx.Ctx, caller, recipient domain.Address) error
}
