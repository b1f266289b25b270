package usecase

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/order"
	"github.com/x-xyz/settlement/domain/strategy"
)

func sameBig(a, b *big.Int) bool {
	return a != nil && b != nil && a.Cmp(b) == 0
}

type standardSaleForFixedPrice struct {
	address     domain.Address
	protocolFee uint64
}

// NewStandardSaleForFixedPrice matches orders at one price on one token id, either side
func NewStandardSaleForFixedPrice(address domain.Address, protocolFee uint64) strategy.Strategy {
	return &standardSaleForFixedPrice{address.ToLower(), protocolFee}
}

func (s *standardSaleForFixedPrice) Address() domain.Address { return s.address }

func (s *standardSaleForFixedPrice) ProtocolFee() uint64 { return s.protocolFee }

func (s *standardSaleForFixedPrice) CanExecuteTakerAsk(taker *order.TakerOrder, maker *order.MakerOrder) (bool, *big.Int, *big.Int) {
	ok := sameBig(maker.Price, taker.Price) && sameBig(maker.TokenId, taker.TokenId)
	return ok, maker.TokenId, maker.Amount
}

func (s *standardSaleForFixedPrice) CanExecuteTakerBid(taker *order.TakerOrder, maker *order.MakerOrder) (bool, *big.Int, *big.Int) {
	ok := sameBig(maker.Price, taker.Price) && sameBig(maker.TokenId, taker.TokenId)
	return ok, maker.TokenId, maker.Amount
}

type anyItemFromCollectionForFixedPrice struct {
	address     domain.Address
	protocolFee uint64
}

// NewAnyItemFromCollectionForFixedPrice lets a collection wide bid be filled
// with any token the taker picks
func NewAnyItemFromCollectionForFixedPrice(address domain.Address, protocolFee uint64) strategy.Strategy {
	return &anyItemFromCollectionForFixedPrice{address.ToLower(), protocolFee}
}

func (s *anyItemFromCollectionForFixedPrice) Address() domain.Address { return s.address }

func (s *anyItemFromCollectionForFixedPrice) ProtocolFee() uint64 { return s.protocolFee }

func (s *anyItemFromCollectionForFixedPrice) CanExecuteTakerAsk(taker *order.TakerOrder, maker *order.MakerOrder) (bool, *big.Int, *big.Int) {
	return sameBig(maker.Price, taker.Price), taker.TokenId, maker.Amount
}

func (s *anyItemFromCollectionForFixedPrice) CanExecuteTakerBid(taker *order.TakerOrder, maker *order.MakerOrder) (bool, *big.Int, *big.Int) {
	return false, new(big.Int), new(big.Int)
}

var addressArgs = abi.Arguments{{Type: mustType("address")}}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// EncodePrivateSaleParams abi encodes the only buyer of a private sale ask
func EncodePrivateSaleParams(buyer domain.Address) ([]byte, error) {
	return addressArgs.Pack(buyer.ToCommon())
}

func decodePrivateSaleParams(params []byte) (domain.Address, bool) {
	vals, err := addressArgs.Unpack(params)
	if err != nil || len(vals) != 1 {
		return "", false
	}
	addr, ok := vals[0].(common.Address)
	if !ok {
		return "", false
	}
	return domain.NewAddress(addr), true
}

type privateSale struct {
	address     domain.Address
	protocolFee uint64
}

// NewPrivateSale restricts an ask to the buyer encoded in its params
func NewPrivateSale(address domain.Address, protocolFee uint64) strategy.Strategy {
	return &privateSale{address.ToLower(), protocolFee}
}

func (s *privateSale) Address() domain.Address { return s.address }

func (s *privateSale) ProtocolFee() uint64 { return s.protocolFee }

func (s *privateSale) CanExecuteTakerAsk(taker *order.TakerOrder, maker *order.MakerOrder) (bool, *big.Int, *big.Int) {
	return false, new(big.Int), new(big.Int)
}

func (s *privateSale) CanExecuteTakerBid(taker *order.TakerOrder, maker *order.MakerOrder) (bool, *big.Int, *big.Int) {
	buyer, ok := decodePrivateSaleParams(maker.Params)
	if !ok {
		return false, maker.TokenId, maker.Amount
	}
	ok = buyer.Equals(taker.Taker) && sameBig(maker.Price, taker.Price) && sameBig(maker.TokenId, taker.TokenId)
	return ok, maker.TokenId, maker.Amount
}
