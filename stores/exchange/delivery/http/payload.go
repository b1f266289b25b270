package http

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/exchange"
	"github.com/x-xyz/settlement/domain/order"
)

// amounts travel as base 10 strings, byte fields as 0x hex
type makerOrderPayload struct {
	IsOrderAsk         bool           `json:"isOrderAsk"`
	Signer             domain.Address `json:"signer" validate:"required,eth_addr"`
	Collection         domain.Address `json:"collection" validate:"required,eth_addr"`
	Price              string         `json:"price" validate:"required,numeric"`
	TokenId            string         `json:"tokenId" validate:"required,numeric"`
	Amount             string         `json:"amount" validate:"required,numeric"`
	Strategy           domain.Address `json:"strategy" validate:"required,eth_addr"`
	Currency           domain.Address `json:"currency" validate:"required,eth_addr"`
	Nonce              string         `json:"nonce" validate:"required,numeric"`
	StartTime          int64          `json:"startTime"`
	EndTime            int64          `json:"endTime"`
	MinPercentageToAsk uint64         `json:"minPercentageToAsk"`
	Params             hexutil.Bytes  `json:"params"`
	Signature          hexutil.Bytes  `json:"signature"`
}

func (p *makerOrderPayload) toOrder() (*order.MakerOrder, error) {
	nums, err := domain.ToBigInt([]string{p.Price, p.TokenId, p.Amount, p.Nonce})
	if err != nil {
		return nil, err
	}
	return &order.MakerOrder{
		IsOrderAsk:         p.IsOrderAsk,
		Signer:             p.Signer,
		Collection:         p.Collection,
		Price:              nums[0],
		TokenId:            nums[1],
		Amount:             nums[2],
		Strategy:           p.Strategy,
		Currency:           p.Currency,
		Nonce:              nums[3],
		StartTime:          p.StartTime,
		EndTime:            p.EndTime,
		MinPercentageToAsk: p.MinPercentageToAsk,
		Params:             p.Params,
		Signature:          p.Signature,
	}, nil
}

// takerOrderPayload carries no taker address, the authenticated caller is the taker
type takerOrderPayload struct {
	IsOrderAsk         bool          `json:"isOrderAsk"`
	Price              string        `json:"price" validate:"required,numeric"`
	TokenId            string        `json:"tokenId" validate:"required,numeric"`
	MinPercentageToAsk uint64        `json:"minPercentageToAsk"`
	Params             hexutil.Bytes `json:"params"`
}

func (p *takerOrderPayload) toOrder(taker domain.Address) (*order.TakerOrder, error) {
	nums, err := domain.ToBigInt([]string{p.Price, p.TokenId})
	if err != nil {
		return nil, err
	}
	return &order.TakerOrder{
		IsOrderAsk:         p.IsOrderAsk,
		Taker:              taker,
		Price:              nums[0],
		TokenId:            nums[1],
		MinPercentageToAsk: p.MinPercentageToAsk,
		Params:             p.Params,
	}, nil
}

type tradePayload struct {
	Taker takerOrderPayload `json:"taker"`
	Maker makerOrderPayload `json:"maker"`
}

func toTrades(caller domain.Address, payloads []tradePayload) ([]exchange.Trade, error) {
	trades := make([]exchange.Trade, 0, len(payloads))
	for _, p := range payloads {
		taker, err := p.Taker.toOrder(caller)
		if err != nil {
			return nil, err
		}
		maker, err := p.Maker.toOrder()
		if err != nil {
			return nil, err
		}
		trades = append(trades, exchange.Trade{Taker: *taker, Maker: *maker})
	}
	return trades, nil
}
