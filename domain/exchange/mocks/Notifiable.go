package mocks

import (
	"math/big"

	"github.com/stretchr/testify/mock"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain/order"
)

// Notifiable is a mock type for the exchange.Notifiable type
type Notifiable struct {
	mock.Mock
}

func (_m *Notifiable) OnBidFilled(c ctx.Ctx, maker *order.MakerOrder, taker *order.TakerOrder, tokenId, amount *big.Int) error {
	ret := _m.Called(c, maker, taker, tokenId, amount)
	return ret.Error(0)
}
