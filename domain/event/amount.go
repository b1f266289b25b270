package event

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/settlement/domain"
)

// Decimals is the unit scale used for the human readable form of amounts
const Decimals = 18

// Amount renders n both raw and scaled by Decimals
func Amount(n *big.Int) map[string]string {
	return map[string]string{
		"raw":     domain.BigString(n),
		"decimal": Decimal(n).String(),
	}
}

func Decimal(n *big.Int) decimal.Decimal {
	if n == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n, -Decimals)
}
