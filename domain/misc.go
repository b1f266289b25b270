package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	Big0 = big.NewInt(0)
	Big1 = big.NewInt(1)
)

// PercentageDenominator is the basis point scale used by every rate in the engine
const PercentageDenominator = 10000

type ChainId int32

type TokenType int

const (
	TokenType721  TokenType = 721
	TokenType1155 TokenType = 1155
)

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func NewAddress(a common.Address) Address {
	return Address(a.Hex()).ToLower()
}

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

// IsNull reports whether a is unset or the zero address
func (a Address) IsNull() bool {
	return a.IsEmpty() || a.ToLower() == EmptyAddress
}

func (a Address) IsValid() bool {
	return common.IsHexAddress(string(a))
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

func (a Address) ToCommon() common.Address {
	return common.HexToAddress(string(a))
}

type OrderHash string

func (h OrderHash) ToLower() OrderHash {
	return OrderHash(strings.ToLower(string(h)))
}

func ToBigInt(nums []string) ([]*big.Int, error) {
	var bns []*big.Int
	for _, n := range nums {
		bn, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, ErrInvalidNumberFormat
		}
		bns = append(bns, bn)
	}
	return bns, nil
}

// BigString renders nil as "0", used by repositories persisting amounts as strings
func BigString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

// ParseBig is the inverse of BigString, empty input yields zero
func ParseBig(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrInvalidNumberFormat
	}
	return n, nil
}
