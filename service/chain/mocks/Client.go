package mocks

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/x-xyz/settlement/base/ctx"
)

// Client is a mock type for the chain.Client type
type Client struct {
	mock.Mock
}

func (_m *Client) Call(c ctx.Ctx, chainId int32, addr common.Address, blk *big.Int, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	args := []interface{}{c, chainId, addr, blk, _abi, method}
	args = append(args, params...)
	ret := _m.Called(args...)
	var r0 []interface{}
	if v := ret.Get(0); v != nil {
		r0 = v.([]interface{})
	}
	return r0, ret.Error(1)
}

func (_m *Client) HasCode(c ctx.Ctx, chainId int32, addr common.Address) (bool, error) {
	ret := _m.Called(c, chainId, addr)
	return ret.Bool(0), ret.Error(1)
}
