package chain

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	bCtx "github.com/x-xyz/settlement/base/ctx"
	bEthereum "github.com/x-xyz/settlement/base/ethereum"
	"github.com/x-xyz/settlement/base/log"
)

var ErrUnsupportedChain = errors.New("unsupported chain")

type ClientCfg struct {
	RpcUrls map[int32]string
	// MaxInflight bounds concurrent calls per endpoint, 0 means 16
	MaxInflight int
}

type Client interface {
	Call(bCtx.Ctx, int32, common.Address, *big.Int, abi.ABI, string, ...interface{}) ([]interface{}, error)
	HasCode(bCtx.Ctx, int32, common.Address) (bool, error)
}

type clientImpl struct {
	clients map[int32]*bEthereum.ThrottledClient
}

func NewClient(ctx bCtx.Ctx, cfg *ClientCfg) (Client, error) {
	var anyerr error
	n := cfg.MaxInflight
	if n <= 0 {
		n = 16
	}
	clients := make(map[int32]*bEthereum.ThrottledClient)
	for chainId, url := range cfg.RpcUrls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			anyerr = err
			ctx.WithFields(log.Fields{
				"err":     err,
				"chainId": chainId,
				"url":     url,
			}).Warn("failed to dial rpc")
			// soft warning, still let the server start
			continue
		}
		clients[chainId] = bEthereum.NewThrottledClient(client, n)
	}
	return &clientImpl{clients: clients}, anyerr
}

func (c *clientImpl) Call(ctx bCtx.Ctx, chainId int32, addr common.Address, blk *big.Int, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	client, ok := c.clients[chainId]
	if !ok {
		return nil, ErrUnsupportedChain
	}

	data, err := _abi.Pack(method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return nil, err
	}
	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, blk)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "method": method, "to": addr.Hex()}).Error("client.CallContract failed")
		return nil, err
	}
	unpacked, err := _abi.Unpack(method, res)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "method": method}).Error("abi.Unpack failed")
		return nil, err
	}
	return unpacked, nil
}

// HasCode tells contracts from externally owned accounts
func (c *clientImpl) HasCode(ctx bCtx.Ctx, chainId int32, addr common.Address) (bool, error) {
	client, ok := c.clients[chainId]
	if !ok {
		return false, ErrUnsupportedChain
	}
	code, err := client.CodeAt(ctx, addr, nil)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "addr": addr.Hex()}).Error("client.CodeAt failed")
		return false, err
	}
	return len(code) > 0, nil
}
