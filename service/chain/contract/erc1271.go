package contract

import (
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	baseabi "github.com/x-xyz/settlement/base/abi"
	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/service/chain"
)

type Erc1271Contract interface {
	// IsValidSignature asks the contract at addr whether signature vouches for hash
	IsValidSignature(ctx bCtx.Ctx, chainId int32, addr string, hash common.Hash, signature []byte) (bool, error)
	IsContract(ctx bCtx.Ctx, chainId int32, addr string) (bool, error)
}

type Erc1271 struct {
	chainService chain.Client
	abi          ethabi.ABI
	magicValue   [4]byte
}

func NewErc1271(chainService chain.Client) Erc1271Contract {
	return &Erc1271{
		abi:          baseabi.ERC1271ABI,
		chainService: chainService,
		magicValue:   baseabi.ERC1271MagicValue,
	}
}

func (e *Erc1271) IsValidSignature(ctx bCtx.Ctx, chainId int32, addr string, hash common.Hash, signature []byte) (bool, error) {
	unpacked, err := e.chainService.Call(ctx, chainId, common.HexToAddress(addr), nil, e.abi, "isValidSignature", hash, signature)
	if err != nil {
		return false, err
	}
	return unpacked[0].([4]byte) == e.magicValue, nil
}

func (e *Erc1271) IsContract(ctx bCtx.Ctx, chainId int32, addr string) (bool, error) {
	return e.chainService.HasCode(ctx, chainId, common.HexToAddress(addr))
}
