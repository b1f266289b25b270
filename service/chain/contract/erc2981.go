package contract

import (
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	baseabi "github.com/x-xyz/settlement/base/abi"
	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/service/chain"
)

type Erc2981Contract interface {
	SupportsERC2981(ctx bCtx.Ctx, chainId int32, collection string) (bool, error)
	RoyaltyInfo(ctx bCtx.Ctx, chainId int32, collection string, tokenId, salePrice *big.Int) (string, *big.Int, error)
}

type Erc2981 struct {
	chainService chain.Client
	abi          ethabi.ABI
}

func NewErc2981(chainService chain.Client) Erc2981Contract {
	return &Erc2981{
		abi:          baseabi.ERC2981ABI,
		chainService: chainService,
	}
}

func (e *Erc2981) SupportsERC2981(ctx bCtx.Ctx, chainId int32, collection string) (bool, error) {
	unpacked, err := e.chainService.Call(ctx, chainId, common.HexToAddress(collection), nil, e.abi, "supportsInterface", baseabi.ERC2981InterfaceId)
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc2981) RoyaltyInfo(ctx bCtx.Ctx, chainId int32, collection string, tokenId, salePrice *big.Int) (string, *big.Int, error) {
	unpacked, err := e.chainService.Call(ctx, chainId, common.HexToAddress(collection), nil, e.abi, "royaltyInfo", tokenId, salePrice)
	if err != nil {
		return "", nil, err
	}
	return unpacked[0].(common.Address).String(), unpacked[1].(*big.Int), nil
}
