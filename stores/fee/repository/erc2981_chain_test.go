package repository

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	baseabi "github.com/x-xyz/settlement/base/abi"
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/service/cache"
	"github.com/x-xyz/settlement/service/cache/provider/primitive"
	"github.com/x-xyz/settlement/service/chain/contract"
	mChain "github.com/x-xyz/settlement/service/chain/mocks"
)

func TestChainERC2981(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	collection := domain.Address("0x4245a1bd84eb5f3ebc115c2edf57e50667f98b0b")
	receiver := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	chainId := int32(43114)

	client := &mChain.Client{}
	im := NewChainERC2981(&ChainERC2981Cfg{
		ChainId:  domain.ChainId(chainId),
		Contract: contract.NewErc2981(client),
		Cache: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   "test",
			Cache: primitive.NewPrimitive("erc2981", 1),
		}),
	})

	client.On("Call", mock.Anything, chainId, collection.ToCommon(), (*big.Int)(nil), baseabi.ERC2981ABI, "supportsInterface", baseabi.ERC2981InterfaceId).
		Return([]interface{}{true}, nil).Once()
	ok, err := im.SupportsERC2981(c, collection)
	req.NoError(err)
	req.True(ok)
	// served from cache
	ok, err = im.SupportsERC2981(c, collection)
	req.NoError(err)
	req.True(ok)

	price := big.NewInt(10000)
	client.On("Call", mock.Anything, chainId, collection.ToCommon(), (*big.Int)(nil), baseabi.ERC2981ABI, "royaltyInfo", big.NewInt(1), price).
		Return([]interface{}{receiver, big.NewInt(250)}, nil).Once()
	to, amount, err := im.RoyaltyInfo(c, collection, big.NewInt(1), price)
	req.NoError(err)
	req.True(to.Equals(domain.NewAddress(receiver)))
	req.Equal(int64(250), amount.Int64())

	other := domain.Address("0x0000000000000000000000000000000000000722")
	client.On("Call", mock.Anything, chainId, other.ToCommon(), (*big.Int)(nil), baseabi.ERC2981ABI, "supportsInterface", baseabi.ERC2981InterfaceId).
		Return(nil, errors.New("execution reverted")).Once()
	ok, err = im.SupportsERC2981(c, other)
	req.NoError(err)
	req.False(ok)

	client.AssertExpectations(t)
}
