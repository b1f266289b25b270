package contract

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	baseabi "github.com/x-xyz/settlement/base/abi"
	bCtx "github.com/x-xyz/settlement/base/ctx"
	mChain "github.com/x-xyz/settlement/service/chain/mocks"
)

func TestErc1271_IsValidSignature(t *testing.T) {
	req := require.New(t)
	ctx := bCtx.Background()
	chainId := int32(43114)
	wallet := "0xAc461fDFc10C71861f37fe42589334e021BaA1ee"
	hash := common.HexToHash("0x01f6f4c6639ea7f7d4df5425aaefe85113235810e9dd52ccf56297a16191c3ea")
	sig := hexutil.MustDecode("0xfae5218f6165f30bf7d8798d6f1990fde8fea58c336b36c8cd3078b4d8dc2a9d0448debd2b776fb0f6bdf91d1142474d4682057d290561814172bce4641108641c")

	client := &mChain.Client{}
	erc1271 := NewErc1271(client)

	client.On("Call", ctx, chainId, common.HexToAddress(wallet), (*big.Int)(nil), baseabi.ERC1271ABI, "isValidSignature", hash, sig).
		Return([]interface{}{[4]byte{0x16, 0x26, 0xba, 0x7e}}, nil).Once()
	ok, err := erc1271.IsValidSignature(ctx, chainId, wallet, hash, sig)
	req.NoError(err)
	req.True(ok)

	client.On("Call", ctx, chainId, common.HexToAddress(wallet), (*big.Int)(nil), baseabi.ERC1271ABI, "isValidSignature", hash, sig).
		Return([]interface{}{[4]byte{0xff, 0xff, 0xff, 0xff}}, nil).Once()
	ok, err = erc1271.IsValidSignature(ctx, chainId, wallet, hash, sig)
	req.NoError(err)
	req.False(ok)
	client.AssertExpectations(t)
}

func TestErc2981_RoyaltyInfo(t *testing.T) {
	req := require.New(t)
	ctx := bCtx.Background()
	chainId := int32(43114)
	collection := "0xdcf0de6b17785a143d006e1515a6afd123cde8ba"
	receiver := common.HexToAddress("0xce4468e7ce84aceb74363f4ea64e5a038176f369")

	client := &mChain.Client{}
	erc2981 := NewErc2981(client)

	client.On("Call", ctx, chainId, common.HexToAddress(collection), (*big.Int)(nil), baseabi.ERC2981ABI, "supportsInterface", baseabi.ERC2981InterfaceId).
		Return([]interface{}{true}, nil).Once()
	supported, err := erc2981.SupportsERC2981(ctx, chainId, collection)
	req.NoError(err)
	req.True(supported)

	client.On("Call", ctx, chainId, common.HexToAddress(collection), (*big.Int)(nil), baseabi.ERC2981ABI, "royaltyInfo", mock.Anything, mock.Anything).
		Return([]interface{}{receiver, big.NewInt(50)}, nil).Once()
	to, amount, err := erc2981.RoyaltyInfo(ctx, chainId, collection, big.NewInt(1), big.NewInt(1000))
	req.NoError(err)
	req.Equal(receiver.String(), to)
	req.Equal(int64(50), amount.Int64())
}
