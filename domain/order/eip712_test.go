package order

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/settlement/domain"
)

func testOrder() *MakerOrder {
	return &MakerOrder{
		IsOrderAsk:         true,
		Signer:             domain.Address("0x1111111111111111111111111111111111111111"),
		Collection:         domain.Address("0x2222222222222222222222222222222222222222"),
		Price:              big.NewInt(1e18),
		TokenId:            big.NewInt(7),
		Amount:             big.NewInt(1),
		Strategy:           domain.Address("0x3333333333333333333333333333333333333333"),
		Currency:           domain.Address("0x4444444444444444444444444444444444444444"),
		Nonce:              big.NewInt(3),
		StartTime:          1600000000,
		EndTime:            1700000000,
		MinPercentageToAsk: 8500,
		Params:             []byte{0xab, 0xcd},
	}
}

func TestHash(t *testing.T) {
	req := require.New(t)

	hash, err := testOrder().Hash()
	req.NoError(err)
	req.Equal("0x332d73d30ffa4a5a53735f2466e45f2c2f20eed74167ec0b9b7d1fe6a5f1826e", hexutil.Encode(hash))

	// the signature is not covered
	o := testOrder()
	o.Signature = []byte{1, 2, 3}
	hash2, err := o.Hash()
	req.NoError(err)
	req.Equal(hash, hash2)
}

func TestDigest(t *testing.T) {
	req := require.New(t)
	separator := GetDomainSeparator(43114, domain.Address("0x5555555555555555555555555555555555555555"))

	digest, err := testOrder().Digest(separator)
	req.NoError(err)
	req.Equal("0x16c47d00eaffb7e9996681d312712d7be49ef0cf153e6316c2b92a58af8ab413", hexutil.Encode(digest))

	other, err := testOrder().Digest(GetDomainSeparator(1, domain.Address("0x5555555555555555555555555555555555555555")))
	req.NoError(err)
	req.NotEqual(digest, other)

	o := testOrder()
	o.Price = big.NewInt(2e18)
	tampered, err := o.Digest(separator)
	req.NoError(err)
	req.NotEqual(digest, tampered)
}

func TestDigestSignRecover(t *testing.T) {
	req := require.New(t)
	key, err := crypto.GenerateKey()
	req.NoError(err)

	o := testOrder()
	o.Signer = domain.NewAddress(crypto.PubkeyToAddress(key.PublicKey))
	digest, err := o.Digest(GetDomainSeparator(43114, domain.Address("0x5555555555555555555555555555555555555555")))
	req.NoError(err)

	sig, err := crypto.Sign(digest, key)
	req.NoError(err)
	pub, err := crypto.SigToPub(digest, sig)
	req.NoError(err)
	req.Equal(o.Signer, domain.NewAddress(crypto.PubkeyToAddress(*pub)))
}
