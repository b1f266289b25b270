package usecase

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/ethereum"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/order"
	"github.com/x-xyz/settlement/service/chain/contract"
	mChain "github.com/x-xyz/settlement/service/chain/mocks"
	"github.com/x-xyz/settlement/service/kv/memory"
	"github.com/x-xyz/settlement/stores/order/repository"
)

const chainId = int32(43114)

var exchangeAddr = domain.Address("0x00000000000000000000000000000000000e0001")

type verifierSuite struct {
	suite.Suite

	ctx    ctx.Ctx
	key    *ecdsa.PrivateKey
	signer domain.Address
	repo   order.RegisteredOrderRepo
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(verifierSuite))
}

func (s *verifierSuite) SetupTest() {
	key, err := crypto.GenerateKey()
	s.Require().NoError(err)
	s.ctx = ctx.Background()
	s.key = key
	s.signer = domain.NewAddress(crypto.PubkeyToAddress(key.PublicKey))
	s.repo = repository.NewRegisteredOrderRepo(memory.New())
}

func (s *verifierSuite) newOrder() (*order.MakerOrder, []byte) {
	o := &order.MakerOrder{
		IsOrderAsk:         true,
		Signer:             s.signer,
		Collection:         domain.Address("0x0000000000000000000000000000000000000721"),
		Price:              big.NewInt(1000),
		TokenId:            big.NewInt(1),
		Amount:             big.NewInt(1),
		Strategy:           domain.Address("0x0000000000000000000000000000000000005001"),
		Currency:           domain.Address("0x000000000000000000000000000000000000c001"),
		Nonce:              big.NewInt(0),
		StartTime:          1000,
		EndTime:            2000,
		MinPercentageToAsk: 8500,
	}
	digest, err := o.Digest(order.GetDomainSeparator(domain.ChainId(chainId), exchangeAddr))
	s.Require().NoError(err)
	return o, digest
}

func (s *verifierSuite) TestECDSA() {
	req := s.Require()
	v := NewECDSAVerifier()
	o, digest := s.newOrder()

	req.ErrorIs(v.Verify(s.ctx, o, digest), domain.ErrInvalidSignature)

	sig, err := ethereum.SignHash(digest, s.key)
	req.NoError(err)
	o.Signature = sig
	req.NoError(v.Verify(s.ctx, o, digest))

	// any change of a signed field breaks the signature
	o.Price = big.NewInt(999)
	tampered, err := o.Digest(order.GetDomainSeparator(domain.ChainId(chainId), exchangeAddr))
	req.NoError(err)
	req.ErrorIs(v.Verify(s.ctx, o, tampered), domain.ErrInvalidSigner)

	// signature of another signer
	o, digest = s.newOrder()
	other, err := crypto.GenerateKey()
	req.NoError(err)
	o.Signature, err = ethereum.SignHash(digest, other)
	req.NoError(err)
	req.ErrorIs(v.Verify(s.ctx, o, digest), domain.ErrInvalidSigner)

	o.Signature = []byte{1, 2, 3}
	req.ErrorIs(v.Verify(s.ctx, o, digest), domain.ErrInvalidSignature)
}

func (s *verifierSuite) TestRegistry() {
	req := s.Require()
	v := NewRegistryVerifier(s.repo)
	o, digest := s.newOrder()

	req.ErrorIs(v.Verify(s.ctx, o, digest), domain.ErrInvalidSignature)

	req.NoError(s.repo.Create(s.ctx, order.RegisteredOrder{
		Digest:       domain.OrderHash(hexutil.Encode(digest)),
		Signer:       s.signer,
		RegisteredAt: 1000,
	}))
	req.NoError(v.Verify(s.ctx, o, digest))

	req.ErrorIs(s.repo.Create(s.ctx, order.RegisteredOrder{
		Digest: domain.OrderHash(hexutil.Encode(digest)),
		Signer: s.signer,
	}), domain.ErrOrderAlreadyRegistered)

	o.Signer = domain.Address("0x00000000000000000000000000000000000000b1")
	req.ErrorIs(v.Verify(s.ctx, o, digest), domain.ErrInvalidSigner)
}

func (s *verifierSuite) TestERC1271() {
	req := s.Require()
	client := &mChain.Client{}
	v := NewERC1271Verifier(&ERC1271VerifierCfg{
		ChainId:  domain.ChainId(chainId),
		Contract: contract.NewErc1271(client),
	})
	o, digest := s.newOrder()
	o.Signature = []byte{0xab}
	wallet := o.Signer.ToCommon()

	client.On("HasCode", mock.Anything, chainId, wallet).Return(false, nil).Once()
	req.ErrorIs(v.Verify(s.ctx, o, digest), domain.ErrInvalidSignature)

	var magic [4]byte
	copy(magic[:], common.Hex2Bytes("1626ba7e"))
	client.On("HasCode", mock.Anything, chainId, wallet).Return(true, nil)
	client.On("Call", mock.Anything, chainId, wallet, (*big.Int)(nil), mock.Anything, "isValidSignature", common.BytesToHash(digest), o.Signature).
		Return([]interface{}{magic}, nil).Once()
	req.NoError(v.Verify(s.ctx, o, digest))

	client.On("Call", mock.Anything, chainId, wallet, (*big.Int)(nil), mock.Anything, "isValidSignature", common.BytesToHash(digest), o.Signature).
		Return([]interface{}{[4]byte{}}, nil).Once()
	req.ErrorIs(v.Verify(s.ctx, o, digest), domain.ErrInvalidSignature)
	client.AssertExpectations(s.T())
}

func (s *verifierSuite) TestChain() {
	req := s.Require()
	v := NewVerifierChain(NewECDSAVerifier(), NewRegistryVerifier(s.repo))
	o, digest := s.newOrder()

	req.ErrorIs(v.Verify(s.ctx, o, digest), domain.ErrInvalidSignature)

	req.NoError(s.repo.Create(s.ctx, order.RegisteredOrder{
		Digest: domain.OrderHash(hexutil.Encode(digest)),
		Signer: s.signer,
	}))
	// registered orders need no signature
	req.NoError(v.Verify(s.ctx, o, digest))

	o2, digest2 := s.newOrder()
	o2.Nonce = big.NewInt(1)
	digest2, err := o2.Digest(order.GetDomainSeparator(domain.ChainId(chainId), exchangeAddr))
	req.NoError(err)
	o2.Signature, err = ethereum.SignHash(digest2, s.key)
	req.NoError(err)
	req.NoError(v.Verify(s.ctx, o2, digest2))
}
