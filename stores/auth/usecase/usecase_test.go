package usecase_test

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/ethereum"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/service/kv/memory"
	"github.com/x-xyz/settlement/stores/auth/repository"
	"github.com/x-xyz/settlement/stores/auth/usecase"
)

const template = "Sign in to settlement, nonce: %s"

func signNonce(t *testing.T, key *ecdsa.PrivateKey, nonce int32) string {
	msg := fmt.Sprintf(template, strconv.Itoa(int(nonce)))
	sig, err := ethereum.SignHash(accounts.TextHash([]byte(msg)), key)
	require.NoError(t, err)
	return hexutil.Encode(sig)
}

func newUseCase() domain.AuthUsecase {
	store := memory.New()
	return usecase.New(&usecase.UseCaseCfg{
		Store:        store,
		Nonces:       repository.NewNonceRepo(store),
		JwtSecret:    "jwt-secret",
		SignatureMsg: template,
	})
}

func TestSignAndParseToken(t *testing.T) {
	c := ctx.Background()
	u := newUseCase()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := domain.NewAddress(crypto.PubkeyToAddress(key.PublicKey))

	nonce, err := u.GetNonce(c, address)
	require.NoError(t, err)
	tkn, err := u.SignToken(c, address, signNonce(t, key, nonce))
	require.NoError(t, err)
	assert.NotEmpty(t, tkn)

	ads, err := u.ParseToken(c, tkn)
	assert.NoError(t, err)
	assert.Equal(t, address.ToLowerStr(), ads)

	// the nonce is single use
	_, err = u.SignToken(c, address, signNonce(t, key, nonce))
	assert.ErrorIs(t, err, domain.ErrInvalidNonce)
}

func TestSignTokenWrongSigner(t *testing.T) {
	c := ctx.Background()
	u := newUseCase()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := domain.NewAddress(crypto.PubkeyToAddress(key.PublicKey))

	nonce, err := u.GetNonce(c, address)
	require.NoError(t, err)
	_, err = u.SignToken(c, address, signNonce(t, other, nonce))
	assert.ErrorIs(t, err, domain.ErrInvalidSigner)

	_, err = u.SignToken(c, address, "0x1234")
	assert.ErrorIs(t, err, domain.ErrInvalidNonce)
}

func TestParseInvalidToken(t *testing.T) {
	_, err := newUseCase().ParseToken(ctx.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}
