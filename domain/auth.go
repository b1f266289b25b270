package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/x-xyz/settlement/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"` // name data for backward compatibility
	jwt.StandardClaims
}

// AuthUsecase proves control of an address with a signed one-time nonce and
// hands out a bearer token naming it as the caller
type AuthUsecase interface {
	GetNonce(ctx ctx.Ctx, address Address) (int32, error)
	SignToken(ctx ctx.Ctx, address Address, signature string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}

// AuthNonceRepo keeps the outstanding login nonce of each address
type AuthNonceRepo interface {
	Find(ctx ctx.Ctx, address Address) (int32, error)
	Upsert(ctx ctx.Ctx, address Address, nonce int32) error
	Remove(ctx ctx.Ctx, address Address) error
}

var (
	ErrInvalidNonce = newError(KindAuthorization, "InvalidNonce", "nonce is used or never issued")
	ErrInvalidToken = newError(KindAuthorization, "InvalidToken", "invalid token")
)
