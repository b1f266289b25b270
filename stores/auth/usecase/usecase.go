package usecase

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/ethereum"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/service/kv"
)

const (
	nonceRange = 1000000
	tokenTTL   = 24 * time.Hour
)

type UseCaseCfg struct {
	Store     kv.Store
	Nonces    domain.AuthNonceRepo
	JwtSecret string
	// SignatureMsg is a fmt template with one %s for the nonce
	SignatureMsg string
	TimeNow      func() time.Time
}

type impl struct {
	store        kv.Store
	nonces       domain.AuthNonceRepo
	jwtSecret    []byte
	signatureMsg string
	now          func() time.Time
}

func New(cfg *UseCaseCfg) domain.AuthUsecase {
	now := cfg.TimeNow
	if now == nil {
		now = time.Now
	}
	return &impl{
		store:        cfg.Store,
		nonces:       cfg.Nonces,
		jwtSecret:    []byte(cfg.JwtSecret),
		signatureMsg: cfg.SignatureMsg,
		now:          now,
	}
}

func (im *impl) GetNonce(c ctx.Ctx, address domain.Address) (int32, error) {
	if address.IsNull() || !address.IsValid() {
		return 0, domain.ErrInvalidAddress
	}
	nonce := rand.Int31n(nonceRange) + 1
	if err := im.nonces.Upsert(c, address, nonce); err != nil {
		return 0, err
	}
	return nonce, nil
}

// SignToken consumes the outstanding nonce of address whether or not the
// signature is valid
func (im *impl) SignToken(c ctx.Ctx, address domain.Address, signature string) (string, error) {
	c = ctx.WithValues(c, map[string]interface{}{
		"address":   address,
		"signature": signature,
	})

	var nonce int32
	err := im.store.RunWithTransaction(c, func(c ctx.Ctx) error {
		n, err := im.nonces.Find(c, address)
		if err == domain.ErrNotFound {
			return domain.ErrInvalidNonce
		} else if err != nil {
			return err
		}
		nonce = n
		return im.nonces.Remove(c, address)
	})
	if err != nil {
		return "", err
	}

	msg := []byte(fmt.Sprintf(im.signatureMsg, strconv.Itoa(int(nonce))))
	if ok, err := ethereum.ValidateMsgSignature(msg, signature, string(address)); err != nil {
		c.WithField("err", err).Info("ValidateMsgSignature failed")
		return "", domain.ErrInvalidSignature
	} else if !ok {
		return "", domain.ErrInvalidSigner
	}

	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: im.now().Add(tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		c.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(c ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims.Address, nil
	}

	return "", domain.ErrInvalidToken
}
