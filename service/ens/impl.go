package ens

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	goens "github.com/wealdtech/go-ens/v3"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/keys"
	"github.com/x-xyz/settlement/service/cache"
)

type impl struct {
	backend bind.ContractBackend
	cache   cache.Service
}

// New resolves through backend, usually an ethclient dialed to mainnet
func New(backend bind.ContractBackend, cache cache.Service) ENS {
	return &impl{
		backend: backend,
		cache:   cache,
	}
}

func (im *impl) Resolve(ctx ctx.Ctx, name string) (domain.Address, error) {
	res := domain.Address("")
	key := keys.RedisKey("resolve", name)
	err := im.cache.GetByFunc(ctx, key, &res, func() (interface{}, error) {
		addr, err := goens.Resolve(im.backend, name)
		if fmt.Sprint(err) == "unregistered name" {
			val := domain.EmptyAddress
			return &val, nil
		}
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":  err,
				"name": name,
			}).Error("goens.Resolve failed")
			return nil, err
		}
		val := domain.NewAddress(addr)
		return &val, nil
	})
	if err != nil {
		return "", err
	}
	return res, nil
}

func (im *impl) ReverseResolve(ctx ctx.Ctx, address domain.Address) (string, error) {
	if !address.IsValid() {
		return "", domain.ErrInvalidAddress
	}
	res := ""
	key := keys.RedisKey("reverse-resolve", address.ToLowerStr())
	err := im.cache.GetByFunc(ctx, key, &res, func() (interface{}, error) {
		name, err := goens.ReverseResolve(im.backend, address.ToCommon())
		if fmt.Sprint(err) == "not a resolver" || fmt.Sprint(err) == "no resolution" {
			empty := ""
			return &empty, nil
		}
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":     err,
				"address": address,
			}).Error("goens.ReverseResolve failed")
			return nil, err
		}
		return &name, nil
	})
	if err != nil {
		return "", err
	}
	return res, nil
}
