package usecase

import (
	"math/big"

	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/account"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/service/kv"
)

// MaxCancelRange bounds how far a single CancelAllOrdersForSender may move the floor
var MaxCancelRange = big.NewInt(500000)

type OrderNonceUseCaseCfg struct {
	Store   kv.Store
	Repo    account.OrderNonceRepo
	Emitter event.Emitter
}

type orderNonceUCImpl struct {
	store   kv.Store
	repo    account.OrderNonceRepo
	emitter event.Emitter
}

func NewOrderNonceUseCase(cfg *OrderNonceUseCaseCfg) account.OrderNonceUseCase {
	return &orderNonceUCImpl{
		store:   cfg.Store,
		repo:    cfg.Repo,
		emitter: cfg.Emitter,
	}
}

func (im *orderNonceUCImpl) UserMinOrderNonce(ctx bCtx.Ctx, signer domain.Address) (*big.Int, error) {
	return im.repo.FindMinNonce(ctx, signer)
}

func (im *orderNonceUCImpl) IsUserOrderNonceExecutedOrCancelled(ctx bCtx.Ctx, signer domain.Address, nonce *big.Int) (bool, error) {
	return im.repo.IsExecutedOrCancelled(ctx, signer, nonce)
}

func (im *orderNonceUCImpl) IsValid(ctx bCtx.Ctx, signer domain.Address, nonce *big.Int) error {
	if nonce == nil || nonce.Sign() < 0 {
		return domain.ErrOrderExpired
	}
	used, err := im.repo.IsExecutedOrCancelled(ctx, signer, nonce)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrOrderExpired
	}
	min, err := im.repo.FindMinNonce(ctx, signer)
	if err != nil {
		return err
	}
	if nonce.Cmp(min) < 0 {
		return domain.ErrOrderExpired
	}
	return nil
}

func (im *orderNonceUCImpl) Consume(ctx bCtx.Ctx, signer domain.Address, nonce *big.Int) error {
	if err := im.repo.MarkExecutedOrCancelled(ctx, signer, nonce); err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": signer,
			"nonce":  domain.BigString(nonce),
		}).Error("repo.MarkExecutedOrCancelled failed")
		return err
	}
	return nil
}

func (im *orderNonceUCImpl) CancelAllOrdersForSender(ctx bCtx.Ctx, caller domain.Address, minNonce *big.Int) error {
	if caller.IsNull() {
		return domain.ErrUnauthorized
	}
	if minNonce == nil {
		return domain.ErrBadParamInput
	}
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		current, err := im.repo.FindMinNonce(ctx, caller)
		if err != nil {
			return err
		}
		if minNonce.Cmp(current) <= 0 {
			return domain.ErrOrderNonceLowerThanCurrent
		}
		if minNonce.Cmp(new(big.Int).Add(current, MaxCancelRange)) >= 0 {
			return domain.ErrOrderNonceTooHigh
		}
		if err := im.repo.UpdateMinNonce(ctx, caller, minNonce); err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractExchange), event.NameCancelAllOrders, event.Fields{
			"user":        caller.ToLower(),
			"newMinNonce": minNonce.String(),
		})
		return nil
	})
}

func (im *orderNonceUCImpl) CancelMultipleMakerOrders(ctx bCtx.Ctx, caller domain.Address, nonces []*big.Int) error {
	if caller.IsNull() {
		return domain.ErrUnauthorized
	}
	if len(nonces) == 0 {
		return domain.ErrEmptyNonces
	}
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		current, err := im.repo.FindMinNonce(ctx, caller)
		if err != nil {
			return err
		}
		strs := make([]string, 0, len(nonces))
		for _, n := range nonces {
			if n == nil || n.Cmp(current) < 0 {
				return domain.ErrOrderNonceLowerThanCurrent
			}
			done, err := im.repo.IsExecutedOrCancelled(ctx, caller, n)
			if err != nil {
				return err
			}
			if done {
				continue
			}
			if err := im.repo.MarkExecutedOrCancelled(ctx, caller, n); err != nil {
				return err
			}
			strs = append(strs, n.String())
		}
		if len(strs) == 0 {
			return nil
		}
		im.emitter.Emit(ctx, string(admin.ContractExchange), event.NameCancelMultipleOrders, event.Fields{
			"user":        caller.ToLower(),
			"orderNonces": strs,
		})
		return nil
	})
}
