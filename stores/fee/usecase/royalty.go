package usecase

import (
	"math/big"

	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/service/kv"
)

type RoyaltyFeeManagerCfg struct {
	Store   kv.Store
	Repo    fee.RoyaltyRepo
	Admin   admin.UseCase
	Emitter event.Emitter
	ERC2981 fee.ERC2981
	// Assets resolves the owner and admin of a collection for the setter path
	Assets ledger.AssetLedger

	DefaultRoyaltyFeeLimit  uint64
	DefaultMaxNumRecipients int
}

type royaltyFeeManagerImpl struct {
	store     kv.Store
	repo      fee.RoyaltyRepo
	admin     admin.UseCase
	emitter   event.Emitter
	erc2981   fee.ERC2981
	assets    ledger.AssetLedger
	defaults  fee.RoyaltyConfig
	providers []fee.RoyaltyProvider
}

func NewRoyaltyFeeManager(cfg *RoyaltyFeeManagerCfg) fee.RoyaltyFeeManager {
	im := &royaltyFeeManagerImpl{
		store:   cfg.Store,
		repo:    cfg.Repo,
		admin:   cfg.Admin,
		emitter: cfg.Emitter,
		erc2981: cfg.ERC2981,
		assets:  cfg.Assets,
		defaults: fee.RoyaltyConfig{
			RoyaltyFeeLimit:  cfg.DefaultRoyaltyFeeLimit,
			MaxNumRecipients: cfg.DefaultMaxNumRecipients,
		},
	}
	im.providers = []fee.RoyaltyProvider{
		&erc2981Provider{cfg.ERC2981},
		&registryV2Provider{im},
		&registryV1Provider{cfg.Repo},
	}
	return im
}

// CalculateRoyaltyFeeAmountParts walks the providers in order, the first
// non-empty answer wins
func (im *royaltyFeeManagerImpl) CalculateRoyaltyFeeAmountParts(ctx bCtx.Ctx, collection domain.Address, tokenId, price *big.Int) ([]fee.FeeAmountPart, error) {
	for _, p := range im.providers {
		parts, err := p.RoyaltyFeeAmountParts(ctx, collection, tokenId, price)
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":        err,
				"collection": collection,
				"tokenId":    domain.BigString(tokenId),
			}).Error("RoyaltyFeeAmountParts failed")
			return nil, err
		}
		if len(parts) > 0 {
			return parts, nil
		}
	}
	return []fee.FeeAmountPart{}, nil
}

func (im *royaltyFeeManagerImpl) RoyaltyConfig(ctx bCtx.Ctx) (*fee.RoyaltyConfig, error) {
	cfg, err := im.repo.FindConfig(ctx)
	if err == domain.ErrNotFound {
		d := im.defaults
		return &d, nil
	} else if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (im *royaltyFeeManagerImpl) updateConfig(ctx bCtx.Ctx, caller domain.Address, fn func(cfg *fee.RoyaltyConfig) error) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractFeeManager, caller); err != nil {
			return err
		}
		cfg, err := im.RoyaltyConfig(ctx)
		if err != nil {
			return err
		}
		if err := fn(cfg); err != nil {
			return err
		}
		if err := im.repo.UpsertConfig(ctx, cfg); err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractFeeManager), event.NameRoyaltyConfigUpdated, event.Fields{
			"royaltyFeeLimit":  cfg.RoyaltyFeeLimit,
			"maxNumRecipients": cfg.MaxNumRecipients,
			"registryV2":       cfg.RegistryV2,
		})
		return nil
	})
}

func (im *royaltyFeeManagerImpl) InitializeRoyaltyFeeRegistryV2(ctx bCtx.Ctx, caller, registry domain.Address) error {
	return im.updateConfig(ctx, caller, func(cfg *fee.RoyaltyConfig) error {
		if registry.IsNull() {
			return domain.ErrExpectedNonNullAddress
		}
		if !cfg.RegistryV2.IsNull() {
			return domain.ErrRoyaltyFeeRegistryV2AlreadyInitial
		}
		cfg.RegistryV2 = registry.ToLower()
		return nil
	})
}

func (im *royaltyFeeManagerImpl) UpdateRoyaltyFeeLimit(ctx bCtx.Ctx, caller domain.Address, limit uint64) error {
	return im.updateConfig(ctx, caller, func(cfg *fee.RoyaltyConfig) error {
		if limit > fee.MaxRoyaltyFeeLimit {
			return domain.ErrRoyaltyFeeLimitTooHigh
		}
		cfg.RoyaltyFeeLimit = limit
		return nil
	})
}

func (im *royaltyFeeManagerImpl) UpdateMaxNumRecipients(ctx bCtx.Ctx, caller domain.Address, max int) error {
	return im.updateConfig(ctx, caller, func(cfg *fee.RoyaltyConfig) error {
		if max <= 0 {
			return domain.ErrInvalidMaxNumRecipients
		}
		cfg.MaxNumRecipients = max
		return nil
	})
}

func (im *royaltyFeeManagerImpl) RoyaltyFeeInfoCollection(ctx bCtx.Ctx, collection domain.Address) (*fee.RoyaltyFeeInfo, error) {
	return im.repo.FindInfo(ctx, collection)
}

func (im *royaltyFeeManagerImpl) UpdateRoyaltyInfoForCollection(ctx bCtx.Ctx, caller, collection, setter, receiver domain.Address, f uint64) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractFeeManager, caller); err != nil {
			return err
		}
		cfg, err := im.RoyaltyConfig(ctx)
		if err != nil {
			return err
		}
		if f > cfg.RoyaltyFeeLimit {
			return domain.ErrRoyaltyFeeTooHigh
		}
		info := &fee.RoyaltyFeeInfo{
			Collection: collection.ToLower(),
			Setter:     setter.ToLower(),
			Receiver:   receiver.ToLower(),
			Fee:        f,
		}
		if err := im.repo.UpsertInfo(ctx, info); err != nil {
			return err
		}
		im.emitter.Emit(ctx, string(admin.ContractFeeManager), event.NameRoyaltyFeeUpdated, event.Fields{
			"collection": info.Collection,
			"setter":     info.Setter,
			"receiver":   info.Receiver,
			"fee":        f,
		})
		return nil
	})
}

func (im *royaltyFeeManagerImpl) RoyaltyFeeInfoPartsCollection(ctx bCtx.Ctx, collection domain.Address) (*fee.RoyaltyFeeInfoParts, error) {
	return im.repo.FindInfoParts(ctx, collection)
}

func (im *royaltyFeeManagerImpl) UpdateRoyaltyInfoPartsForCollection(ctx bCtx.Ctx, caller, collection, setter domain.Address, parts []fee.RoyaltyFeeTypes) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractFeeManager, caller); err != nil {
			return err
		}
		return im.updateInfoParts(ctx, collection, setter, parts)
	})
}

func (im *royaltyFeeManagerImpl) UpdateRoyaltyInfoPartsForCollectionIfSetter(ctx bCtx.Ctx, caller, collection, setter domain.Address, parts []fee.RoyaltyFeeTypes) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		supported, err := im.erc2981.SupportsERC2981(ctx, collection)
		if err != nil {
			return err
		}
		if supported {
			return domain.ErrCollectionSupportsERC2981
		}
		if ok, err := im.isCollectionAdmin(ctx, caller, collection); err != nil {
			return err
		} else if !ok {
			return domain.ErrNotCollectionAdmin
		}
		return im.updateInfoParts(ctx, collection, setter, parts)
	})
}

// isCollectionAdmin accepts the collection owner, its admin or the current
// setter of its royalty parts
func (im *royaltyFeeManagerImpl) isCollectionAdmin(ctx bCtx.Ctx, caller, collection domain.Address) (bool, error) {
	if caller.IsNull() {
		return false, nil
	}
	current, err := im.repo.FindInfoParts(ctx, collection)
	if err == nil && current.Setter.Equals(caller) {
		return true, nil
	} else if err != nil && err != domain.ErrNotFound {
		return false, err
	}

	col, err := im.assets.GetCollection(ctx, collection)
	if err == domain.ErrNotFound {
		return false, nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"collection": collection,
		}).Error("assets.GetCollection failed")
		return false, err
	}
	return col.Owner.Equals(caller) || (!col.Admin.IsNull() && col.Admin.Equals(caller)), nil
}

func (im *royaltyFeeManagerImpl) updateInfoParts(ctx bCtx.Ctx, collection, setter domain.Address, parts []fee.RoyaltyFeeTypes) error {
	cfg, err := im.RoyaltyConfig(ctx)
	if err != nil {
		return err
	}
	if len(parts) > cfg.MaxNumRecipients {
		return domain.ErrTooManyFeeRecipients
	}
	if setter.IsNull() {
		return domain.ErrExpectedNonNullAddress
	}
	var total uint64
	receivers := make([]domain.Address, 0, len(parts))
	fees := make([]uint64, 0, len(parts))
	normalized := make([]fee.RoyaltyFeeTypes, 0, len(parts))
	for _, p := range parts {
		if p.Receiver.IsNull() {
			return domain.ErrExpectedNonNullAddress
		}
		if p.Fee == 0 {
			return domain.ErrInvalidRoyaltyFee
		}
		total += p.Fee
		receivers = append(receivers, p.Receiver.ToLower())
		fees = append(fees, p.Fee)
		normalized = append(normalized, fee.RoyaltyFeeTypes{Receiver: p.Receiver.ToLower(), Fee: p.Fee})
	}
	if total > cfg.RoyaltyFeeLimit {
		return domain.ErrRoyaltyFeeTooHigh
	}

	info := &fee.RoyaltyFeeInfoParts{
		Collection: collection.ToLower(),
		Setter:     setter.ToLower(),
		Parts:      normalized,
	}
	if err := im.repo.UpsertInfoParts(ctx, info); err != nil {
		return err
	}
	im.emitter.Emit(ctx, string(admin.ContractFeeManager), event.NameRoyaltyFeeUpdated, event.Fields{
		"collection": info.Collection,
		"setter":     info.Setter,
		"receivers":  receivers,
		"fees":       fees,
	})
	return nil
}

func percentOf(price *big.Int, rate uint64) *big.Int {
	amount := new(big.Int).Mul(price, new(big.Int).SetUint64(rate))
	return amount.Div(amount, big.NewInt(domain.PercentageDenominator))
}

type erc2981Provider struct {
	erc2981 fee.ERC2981
}

func (p *erc2981Provider) RoyaltyFeeAmountParts(ctx bCtx.Ctx, collection domain.Address, tokenId, price *big.Int) ([]fee.FeeAmountPart, error) {
	if p.erc2981 == nil {
		return nil, nil
	}
	supported, err := p.erc2981.SupportsERC2981(ctx, collection)
	if err != nil || !supported {
		return nil, err
	}
	receiver, amount, err := p.erc2981.RoyaltyInfo(ctx, collection, tokenId, price)
	if err != nil {
		return nil, err
	}
	if receiver.IsNull() || amount == nil || amount.Sign() <= 0 {
		return nil, nil
	}
	return []fee.FeeAmountPart{{Receiver: receiver.ToLower(), Amount: amount}}, nil
}

type registryV2Provider struct {
	im *royaltyFeeManagerImpl
}

func (p *registryV2Provider) RoyaltyFeeAmountParts(ctx bCtx.Ctx, collection domain.Address, tokenId, price *big.Int) ([]fee.FeeAmountPart, error) {
	cfg, err := p.im.RoyaltyConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.RegistryV2.IsNull() {
		return nil, nil
	}
	info, err := p.im.repo.FindInfoParts(ctx, collection)
	if err == domain.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	res := make([]fee.FeeAmountPart, 0, len(info.Parts))
	for _, part := range info.Parts {
		res = append(res, fee.FeeAmountPart{Receiver: part.Receiver, Amount: percentOf(price, part.Fee)})
	}
	return res, nil
}

type registryV1Provider struct {
	repo fee.RoyaltyRepo
}

func (p *registryV1Provider) RoyaltyFeeAmountParts(ctx bCtx.Ctx, collection domain.Address, tokenId, price *big.Int) ([]fee.FeeAmountPart, error) {
	info, err := p.repo.FindInfo(ctx, collection)
	if err == domain.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if info.Receiver.IsNull() || info.Fee == 0 {
		return nil, nil
	}
	return []fee.FeeAmountPart{{Receiver: info.Receiver, Amount: percentOf(price, info.Fee)}}, nil
}
