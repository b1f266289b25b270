package usecase

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	bCtx "github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/base/metrics"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/account"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/currency"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/exchange"
	"github.com/x-xyz/settlement/domain/fee"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/domain/order"
	"github.com/x-xyz/settlement/domain/strategy"
	"github.com/x-xyz/settlement/domain/transfer"
	"github.com/x-xyz/settlement/service/kv"
)

type ExchangeUseCaseCfg struct {
	ChainId domain.ChainId
	// Address is the exchange identity: the EIP-712 verifying contract, the
	// spender of buyer allowances and the holder of wrapped native in flight
	Address domain.Address

	Store      kv.Store
	Repo       exchange.Repo
	Admin      admin.UseCase
	Emitter    event.Emitter
	Nonces     account.OrderNonceUseCase
	Registered order.RegisteredOrderRepo
	Verifier   order.Verifier
	Currencies currency.Registry
	Strategies strategy.Registry
	Transfers  transfer.Selector
	Payout     fee.Payout
	Ledger     ledger.CurrencyLedger
	Native     ledger.NativeLedger
	Metrics    metrics.Service

	// Callbacks are the in-process receivers of post-fill notifications,
	// keyed by maker address. Only allow-listed makers are notified.
	Callbacks map[domain.Address]exchange.Notifiable
	// Defaults is the configuration served until the owner changes it
	Defaults exchange.Config
	TimeNow  func() time.Time
}

type exchangeUCImpl struct {
	address    domain.Address
	separator  apitypes.TypedDataDomain
	store      kv.Store
	repo       exchange.Repo
	admin      admin.UseCase
	emitter    event.Emitter
	nonces     account.OrderNonceUseCase
	registered order.RegisteredOrderRepo
	verifier   order.Verifier
	currencies currency.Registry
	strategies strategy.Registry
	transfers  transfer.Selector
	payout     fee.Payout
	ledger     ledger.CurrencyLedger
	native     ledger.NativeLedger
	metrics    metrics.Service
	callbacks  map[domain.Address]exchange.Notifiable
	defaults   exchange.Config
	now        func() time.Time
}

func NewExchangeUseCase(cfg *ExchangeUseCaseCfg) exchange.UseCase {
	callbacks := make(map[domain.Address]exchange.Notifiable)
	for addr, n := range cfg.Callbacks {
		callbacks[addr.ToLower()] = n
	}
	now := cfg.TimeNow
	if now == nil {
		now = time.Now
	}
	return &exchangeUCImpl{
		address:    cfg.Address.ToLower(),
		separator:  order.GetDomainSeparator(cfg.ChainId, cfg.Address),
		store:      cfg.Store,
		repo:       cfg.Repo,
		admin:      cfg.Admin,
		emitter:    cfg.Emitter,
		nonces:     cfg.Nonces,
		registered: cfg.Registered,
		verifier:   cfg.Verifier,
		currencies: cfg.Currencies,
		strategies: cfg.Strategies,
		transfers:  cfg.Transfers,
		payout:     cfg.Payout,
		ledger:     cfg.Ledger,
		native:     cfg.Native,
		metrics:    cfg.Metrics,
		callbacks:  callbacks,
		defaults:   cfg.Defaults,
		now:        now,
	}
}

func (im *exchangeUCImpl) emit(ctx bCtx.Ctx, name event.Name, fields event.Fields) {
	im.emitter.Emit(ctx, string(admin.ContractExchange), name, fields)
}

func (im *exchangeUCImpl) CancelAllOrdersForSender(ctx bCtx.Ctx, caller domain.Address, minNonce *big.Int) error {
	if err := im.nonces.CancelAllOrdersForSender(ctx, caller, minNonce); err != nil {
		return err
	}
	im.metrics.BumpSum("cancel", 1, "kind:all")
	return nil
}

func (im *exchangeUCImpl) CancelMultipleMakerOrders(ctx bCtx.Ctx, caller domain.Address, nonces []*big.Int) error {
	if err := im.nonces.CancelMultipleMakerOrders(ctx, caller, nonces); err != nil {
		return err
	}
	im.metrics.BumpSum("cancel", float64(len(nonces)), "kind:multiple")
	return nil
}

// RegisterOrder approves a maker order in-band, the order then settles
// without a signature
func (im *exchangeUCImpl) RegisterOrder(ctx bCtx.Ctx, caller domain.Address, maker *order.MakerOrder) (domain.OrderHash, error) {
	if caller.IsNull() {
		return "", domain.ErrUnauthorized
	}
	if !caller.Equals(maker.Signer) {
		return "", domain.ErrInvalidSigner
	}
	digest, err := maker.Digest(im.separator)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"signer": maker.Signer,
		}).Warn("maker.Digest failed")
		return "", domain.ErrBadParamInput
	}
	hash := domain.OrderHash(hexutil.Encode(digest))
	err = im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.WhenNotPaused(ctx, admin.ContractExchange); err != nil {
			return err
		}
		if err := im.registered.Create(ctx, order.RegisteredOrder{
			Digest:       hash,
			Signer:       caller.ToLower(),
			RegisteredAt: im.now().Unix(),
		}); err != nil {
			return err
		}
		im.emit(ctx, event.NameOrderRegistered, event.Fields{
			"orderHash":  hash,
			"signer":     caller.ToLower(),
			"orderNonce": domain.BigString(maker.Nonce),
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (im *exchangeUCImpl) Config(ctx bCtx.Ctx) (*exchange.Config, error) {
	cfg, err := im.repo.FindConfig(ctx)
	if err == domain.ErrNotFound {
		d := im.defaults
		return &d, nil
	} else if err != nil {
		return nil, err
	}
	return cfg, nil
}

// updateConfig stores a registry pointer in the exchange config, it does not
// rewire the components the exchange was built with
func (im *exchangeUCImpl) updateConfig(ctx bCtx.Ctx, caller domain.Address, field string, value domain.Address, apply func(cfg *exchange.Config)) error {
	if value.IsNull() {
		return domain.ErrExpectedNonNullAddress
	}
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractExchange, caller); err != nil {
			return err
		}
		cfg, err := im.Config(ctx)
		if err != nil {
			return err
		}
		apply(cfg)
		if err := im.repo.UpsertConfig(ctx, cfg); err != nil {
			return err
		}
		im.emit(ctx, event.NameConfigUpdated, event.Fields{
			"field": field,
			"value": value.ToLower(),
		})
		return nil
	})
}

func (im *exchangeUCImpl) UpdateProtocolFeeRecipient(ctx bCtx.Ctx, caller, recipient domain.Address) error {
	return im.updateConfig(ctx, caller, "protocolFeeRecipient", recipient, func(cfg *exchange.Config) {
		cfg.ProtocolFeeRecipient = recipient.ToLower()
	})
}

func (im *exchangeUCImpl) UpdateCurrencyManager(ctx bCtx.Ctx, caller, manager domain.Address) error {
	return im.updateConfig(ctx, caller, "currencyManager", manager, func(cfg *exchange.Config) {
		cfg.CurrencyManager = manager.ToLower()
	})
}

func (im *exchangeUCImpl) UpdateExecutionManager(ctx bCtx.Ctx, caller, manager domain.Address) error {
	return im.updateConfig(ctx, caller, "executionManager", manager, func(cfg *exchange.Config) {
		cfg.ExecutionManager = manager.ToLower()
	})
}

func (im *exchangeUCImpl) UpdateProtocolFeeManager(ctx bCtx.Ctx, caller, manager domain.Address) error {
	return im.updateConfig(ctx, caller, "protocolFeeManager", manager, func(cfg *exchange.Config) {
		cfg.ProtocolFeeManager = manager.ToLower()
	})
}

func (im *exchangeUCImpl) UpdateRoyaltyFeeManager(ctx bCtx.Ctx, caller, manager domain.Address) error {
	return im.updateConfig(ctx, caller, "royaltyFeeManager", manager, func(cfg *exchange.Config) {
		cfg.RoyaltyFeeManager = manager.ToLower()
	})
}

func (im *exchangeUCImpl) UpdateTransferSelector(ctx bCtx.Ctx, caller, selector domain.Address) error {
	return im.updateConfig(ctx, caller, "transferSelector", selector, func(cfg *exchange.Config) {
		cfg.TransferSelector = selector.ToLower()
	})
}

func (im *exchangeUCImpl) AddNotifiable(ctx bCtx.Ctx, caller, notifiable domain.Address) error {
	if notifiable.IsNull() {
		return domain.ErrExpectedNonNullAddress
	}
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractExchange, caller); err != nil {
			return err
		}
		if err := im.repo.AddNotifiable(ctx, notifiable); err != nil {
			return err
		}
		im.emit(ctx, event.NameNotifiableAdded, event.Fields{
			"notifiable": notifiable.ToLower(),
		})
		return nil
	})
}

func (im *exchangeUCImpl) RemoveNotifiable(ctx bCtx.Ctx, caller, notifiable domain.Address) error {
	return im.store.RunWithTransaction(ctx, func(ctx bCtx.Ctx) error {
		if err := im.admin.OnlyOwner(ctx, admin.ContractExchange, caller); err != nil {
			return err
		}
		if err := im.repo.RemoveNotifiable(ctx, notifiable); err != nil {
			return err
		}
		im.emit(ctx, event.NameNotifiableRemoved, event.Fields{
			"notifiable": notifiable.ToLower(),
		})
		return nil
	})
}
