package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/database/mongoclient"
	"github.com/x-xyz/settlement/base/database/redisclient"
	"github.com/x-xyz/settlement/base/goroutine"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/base/metrics"
	bValidator "github.com/x-xyz/settlement/base/validator"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	"github.com/x-xyz/settlement/domain/auction"
	"github.com/x-xyz/settlement/domain/currency"
	"github.com/x-xyz/settlement/domain/event"
	"github.com/x-xyz/settlement/domain/exchange"
	"github.com/x-xyz/settlement/domain/fee"
	hcdomain "github.com/x-xyz/settlement/domain/healthcheck"
	"github.com/x-xyz/settlement/domain/order"
	"github.com/x-xyz/settlement/domain/strategy"
	mmiddleware "github.com/x-xyz/settlement/middleware"
	"github.com/x-xyz/settlement/service/cache"
	"github.com/x-xyz/settlement/service/cache/provider"
	"github.com/x-xyz/settlement/service/cache/provider/compound"
	"github.com/x-xyz/settlement/service/cache/provider/primitive"
	redisProvider "github.com/x-xyz/settlement/service/cache/provider/redis"
	"github.com/x-xyz/settlement/service/chain"
	"github.com/x-xyz/settlement/service/chain/contract"
	"github.com/x-xyz/settlement/service/ens"
	"github.com/x-xyz/settlement/service/kv"
	"github.com/x-xyz/settlement/service/kv/memory"
	kvMongo "github.com/x-xyz/settlement/service/kv/mongo"
	ledgerService "github.com/x-xyz/settlement/service/ledger"
	"github.com/x-xyz/settlement/service/query"
	"github.com/x-xyz/settlement/service/redis"

	account_delivery "github.com/x-xyz/settlement/stores/account/delivery/http"
	account_repository "github.com/x-xyz/settlement/stores/account/repository"
	account_usecase "github.com/x-xyz/settlement/stores/account/usecase"
	admin_delivery "github.com/x-xyz/settlement/stores/admin/delivery/http"
	admin_repository "github.com/x-xyz/settlement/stores/admin/repository"
	admin_usecase "github.com/x-xyz/settlement/stores/admin/usecase"
	auction_delivery "github.com/x-xyz/settlement/stores/auction/delivery/http"
	auction_repository "github.com/x-xyz/settlement/stores/auction/repository"
	auction_usecase "github.com/x-xyz/settlement/stores/auction/usecase"
	auth_delivery "github.com/x-xyz/settlement/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/settlement/stores/auth/delivery/http/middleware"
	auth_repository "github.com/x-xyz/settlement/stores/auth/repository"
	auth_usecase "github.com/x-xyz/settlement/stores/auth/usecase"
	currency_delivery "github.com/x-xyz/settlement/stores/currency/delivery/http"
	currency_repository "github.com/x-xyz/settlement/stores/currency/repository"
	currency_usecase "github.com/x-xyz/settlement/stores/currency/usecase"
	ens_delivery "github.com/x-xyz/settlement/stores/ens/delivery/http"
	event_delivery "github.com/x-xyz/settlement/stores/event/delivery/http"
	event_repository "github.com/x-xyz/settlement/stores/event/repository"
	event_usecase "github.com/x-xyz/settlement/stores/event/usecase"
	exchange_delivery "github.com/x-xyz/settlement/stores/exchange/delivery/http"
	exchange_repository "github.com/x-xyz/settlement/stores/exchange/repository"
	exchange_usecase "github.com/x-xyz/settlement/stores/exchange/usecase"
	fee_delivery "github.com/x-xyz/settlement/stores/fee/delivery/http"
	fee_repository "github.com/x-xyz/settlement/stores/fee/repository"
	fee_usecase "github.com/x-xyz/settlement/stores/fee/usecase"
	hc_delivery "github.com/x-xyz/settlement/stores/healthcheck/delivery/http"
	hc_repository "github.com/x-xyz/settlement/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/settlement/stores/healthcheck/usecase"
	ledger_delivery "github.com/x-xyz/settlement/stores/ledger/delivery/http"
	ledger_repository "github.com/x-xyz/settlement/stores/ledger/repository"
	ledger_usecase "github.com/x-xyz/settlement/stores/ledger/usecase"
	order_repository "github.com/x-xyz/settlement/stores/order/repository"
	order_usecase "github.com/x-xyz/settlement/stores/order/usecase"
	strategy_delivery "github.com/x-xyz/settlement/stores/strategy/delivery/http"
	strategy_repository "github.com/x-xyz/settlement/stores/strategy/repository"
	strategy_usecase "github.com/x-xyz/settlement/stores/strategy/usecase"
)

var configFile = pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")

func init() {
	pflag.Parse()
	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	viper.AutomaticEnv()
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("events.historySize", 1000)
	viper.SetDefault("auction.minBidIncrementPct", 500)
	viper.SetDefault("auction.refreshTime", 900)
	viper.SetDefault("fee.royaltyFeeLimit", 1000)
	viper.SetDefault("fee.maxNumRecipients", 5)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

//	@title			Settlement API
//	@version		1.0
//	@description	Signed order exchange and auction house.

// main
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				retrive token from #/auth/post_auth_sign and apply with `bearer {token}`
func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	context := ctx.Background()

	chainId := domain.ChainId(viper.GetInt32("chainId"))
	owner := domain.Address(viper.GetString("exchange.owner")).ToLower()
	exchangeAddr := domain.Address(viper.GetString("exchange.address")).ToLower()
	auctionAddr := domain.Address(viper.GetString("auction.address")).ToLower()
	wrappedNative := domain.Address(viper.GetString("exchange.wrappedNative")).ToLower()
	protocolFeeRecipient := domain.Address(viper.GetString("exchange.protocolFeeRecipient")).ToLower()

	// init store
	var store kv.Store
	var pingers []hcdomain.Pinger
	switch backend := viper.GetString("store.backend"); backend {
	case "mongo":
		context.Info("init mongo")
		mongoClient := mongoclient.MustConnect(mongoclient.Config{
			Uri:            viper.GetString("mongo.uri"),
			AuthDBName:     viper.GetString("mongo.authDBName"),
			DbName:         viper.GetString("mongo.dbName"),
			SSL:            viper.GetBool("mongo.enableSSL"),
			PoolMultiplier: viper.GetFloat64("mongo.poolMultiplier"),
		})
		store = kvMongo.New(query.New(mongoClient, viper.GetBool("mongo.checkIndex")))
		pingers = append(pingers, hc_repository.NewMongoPinger(mongoClient))
	case "", "memory":
		context.Warn("using in-memory store, state is lost on restart")
		store = memory.New()
	default:
		context.WithField("backend", backend).Panic("unknown store backend")
	}

	// init Redis service
	var redisCache redis.Service
	if uri := viper.GetString("redis.uri"); uri != "" {
		context.Info("init redis")
		redisName := viper.GetString("redis.name")
		redisPool := redisclient.MustConnect(redisclient.Config{
			Uri:            uri,
			Password:       viper.GetString("redis.password"),
			PoolMultiplier: viper.GetFloat64("redis.poolMultiplier"),
			Retries:        3,
		})
		redisCache = redis.New(redisName, metrics.New(redisName), redisPool)
		pingers = append(pingers, hc_repository.NewRedisPinger(redisCache))
	}

	layers := []provider.Provider{primitive.NewPrimitive("chain", 32)}
	if redisCache != nil {
		layers = append(layers, redisProvider.NewRedis(redisCache))
	}
	chainCache := cache.New(cache.ServiceConfig{
		Ttl:   time.Hour,
		Pfx:   "chain",
		Cache: compound.NewCompound(layers),
	})

	// init event publishers
	recent := event_repository.NewMemoryPublisher(viper.GetInt("events.historySize"))
	publishers := []event.Publisher{event_repository.NewLogPublisher(), recent}
	var reader event.Reader = recent
	if redisCache != nil {
		rp := event_repository.NewRedisPublisher(&event_repository.RedisPublisherCfg{
			Redis:       redisCache,
			Channel:     viper.GetString("redis.eventChannel"),
			HistorySize: viper.GetInt("events.historySize"),
		})
		publishers = append(publishers, rp)
		reader = rp
	}
	var kafkaPublisher *event_repository.KafkaPublisher
	if brokers := viper.GetStringSlice("kafka.brokers"); len(brokers) > 0 {
		kafkaPublisher = event_repository.NewKafkaPublisher(&event_repository.KafkaPublisherCfg{
			Brokers: brokers,
			Topic:   viper.GetString("kafka.topic"),
			Retries: viper.GetInt("kafka.retries"),
		})
		publishers = append(publishers, kafkaPublisher)
	}
	emitter := event_usecase.NewEmitter(&event_usecase.EmitterCfg{
		Store:          store,
		Publishers:     publishers,
		Metrics:        metrics.New("event"),
		Async:          viper.GetBool("events.async"),
		PublishTimeout: viper.GetDuration("events.publishTimeout"),
	})

	// init chain service
	rpcs := make(map[int32]string)
	for k, url := range viper.GetStringMapString("rpc.urls") {
		var id int32
		if _, err := fmt.Sscan(k, &id); err != nil {
			context.WithFields(log.Fields{"err": err, "key": k}).Warn("skip rpc with non numeric chain id")
			continue
		}
		rpcs[id] = url
	}

	// construct repository, usecase and delivery
	assets := ledgerService.NewAssetLedger(store)
	currencies := ledgerService.NewCurrencyLedger(store)
	native := ledgerService.NewNativeLedger(store, currencies, wrappedNative)

	adminUC := admin_usecase.New(&admin_usecase.UseCaseCfg{
		Store:   store,
		Repo:    admin_repository.New(store),
		Emitter: emitter,
	})
	currencyRegistry := currency_usecase.NewRegistry(&currency_usecase.RegistryCfg{
		Store:   store,
		Repo:    currency_repository.New(store),
		Admin:   adminUC,
		Emitter: emitter,
	})
	strategyFee := viper.GetUint64("fee.defaultProtocolFee")
	strategyRegistry := strategy_usecase.NewRegistry(&strategy_usecase.RegistryCfg{
		Store:   store,
		Repo:    strategy_repository.New(store),
		Admin:   adminUC,
		Emitter: emitter,
		Strategies: []strategy.Strategy{
			strategy_usecase.NewStandardSaleForFixedPrice(domain.Address(viper.GetString("strategies.standardSale")).ToLower(), strategyFee),
			strategy_usecase.NewAnyItemFromCollectionForFixedPrice(domain.Address(viper.GetString("strategies.collectionOffer")).ToLower(), strategyFee),
			strategy_usecase.NewPrivateSale(domain.Address(viper.GetString("strategies.privateSale")).ToLower(), strategyFee),
		},
	})
	nonceUC := account_usecase.NewOrderNonceUseCase(&account_usecase.OrderNonceUseCaseCfg{
		Store:   store,
		Repo:    account_repository.NewOrderNonceRepo(store),
		Emitter: emitter,
	})

	var erc2981 fee.ERC2981 = fee_repository.NewLedgerERC2981(assets)
	verifiers := []order.Verifier{order_usecase.NewECDSAVerifier()}
	registered := order_repository.NewRegisteredOrderRepo(store)
	verifiers = append(verifiers, order_usecase.NewRegistryVerifier(registered))
	if len(rpcs) > 0 {
		chainService, err := chain.NewClient(context, &chain.ClientCfg{
			RpcUrls:     rpcs,
			MaxInflight: viper.GetInt("rpc.maxInflight"),
		})
		if err != nil {
			context.WithField("err", err).Warn("chainService started with error")
		}
		verifiers = append(verifiers, order_usecase.NewERC1271Verifier(&order_usecase.ERC1271VerifierCfg{
			ChainId:  chainId,
			Contract: contract.NewErc1271(chainService),
		}))
		if viper.GetBool("rpc.royaltyFromChain") {
			erc2981 = fee_repository.NewChainERC2981(&fee_repository.ChainERC2981Cfg{
				ChainId:  chainId,
				Contract: contract.NewErc2981(chainService),
				Cache:    chainCache,
			})
		}
	}

	protocolFee := fee_usecase.NewProtocolFeeManager(&fee_usecase.ProtocolFeeManagerCfg{
		Store:              store,
		Repo:               fee_repository.NewProtocolFeeRepo(store),
		Admin:              adminUC,
		Emitter:            emitter,
		DefaultProtocolFee: viper.GetUint64("fee.defaultProtocolFee"),
	})
	royaltyFee := fee_usecase.NewRoyaltyFeeManager(&fee_usecase.RoyaltyFeeManagerCfg{
		Store:                   store,
		Repo:                    fee_repository.NewRoyaltyRepo(store),
		Admin:                   adminUC,
		Emitter:                 emitter,
		ERC2981:                 erc2981,
		Assets:                  assets,
		DefaultRoyaltyFeeLimit:  viper.GetUint64("fee.royaltyFeeLimit"),
		DefaultMaxNumRecipients: viper.GetInt("fee.maxNumRecipients"),
	})
	payout := fee_usecase.NewPayout(&fee_usecase.PayoutCfg{
		Protocol:   protocolFee,
		Royalty:    royaltyFee,
		Currencies: currencies,
		Emitter:    emitter,
	})

	transferSelector := ledger_usecase.NewTransferSelector(&ledger_usecase.TransferSelectorCfg{
		Store:   store,
		Repo:    ledger_repository.NewTransferManagerRepo(store),
		Admin:   adminUC,
		Emitter: emitter,
		Assets:  assets,
		ERC721:  ledger_usecase.NewERC721TransferManager(domain.Address(viper.GetString("transfer.erc721Manager")).ToLower(), assets),
		ERC1155: ledger_usecase.NewERC1155TransferManager(domain.Address(viper.GetString("transfer.erc1155Manager")).ToLower(), assets),
	})
	batchTransferer := ledger_usecase.NewBatchTransferer(&ledger_usecase.BatchTransfererCfg{
		Store:     store,
		Transfers: transferSelector,
	})

	exchangeUC := exchange_usecase.NewExchangeUseCase(&exchange_usecase.ExchangeUseCaseCfg{
		ChainId:    chainId,
		Address:    exchangeAddr,
		Store:      store,
		Repo:       exchange_repository.New(store),
		Admin:      adminUC,
		Emitter:    emitter,
		Nonces:     nonceUC,
		Registered: registered,
		Verifier:   order_usecase.NewVerifierChain(verifiers...),
		Currencies: currencyRegistry,
		Strategies: strategyRegistry,
		Transfers:  transferSelector,
		Payout:     payout,
		Ledger:     currencies,
		Native:     native,
		Metrics:    metrics.New("exchange"),
		Callbacks:  map[domain.Address]exchange.Notifiable{},
		Defaults: exchange.Config{
			ProtocolFeeRecipient: protocolFeeRecipient,
		},
	})
	auctionUC := auction_usecase.NewAuctionUseCase(&auction_usecase.AuctionUseCaseCfg{
		Address:    auctionAddr,
		Store:      store,
		Repo:       auction_repository.New(store),
		Admin:      adminUC,
		Emitter:    emitter,
		Currencies: currencyRegistry,
		Assets:     assets,
		Payout:     payout,
		Ledger:     currencies,
		Native:     native,
		Metrics:    metrics.New("auction"),
		Defaults: auction.Config{
			MinBidIncrementPct:   viper.GetUint64("auction.minBidIncrementPct"),
			RefreshTime:          viper.GetInt64("auction.refreshTime"),
			ProtocolFeeRecipient: protocolFeeRecipient,
		},
	})

	signatureMsg := viper.GetString("auth.signatureMsg")
	authUC := auth_usecase.New(&auth_usecase.UseCaseCfg{
		Store:        store,
		Nonces:       auth_repository.NewNonceRepo(store),
		JwtSecret:    viper.GetString("auth.jwtSecret"),
		SignatureMsg: signatureMsg,
	})
	authM := auth_middleware.New(authUC)

	bootstrap(context, owner, adminUC, currencyRegistry, strategyRegistry)

	hc_delivery.New(e, hc_usecase.New(pingers...))
	auth_delivery.New(e, authUC, signatureMsg)
	account_delivery.New(e, nonceUC)
	admin_delivery.New(e, adminUC, authM)
	currency_delivery.New(e, currencyRegistry, authM)
	strategy_delivery.New(e, strategyRegistry, authM)
	fee_delivery.New(e, protocolFee, royaltyFee, authM)
	exchange_delivery.New(e, &exchange_delivery.HandlerCfg{
		ChainId:  chainId,
		Address:  exchangeAddr,
		Exchange: exchangeUC,
		Auth:     authM,
	})
	auction_delivery.New(e, auctionUC, authM)
	ledger_delivery.New(e, &ledger_delivery.HandlerCfg{
		Currencies: currencies,
		Native:     native,
		Assets:     assets,
		Transfers:  transferSelector,
		Batch:      batchTransferer,
		Auth:       authM,
		Faucet:     viper.GetBool("ledger.faucet"),
	})
	event_delivery.New(e, reader)

	// ens on ethereum
	if url, ok := rpcs[1]; ok {
		client, err := ethclient.DialContext(context, url)
		if err != nil {
			context.WithField("err", err).Warn("ens disabled, failed to dial mainnet")
		} else {
			ens_delivery.New(e, ens.New(client, chainCache))
		}
	}

	if viper.GetBool("swagger") {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	serverPanic := goroutine.RecoverableGo("server", func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	})

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case sig := <-quit:
		log.Log().WithField("signal", sig).Info("received signal")
	case p, ok := <-serverPanic:
		if ok {
			log.Log().WithField("panic", p.Panic).Error("server crashed")
		}
	}
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
	emitter.Close()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Log().WithField("err", err).Error("kafkaPublisher.Close failed")
		}
	}
}

// bootstrap hands every contract to the configured owner on first start and
// allow-lists the configured currencies and strategies
func bootstrap(c ctx.Ctx, owner domain.Address, adminUC admin.UseCase, currencies currency.Registry, strategies strategy.Registry) {
	if owner.IsNull() || !owner.IsValid() {
		c.Warn("exchange.owner not set, contracts stay ownerless")
		return
	}
	for _, contract := range admin.Contracts {
		if err := adminUC.Init(c, contract, owner); err != nil {
			c.WithFields(log.Fields{"err": err, "contract": contract}).Panic("admin.Init failed")
		}
	}
	for _, cur := range viper.GetStringSlice("currencies") {
		addr := domain.Address(cur).ToLower()
		if err := currencies.Add(c, owner, addr); err != nil && !errors.Is(err, domain.ErrCurrencyAlreadyWhitelisted) {
			c.WithFields(log.Fields{"err": err, "currency": addr}).Warn("currencies.Add failed")
		}
	}
	for _, s := range viper.GetStringSlice("allowedStrategies") {
		addr := domain.Address(s).ToLower()
		if err := strategies.Add(c, owner, addr); err != nil && !errors.Is(err, domain.ErrStrategyAlreadyWhitelisted) {
			c.WithFields(log.Fields{"err": err, "strategy": addr}).Warn("strategies.Add failed")
		}
	}
}
