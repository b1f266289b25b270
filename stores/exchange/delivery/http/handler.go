package http

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/exchange"
	"github.com/x-xyz/settlement/domain/order"
	authMiddleware "github.com/x-xyz/settlement/stores/auth/delivery/http/middleware"
)

type HandlerCfg struct {
	ChainId  domain.ChainId
	Address  domain.Address
	Exchange exchange.UseCase
	Auth     *authMiddleware.AuthMiddleware
}

type handler struct {
	separator apitypes.TypedDataDomain
	exchange  exchange.UseCase
}

func New(e *echo.Echo, cfg *HandlerCfg) {
	h := &handler{
		separator: order.GetDomainSeparator(cfg.ChainId, cfg.Address),
		exchange:  cfg.Exchange,
	}

	g := e.Group("/exchange")
	g.POST("/orders/digest", h.digest)
	g.GET("/config", h.getConfig)

	auth := cfg.Auth.Auth()
	g.POST("/match/ask", h.matchAskWithTakerBid, auth)
	g.POST("/match/bid", h.matchBidWithTakerAsk, auth)
	g.POST("/batchBuy", h.batchBuy, auth)
	g.POST("/orders/register", h.registerOrder, auth)
	g.POST("/cancel/all", h.cancelAll, auth)
	g.POST("/cancel", h.cancelMultiple, auth)
	g.PUT("/config/:field", h.updateConfig, auth)
	g.POST("/notifiables", h.addNotifiable, auth)
	g.DELETE("/notifiables/:address", h.removeNotifiable, auth)
}

func bindAndValidate(c echo.Context, p interface{}) error {
	if err := c.Bind(p); err != nil {
		return err
	}
	return c.Validate(p)
}

// digest
//
//	@Summary		Maker order digest
//	@Description	EIP-712 digest the signer has to sign
//	@Tags			exchange
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	object{data=string}
//	@Failure		400
//	@Router			/exchange/orders/digest [post]
func (h *handler) digest(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &makerOrderPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	maker, err := p.toOrder()
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	digest, err := maker.Digest(h.separator)
	if err != nil {
		ctx.WithField("err", err).Error("maker.Digest failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, hexutil.Encode(digest))
}

func (h *handler) getConfig(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	cfg, err := h.exchange.Config(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("exchange.Config failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, cfg)
}

type matchPayload struct {
	Taker takerOrderPayload `json:"taker"`
	Maker makerOrderPayload `json:"maker"`
	// Value is native value sent along, only for asks priced in wrapped native
	Value string `json:"value" validate:"omitempty,numeric"`
}

// matchAskWithTakerBid
//
//	@Summary		Buy a listing
//	@Description	Fill a maker ask, the caller is the taker. A non empty value pays partly in native currency.
//	@Tags			exchange
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200
//	@Failure		400
//	@Failure		402
//	@Failure		409
//	@Router			/exchange/match/ask [post]
func (h *handler) matchAskWithTakerBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &matchPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	taker, maker, err := p.orders(authMiddleware.Caller(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if p.Value == "" {
		err = h.exchange.MatchAskWithTakerBid(ctx, taker, maker)
	} else {
		value, perr := domain.ParseBig(p.Value)
		if perr != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, perr)
		}
		err = h.exchange.MatchAskWithTakerBidUsingNativeAndWrapped(ctx, taker, maker, value)
	}
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "signer": maker.Signer, "nonce": maker.Nonce}).Info("match ask failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// matchBidWithTakerAsk
//
//	@Summary		Accept an offer
//	@Description	Fill a maker bid, the caller is the taker and sells the token
//	@Tags			exchange
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200
//	@Failure		400
//	@Failure		402
//	@Failure		409
//	@Router			/exchange/match/bid [post]
func (h *handler) matchBidWithTakerAsk(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &matchPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	taker, maker, err := p.orders(authMiddleware.Caller(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.exchange.MatchBidWithTakerAsk(ctx, taker, maker); err != nil {
		ctx.WithFields(log.Fields{"err": err, "signer": maker.Signer, "nonce": maker.Nonce}).Info("match bid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (p *matchPayload) orders(caller domain.Address) (*order.TakerOrder, *order.MakerOrder, error) {
	taker, err := p.Taker.toOrder(caller)
	if err != nil {
		return nil, nil, err
	}
	maker, err := p.Maker.toOrder()
	if err != nil {
		return nil, nil, err
	}
	return taker, maker, nil
}

// batchBuy
//
//	@Summary		Buy many listings
//	@Description	Fill every trade atomically. With ignoreExpired, asks whose nonce is no longer valid are skipped.
//	@Tags			exchange
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200
//	@Failure		400
//	@Failure		402
//	@Failure		409
//	@Router			/exchange/batchBuy [post]
func (h *handler) batchBuy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	type params struct {
		Trades        []tradePayload `json:"trades" validate:"required,min=1,dive"`
		Value         string         `json:"value" validate:"omitempty,numeric"`
		IgnoreExpired bool           `json:"ignoreExpired"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	trades, err := toTrades(caller, p.Trades)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if p.Value == "" {
		if p.IgnoreExpired {
			err = h.exchange.BatchBuyIgnoringExpiredAsks(ctx, caller, trades)
		} else {
			err = h.exchange.BatchBuy(ctx, caller, trades)
		}
	} else {
		value, perr := domain.ParseBig(p.Value)
		if perr != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, perr)
		}
		if p.IgnoreExpired {
			err = h.exchange.BatchBuyWithNativeAndWrappedIgnoringExpiredAsks(ctx, caller, trades, value)
		} else {
			err = h.exchange.BatchBuyWithNativeAndWrapped(ctx, caller, trades, value)
		}
	}
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "trades": len(trades)}).Info("batch buy failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) registerOrder(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &makerOrderPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	maker, err := p.toOrder()
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	digest, err := h.exchange.RegisterOrder(ctx, authMiddleware.Caller(c), maker)
	if err != nil {
		ctx.WithField("err", err).Info("exchange.RegisterOrder failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, digest)
}

// cancelAll
//
//	@Summary		Cancel all orders
//	@Description	Raise the caller's minimum valid order nonce
//	@Tags			exchange
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200
//	@Failure		400
//	@Router			/exchange/cancel/all [post]
func (h *handler) cancelAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		MinNonce string `json:"minNonce" validate:"required,numeric"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	minNonce, err := domain.ParseBig(p.MinNonce)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.exchange.CancelAllOrdersForSender(ctx, authMiddleware.Caller(c), minNonce); err != nil {
		ctx.WithField("err", err).Info("exchange.CancelAllOrdersForSender failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) cancelMultiple(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Nonces []string `json:"nonces" validate:"required,min=1,dive,numeric"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	nonces, err := domain.ToBigInt(p.Nonces)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.exchange.CancelMultipleMakerOrders(ctx, authMiddleware.Caller(c), nonces); err != nil {
		ctx.WithField("err", err).Info("exchange.CancelMultipleMakerOrders failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

type addressPayload struct {
	Address domain.Address `json:"address" validate:"required,eth_addr"`
}

// updateConfig
//
//	@Summary		Update exchange config
//	@Description	Owner only. field is one of protocolFeeRecipient, currencyManager, executionManager, protocolFeeManager, royaltyFeeManager, transferSelector.
//	@Tags			exchange
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			field	path	string	true	"config field"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/exchange/config/{field} [put]
func (h *handler) updateConfig(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	p := &addressPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	var err error
	switch field := c.Param("field"); field {
	case "protocolFeeRecipient":
		err = h.exchange.UpdateProtocolFeeRecipient(ctx, caller, p.Address)
	case "currencyManager":
		err = h.exchange.UpdateCurrencyManager(ctx, caller, p.Address)
	case "executionManager":
		err = h.exchange.UpdateExecutionManager(ctx, caller, p.Address)
	case "protocolFeeManager":
		err = h.exchange.UpdateProtocolFeeManager(ctx, caller, p.Address)
	case "royaltyFeeManager":
		err = h.exchange.UpdateRoyaltyFeeManager(ctx, caller, p.Address)
	case "transferSelector":
		err = h.exchange.UpdateTransferSelector(ctx, caller, p.Address)
	default:
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "field": c.Param("field")}).Info("update exchange config failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) addNotifiable(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &addressPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.exchange.AddNotifiable(ctx, authMiddleware.Caller(c), p.Address); err != nil {
		ctx.WithField("err", err).Info("exchange.AddNotifiable failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) removeNotifiable(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	address := domain.Address(c.Param("address"))
	if err := h.exchange.RemoveNotifiable(ctx, authMiddleware.Caller(c), address); err != nil {
		ctx.WithField("err", err).Info("exchange.RemoveNotifiable failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
