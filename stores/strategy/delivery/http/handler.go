package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/strategy"
	authMiddleware "github.com/x-xyz/settlement/stores/auth/delivery/http/middleware"
)

type handler struct {
	strategies strategy.Registry
}

func New(e *echo.Echo, strategies strategy.Registry, authM *authMiddleware.AuthMiddleware) {
	h := &handler{
		strategies: strategies,
	}

	g := e.Group("/strategies")
	g.GET("", h.list)
	g.POST("", h.add, authM.Auth())
	g.DELETE("/:address", h.remove, authM.Auth())
}

type strategyInfo struct {
	Address     domain.Address `json:"address"`
	ProtocolFee uint64         `json:"protocolFee"`
}

// list
//
//	@Summary		Allowed execution strategies
//	@Tags			strategy
//	@Produce		json
//	@Success		200
//	@Router			/strategies [get]
func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	addrs, err := h.strategies.List(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("strategies.List failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res := make([]strategyInfo, 0, len(addrs))
	for _, addr := range addrs {
		s, err := h.strategies.Get(ctx, addr)
		if err != nil {
			ctx.WithField("err", err).Error("strategies.Get failed")
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}
		res = append(res, strategyInfo{Address: s.Address(), ProtocolFee: s.ProtocolFee()})
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) add(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address domain.Address `json:"address" validate:"required,eth_addr"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.strategies.Add(ctx, authMiddleware.Caller(c), p.Address); err != nil {
		ctx.WithField("err", err).Info("strategies.Add failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

func (h *handler) remove(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if err := h.strategies.Remove(ctx, authMiddleware.Caller(c), domain.Address(c.Param("address"))); err != nil {
		ctx.WithField("err", err).Info("strategies.Remove failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
