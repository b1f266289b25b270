package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/currency"
	authMiddleware "github.com/x-xyz/settlement/stores/auth/delivery/http/middleware"
)

type handler struct {
	currencies currency.Registry
}

func New(e *echo.Echo, currencies currency.Registry, authM *authMiddleware.AuthMiddleware) {
	h := &handler{
		currencies: currencies,
	}

	g := e.Group("/currencies")
	g.GET("", h.list)
	g.GET("/:address", h.isAllowed)
	g.POST("", h.add, authM.Auth())
	g.DELETE("/:address", h.remove, authM.Auth())
}

// list
//
//	@Summary		Allowed currencies
//	@Tags			currency
//	@Produce		json
//	@Success		200	{object}	object{data=[]string}
//	@Router			/currencies [get]
func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.currencies.List(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("currencies.List failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) isAllowed(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	ok, err := h.currencies.IsAllowed(ctx, domain.Address(c.Param("address")))
	if err != nil {
		ctx.WithField("err", err).Error("currencies.IsAllowed failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, ok)
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
	if err := h.currencies.Add(ctx, authMiddleware.Caller(c), p.Address); err != nil {
		ctx.WithField("err", err).Info("currencies.Add failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

func (h *handler) remove(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if err := h.currencies.Remove(ctx, authMiddleware.Caller(c), domain.Address(c.Param("address"))); err != nil {
		ctx.WithField("err", err).Info("currencies.Remove failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
