package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/service/ens"
)

type handler struct {
	ens ens.ENS
}

// New serves ENS lookups so clients can show order signers and bidders by name
func New(e *echo.Echo, ens ens.ENS) {
	h := &handler{
		ens: ens,
	}

	g := e.Group("/ens")
	g.GET("/resolve/:name", h.resolve)
	g.GET("/reverse-resolve/:address", h.reverseResolve)
	g.POST("/reverse-resolve", h.reverseResolveBatch)
}

func (h *handler) resolve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	name := c.Param("name")
	if name == "" {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	address, err := h.ens.Resolve(ctx, name)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "name": name}).Warn("ens.Resolve failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, address)
}

func (h *handler) reverseResolve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		Address domain.Address `param:"address" validate:"required,eth_addr"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	name, err := h.ens.ReverseResolve(ctx, p.Address)
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "address": p.Address}).Warn("ens.ReverseResolve failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, name)
}

// reverseResolveBatch names up to 50 counterparties, unresolvable
// addresses map to an empty name
func (h *handler) reverseResolveBatch(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type payload struct {
		Addresses []domain.Address `json:"addresses" validate:"required,max=50,dive,eth_addr"`
	}

	p := payload{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	names := make(map[domain.Address]string, len(p.Addresses))
	for _, addr := range p.Addresses {
		name, err := h.ens.ReverseResolve(ctx, addr)
		if err != nil {
			ctx.WithFields(log.Fields{"err": err, "address": addr}).Warn("ens.ReverseResolve failed")
		}
		names[addr.ToLower()] = name
	}
	return delivery.MakeJsonResp(c, http.StatusOK, names)
}

