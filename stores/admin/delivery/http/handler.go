package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/admin"
	authMiddleware "github.com/x-xyz/settlement/stores/auth/delivery/http/middleware"
)

type handler struct {
	admin admin.UseCase
}

func New(e *echo.Echo, adminUC admin.UseCase, authM *authMiddleware.AuthMiddleware) {
	h := &handler{
		admin: adminUC,
	}
	auth := authM.Auth()

	g := e.Group("/admin/:contract", h.contractOnly)
	g.GET("", h.get)
	g.POST("/pendingOwner", h.setPendingOwner, auth)
	g.DELETE("/pendingOwner", h.callerAction("admin.RevokePendingOwner", h.admin.RevokePendingOwner), auth)
	g.POST("/becomeOwner", h.callerAction("admin.BecomeOwner", h.admin.BecomeOwner), auth)
	g.POST("/renounceOwnership", h.callerAction("admin.RenounceOwnership", h.admin.RenounceOwnership), auth)
	g.POST("/pause", h.callerAction("admin.Pause", h.admin.Pause), auth)
	g.POST("/unpause", h.callerAction("admin.Unpause", h.admin.Unpause), auth)
	g.POST("/pauseAdmins", h.addPauseAdmin, auth)
	g.DELETE("/pauseAdmins/:address", h.removePauseAdmin, auth)
	g.POST("/renouncePauseAdmin", h.callerAction("admin.RenouncePauseAdmin", h.admin.RenouncePauseAdmin), auth)
}

// contractOnly rejects unknown contract names
func (h *handler) contractOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := admin.Contract(c.Param("contract"))
		for _, known := range admin.Contracts {
			if name == known {
				return next(c)
			}
		}
		return delivery.MakeJsonResp(c, http.StatusNotFound, domain.ErrNotFound)
	}
}

func contractOf(c echo.Context) admin.Contract {
	return admin.Contract(c.Param("contract"))
}

// get
//
//	@Summary		Ownership state
//	@Description	Owner, pending owner, pause flag and pause admins of a contract
//	@Tags			admin
//	@Produce		json
//	@Param			contract	path	string	true	"exchange, auctionHouse, feeManager, currencyManager, executionManager or transferSelector"
//	@Success		200
//	@Failure		404
//	@Router			/admin/{contract} [get]
func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type result struct {
		*admin.Ownership
		PauseAdmins []domain.Address `json:"pauseAdmins"`
	}

	o, err := h.admin.Get(ctx, contractOf(c))
	if err != nil {
		ctx.WithField("err", err).Error("admin.Get failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	admins, err := h.admin.PauseAdmins(ctx, contractOf(c))
	if err != nil {
		ctx.WithField("err", err).Error("admin.PauseAdmins failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, result{o, admins})
}

func (h *handler) callerAction(name string, fn func(ctx.Ctx, admin.Contract, domain.Address) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Get("ctx").(ctx.Ctx)

		if err := fn(ctx, contractOf(c), authMiddleware.Caller(c)); err != nil {
			ctx.WithFields(log.Fields{"err": err, "contract": contractOf(c)}).Info(name + " failed")
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}
		return delivery.MakeJsonResp(c, http.StatusOK, nil)
	}
}

type addressPayload struct {
	Address domain.Address `json:"address" validate:"required,eth_addr"`
}

func (h *handler) setPendingOwner(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &addressPayload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.admin.SetPendingOwner(ctx, contractOf(c), authMiddleware.Caller(c), p.Address); err != nil {
		ctx.WithField("err", err).Info("admin.SetPendingOwner failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) addPauseAdmin(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &addressPayload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.admin.AddPauseAdmin(ctx, contractOf(c), authMiddleware.Caller(c), p.Address); err != nil {
		ctx.WithField("err", err).Info("admin.AddPauseAdmin failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) removePauseAdmin(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	address := domain.Address(c.Param("address"))
	if err := h.admin.RemovePauseAdmin(ctx, contractOf(c), authMiddleware.Caller(c), address); err != nil {
		ctx.WithField("err", err).Info("admin.RemovePauseAdmin failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
