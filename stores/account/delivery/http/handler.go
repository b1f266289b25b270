package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/account"
)

type handler struct {
	nonces account.OrderNonceUseCase
}

func New(e *echo.Echo, nonces account.OrderNonceUseCase) {
	h := &handler{
		nonces: nonces,
	}

	g := e.Group("/account")
	g.GET("/:address/minNonce", h.getMinNonce)
	g.GET("/:address/nonces/:nonce", h.getNonceStatus)
}

// getMinNonce
//
//	@Summary		Minimum valid order nonce
//	@Description	Orders signed with a lower nonce can no longer be filled
//	@Tags			account
//	@Produce		json
//	@Param			address	path		string	true	"signer address"
//	@Success		200		{object}	object{data=string}
//	@Failure		400
//	@Router			/account/{address}/minNonce [get]
func (h *handler) getMinNonce(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	address := domain.Address(c.Param("address"))
	if !address.IsValid() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}
	n, err := h.nonces.UserMinOrderNonce(ctx, address)
	if err != nil {
		ctx.WithField("err", err).Error("nonces.UserMinOrderNonce failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, domain.BigString(n))
}

func (h *handler) getNonceStatus(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type status struct {
		ExecutedOrCancelled bool `json:"executedOrCancelled"`
		Valid               bool `json:"valid"`
	}

	address := domain.Address(c.Param("address"))
	if !address.IsValid() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}
	nonce, err := domain.ParseBig(c.Param("nonce"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	done, err := h.nonces.IsUserOrderNonceExecutedOrCancelled(ctx, address, nonce)
	if err != nil {
		ctx.WithField("err", err).Error("nonces.IsUserOrderNonceExecutedOrCancelled failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res := status{ExecutedOrCancelled: done, Valid: true}
	if err := h.nonces.IsValid(ctx, address, nonce); errors.Is(err, domain.ErrOrderExpired) {
		res.Valid = false
	} else if err != nil {
		ctx.WithField("err", err).Error("nonces.IsValid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
