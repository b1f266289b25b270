package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/fee"
	authMiddleware "github.com/x-xyz/settlement/stores/auth/delivery/http/middleware"
)

type handler struct {
	protocol fee.ProtocolFeeManager
	royalty  fee.RoyaltyFeeManager
}

func New(e *echo.Echo, protocol fee.ProtocolFeeManager, royalty fee.RoyaltyFeeManager, authM *authMiddleware.AuthMiddleware) {
	h := &handler{
		protocol: protocol,
		royalty:  royalty,
	}
	auth := authM.Auth()

	g := e.Group("/fees")
	g.GET("/protocol", h.getDefaultProtocolFee)
	g.PUT("/protocol", h.setDefaultProtocolFee, auth)
	g.GET("/protocol/:collection", h.getProtocolFee)
	g.PUT("/protocol/:collection", h.setProtocolFee, auth)
	g.DELETE("/protocol/:collection", h.unsetProtocolFee, auth)

	g.GET("/royalty/config", h.getRoyaltyConfig)
	g.PUT("/royalty/config/:field", h.updateRoyaltyConfig, auth)
	g.POST("/royalty/registryV2", h.initRegistryV2, auth)
	g.GET("/royalty/:collection", h.getRoyaltyInfo)
	g.GET("/royalty/:collection/:tokenId", h.calculateRoyalty)
	g.PUT("/royalty/:collection/info", h.updateRoyaltyInfo, auth)
	g.PUT("/royalty/:collection/parts", h.updateRoyaltyParts, auth)
}

func bindAndValidate(c echo.Context, p interface{}) error {
	if err := c.Bind(p); err != nil {
		return err
	}
	return c.Validate(p)
}

func collectionOf(c echo.Context) (domain.Address, error) {
	collection := domain.Address(c.Param("collection"))
	if !collection.IsValid() {
		return "", domain.ErrInvalidAddress
	}
	return collection, nil
}

type feePayload struct {
	Fee uint64 `json:"fee"`
}

func (h *handler) getDefaultProtocolFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	v, err := h.protocol.DefaultProtocolFee(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("protocol.DefaultProtocolFee failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, v)
}

func (h *handler) setDefaultProtocolFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &feePayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.protocol.SetDefaultProtocolFee(ctx, authMiddleware.Caller(c), p.Fee); err != nil {
		ctx.WithField("err", err).Info("protocol.SetDefaultProtocolFee failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// getProtocolFee
//
//	@Summary		Protocol fee of a collection
//	@Description	The collection override in basis points, or the default when none is set
//	@Tags			fee
//	@Produce		json
//	@Param			collection	path		string	true	"collection address"
//	@Success		200			{object}	object{data=int}
//	@Failure		400
//	@Router			/fees/protocol/{collection} [get]
func (h *handler) getProtocolFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	collection, err := collectionOf(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	v, err := h.protocol.ProtocolFeeForCollection(ctx, collection)
	if err != nil {
		ctx.WithField("err", err).Error("protocol.ProtocolFeeForCollection failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, v)
}

func (h *handler) setProtocolFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	collection, err := collectionOf(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	p := &feePayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.protocol.SetProtocolFeeForCollection(ctx, authMiddleware.Caller(c), collection, p.Fee); err != nil {
		ctx.WithField("err", err).Info("protocol.SetProtocolFeeForCollection failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) unsetProtocolFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	collection, err := collectionOf(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.protocol.UnsetProtocolFeeForCollection(ctx, authMiddleware.Caller(c), collection); err != nil {
		ctx.WithField("err", err).Info("protocol.UnsetProtocolFeeForCollection failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) getRoyaltyConfig(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	cfg, err := h.royalty.RoyaltyConfig(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("royalty.RoyaltyConfig failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, cfg)
}

func (h *handler) updateRoyaltyConfig(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	type params struct {
		Value string `json:"value" validate:"required,numeric"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	var err error
	switch c.Param("field") {
	case "royaltyFeeLimit":
		limit, perr := strconv.ParseUint(p.Value, 10, 64)
		if perr != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidNumberFormat)
		}
		err = h.royalty.UpdateRoyaltyFeeLimit(ctx, caller, limit)
	case "maxNumRecipients":
		n, perr := strconv.Atoi(p.Value)
		if perr != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidNumberFormat)
		}
		err = h.royalty.UpdateMaxNumRecipients(ctx, caller, n)
	default:
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "field": c.Param("field")}).Info("update royalty config failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) initRegistryV2(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address domain.Address `json:"address" validate:"required,eth_addr"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.royalty.InitializeRoyaltyFeeRegistryV2(ctx, authMiddleware.Caller(c), p.Address); err != nil {
		ctx.WithField("err", err).Info("royalty.InitializeRoyaltyFeeRegistryV2 failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// getRoyaltyInfo
//
//	@Summary		Registered royalty of a collection
//	@Description	Records of both the single and the multi recipient registry
//	@Tags			fee
//	@Produce		json
//	@Param			collection	path	string	true	"collection address"
//	@Success		200
//	@Failure		400
//	@Router			/fees/royalty/{collection} [get]
func (h *handler) getRoyaltyInfo(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type result struct {
		Info  *fee.RoyaltyFeeInfo      `json:"info"`
		Parts *fee.RoyaltyFeeInfoParts `json:"parts"`
	}

	collection, err := collectionOf(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	info, err := h.royalty.RoyaltyFeeInfoCollection(ctx, collection)
	if err != nil {
		ctx.WithField("err", err).Error("royalty.RoyaltyFeeInfoCollection failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	parts, err := h.royalty.RoyaltyFeeInfoPartsCollection(ctx, collection)
	if err != nil {
		ctx.WithField("err", err).Error("royalty.RoyaltyFeeInfoPartsCollection failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, result{info, parts})
}

// calculateRoyalty
//
//	@Summary		Royalty payouts of a sale
//	@Description	Resolves the royalty recipients and amounts a sale of tokenId at price would pay
//	@Tags			fee
//	@Produce		json
//	@Param			collection	path	string	true	"collection address"
//	@Param			tokenId		path	string	true	"token id"
//	@Param			price		query	string	true	"sale price"
//	@Success		200
//	@Failure		400
//	@Router			/fees/royalty/{collection}/{tokenId} [get]
func (h *handler) calculateRoyalty(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	collection, err := collectionOf(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	nums, err := domain.ToBigInt([]string{c.Param("tokenId"), c.QueryParam("price")})
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	parts, err := h.royalty.CalculateRoyaltyFeeAmountParts(ctx, collection, nums[0], nums[1])
	if err != nil {
		ctx.WithField("err", err).Error("royalty.CalculateRoyaltyFeeAmountParts failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, parts)
}

func (h *handler) updateRoyaltyInfo(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Setter   domain.Address `json:"setter" validate:"required,eth_addr"`
		Receiver domain.Address `json:"receiver" validate:"required,eth_addr"`
		Fee      uint64         `json:"fee"`
	}

	collection, err := collectionOf(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.royalty.UpdateRoyaltyInfoForCollection(ctx, authMiddleware.Caller(c), collection, p.Setter, p.Receiver, p.Fee); err != nil {
		ctx.WithField("err", err).Info("royalty.UpdateRoyaltyInfoForCollection failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// updateRoyaltyParts
//
//	@Summary		Set multi recipient royalty
//	@Description	With asSetter the collection owner, admin or current setter may call, otherwise only the fee manager owner
//	@Tags			fee
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			collection	path	string	true	"collection address"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/fees/royalty/{collection}/parts [put]
func (h *handler) updateRoyaltyParts(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	type params struct {
		Setter   domain.Address        `json:"setter" validate:"required,eth_addr"`
		Parts    []fee.RoyaltyFeeTypes `json:"parts" validate:"required"`
		AsSetter bool                  `json:"asSetter"`
	}

	collection, err := collectionOf(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if p.AsSetter {
		err = h.royalty.UpdateRoyaltyInfoPartsForCollectionIfSetter(ctx, caller, collection, p.Setter, p.Parts)
	} else {
		err = h.royalty.UpdateRoyaltyInfoPartsForCollection(ctx, caller, collection, p.Setter, p.Parts)
	}
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "collection": collection}).Info("update royalty parts failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
