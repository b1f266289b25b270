package http

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/auction"
	authMiddleware "github.com/x-xyz/settlement/stores/auth/delivery/http/middleware"
)

type handler struct {
	auction auction.UseCase
}

func New(e *echo.Echo, auctionUC auction.UseCase, authM *authMiddleware.AuthMiddleware) {
	h := &handler{
		auction: auctionUC,
	}
	auth := authM.Auth()

	g := e.Group("/auctions")
	g.GET("/config", h.getConfig)
	g.PUT("/config/:field", h.updateConfig, auth)

	en := g.Group("/english")
	en.GET("", h.listEnglish)
	en.POST("", h.startEnglish, auth)
	en.GET("/:collection/:tokenId", h.getEnglish)
	en.POST("/:collection/:tokenId/bid", h.placeBid, auth)
	en.POST("/:collection/:tokenId/settle", h.settleEnglish, auth)
	en.POST("/:collection/:tokenId/cancel", h.cancelEnglish, auth)
	en.POST("/:collection/:tokenId/emergencyCancel", h.emergencyCancelEnglish, auth)

	du := g.Group("/dutch")
	du.GET("", h.listDutch)
	du.POST("", h.startDutch, auth)
	du.GET("/:collection/:tokenId", h.getDutch)
	du.GET("/:collection/:tokenId/price", h.getSalePrice)
	du.POST("/:collection/:tokenId/settle", h.settleDutch, auth)
	du.POST("/:collection/:tokenId/cancel", h.cancelDutch, auth)
	du.POST("/:collection/:tokenId/emergencyCancel", h.emergencyCancelDutch, auth)
}

type slot struct {
	Collection domain.Address
	TokenId    *big.Int
}

func parseSlot(c echo.Context) (*slot, error) {
	collection := domain.Address(c.Param("collection"))
	if !collection.IsValid() {
		return nil, domain.ErrInvalidAddress
	}
	tokenId, err := domain.ParseBig(c.Param("tokenId"))
	if err != nil {
		return nil, err
	}
	return &slot{Collection: collection, TokenId: tokenId}, nil
}

func bindAndValidate(c echo.Context, p interface{}) error {
	if err := c.Bind(p); err != nil {
		return err
	}
	return c.Validate(p)
}

func (h *handler) getConfig(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	cfg, err := h.auction.Config(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("auction.Config failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, cfg)
}

// updateConfig
//
//	@Summary		Update auction house config
//	@Description	Owner only. minBidIncrementPct and refreshTime take value, the manager fields and protocolFeeRecipient take address.
//	@Tags			auction
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			field	path	string	true	"config field"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/auctions/config/{field} [put]
func (h *handler) updateConfig(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	type params struct {
		Address domain.Address `json:"address" validate:"omitempty,eth_addr"`
		Value   string         `json:"value" validate:"omitempty,numeric"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	var err error
	switch c.Param("field") {
	case "minBidIncrementPct":
		pct, perr := strconv.ParseUint(p.Value, 10, 64)
		if perr != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidNumberFormat)
		}
		err = h.auction.UpdateMinBidIncrementPct(ctx, caller, pct)
	case "refreshTime":
		refresh, perr := strconv.ParseInt(p.Value, 10, 64)
		if perr != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidNumberFormat)
		}
		err = h.auction.UpdateRefreshTime(ctx, caller, refresh)
	case "currencyManager":
		err = h.auction.UpdateCurrencyManager(ctx, caller, p.Address)
	case "protocolFeeManager":
		err = h.auction.UpdateProtocolFeeManager(ctx, caller, p.Address)
	case "royaltyFeeManager":
		err = h.auction.UpdateRoyaltyFeeManager(ctx, caller, p.Address)
	case "protocolFeeRecipient":
		err = h.auction.UpdateProtocolFeeRecipient(ctx, caller, p.Address)
	default:
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "field": c.Param("field")}).Info("update auction config failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

type startPayload struct {
	Collection         domain.Address `json:"collection" validate:"required,eth_addr"`
	TokenId            string         `json:"tokenId" validate:"required,numeric"`
	Currency           domain.Address `json:"currency" validate:"required,eth_addr"`
	StartPrice         string         `json:"startPrice" validate:"required,numeric"`
	EndPrice           string         `json:"endPrice" validate:"omitempty,numeric"`
	Duration           int64          `json:"duration" validate:"required"`
	DropInterval       int64          `json:"dropInterval"`
	MinPercentageToAsk uint64         `json:"minPercentageToAsk"`
}

// startEnglish
//
//	@Summary		Start an english auction
//	@Description	The token moves into the auction house, the caller must have approved it
//	@Tags			auction
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		201
//	@Failure		400
//	@Failure		409
//	@Router			/auctions/english [post]
func (h *handler) startEnglish(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &startPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	nums, err := domain.ToBigInt([]string{p.TokenId, p.StartPrice})
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.auction.StartEnglishAuction(ctx, authMiddleware.Caller(c), auction.StartEnglishAuctionParams{
		Collection:         p.Collection,
		TokenId:            nums[0],
		Currency:           p.Currency,
		StartPrice:         nums[1],
		Duration:           p.Duration,
		MinPercentageToAsk: p.MinPercentageToAsk,
	}); err != nil {
		ctx.WithField("err", err).Info("auction.StartEnglishAuction failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

func (h *handler) listEnglish(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	auctions, err := h.auction.ListEnglishAuctions(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("auction.ListEnglishAuctions failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, auctions)
}

func (h *handler) getEnglish(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	s, err := parseSlot(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	a, err := h.auction.GetEnglishAuction(ctx, s.Collection, s.TokenId)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

// placeBid
//
//	@Summary		Bid on an english auction
//	@Description	amount is pulled from the caller's allowance, value is native currency wrapped on the way in
//	@Tags			auction
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200
//	@Failure		400
//	@Failure		402
//	@Failure		409
//	@Router			/auctions/english/{collection}/{tokenId}/bid [post]
func (h *handler) placeBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	type params struct {
		Amount string `json:"amount" validate:"omitempty,numeric"`
		Value  string `json:"value" validate:"omitempty,numeric"`
	}

	s, err := parseSlot(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	nums, err := domain.ToBigInt([]string{orZero(p.Amount), orZero(p.Value)})
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if p.Value == "" {
		err = h.auction.PlaceEnglishAuctionBid(ctx, caller, s.Collection, s.TokenId, nums[0])
	} else {
		err = h.auction.PlaceEnglishAuctionBidWithNativeAndWrapped(ctx, caller, s.Collection, s.TokenId, nums[0], nums[1])
	}
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "collection": s.Collection, "tokenId": s.TokenId}).Info("place bid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (h *handler) settleEnglish(c echo.Context) error {
	return h.onSlot(c, "auction.SettleEnglishAuction", h.auction.SettleEnglishAuction)
}

func (h *handler) cancelEnglish(c echo.Context) error {
	return h.onSlot(c, "auction.CancelEnglishAuction", h.auction.CancelEnglishAuction)
}

func (h *handler) emergencyCancelEnglish(c echo.Context) error {
	return h.onSlot(c, "auction.EmergencyCancelEnglishAuction", h.auction.EmergencyCancelEnglishAuction)
}

func (h *handler) cancelDutch(c echo.Context) error {
	return h.onSlot(c, "auction.CancelDutchAuction", h.auction.CancelDutchAuction)
}

func (h *handler) emergencyCancelDutch(c echo.Context) error {
	return h.onSlot(c, "auction.EmergencyCancelDutchAuction", h.auction.EmergencyCancelDutchAuction)
}

// onSlot runs a caller action on the auction slot named by the path
func (h *handler) onSlot(c echo.Context, name string, fn func(ctx.Ctx, domain.Address, domain.Address, *big.Int) error) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	s, err := parseSlot(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := fn(ctx, authMiddleware.Caller(c), s.Collection, s.TokenId); err != nil {
		ctx.WithFields(log.Fields{"err": err, "collection": s.Collection, "tokenId": s.TokenId}).Info(name + " failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// startDutch
//
//	@Summary		Start a dutch auction
//	@Description	The price falls from startPrice to endPrice in steps of dropInterval seconds over duration seconds
//	@Tags			auction
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		201
//	@Failure		400
//	@Failure		409
//	@Router			/auctions/dutch [post]
func (h *handler) startDutch(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &startPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	nums, err := domain.ToBigInt([]string{p.TokenId, p.StartPrice, orZero(p.EndPrice)})
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.auction.StartDutchAuction(ctx, authMiddleware.Caller(c), auction.StartDutchAuctionParams{
		Collection:         p.Collection,
		TokenId:            nums[0],
		Currency:           p.Currency,
		Duration:           p.Duration,
		DropInterval:       p.DropInterval,
		StartPrice:         nums[1],
		EndPrice:           nums[2],
		MinPercentageToAsk: p.MinPercentageToAsk,
	}); err != nil {
		ctx.WithField("err", err).Info("auction.StartDutchAuction failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

func (h *handler) listDutch(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	auctions, err := h.auction.ListDutchAuctions(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("auction.ListDutchAuctions failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, auctions)
}

func (h *handler) getDutch(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	s, err := parseSlot(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	a, err := h.auction.GetDutchAuction(ctx, s.Collection, s.TokenId)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

func (h *handler) getSalePrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	s, err := parseSlot(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, err := h.auction.GetDutchAuctionSalePrice(ctx, s.Collection, s.TokenId)
	if err != nil {
		ctx.WithField("err", err).Error("auction.GetDutchAuctionSalePrice failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, domain.BigString(price))
}

func (h *handler) settleDutch(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	type params struct {
		Value string `json:"value" validate:"omitempty,numeric"`
	}

	s, err := parseSlot(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if p.Value == "" {
		err = h.auction.SettleDutchAuction(ctx, caller, s.Collection, s.TokenId)
	} else {
		value, perr := domain.ParseBig(p.Value)
		if perr != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, perr)
		}
		err = h.auction.SettleDutchAuctionWithNativeAndWrapped(ctx, caller, s.Collection, s.TokenId, value)
	}
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "collection": s.Collection, "tokenId": s.TokenId}).Info("settle dutch auction failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
