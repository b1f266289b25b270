package http

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain"
	"github.com/x-xyz/settlement/domain/ledger"
	"github.com/x-xyz/settlement/domain/transfer"
	authMiddleware "github.com/x-xyz/settlement/stores/auth/delivery/http/middleware"
)

type HandlerCfg struct {
	Currencies ledger.CurrencyLedger
	Native     ledger.NativeLedger
	Assets     ledger.AssetLedger
	Transfers  transfer.Selector
	Batch      transfer.BatchTransferer
	Auth       *authMiddleware.AuthMiddleware
	// Faucet exposes unauthenticated minting, dev servers only
	Faucet bool
}

type handler struct {
	currencies ledger.CurrencyLedger
	native     ledger.NativeLedger
	assets     ledger.AssetLedger
	transfers  transfer.Selector
	batch      transfer.BatchTransferer
}

func New(e *echo.Echo, cfg *HandlerCfg) {
	h := &handler{
		currencies: cfg.Currencies,
		native:     cfg.Native,
		assets:     cfg.Assets,
		transfers:  cfg.Transfers,
		batch:      cfg.Batch,
	}
	auth := cfg.Auth.Auth()

	g := e.Group("/ledger")
	g.GET("/currencies/:currency/:owner", h.getBalance)
	g.GET("/currencies/:currency/:owner/allowance/:spender", h.getAllowance)
	g.POST("/currencies/:currency/approve", h.approve, auth)
	g.POST("/currencies/:currency/transfer", h.transfer, auth)

	g.GET("/native/:owner", h.getNativeBalance)
	g.POST("/native/wrap", h.wrap, auth)
	g.POST("/native/unwrap", h.unwrap, auth)

	g.GET("/collections/:collection", h.getCollection)
	g.GET("/collections/:collection/:tokenId/owner", h.getOwner)
	g.GET("/collections/:collection/:tokenId/:owner", h.getTokenBalance)
	g.POST("/collections/:collection/approvalForAll", h.setApprovalForAll, auth)

	g.GET("/transferManagers/:collection", h.getTransferManager)
	g.PUT("/transferManagers/:collection", h.setTransferManager, auth)
	g.DELETE("/transferManagers/:collection", h.removeTransferManager, auth)

	g.POST("/transfers/batch", h.batchTransfer, auth)

	if cfg.Faucet {
		f := g.Group("/faucet")
		f.POST("/currency", h.mintCurrency)
		f.POST("/native", h.creditNative)
		f.POST("/collections", h.registerCollection)
		f.POST("/tokens", h.mintToken)
	}
}

func bindAndValidate(c echo.Context, p interface{}) error {
	if err := c.Bind(p); err != nil {
		return err
	}
	return c.Validate(p)
}

func (h *handler) getBalance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	v, err := h.currencies.BalanceOf(ctx, domain.Address(c.Param("currency")), domain.Address(c.Param("owner")))
	if err != nil {
		ctx.WithField("err", err).Error("currencies.BalanceOf failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, domain.BigString(v))
}

func (h *handler) getAllowance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	v, err := h.currencies.Allowance(ctx, domain.Address(c.Param("currency")), domain.Address(c.Param("owner")), domain.Address(c.Param("spender")))
	if err != nil {
		ctx.WithField("err", err).Error("currencies.Allowance failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, domain.BigString(v))
}

type amountPayload struct {
	To     domain.Address `json:"to" validate:"omitempty,eth_addr"`
	Amount string         `json:"amount" validate:"required,numeric"`
}

// approve
//
//	@Summary		Approve a spender
//	@Description	Set the allowance of spender over the caller's balance, typically the exchange or the auction house
//	@Tags			ledger
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			currency	path	string	true	"currency address"
//	@Success		200
//	@Failure		400
//	@Router			/ledger/currencies/{currency}/approve [post]
func (h *handler) approve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Spender domain.Address `json:"spender" validate:"required,eth_addr"`
		Amount  string         `json:"amount" validate:"required,numeric"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, err := domain.ParseBig(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.currencies.Approve(ctx, domain.Address(c.Param("currency")), authMiddleware.Caller(c), p.Spender, amount); err != nil {
		ctx.WithField("err", err).Info("currencies.Approve failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) transfer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &amountPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if p.To.IsNull() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}
	amount, err := domain.ParseBig(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.currencies.Transfer(ctx, domain.Address(c.Param("currency")), authMiddleware.Caller(c), p.To, amount); err != nil {
		ctx.WithField("err", err).Info("currencies.Transfer failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) getNativeBalance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	v, err := h.native.BalanceOf(ctx, domain.Address(c.Param("owner")))
	if err != nil {
		ctx.WithField("err", err).Error("native.BalanceOf failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, domain.BigString(v))
}

func (h *handler) wrap(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	p := &amountPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, err := domain.ParseBig(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.native.Wrap(ctx, caller, caller, amount); err != nil {
		ctx.WithField("err", err).Info("native.Wrap failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) unwrap(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &amountPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, err := domain.ParseBig(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.native.Unwrap(ctx, authMiddleware.Caller(c), amount); err != nil {
		ctx.WithField("err", err).Info("native.Unwrap failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) getCollection(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	col, err := h.assets.GetCollection(ctx, domain.Address(c.Param("collection")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, col)
}

func (h *handler) getOwner(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	tokenId, err := domain.ParseBig(c.Param("tokenId"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	owner, err := h.assets.OwnerOf(ctx, domain.Address(c.Param("collection")), tokenId)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, owner)
}

func (h *handler) getTokenBalance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	tokenId, err := domain.ParseBig(c.Param("tokenId"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	v, err := h.assets.BalanceOf(ctx, domain.Address(c.Param("collection")), domain.Address(c.Param("owner")), tokenId)
	if err != nil {
		ctx.WithField("err", err).Error("assets.BalanceOf failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, domain.BigString(v))
}

// setApprovalForAll
//
//	@Summary		Approve an operator
//	@Description	Let operator move every token of the collection held by the caller, typically a transfer manager or the auction house
//	@Tags			ledger
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			collection	path	string	true	"collection address"
//	@Success		200
//	@Failure		400
//	@Router			/ledger/collections/{collection}/approvalForAll [post]
func (h *handler) setApprovalForAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Operator domain.Address `json:"operator" validate:"required,eth_addr"`
		Approved bool           `json:"approved"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.assets.SetApprovalForAll(ctx, domain.Address(c.Param("collection")), authMiddleware.Caller(c), p.Operator, p.Approved); err != nil {
		ctx.WithField("err", err).Info("assets.SetApprovalForAll failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// batchTransfer moves the caller's tokens, each item to its own recipient
// unless a common recipient is given
func (h *handler) batchTransfer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type item struct {
		Collection domain.Address `json:"collection" validate:"required,eth_addr"`
		Recipient  domain.Address `json:"recipient" validate:"omitempty,eth_addr"`
		TokenId    string         `json:"tokenId" validate:"required,numeric"`
		Amount     string         `json:"amount" validate:"omitempty,numeric"`
	}
	type params struct {
		Recipient domain.Address `json:"recipient" validate:"omitempty,eth_addr"`
		Items     []item         `json:"items" validate:"required,min=1,max=100,dive"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	items := make([]transfer.Item, 0, len(p.Items))
	for _, it := range p.Items {
		tokenId, ok := new(big.Int).SetString(it.TokenId, 10)
		if !ok {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
		}
		amount := big.NewInt(1)
		if it.Amount != "" {
			if amount, ok = new(big.Int).SetString(it.Amount, 10); !ok {
				return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
			}
		}
		items = append(items, transfer.Item{
			Collection: it.Collection,
			Recipient:  it.Recipient,
			TokenId:    tokenId,
			Amount:     amount,
		})
	}

	caller := authMiddleware.Caller(c)
	var err error
	if !p.Recipient.IsEmpty() {
		err = h.batch.BatchTransferNonFungibleTokens(ctx, caller, caller, p.Recipient, items)
	} else {
		err = h.batch.BatchTransfer(ctx, caller, items)
	}
	if err != nil {
		ctx.WithFields(log.Fields{"err": err, "caller": caller, "items": len(items)}).Info("batch transfer failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) getTransferManager(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	m, err := h.transfers.ManagerFor(ctx, domain.Address(c.Param("collection")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, m.Address())
}

func (h *handler) setTransferManager(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Manager domain.Address `json:"manager" validate:"required,eth_addr"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	collection := domain.Address(c.Param("collection"))
	if err := h.transfers.AddCollectionTransferManager(ctx, authMiddleware.Caller(c), collection, p.Manager); err != nil {
		ctx.WithFields(log.Fields{"err": err, "collection": collection}).Info("transfers.AddCollectionTransferManager failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) removeTransferManager(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	collection := domain.Address(c.Param("collection"))
	if err := h.transfers.RemoveCollectionTransferManager(ctx, authMiddleware.Caller(c), collection); err != nil {
		ctx.WithFields(log.Fields{"err": err, "collection": collection}).Info("transfers.RemoveCollectionTransferManager failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) mintCurrency(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Currency domain.Address `json:"currency" validate:"required,eth_addr"`
		To       domain.Address `json:"to" validate:"required,eth_addr"`
		Amount   string         `json:"amount" validate:"required,numeric"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, err := domain.ParseBig(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.currencies.Mint(ctx, p.Currency, p.To, amount); err != nil {
		ctx.WithField("err", err).Error("currencies.Mint failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) creditNative(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &amountPayload{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if p.To.IsNull() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}
	amount, err := domain.ParseBig(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.native.Credit(ctx, p.To, amount); err != nil {
		ctx.WithField("err", err).Error("native.Credit failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) registerCollection(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	col := ledger.Collection{}
	if err := c.Bind(&col); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if !col.Address.IsValid() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}
	if err := h.assets.RegisterCollection(ctx, col); err != nil {
		ctx.WithField("err", err).Error("assets.RegisterCollection failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

func (h *handler) mintToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Collection domain.Address `json:"collection" validate:"required,eth_addr"`
		To         domain.Address `json:"to" validate:"required,eth_addr"`
		TokenId    string         `json:"tokenId" validate:"required,numeric"`
		Amount     string         `json:"amount" validate:"omitempty,numeric"`
	}

	p := &params{}
	if err := bindAndValidate(c, p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount := p.Amount
	if amount == "" {
		amount = "1"
	}
	nums, err := domain.ToBigInt([]string{p.TokenId, amount})
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.assets.Mint(ctx, p.Collection, p.To, nums[0], nums[1]); err != nil {
		ctx.WithField("err", err).Error("assets.Mint failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}
