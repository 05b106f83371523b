package http

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/delivery"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/asset"
	"github.com/x-xyz/escrow/domain/ledger"
	"github.com/x-xyz/escrow/middleware"
	authMiddleware "github.com/x-xyz/escrow/stores/auth/delivery/http/middleware"
)

var errMapping = delivery.StatusMapping{
	http.StatusBadRequest: {
		asset.ErrInvalidRecipient,
		ledger.ErrInvalidAmount,
		ledger.ErrInvalidRecipient,
		domain.ErrBadParamInput,
		domain.ErrInvalidNumberFormat,
	},
	http.StatusForbidden: {asset.ErrNotAuthorized},
	http.StatusNotFound:  {asset.ErrNonexistentToken},
	http.StatusConflict:  {asset.ErrTokenExists},
}

type handler struct {
	registry asset.SandboxRegistry
	ledger   ledger.SandboxLedger
}

// New serves the in-process registry and ledger so assets and balances can be
// set up without an external chain
func New(e *echo.Echo, registry asset.SandboxRegistry, ledger ledger.SandboxLedger, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{registry, ledger}

	ga := e.Group("/sandbox/assets/:collection/:tokenId", middleware.IsValidAddress("collection"), middleware.IsValidTokenId("tokenId"))

	ga.GET("/owner", h.getOwner)

	ga.POST("/mint", h.mint, authMiddleware.Auth(), authMiddleware.IsAdmin())

	ga.POST("/approve", h.approve, authMiddleware.Auth())

	gb := e.Group("/sandbox/balances/:address", middleware.IsValidAddress("address"))

	gb.GET("", h.getBalance)

	gb.POST("/deposit", h.deposit, authMiddleware.Auth(), authMiddleware.IsAdmin())
}

type assetParams struct {
	Collection domain.Address `param:"collection" json:"-"`
	TokenId    domain.TokenId `param:"tokenId" json:"-"`
}

// getOwner
//
//	@Summary	Get asset owner
//	@Tags		sandbox
//	@Produce	json
//	@Param		collection	path		string	true	"collection address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param		tokenId		path		string	true	"token id"				example(1)
//	@Success	200			{object}	object{data=string}
//	@Failure	404
//	@Router		/sandbox/assets/{collection}/{tokenId}/owner [get]
func (h *handler) getOwner(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &assetParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if owner, err := h.registry.OwnerOf(ctx, p.Collection, p.TokenId); err != nil {
		return delivery.MakeErrorResp(c, errMapping, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, owner)
	}
}

// mint
//
//	@Summary	Mint an asset
//	@Tags		sandbox
//	@Accept		json
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		collection	path	string				true	"collection address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param		tokenId		path	string				true	"token id"				example(1)
//	@Param		params		body	http.mint.params	true	"params"
//	@Success	201
//	@Failure	400
//	@Failure	403
//	@Failure	409
//	@Router		/sandbox/assets/{collection}/{tokenId}/mint [post]
func (h *handler) mint(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		assetParams
		To domain.Address `json:"to" validate:"required,address"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.registry.Mint(ctx, p.Collection, p.To, p.TokenId); err != nil {
		ctx.WithField("err", err).Warn("registry.Mint failed")
		return delivery.MakeErrorResp(c, errMapping, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

// approve
//
//	@Summary		Approve an operator
//	@Description	Let operator move the caller's asset, approve the escrow account before listing
//	@Tags			sandbox
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			collection	path	string				true	"collection address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param			tokenId		path	string				true	"token id"				example(1)
//	@Param			params		body	http.approve.params	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Failure		404
//	@Router			/sandbox/assets/{collection}/{tokenId}/approve [post]
func (h *handler) approve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		assetParams
		Operator domain.Address `json:"operator" validate:"required,address"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	caller, _ := c.Get("address").(domain.Address)
	if err := h.registry.Approve(ctx, p.Collection, caller, p.Operator, p.TokenId); err != nil {
		ctx.WithField("err", err).Warn("registry.Approve failed")
		return delivery.MakeErrorResp(c, errMapping, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// getBalance
//
//	@Summary	Get balance
//	@Tags		sandbox
//	@Produce	json
//	@Param		address	path		string	true	"account address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Success	200		{object}	object{data=string}
//	@Router		/sandbox/balances/{address} [get]
func (h *handler) getBalance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if balance, err := h.ledger.BalanceOf(ctx, domain.Address(c.Param("address"))); err != nil {
		return delivery.MakeErrorResp(c, errMapping, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, balance.String())
	}
}

// deposit
//
//	@Summary	Deposit value
//	@Tags		sandbox
//	@Accept		json
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		address	path	string				true	"account address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param		params	body	http.deposit.params	true	"params"
//	@Success	200
//	@Failure	400
//	@Failure	403
//	@Router		/sandbox/balances/{address}/deposit [post]
func (h *handler) deposit(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address domain.Address `param:"address" json:"-"`
		Amount  string         `json:"amount" validate:"required,amount"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, _ := new(big.Int).SetString(p.Amount, 10)

	if err := h.ledger.Deposit(ctx, p.Address, amount); err != nil {
		ctx.WithField("err", err).Warn("ledger.Deposit failed")
		return delivery.MakeErrorResp(c, errMapping, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
