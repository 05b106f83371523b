package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/delivery"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/stores/auth/delivery/http/middleware"
)

var errMapping = delivery.StatusMapping{
	http.StatusBadRequest:   {domain.ErrInvalidAddress, domain.ErrBadParamInput},
	http.StatusUnauthorized: {domain.ErrInvalidNonce, domain.ErrInvalidSignature},
}

type authHandler struct {
	auth               domain.AuthUsecase
	signingMsgTemplate string
}

func New(e *echo.Echo, auth domain.AuthUsecase, template string) {
	handler := &authHandler{
		auth:               auth,
		signingMsgTemplate: template,
	}
	g := e.Group("/auth")
	g.GET("/nonce/:address", handler.getNonce)
	g.POST("/sign", handler.sign)
	g.GET("/signingMsgTemplate", handler.getSigningMsgTemplate)
}

// NewCheck registers GET /check behind am.Auth
func NewCheck(e *echo.Echo, am *middleware.AuthMiddleware) {
	e.GET("/check", check, am.Auth())
}

// check
//
//	@Summary		Check access token
//	@Description	Echo the address the bearer token was issued to
//	@Tags			auth
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	object{address=string}
//	@Failure		401
//	@Router			/check [get]
func check(c echo.Context) error {
	address, _ := c.Get("address").(domain.Address)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"address": address,
	})
}

// getNonce
//
//	@Summary		Get signing nonce
//	@Description	Issue a one time nonce, put it in the signing message template and sign it with the wallet
//	@Tags			auth
//	@Produce		json
//	@Param			address	path		string	true	"account address"
//	@Success		200		{object}	object{data=string}
//	@Failure		400
//	@Router			/auth/nonce/{address} [get]
func (h *authHandler) getNonce(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	if nonce, err := h.auth.GetNonce(ctx, domain.Address(c.Param("address"))); err != nil {
		ctx.WithField("err", err).Error("auth.GetNonce failed")
		return delivery.MakeErrorResp(c, errMapping, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, nonce)
	}
}

// sign
//
//	@Summary		Get access token
//	@Description	Create access token for the address which signed its nonce
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			params	body		http.sign.params	true	"params"
//	@Success		201		{object}	object{data=string}
//	@Failure		400
//	@Failure		401
//	@Failure		500
//	@Router			/auth/sign [post]
func (h *authHandler) sign(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address   domain.Address `json:"address" validate:"required,address" example:"0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d"` // account address
		Signature string         `json:"signature" validate:"required"`                                                            // signed message
	}

	p := &params{}

	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := c.Validate(p); err != nil {
		ctx.WithField("err", err).Warn("validate failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if tkn, err := h.auth.SignIn(ctx, p.Address, p.Signature); err != nil {
		ctx.WithField("err", err).Error("auth.SignIn failed")
		if errors.Is(err, domain.ErrInvalidSignature) {
			err = domain.ErrInvalidSignature
		}
		return delivery.MakeErrorResp(c, errMapping, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, tkn)
	}
}

// getSigningMsgTemplate
//
//	@Summary		Get signature template
//	@Description	Replace %s with nonce fetched from /auth/nonce to build signing message
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	object{msg=string}	"signing message template"
//	@Router			/auth/signingMsgTemplate [get]
func (h *authHandler) getSigningMsgTemplate(c echo.Context) error {
	res := struct {
		Msg string `json:"template"`
	}{
		Msg: h.signingMsgTemplate,
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
