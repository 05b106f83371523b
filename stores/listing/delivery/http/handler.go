package http

import (
	"math/big"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/delivery"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/base/metrics"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/asset"
	"github.com/x-xyz/escrow/domain/ledger"
	"github.com/x-xyz/escrow/domain/listing"
	"github.com/x-xyz/escrow/middleware"
	authMiddleware "github.com/x-xyz/escrow/stores/auth/delivery/http/middleware"
)

var met metrics.Service

var errMapping = delivery.StatusMapping{
	http.StatusBadRequest: {
		listing.ErrInvalidPrice,
		listing.ErrWrongPayment,
		listing.ErrInvalidId,
		listing.ErrInvalidCaller,
		domain.ErrBadParamInput,
	},
	http.StatusForbidden: {listing.ErrNotOwner, listing.ErrNotSeller},
	http.StatusConflict:  {listing.ErrAlreadyListed, listing.ErrNotListed},
	http.StatusUnprocessableEntity: {
		listing.ErrCustodyTransferFailed,
		listing.ErrReturnTransferFailed,
		listing.ErrPaymentFailed,
		listing.ErrPayoutFailed,
		asset.ErrReceiverRejected,
		ledger.ErrRecipientRejected,
	},
}

type handler struct {
	listing listing.UseCase
}

type listingResp struct {
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
	Seller     domain.Address `json:"seller"`
	Price      string         `json:"price"`
	Active     bool           `json:"active"`
	UpdatedAt  *time.Time     `json:"updatedAt,omitempty"`
}

func toResp(l *listing.Listing) listingResp {
	res := listingResp{
		Collection: l.Id.Collection,
		TokenId:    l.Id.TokenId,
		Seller:     l.Seller,
		Price:      "0",
		Active:     l.Active,
	}
	if l.Price != nil {
		res.Price = l.Price.String()
	}
	if !l.UpdatedAt.IsZero() {
		t := l.UpdatedAt
		res.UpdatedAt = &t
	}
	return res
}

func New(e *echo.Echo, listing listing.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	met = metrics.New("listing.http")

	h := &handler{listing}

	g := e.Group("/listings/:collection/:tokenId", middleware.IsValidAddress("collection"), middleware.IsValidTokenId("tokenId"))

	g.GET("", h.get)

	g.POST("", h.list, authMiddleware.Auth())

	g.DELETE("", h.cancel, authMiddleware.Auth())

	g.POST("/buy", h.buy, authMiddleware.Auth())
}

type idParams struct {
	Collection domain.Address `param:"collection" json:"-"`
	TokenId    domain.TokenId `param:"tokenId" json:"-"`
}

func (p idParams) toId() listing.Id {
	return listing.Id{Collection: p.Collection, TokenId: p.TokenId}
}

func caller(c echo.Context) domain.Address {
	address, _ := c.Get("address").(domain.Address)
	return address
}

func parseAmount(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 10)
}

// get
//
//	@Summary		Get listing
//	@Description	Get the listing of an asset, a never listed asset answers an inactive listing with zero seller and price
//	@Tags			listings
//	@Produce		json
//	@Param			collection	path		string	true	"collection address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param			tokenId		path		string	true	"token id"				example(1)
//	@Success		200			{object}	object{data=http.listingResp}
//	@Failure		400
//	@Failure		500
//	@Router			/listings/{collection}/{tokenId} [get]
func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &idParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if res, err := h.listing.GetListing(ctx, p.toId()); err != nil {
		ctx.WithField("err", err).Error("listing.GetListing failed")
		return delivery.MakeErrorResp(c, errMapping, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusOK, toResp(res))
	}
}

// list
//
//	@Summary		List an asset
//	@Description	Move the asset into escrow and offer it at price. The caller must own the asset and have approved the escrow account.
//	@Tags			listings
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			collection	path		string				true	"collection address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param			tokenId		path		string				true	"token id"				example(1)
//	@Param			params		body		http.list.params	true	"params"
//	@Success		201
//	@Failure		400
//	@Failure		403
//	@Failure		409
//	@Failure		422
//	@Failure		500
//	@Router			/listings/{collection}/{tokenId} [post]
func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		idParams
		Price string `json:"price" validate:"required,amount" example:"1000000000000000000"` // price in the smallest unit
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, _ := parseAmount(p.Price)

	logger := ctx.WithFields(log.Fields{"collection": p.Collection, "tokenId": p.TokenId, "caller": caller(c)})
	if err := h.listing.List(ctx, p.toId(), price, caller(c)); err != nil {
		logger.WithField("err", err).Warn("listing.List failed")
		met.BumpSum("list.err", 1)
		return delivery.MakeErrorResp(c, errMapping, err)
	}
	met.BumpSum("list", 1)
	return delivery.MakeJsonResp(c, http.StatusCreated, nil)
}

// buy
//
//	@Summary		Buy a listed asset
//	@Description	Pay exactly the listed price, the asset goes to the caller and the payment to the seller
//	@Tags			listings
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			collection	path		string				true	"collection address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param			tokenId		path		string				true	"token id"				example(1)
//	@Param			params		body		http.buy.params		true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		409
//	@Failure		422
//	@Failure		500
//	@Router			/listings/{collection}/{tokenId}/buy [post]
func (h *handler) buy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		idParams
		Payment string `json:"payment" validate:"required,amount" example:"1000000000000000000"` // attached payment, must equal the price
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	payment, _ := parseAmount(p.Payment)

	logger := ctx.WithFields(log.Fields{"collection": p.Collection, "tokenId": p.TokenId, "caller": caller(c)})
	if err := h.listing.Buy(ctx, p.toId(), payment, caller(c)); err != nil {
		logger.WithField("err", err).Warn("listing.Buy failed")
		met.BumpSum("buy.err", 1)
		return delivery.MakeErrorResp(c, errMapping, err)
	}
	met.BumpSum("buy", 1)
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// cancel
//
//	@Summary		Cancel a listing
//	@Description	Return the escrowed asset to the seller
//	@Tags			listings
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			collection	path	string	true	"collection address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param			tokenId		path	string	true	"token id"				example(1)
//	@Success		200
//	@Failure		403
//	@Failure		409
//	@Failure		422
//	@Failure		500
//	@Router			/listings/{collection}/{tokenId} [delete]
func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &idParams{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	logger := ctx.WithFields(log.Fields{"collection": p.Collection, "tokenId": p.TokenId, "caller": caller(c)})
	if err := h.listing.CancelListing(ctx, p.toId(), caller(c)); err != nil {
		logger.WithField("err", err).Warn("listing.CancelListing failed")
		met.BumpSum("cancel.err", 1)
		return delivery.MakeErrorResp(c, errMapping, err)
	}
	met.BumpSum("cancel", 1)
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
