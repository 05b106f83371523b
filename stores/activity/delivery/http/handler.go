package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/delivery"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/activity"
	"github.com/x-xyz/escrow/middleware"
)

const maxLimit = 100

type handler struct {
	activity activity.UseCase
}

type result struct {
	Items []activity.History `json:"items"`
	Count int                `json:"count"`
}

func New(e *echo.Echo, activity activity.UseCase) {
	h := &handler{activity}

	e.GET("/listings/:collection/:tokenId/activities", h.getTokenActivities, middleware.IsValidAddress("collection"), middleware.IsValidTokenId("tokenId"))

	e.GET("/accounts/:address/activities", h.getAccountActivities, middleware.IsValidAddress("address"))
}

type pageParams struct {
	Offset int                    `query:"offset"`
	Limit  int                    `query:"limit"`
	Types  []activity.HistoryType `query:"types"`
}

func (p pageParams) filters() []activity.FindOptions {
	if len(p.Types) > 0 {
		return []activity.FindOptions{activity.WithTypes(p.Types...)}
	}
	return nil
}

func (p pageParams) pagination() activity.FindOptions {
	limit := p.Limit
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	return activity.WithPagination(p.Offset, limit)
}

func (h *handler) find(c echo.Context, page pageParams, filters ...activity.FindOptions) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	filters = append(filters, page.filters()...)
	items, err := h.activity.FindActivities(ctx, append(filters, page.pagination())...)
	if err != nil {
		return delivery.MakeErrorResp(c, delivery.StatusMapping{http.StatusBadRequest: {domain.ErrBadParamInput}}, err)
	}

	count, err := h.activity.CountActivities(ctx, filters...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, result{items, count})
}

// getTokenActivities
//
//	@Summary		List token activities
//	@Description	Listing history of one asset, newest first
//	@Tags			activities
//	@Produce		json
//	@Param			collection	path		string		true	"collection address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param			tokenId		path		string		true	"token id"				example(1)
//	@Param			offset		query		int			false	"paging offset"			example(0)
//	@Param			limit		query		int			false	"paging size"			example(100)
//	@Param			types		query		[]string	false	"activity types"		enums(list, buy, sold, cancelListing)	collectionFormat(multi)
//	@Success		200			{object}	object{data=http.result}
//	@Failure		400
//	@Failure		500
//	@Router			/listings/{collection}/{tokenId}/activities [get]
func (h *handler) getTokenActivities(c echo.Context) error {
	type params struct {
		pageParams
		Collection domain.Address `param:"collection"`
		TokenId    domain.TokenId `param:"tokenId"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	return h.find(c, p.pageParams, activity.WithToken(p.Collection, p.TokenId))
}

// getAccountActivities
//
//	@Summary		List account activities
//	@Description	History of an account as actor or counterparty, newest first
//	@Tags			activities
//	@Produce		json
//	@Param			address	path		string		true	"account address"	example(0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d)
//	@Param			offset	query		int			false	"paging offset"		example(0)
//	@Param			limit	query		int			false	"paging size"		example(100)
//	@Param			types	query		[]string	false	"activity types"	enums(list, buy, sold, cancelListing)	collectionFormat(multi)
//	@Success		200		{object}	object{data=http.result}
//	@Failure		400
//	@Failure		500
//	@Router			/accounts/{address}/activities [get]
func (h *handler) getAccountActivities(c echo.Context) error {
	type params struct {
		pageParams
		Address domain.Address `param:"address"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	return h.find(c, p.pageParams, activity.WithAccount(p.Address))
}
