package activity

import (
	"time"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/notification"
)

type HistoryType string

const (
	HistoryTypeList          HistoryType = "list"
	HistoryTypeBuy           HistoryType = "buy"
	HistoryTypeSold          HistoryType = "sold"
	HistoryTypeCancelListing HistoryType = "cancelListing"
)

type History struct {
	Collection   domain.Address `json:"collection" bson:"collection"`
	TokenId      domain.TokenId `json:"tokenId" bson:"tokenId"`
	Type         HistoryType    `json:"type" bson:"type"`
	Account      domain.Address `json:"account" bson:"account"`
	To           domain.Address `json:"to" bson:"to"`
	Price        string         `json:"price" bson:"price"`
	DisplayPrice string         `json:"displayPrice" bson:"displayPrice"`
	EventId      string         `json:"eventId" bson:"eventId"`
	Time         time.Time      `json:"time" bson:"time"`
}

// Filter is the resolved form of FindOptions
type Filter struct {
	Offset     *int
	Limit      *int
	Account    *domain.Address
	Collection *domain.Address
	TokenId    *domain.TokenId
	Types      []HistoryType
}

type FindOptions func(*Filter) error

func GetFindOptions(opts ...FindOptions) (*Filter, error) {
	res := &Filter{}
	for _, opt := range opts {
		if err := opt(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func WithPagination(offset, limit int) FindOptions {
	return func(opts *Filter) error {
		if offset < 0 || limit < 0 {
			return domain.ErrBadParamInput
		}
		opts.Offset = &offset
		opts.Limit = &limit
		return nil
	}
}

func WithAccount(account domain.Address) FindOptions {
	return func(opts *Filter) error {
		opts.Account = account.ToLowerPtr()
		return nil
	}
}

func WithToken(collection domain.Address, tokenId domain.TokenId) FindOptions {
	return func(opts *Filter) error {
		id, err := tokenId.Normalize()
		if err != nil {
			return domain.ErrBadParamInput
		}
		opts.Collection = collection.ToLowerPtr()
		opts.TokenId = &id
		return nil
	}
}

func WithTypes(types ...HistoryType) FindOptions {
	return func(opts *Filter) error {
		opts.Types = types
		return nil
	}
}

type Repo interface {
	// Insert ignores a row already recorded for the same event
	Insert(c ctx.Ctx, h *History) error
	FindActivities(c ctx.Ctx, opts ...FindOptions) ([]History, error)
	CountActivities(c ctx.Ctx, opts ...FindOptions) (int, error)
}

// UseCase serves the history and records it from committed listing events
type UseCase interface {
	FindActivities(c ctx.Ctx, opts ...FindOptions) ([]History, error)
	CountActivities(c ctx.Ctx, opts ...FindOptions) (int, error)

	notification.Subscriber
}
