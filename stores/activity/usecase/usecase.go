package usecase

import (
	"golang.org/x/xerrors"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/activity"
	"github.com/x-xyz/escrow/domain/notification"
)

type Config struct {
	Repo activity.Repo
	// Decimals of the payment unit, used to render DisplayPrice
	Decimals int32
}

type impl struct {
	repo     activity.Repo
	decimals int32
}

func New(cfg *Config) activity.UseCase {
	return &impl{
		repo:     cfg.Repo,
		decimals: cfg.Decimals,
	}
}

func (im *impl) FindActivities(c ctx.Ctx, opts ...activity.FindOptions) ([]activity.History, error) {
	res, err := im.repo.FindActivities(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("repo.FindActivities failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) CountActivities(c ctx.Ctx, opts ...activity.FindOptions) (int, error) {
	cnt, err := im.repo.CountActivities(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("repo.CountActivities failed")
		return 0, err
	}
	return cnt, nil
}

func (im *impl) Name() string {
	return "activity"
}

// Handle records the rows of one committed event. A sale is recorded twice,
// as a buy for the buyer and as sold for the seller.
func (im *impl) Handle(c ctx.Ctx, e notification.Event) error {
	rows, err := im.toHistories(e)
	if err != nil {
		c.WithField("err", err).WithField("event", e.Id).Error("toHistories failed")
		return err
	}

	for i := range rows {
		if err := im.repo.Insert(c, &rows[i]); err != nil {
			c.WithFields(log.Fields{
				"err":   err,
				"event": e.Id,
				"type":  rows[i].Type,
			}).Error("repo.Insert failed")
			return err
		}
	}
	return nil
}

func (im *impl) toHistories(e notification.Event) ([]activity.History, error) {
	base := activity.History{
		Collection: e.Collection,
		TokenId:    e.TokenId,
		EventId:    e.Id,
		Time:       e.Time,
	}
	if e.Price != nil {
		base.Price = e.Price.String()
		base.DisplayPrice = domain.FormatUnits(e.Price, im.decimals).String()
	}

	switch e.Type {
	case notification.TypeListed:
		h := base
		h.Type = activity.HistoryTypeList
		h.Account = e.Seller
		return []activity.History{h}, nil

	case notification.TypeCancelled:
		h := base
		h.Type = activity.HistoryTypeCancelListing
		h.Account = e.Seller
		return []activity.History{h}, nil

	case notification.TypeSold:
		buy := base
		buy.Type = activity.HistoryTypeBuy
		buy.Account = e.Buyer
		buy.To = e.Seller

		sold := base
		sold.Type = activity.HistoryTypeSold
		sold.Account = e.Seller
		sold.To = e.Buyer
		return []activity.History{buy, sold}, nil
	}

	return nil, xerrors.Errorf("unknown event type %q", e.Type)
}
