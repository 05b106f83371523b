package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/activity"
	"github.com/x-xyz/escrow/service/query"
)

func makeFindQuery(opts *activity.Filter) bson.M {
	qry := bson.M{}

	if opts.Account != nil {
		qry["$or"] = bson.A{
			bson.M{"account": *opts.Account},
			bson.M{"to": *opts.Account},
		}
	}

	if opts.Collection != nil {
		qry["collection"] = *opts.Collection
	}

	if opts.TokenId != nil {
		qry["tokenId"] = *opts.TokenId
	}

	if len(opts.Types) > 1 {
		qry["type"] = bson.M{"$in": opts.Types}
	} else if len(opts.Types) > 0 {
		qry["type"] = opts.Types[0]
	}

	return qry
}

type activityRepo struct {
	q query.Mongo
}

func NewActivityRepo(q query.Mongo) activity.Repo {
	return &activityRepo{q: q}
}

// EnsureIndexes creates the indexes the history is read and deduplicated by
func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	return q.EnsureIndexes(c, domain.TableActivityHistories,
		query.Index{Keys: []string{"eventId", "type"}, Unique: true},
		query.Index{Keys: []string{"collection", "tokenId", "-time"}},
		query.Index{Keys: []string{"account", "-time"}},
	)
}

func (r *activityRepo) Insert(c ctx.Ctx, h *activity.History) error {
	if err := r.q.Insert(c, domain.TableActivityHistories, h); err == query.ErrDuplicateKey {
		c.WithFields(log.Fields{"eventId": h.EventId, "type": h.Type}).Info("history already recorded")
		return nil
	} else if err != nil {
		c.WithFields(log.Fields{
			"history": h,
			"err":     err,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *activityRepo) FindActivities(c ctx.Ctx, optFns ...activity.FindOptions) ([]activity.History, error) {
	opts, err := activity.GetFindOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("activity.GetFindOptions failed")
		return nil, err
	}

	offset := 0
	limit := 0

	if opts.Offset != nil {
		offset = *opts.Offset
	}

	if opts.Limit != nil {
		limit = *opts.Limit
	}

	qry := makeFindQuery(opts)
	res := []activity.History{}
	if err := r.q.Search(c, domain.TableActivityHistories, offset, limit, "-time", qry, &res); err != nil {
		c.WithField("err", err).WithField("query", qry).Error("q.Search failed")
		return nil, err
	}

	return res, nil
}

func (r *activityRepo) CountActivities(c ctx.Ctx, optFns ...activity.FindOptions) (int, error) {
	opts, err := activity.GetFindOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("activity.GetFindOptions failed")
		return 0, err
	}

	qry := makeFindQuery(opts)
	cnt, err := r.q.Count(c, domain.TableActivityHistories, qry)
	if err != nil {
		c.WithField("err", err).WithField("query", qry).Error("q.Count failed")
		return 0, err
	}

	return cnt, nil
}
