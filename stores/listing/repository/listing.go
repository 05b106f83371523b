package repository

import (
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/xerrors"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/listing"
	"github.com/x-xyz/escrow/service/query"
)

// listingDoc stores the price as a decimal string, it does not fit in int64
type listingDoc struct {
	Collection domain.Address `bson:"collection"`
	TokenId    domain.TokenId `bson:"tokenId"`
	Seller     domain.Address `bson:"seller"`
	Price      string         `bson:"price"`
	Active     bool           `bson:"active"`
	UpdatedAt  time.Time      `bson:"updatedAt"`
}

func toDoc(l *listing.Listing) listingDoc {
	price := "0"
	if l.Price != nil {
		price = l.Price.String()
	}
	return listingDoc{
		Collection: l.Id.Collection,
		TokenId:    l.Id.TokenId,
		Seller:     l.Seller,
		Price:      price,
		Active:     l.Active,
		UpdatedAt:  l.UpdatedAt,
	}
}

func (d listingDoc) toListing() (*listing.Listing, error) {
	price, ok := new(big.Int).SetString(d.Price, 10)
	if !ok {
		return nil, xerrors.Errorf("%w: price %q", domain.ErrInvalidNumberFormat, d.Price)
	}
	return &listing.Listing{
		Id:        listing.Id{Collection: d.Collection, TokenId: d.TokenId},
		Seller:    d.Seller,
		Price:     price,
		Active:    d.Active,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type listingRepoImpl struct {
	q query.Mongo
}

func NewListingRepo(q query.Mongo) listing.Repo {
	return &listingRepoImpl{q}
}

// EnsureIndexes creates the unique (collection, tokenId) index
func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	return q.EnsureIndexes(c, domain.TableListings, query.Index{
		Keys:   []string{"collection", "tokenId"},
		Unique: true,
	})
}

func selector(id listing.Id) bson.M {
	return bson.M{"collection": id.Collection, "tokenId": id.TokenId}
}

func (im *listingRepoImpl) FindOne(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	doc := listingDoc{}
	if err := im.q.FindOne(c, domain.TableListings, selector(id), &doc); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithFields(log.Fields{"id": id, "err": err}).Error("q.FindOne failed")
		return nil, err
	}
	return doc.toListing()
}

func (im *listingRepoImpl) Upsert(c ctx.Ctx, l *listing.Listing) error {
	if err := im.q.Upsert(c, domain.TableListings, selector(l.Id), toDoc(l)); err != nil {
		c.WithFields(log.Fields{"id": l.Id, "err": err}).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (im *listingRepoImpl) Delete(c ctx.Ctx, id listing.Id) error {
	if err := im.q.Remove(c, domain.TableListings, selector(id)); err != nil && err != query.ErrNotFound {
		c.WithFields(log.Fields{"id": id, "err": err}).Error("q.Remove failed")
		return err
	}
	return nil
}
