package repository

import (
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/database/mongoclient"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/listing"
	"github.com/x-xyz/escrow/service/query"
)

type listingSuite struct {
	suite.Suite

	client *mongoclient.Client
	im     listing.Repo
}

func (s *listingSuite) SetupSuite() {
	s.client = mongoclient.MustConnectMongoClient(os.Getenv("MONGO_URI"), "admin", "test", false, true, 2)
	q := query.New(s.client)
	s.Require().NoError(EnsureIndexes(ctx.Background(), q))
	s.im = NewListingRepo(q)
}

func (s *listingSuite) SetupTest() {
	_, err := s.client.Database(s.client.DbName).Collection(string(domain.TableListings)).DeleteMany(ctx.Background(), map[string]interface{}{})
	s.Require().NoError(err)
}

func TestListingSuite(t *testing.T) {
	if os.Getenv("MONGO_URI") == "" {
		t.Skip("MONGO_URI not set")
	}
	suite.Run(t, new(listingSuite))
}

func (s *listingSuite) TestUpsertFindDelete() {
	c := ctx.Background()
	id := listing.Id{Collection: "0xcollection", TokenId: "1"}

	_, err := s.im.FindOne(c, id)
	s.ErrorIs(err, domain.ErrNotFound)

	price, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	now := time.Now().UTC().Truncate(time.Millisecond)
	l := &listing.Listing{Id: id, Seller: "0xalice", Price: price, Active: true, UpdatedAt: now}
	s.Require().NoError(s.im.Upsert(c, l))

	got, err := s.im.FindOne(c, id)
	s.Require().NoError(err)
	s.Equal(l, got)

	l.Active = false
	s.Require().NoError(s.im.Upsert(c, l))
	got, err = s.im.FindOne(c, id)
	s.Require().NoError(err)
	s.False(got.Active)
	s.Equal(price.String(), got.Price.String())

	s.Require().NoError(s.im.Delete(c, id))
	s.Require().NoError(s.im.Delete(c, id))
	_, err = s.im.FindOne(c, id)
	s.ErrorIs(err, domain.ErrNotFound)
}
