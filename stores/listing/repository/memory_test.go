package repository

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/listing"
)

func TestMemoryRepo(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	repo := NewMemoryRepo()
	id := listing.Id{Collection: "0xcollection", TokenId: "1"}

	_, err := repo.FindOne(c, id)
	req.ErrorIs(err, domain.ErrNotFound)

	l := &listing.Listing{Id: id, Seller: "0xalice", Price: big.NewInt(100), Active: true}
	req.NoError(repo.Upsert(c, l))

	// the stored copy is isolated from the caller's value
	l.Price.SetInt64(1)
	got, err := repo.FindOne(c, id)
	req.NoError(err)
	req.Equal("100", got.Price.String())
	got.Active = false
	again, err := repo.FindOne(c, id)
	req.NoError(err)
	req.True(again.Active)

	req.NoError(repo.Delete(c, id))
	_, err = repo.FindOne(c, id)
	req.ErrorIs(err, domain.ErrNotFound)
	req.NoError(repo.Delete(c, id))
}
