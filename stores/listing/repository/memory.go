package repository

import (
	"sync"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/listing"
)

type memoryRepo struct {
	mu       sync.RWMutex
	listings map[listing.Id]*listing.Listing
}

// NewMemoryRepo keeps listings in process memory
func NewMemoryRepo() listing.Repo {
	return &memoryRepo{
		listings: make(map[listing.Id]*listing.Listing),
	}
}

func (im *memoryRepo) FindOne(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	l, ok := im.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return l.Clone(), nil
}

func (im *memoryRepo) Upsert(c ctx.Ctx, l *listing.Listing) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.listings[l.Id] = l.Clone()
	return nil
}

func (im *memoryRepo) Delete(c ctx.Ctx, id listing.Id) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	delete(im.listings, id)
	return nil
}
