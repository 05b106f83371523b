// Package registry is an in-process asset registry with ERC-721 transfer
// rules: holder or approved operator only, per-token approval cleared on
// transfer, and receiver hooks that can refuse an inbound asset.
package registry

import (
	"sync"

	"golang.org/x/xerrors"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/journal"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/asset"
)

type tokenKey struct {
	collection domain.Address
	tokenId    domain.TokenId
}

type operatorKey struct {
	collection domain.Address
	owner      domain.Address
	operator   domain.Address
}

type impl struct {
	mu        sync.Mutex
	owners    map[tokenKey]domain.Address
	approved  map[tokenKey]domain.Address
	operators map[operatorKey]bool
	receivers map[domain.Address]asset.Receiver
}

func New() asset.SandboxRegistry {
	return &impl{
		owners:    make(map[tokenKey]domain.Address),
		approved:  make(map[tokenKey]domain.Address),
		operators: make(map[operatorKey]bool),
		receivers: make(map[domain.Address]asset.Receiver),
	}
}

func key(collection domain.Address, tokenId domain.TokenId) (tokenKey, error) {
	id, err := tokenId.Normalize()
	if err != nil {
		return tokenKey{}, err
	}
	return tokenKey{collection: collection.ToLower(), tokenId: id}, nil
}

// Journaled marks every write as recorded on the journal of its ctx
func (im *impl) Journaled() bool {
	return true
}

func (im *impl) RegisterReceiver(account domain.Address, r asset.Receiver) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.receivers[account.ToLower()] = r
}

func (im *impl) OwnerOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	k, err := key(collection, tokenId)
	if err != nil {
		return "", err
	}

	im.mu.Lock()
	defer im.mu.Unlock()
	owner, ok := im.owners[k]
	if !ok {
		return "", asset.ErrNonexistentToken
	}
	return owner, nil
}

func (im *impl) Mint(c ctx.Ctx, collection, to domain.Address, tokenId domain.TokenId) error {
	k, err := key(collection, tokenId)
	if err != nil {
		return err
	}
	if to.IsEmpty() {
		return asset.ErrInvalidRecipient
	}

	im.mu.Lock()
	if _, ok := im.owners[k]; ok {
		im.mu.Unlock()
		return asset.ErrTokenExists
	}
	im.owners[k] = to.ToLower()
	im.mu.Unlock()

	journal.Record(c, func() {
		im.mu.Lock()
		defer im.mu.Unlock()
		delete(im.owners, k)
	})

	c.WithFields(log.Fields{
		"collection": k.collection,
		"tokenId":    k.tokenId,
		"to":         to,
	}).Info("asset minted")
	return nil
}

func (im *impl) Approve(c ctx.Ctx, collection, caller, operator domain.Address, tokenId domain.TokenId) error {
	k, err := key(collection, tokenId)
	if err != nil {
		return err
	}

	im.mu.Lock()
	owner, ok := im.owners[k]
	if !ok {
		im.mu.Unlock()
		return asset.ErrNonexistentToken
	}
	if !owner.Equals(caller) && !im.operators[operatorKey{k.collection, owner, caller.ToLower()}] {
		im.mu.Unlock()
		return asset.ErrNotAuthorized
	}
	prev, hadPrev := im.approved[k]
	im.approved[k] = operator.ToLower()
	im.mu.Unlock()

	journal.Record(c, func() {
		im.mu.Lock()
		defer im.mu.Unlock()
		if hadPrev {
			im.approved[k] = prev
		} else {
			delete(im.approved, k)
		}
	})
	return nil
}

func (im *impl) SetApprovalForAll(c ctx.Ctx, collection, owner, operator domain.Address, approved bool) error {
	k := operatorKey{collection.ToLower(), owner.ToLower(), operator.ToLower()}

	im.mu.Lock()
	prev := im.operators[k]
	if approved {
		im.operators[k] = true
	} else {
		delete(im.operators, k)
	}
	im.mu.Unlock()

	journal.Record(c, func() {
		im.mu.Lock()
		defer im.mu.Unlock()
		if prev {
			im.operators[k] = true
		} else {
			delete(im.operators, k)
		}
	})
	return nil
}

func (im *impl) TransferCustody(c ctx.Ctx, collection, operator, from, to domain.Address, tokenId domain.TokenId) error {
	k, err := key(collection, tokenId)
	if err != nil {
		return err
	}
	if to.IsEmpty() {
		return asset.ErrInvalidRecipient
	}
	from = from.ToLower()
	to = to.ToLower()
	operator = operator.ToLower()

	// the receiver hook may run arbitrary code, everything it does is undone
	// together with the move if it refuses the asset
	j := journal.From(c)
	if j == nil {
		j = journal.New()
		c = journal.With(c, j)
	}
	snap := j.Snapshot()

	im.mu.Lock()
	owner, ok := im.owners[k]
	if !ok {
		im.mu.Unlock()
		return asset.ErrNonexistentToken
	}
	if owner != from {
		im.mu.Unlock()
		return asset.ErrNotTokenHolder
	}
	if operator != from && im.approved[k] != operator && !im.operators[operatorKey{k.collection, from, operator}] {
		im.mu.Unlock()
		return asset.ErrNotAuthorized
	}
	prevApproval, hadApproval := im.approved[k]
	delete(im.approved, k)
	im.owners[k] = to
	receiver := im.receivers[to]
	im.mu.Unlock()

	j.Append(func() {
		im.mu.Lock()
		defer im.mu.Unlock()
		im.owners[k] = from
		if hadApproval {
			im.approved[k] = prevApproval
		}
	})

	if receiver != nil {
		sel, err := receiver.OnAssetReceived(c, operator, from, k.collection, k.tokenId, nil)
		if err != nil {
			j.RevertToSnapshot(snap)
			return xerrors.Errorf("%w: %v", asset.ErrReceiverRejected, err)
		}
		if sel != asset.ReceivedSelector {
			j.RevertToSnapshot(snap)
			return xerrors.Errorf("%w: unexpected selector %x", asset.ErrReceiverRejected, sel)
		}
	}

	c.WithFields(log.Fields{
		"collection": k.collection,
		"tokenId":    k.tokenId,
		"from":       from,
		"to":         to,
		"operator":   operator,
	}).Debug("custody transferred")
	return nil
}
