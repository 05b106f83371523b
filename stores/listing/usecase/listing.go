package usecase

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/journal"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/base/metrics"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/asset"
	"github.com/x-xyz/escrow/domain/ledger"
	"github.com/x-xyz/escrow/domain/listing"
	"github.com/x-xyz/escrow/domain/notification"
)

var (
	timeNow = time.Now
)

type Config struct {
	// Address is the marketplace account, custody holder and payment escrow
	Address   domain.Address
	Repo      listing.Repo
	Registry  asset.Registry
	Ledger    ledger.Ledger
	Publisher notification.Publisher
	Metrics   metrics.Service
}

type impl struct {
	address   domain.Address
	repo      listing.Repo
	registry  asset.Registry
	ledger    ledger.Ledger
	publisher notification.Publisher
	met       metrics.Service

	// registry and ledger writes outside the journal need compensation
	compensateCustody  bool
	compensatePayments bool

	// mu guards inflight and is never held across a collaborator call
	mu       sync.Mutex
	inflight map[listing.Id]*claim
}

// New returns the settlement engine. The caller registers the engine as a
// receiver for its own Address on the asset registry.
func New(cfg *Config) listing.UseCase {
	met := cfg.Metrics
	if met == nil {
		met = metrics.New("listing")
	}
	return &impl{
		address:            cfg.Address.ToLower(),
		repo:               cfg.Repo,
		registry:           cfg.Registry,
		ledger:             cfg.Ledger,
		publisher:          cfg.Publisher,
		met:                met,
		compensateCustody:  !journal.Journaled(cfg.Registry),
		compensatePayments: !journal.Journaled(cfg.Ledger),
		inflight:           make(map[listing.Id]*claim),
	}
}

// frame is a top level operation together with the calls nested in it
// through hooks. It owns the listings it claimed until it returns.
type frame struct {
	im   *impl
	keys []listing.Id
}

// claim marks a listing in flight. committed is the stored state before the
// owning frame first wrote it, valid once written is set.
type claim struct {
	frame     *frame
	written   bool
	committed *listing.Listing
}

// frameKey carries the frame on the ctx handed to collaborators. A hook that
// passes it on runs nested in the frame, a hook that starts from a fresh ctx
// is a separate operation and finds the listings of the frame busy.
type frameKey struct{}

func (im *impl) frameOf(c ctx.Ctx) *frame {
	if c.Context == nil {
		return nil
	}
	f, _ := c.Value(frameKey{}).(*frame)
	if f == nil || f.im != im {
		return nil
	}
	return f
}

// acquire claims id for f, it fails when another frame holds id
func (im *impl) acquire(f *frame, id listing.Id) bool {
	im.mu.Lock()
	defer im.mu.Unlock()
	if cl, ok := im.inflight[id]; ok {
		return cl.frame == f
	}
	im.inflight[id] = &claim{frame: f}
	f.keys = append(f.keys, id)
	return true
}

func (im *impl) release(f *frame) {
	im.mu.Lock()
	defer im.mu.Unlock()
	for _, id := range f.keys {
		delete(im.inflight, id)
	}
	f.keys = nil
}

// run executes fn as one all-or-nothing unit on id. A listing claimed by
// another operation fails at once with busy. Top level calls publish the
// buffered events after their claims are released, nested calls only
// revert their own part on failure.
func (im *impl) run(c ctx.Ctx, op string, id listing.Id, busy error, fn func(c ctx.Ctx) error) error {
	if f := im.frameOf(c); f != nil {
		if !im.acquire(f, id) {
			c.WithField("op", op).Info("listing busy")
			return busy
		}
		j := journal.From(c)
		snap := j.Snapshot()
		if err := fn(c); err != nil {
			j.RevertToSnapshot(snap)
			c.WithFields(log.Fields{"op": op, "err": err}).Info("nested operation failed")
			return err
		}
		return nil
	}

	f := &frame{im: im}
	if !im.acquire(f, id) {
		im.met.BumpSum(op+".busy", 1)
		c.WithField("op", op).Info("listing busy")
		return busy
	}
	events, err := im.execute(c, f, op, fn)
	if err != nil {
		return err
	}
	// the operation is committed, a delivery failure cannot undo it
	if len(events) > 0 && im.publisher != nil {
		if err := im.publisher.Publish(c, events...); err != nil {
			c.WithFields(log.Fields{"op": op, "err": err}).Error("publisher.Publish failed")
		}
	}
	return nil
}

// execute runs fn in a fresh journal and releases the claims of f when done
func (im *impl) execute(c ctx.Ctx, f *frame, op string, fn func(c ctx.Ctx) error) ([]notification.Event, error) {
	defer im.release(f)
	defer im.met.BumpTime(op + ".time").End()

	j := journal.New()
	c = journal.With(c, j)
	c = ctx.Wrap(c, context.WithValue(c.Context, frameKey{}, f))

	if err := fn(c); err != nil {
		j.RevertToSnapshot(0)
		im.met.BumpSum(op+".fail", 1)
		fields := log.Fields{"op": op, "err": err}
		var stepErr *listing.StepError
		if errors.As(err, &stepErr) {
			c.WithFields(fields).Error("operation aborted")
		} else {
			c.WithFields(fields).Info("operation rejected")
		}
		return nil, err
	}
	im.met.BumpSum(op+".ok", 1)

	entries := j.Logs()
	events := make([]notification.Event, 0, len(entries))
	for _, e := range entries {
		events = append(events, e.(notification.Event))
	}
	return events, nil
}

// undoCtx drops the frame and the journal, undo may run after the request
// ctx is done
func undoCtx(c ctx.Ctx) ctx.Ctx {
	return ctx.Wrap(c, context.Background())
}

// compensate journals fn as the inverse of a write its store did not journal
func (im *impl) compensate(c ctx.Ctx, step string, fn func(c ctx.Ctx) error) {
	uc := undoCtx(c)
	journal.Record(c, func() {
		if err := fn(uc); err != nil {
			im.met.BumpSum("compensate.fail", 1)
			uc.WithFields(log.Fields{"step": step, "err": err}).Error("compensation failed")
		}
	})
}

// moveCustody transfers tokenId with the marketplace as operator
func (im *impl) moveCustody(c ctx.Ctx, id listing.Id, from, to domain.Address) error {
	if err := im.registry.TransferCustody(c, id.Collection, im.address, from, to, id.TokenId); err != nil {
		return err
	}
	if im.compensateCustody {
		im.compensate(c, "custody", func(uc ctx.Ctx) error {
			return im.registry.TransferCustody(uc, id.Collection, to, to, from, id.TokenId)
		})
	}
	return nil
}

func (im *impl) pay(c ctx.Ctx, from, to domain.Address, amount *big.Int) error {
	if err := im.ledger.Transfer(c, from, to, amount); err != nil {
		return err
	}
	if im.compensatePayments {
		im.compensate(c, "payment", func(uc ctx.Ctx) error {
			return im.ledger.Transfer(uc, to, from, amount)
		})
	}
	return nil
}

// find returns nil for a never listed asset
func (im *impl) find(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	l, err := im.repo.FindOne(c, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		c.WithFields(log.Fields{"id": id, "err": err}).Error("repo.FindOne failed")
		return nil, err
	}
	return l, nil
}

// put writes next and journals the restoration of prev, a nil prev restores
// the never listed state
func (im *impl) put(c ctx.Ctx, prev, next *listing.Listing) error {
	im.mu.Lock()
	if cl := im.inflight[next.Id]; cl != nil && !cl.written {
		cl.written = true
		if prev != nil {
			cl.committed = prev.Clone()
		}
	}
	im.mu.Unlock()

	if err := im.repo.Upsert(c, next); err != nil {
		c.WithFields(log.Fields{"id": next.Id, "err": err}).Error("repo.Upsert failed")
		return err
	}
	uc := undoCtx(c)
	journal.Record(c, func() {
		var err error
		if prev == nil {
			err = im.repo.Delete(uc, next.Id)
		} else {
			err = im.repo.Upsert(uc, prev)
		}
		if err != nil {
			uc.WithFields(log.Fields{"id": next.Id, "err": err}).Error("restore listing failed")
		}
	})
	return nil
}

func emit(c ctx.Ctx, typ notification.Type, id listing.Id, seller, buyer domain.Address, price *big.Int) {
	journal.From(c).AddLog(notification.Event{
		Id:         uuid.NewString(),
		Type:       typ,
		Collection: id.Collection,
		TokenId:    id.TokenId,
		Seller:     seller,
		Buyer:      buyer,
		Price:      price,
		Time:       timeNow(),
	})
}

func normalize(id listing.Id, caller domain.Address) (listing.Id, domain.Address, error) {
	id, err := id.Normalize()
	if err != nil {
		return listing.Id{}, "", err
	}
	if caller.IsEmpty() {
		return listing.Id{}, "", listing.ErrInvalidCaller
	}
	return id, caller.ToLower(), nil
}

func (im *impl) Address() domain.Address {
	return im.address
}

func (im *impl) List(c ctx.Ctx, id listing.Id, price *big.Int, caller domain.Address) error {
	id, caller, err := normalize(id, caller)
	if err != nil {
		return err
	}
	if price == nil || price.Sign() <= 0 {
		return listing.ErrInvalidPrice
	}
	price = new(big.Int).Set(price)
	c = ctx.WithFields(c, log.Fields{"collection": id.Collection, "tokenId": id.TokenId, "caller": caller})

	return im.run(c, "list", id, listing.ErrAlreadyListed, func(c ctx.Ctx) error {
		prev, err := im.find(c, id)
		if err != nil {
			return err
		}
		if prev != nil && prev.Active {
			return listing.ErrAlreadyListed
		}

		owner, err := im.registry.OwnerOf(c, id.Collection, id.TokenId)
		if errors.Is(err, asset.ErrNonexistentToken) {
			return xerrors.Errorf("%w: %v", listing.ErrNotOwner, err)
		} else if err != nil {
			c.WithField("err", err).Error("registry.OwnerOf failed")
			return err
		}
		if !owner.Equals(caller) {
			return listing.ErrNotOwner
		}

		if err := im.moveCustody(c, id, caller, im.address); err != nil {
			return &listing.StepError{Step: listing.ErrCustodyTransferFailed, Err: err}
		}

		if err := im.put(c, prev, &listing.Listing{
			Id:        id,
			Seller:    caller,
			Price:     price,
			Active:    true,
			UpdatedAt: timeNow(),
		}); err != nil {
			return err
		}

		emit(c, notification.TypeListed, id, caller, "", price)
		c.WithField("price", price.String()).Info("listed")
		return nil
	})
}

func (im *impl) Buy(c ctx.Ctx, id listing.Id, payment *big.Int, caller domain.Address) error {
	id, caller, err := normalize(id, caller)
	if err != nil {
		return err
	}
	c = ctx.WithFields(c, log.Fields{"collection": id.Collection, "tokenId": id.TokenId, "caller": caller})

	return im.run(c, "buy", id, listing.ErrNotListed, func(c ctx.Ctx) error {
		l, err := im.find(c, id)
		if err != nil {
			return err
		}
		if l == nil || !l.Active {
			return listing.ErrNotListed
		}
		if payment == nil || payment.Cmp(l.Price) != 0 {
			return listing.ErrWrongPayment
		}

		// deactivate before any external call, a re-entrant buy or cancel
		// on this asset sees it as not listed
		seller, price := l.Seller, new(big.Int).Set(l.Price)
		sold := l.Clone()
		sold.Active = false
		sold.UpdatedAt = timeNow()
		if err := im.put(c, l, sold); err != nil {
			return err
		}

		if err := im.pay(c, caller, im.address, price); err != nil {
			return &listing.StepError{Step: listing.ErrPaymentFailed, Err: err}
		}
		if err := im.moveCustody(c, id, im.address, caller); err != nil {
			return &listing.StepError{Step: listing.ErrCustodyTransferFailed, Err: err}
		}
		if err := im.pay(c, im.address, seller, price); err != nil {
			return &listing.StepError{Step: listing.ErrPayoutFailed, Err: err}
		}

		emit(c, notification.TypeSold, id, seller, caller, price)
		c.WithFields(log.Fields{"seller": seller, "price": price.String()}).Info("sold")
		return nil
	})
}

func (im *impl) CancelListing(c ctx.Ctx, id listing.Id, caller domain.Address) error {
	id, caller, err := normalize(id, caller)
	if err != nil {
		return err
	}
	c = ctx.WithFields(c, log.Fields{"collection": id.Collection, "tokenId": id.TokenId, "caller": caller})

	return im.run(c, "cancel", id, listing.ErrNotListed, func(c ctx.Ctx) error {
		l, err := im.find(c, id)
		if err != nil {
			return err
		}
		if l == nil || !l.Active {
			return listing.ErrNotListed
		}
		if !caller.Equals(l.Seller) {
			return listing.ErrNotSeller
		}

		seller := l.Seller
		cancelled := l.Clone()
		cancelled.Active = false
		cancelled.UpdatedAt = timeNow()
		if err := im.put(c, l, cancelled); err != nil {
			return err
		}

		if err := im.moveCustody(c, id, im.address, seller); err != nil {
			return &listing.StepError{Step: listing.ErrReturnTransferFailed, Err: err}
		}

		emit(c, notification.TypeCancelled, id, seller, "", nil)
		c.Info("cancelled")
		return nil
	})
}

func (im *impl) GetListing(c ctx.Ctx, id listing.Id) (*listing.Listing, error) {
	id, err := id.Normalize()
	if err != nil {
		return nil, err
	}
	f := im.frameOf(c)
	im.mu.Lock()
	cl := im.inflight[id]
	if cl == nil || cl.frame != f {
		// outside the owning frame only committed state is visible. The read
		// stays under mu so a frame cannot write id before it is done.
		defer im.mu.Unlock()
		if cl != nil && cl.written {
			if cl.committed == nil {
				return listing.Empty(id), nil
			}
			return cl.committed.Clone(), nil
		}
	} else {
		im.mu.Unlock()
	}
	l, err := im.find(c, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return listing.Empty(id), nil
	}
	return l, nil
}

// OnAssetReceived accepts every inbound custody transfer
func (im *impl) OnAssetReceived(c ctx.Ctx, operator, from, collection domain.Address, tokenId domain.TokenId, data []byte) (asset.Selector, error) {
	c.WithFields(log.Fields{
		"operator":   operator,
		"from":       from,
		"collection": collection,
		"tokenId":    tokenId,
	}).Debug("asset received")
	return asset.ReceivedSelector, nil
}
