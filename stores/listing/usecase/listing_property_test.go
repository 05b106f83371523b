package usecase

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"testing"

	"pgregory.net/rapid"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/asset"
	"github.com/x-xyz/escrow/domain/ledger"
	"github.com/x-xyz/escrow/domain/listing"
	"github.com/x-xyz/escrow/domain/notification"
	sLedger "github.com/x-xyz/escrow/service/ledger"
	sRegistry "github.com/x-xyz/escrow/service/registry"
	"github.com/x-xyz/escrow/stores/listing/repository"
)

type harness struct {
	c   ctx.Ctx
	reg asset.SandboxRegistry
	led ledger.SandboxLedger
	im  listing.UseCase
}

func newHarness() *harness {
	h := &harness{
		c:   ctx.Background(),
		reg: sRegistry.New(),
		led: sLedger.New(),
	}
	h.im = New(&Config{
		Address:   market,
		Repo:      repository.NewMemoryRepo(),
		Registry:  h.reg,
		Ledger:    h.led,
		Publisher: notification.NewRecorder(),
	})
	h.reg.RegisterReceiver(market, h.im)
	return h
}

func (h *harness) mint(t *rapid.T, owner domain.Address, tokenId domain.TokenId) {
	if err := h.reg.Mint(h.c, collectionX, owner, tokenId); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := h.reg.Approve(h.c, collectionX, owner, market, tokenId); err != nil {
		t.Fatalf("Approve: %v", err)
	}
}

func (h *harness) balance(t *rapid.T, who domain.Address) int64 {
	b, err := h.led.BalanceOf(h.c, who)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	return b.Int64()
}

func TestListThenGetProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := newHarness()
		tokenId := domain.TokenId(strconv.FormatUint(rapid.Uint64().Draw(t, "tokenId"), 10))
		price := rapid.Int64Range(1, math.MaxInt64).Draw(t, "price")
		h.mint(t, alice, tokenId)

		id := tokenOf(tokenId)
		if err := h.im.List(h.c, id, big.NewInt(price), alice); err != nil {
			t.Fatalf("List: %v", err)
		}
		l, err := h.im.GetListing(h.c, id)
		if err != nil {
			t.Fatalf("GetListing: %v", err)
		}
		if l.Seller != alice || l.Price.Int64() != price || !l.Active {
			t.Fatalf("GetListing = (%s, %s, %v), want (%s, %d, true)", l.Seller, l.Price, l.Active, alice, price)
		}
		if owner, _ := h.reg.OwnerOf(h.c, collectionX, tokenId); owner != market {
			t.Fatalf("owner = %s, want marketplace", owner)
		}
	})
}

func TestWrongPaymentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := newHarness()
		price := rapid.Int64Range(1, 1_000_000).Draw(t, "price")
		delta := rapid.Int64Range(-price, 1_000_000).Draw(t, "delta")
		if delta == 0 {
			delta = 1
		}
		payment := price + delta

		h.mint(t, alice, "1")
		if err := h.led.Deposit(h.c, bob, big.NewInt(2_000_000)); err != nil {
			t.Fatalf("Deposit: %v", err)
		}
		id := tokenOf("1")
		if err := h.im.List(h.c, id, big.NewInt(price), alice); err != nil {
			t.Fatalf("List: %v", err)
		}

		if err := h.im.Buy(h.c, id, big.NewInt(payment), bob); !errors.Is(err, listing.ErrWrongPayment) {
			t.Fatalf("Buy(%d) for price %d = %v, want ErrWrongPayment", payment, price, err)
		}
		l, _ := h.im.GetListing(h.c, id)
		if !l.Active {
			t.Fatalf("listing deactivated by a rejected payment")
		}
		if owner, _ := h.reg.OwnerOf(h.c, collectionX, "1"); owner != market {
			t.Fatalf("owner = %s, want marketplace", owner)
		}
		if b := h.balance(t, bob); b != 2_000_000 {
			t.Fatalf("buyer balance = %d", b)
		}
	})
}

var knownErrors = []error{
	listing.ErrNotOwner,
	listing.ErrAlreadyListed,
	listing.ErrNotListed,
	listing.ErrNotSeller,
	listing.ErrWrongPayment,
	listing.ErrPaymentFailed,
	listing.ErrCustodyTransferFailed,
}

// TestEscrowInvariantsProperty runs random operation sequences and checks
// after every step that an active listing is exactly an escrowed asset and
// that no value is created or lost
func TestEscrowInvariantsProperty(t *testing.T) {
	actors := []domain.Address{alice, bob, carol}
	tokens := []domain.TokenId{"1", "2", "3"}
	const funds = 10_000

	rapid.Check(t, func(t *rapid.T) {
		h := newHarness()
		for i, tokenId := range tokens {
			h.mint(t, actors[i], tokenId)
			if err := h.led.Deposit(h.c, actors[i], big.NewInt(funds)); err != nil {
				t.Fatalf("Deposit: %v", err)
			}
		}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for step := 0; step < steps; step++ {
			actor := actors[rapid.IntRange(0, len(actors)-1).Draw(t, fmt.Sprintf("actor-%d", step))]
			tokenId := tokens[rapid.IntRange(0, len(tokens)-1).Draw(t, fmt.Sprintf("token-%d", step))]
			id := tokenOf(tokenId)

			var err error
			switch rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("op-%d", step)) {
			case 0:
				price := rapid.Int64Range(1, 3*funds).Draw(t, fmt.Sprintf("price-%d", step))
				// approval is cleared by every move, renew it when possible
				_ = h.reg.Approve(h.c, collectionX, actor, market, tokenId)
				err = h.im.List(h.c, id, big.NewInt(price), actor)
			case 1:
				payment := rapid.Int64Range(1, 3*funds).Draw(t, fmt.Sprintf("payment-%d", step))
				if l, _ := h.im.GetListing(h.c, id); l.Active && rapid.Bool().Draw(t, fmt.Sprintf("exact-%d", step)) {
					payment = l.Price.Int64()
				}
				err = h.im.Buy(h.c, id, big.NewInt(payment), actor)
			case 2:
				err = h.im.CancelListing(h.c, id, actor)
			}
			if err != nil && !isKnown(err) {
				t.Fatalf("step %d: unexpected error %v", step, err)
			}

			total := h.balance(t, market)
			if total != 0 {
				t.Fatalf("step %d: marketplace keeps %d after the operation", step, total)
			}
			for _, a := range actors {
				total += h.balance(t, a)
			}
			if total != int64(len(actors))*funds {
				t.Fatalf("step %d: total value %d", step, total)
			}

			for _, tk := range tokens {
				l, err := h.im.GetListing(h.c, tokenOf(tk))
				if err != nil {
					t.Fatalf("GetListing: %v", err)
				}
				owner, _ := h.reg.OwnerOf(h.c, collectionX, tk)
				if l.Active != (owner == market) {
					t.Fatalf("step %d: token %s active=%v owner=%s", step, tk, l.Active, owner)
				}
				if l.Active && l.Seller == market {
					t.Fatalf("step %d: token %s listed by the marketplace", step, tk)
				}
			}
		}
	})
}

func isKnown(err error) bool {
	for _, e := range knownErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
