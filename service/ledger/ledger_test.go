package ledger

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/journal"
	"github.com/x-xyz/escrow/domain"
	dLedger "github.com/x-xyz/escrow/domain/ledger"
)

const (
	alice = domain.Address("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob   = domain.Address("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
)

func balance(t *testing.T, l dLedger.Ledger, who domain.Address) int64 {
	b, err := l.BalanceOf(ctx.Background(), who)
	require.NoError(t, err)
	return b.Int64()
}

func TestTransfer(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	l := New()

	req.NoError(l.Deposit(c, alice, big.NewInt(1000)))
	req.NoError(l.Transfer(c, alice, bob, big.NewInt(400)))
	req.Equal(int64(600), balance(t, l, alice))
	req.Equal(int64(400), balance(t, l, bob))

	req.ErrorIs(l.Transfer(c, alice, bob, big.NewInt(601)), dLedger.ErrInsufficientBalance)
	req.ErrorIs(l.Transfer(c, alice, bob, big.NewInt(0)), dLedger.ErrInvalidAmount)
	req.ErrorIs(l.Transfer(c, alice, "", big.NewInt(1)), dLedger.ErrInvalidRecipient)
	req.ErrorIs(l.Deposit(c, alice, big.NewInt(-1)), dLedger.ErrInvalidAmount)

	// unknown accounts hold nothing
	req.Equal(int64(0), balance(t, l, "0x01"))
	req.True(journal.Journaled(l))
}

func TestPayableRejects(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	l := New()
	req.NoError(l.Deposit(c, alice, big.NewInt(1000)))

	var seen *big.Int
	l.RegisterPayable(bob, dLedger.PayableFunc(func(c ctx.Ctx, from domain.Address, amount *big.Int) error {
		seen = amount
		return errors.New("no thanks")
	}))

	err := l.Transfer(c, alice, bob, big.NewInt(300))
	req.ErrorIs(err, dLedger.ErrRecipientRejected)
	req.Equal(int64(300), seen.Int64())
	req.Equal(int64(1000), balance(t, l, alice))
	req.Equal(int64(0), balance(t, l, bob))
}

func TestPayableSeesCreditedBalance(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	l := New()
	req.NoError(l.Deposit(c, alice, big.NewInt(10)))

	l.RegisterPayable(bob, dLedger.PayableFunc(func(c ctx.Ctx, from domain.Address, amount *big.Int) error {
		// forwarding inside the hook works because bob is already credited
		return l.Transfer(c, bob, alice, big.NewInt(4))
	}))

	req.NoError(l.Transfer(c, alice, bob, big.NewInt(10)))
	req.Equal(int64(4), balance(t, l, alice))
	req.Equal(int64(6), balance(t, l, bob))
}

func TestJournalRevertCommutesWithDeposits(t *testing.T) {
	req := require.New(t)
	l := New()
	req.NoError(l.Deposit(ctx.Background(), alice, big.NewInt(100)))

	j := journal.New()
	c := journal.With(ctx.Background(), j)
	req.NoError(l.Transfer(c, alice, bob, big.NewInt(60)))

	// a deposit outside the journal lands in between
	req.NoError(l.Deposit(ctx.Background(), bob, big.NewInt(5)))

	j.RevertToSnapshot(0)
	req.Equal(int64(100), balance(t, l, alice))
	req.Equal(int64(5), balance(t, l, bob))
}
