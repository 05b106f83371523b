// Package ledger is an in-process value ledger. Balances are kept in base
// units, transfers are push style and a Payable recipient may refuse them.
package ledger

import (
	"math/big"
	"sync"

	"golang.org/x/xerrors"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/journal"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/domain"
	dLedger "github.com/x-xyz/escrow/domain/ledger"
)

type impl struct {
	mu       sync.Mutex
	balances map[domain.Address]*big.Int
	payables map[domain.Address]dLedger.Payable
}

func New() dLedger.SandboxLedger {
	return &impl{
		balances: make(map[domain.Address]*big.Int),
		payables: make(map[domain.Address]dLedger.Payable),
	}
}

// Journaled marks every write as recorded on the journal of its ctx
func (im *impl) Journaled() bool {
	return true
}

func (im *impl) RegisterPayable(account domain.Address, p dLedger.Payable) {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.payables[account.ToLower()] = p
}

func (im *impl) BalanceOf(c ctx.Ctx, who domain.Address) (*big.Int, error) {
	im.mu.Lock()
	defer im.mu.Unlock()
	if b, ok := im.balances[who.ToLower()]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

// add must be called with im.mu held
func (im *impl) add(who domain.Address, delta *big.Int) {
	b, ok := im.balances[who]
	if !ok {
		b = new(big.Int)
		im.balances[who] = b
	}
	b.Add(b, delta)
}

func (im *impl) Deposit(c ctx.Ctx, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return dLedger.ErrInvalidAmount
	}
	if to.IsEmpty() {
		return dLedger.ErrInvalidRecipient
	}
	to = to.ToLower()
	delta := new(big.Int).Set(amount)

	im.mu.Lock()
	im.add(to, delta)
	im.mu.Unlock()

	journal.Record(c, func() {
		im.mu.Lock()
		defer im.mu.Unlock()
		im.add(to, new(big.Int).Neg(delta))
	})

	c.WithFields(log.Fields{"to": to, "amount": amount.String()}).Info("deposit")
	return nil
}

func (im *impl) Transfer(c ctx.Ctx, from, to domain.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return dLedger.ErrInvalidAmount
	}
	if to.IsEmpty() {
		return dLedger.ErrInvalidRecipient
	}
	from = from.ToLower()
	to = to.ToLower()
	delta := new(big.Int).Set(amount)

	j := journal.From(c)
	if j == nil {
		j = journal.New()
		c = journal.With(c, j)
	}
	snap := j.Snapshot()

	im.mu.Lock()
	if b, ok := im.balances[from]; !ok || b.Cmp(delta) < 0 {
		im.mu.Unlock()
		return dLedger.ErrInsufficientBalance
	}
	im.add(from, new(big.Int).Neg(delta))
	im.add(to, delta)
	payable := im.payables[to]
	im.mu.Unlock()

	// inverse delta so the undo commutes with unrelated deposits
	j.Append(func() {
		im.mu.Lock()
		defer im.mu.Unlock()
		im.add(to, new(big.Int).Neg(delta))
		im.add(from, delta)
	})

	if payable != nil {
		if err := payable.OnValueReceived(c, from, new(big.Int).Set(delta)); err != nil {
			j.RevertToSnapshot(snap)
			return xerrors.Errorf("%w: %v", dLedger.ErrRecipientRejected, err)
		}
	}

	c.WithFields(log.Fields{
		"from":   from,
		"to":     to,
		"amount": delta.String(),
	}).Debug("value transferred")
	return nil
}
