package ledger

import (
	"errors"
	"math/big"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidRecipient    = errors.New("invalid recipient")
	ErrRecipientRejected   = errors.New("recipient rejected the value")
)

// Ledger moves fungible payment value between identities.
//
// A Ledger that journals its writes on the ctx journal implements
// journal.Participant. Any other Ledger sees completed transfers undone by
// a refund from the recipient.
type Ledger interface {
	BalanceOf(c ctx.Ctx, who domain.Address) (*big.Int, error)
	// Transfer pushes amount from `from` to `to`. A registered Payable
	// recipient is notified after crediting, an error from it reverts the
	// transfer.
	Transfer(c ctx.Ctx, from, to domain.Address, amount *big.Int) error
}

// Payable is implemented by accounts that run code when receiving value
type Payable interface {
	OnValueReceived(c ctx.Ctx, from domain.Address, amount *big.Int) error
}

// PayableFunc adapts a function to Payable
type PayableFunc func(c ctx.Ctx, from domain.Address, amount *big.Int) error

func (f PayableFunc) OnValueReceived(c ctx.Ctx, from domain.Address, amount *big.Int) error {
	return f(c, from, amount)
}

// SandboxLedger is a Ledger that can mint balances, it backs the service when
// no external ledger is wired
type SandboxLedger interface {
	Ledger
	Deposit(c ctx.Ctx, to domain.Address, amount *big.Int) error
	RegisterPayable(account domain.Address, p Payable)
}
