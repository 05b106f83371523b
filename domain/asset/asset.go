package asset

import (
	"errors"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
)

var (
	ErrNonexistentToken = errors.New("nonexistent token")
	ErrTokenExists      = errors.New("token already minted")
	ErrNotTokenHolder   = errors.New("from is not the token holder")
	ErrNotAuthorized    = errors.New("operator is neither holder nor approved")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrReceiverRejected = errors.New("receiver rejected the transfer")
)

// Selector is the 4 byte value a receiver returns to acknowledge a transfer
type Selector [4]byte

// ReceivedSelector is bytes4(keccak256("onERC721Received(address,address,uint256,bytes)"))
var ReceivedSelector = Selector{0x15, 0x0b, 0x7a, 0x02}

// Registry is the system of record for custody of non fungible assets.
//
// A Registry that journals its writes on the ctx journal implements
// journal.Participant and is rolled back together with the caller. Any
// other Registry sees completed transfers undone by a transfer in the
// opposite direction, with the recipient as operator.
type Registry interface {
	OwnerOf(c ctx.Ctx, collection domain.Address, tokenId domain.TokenId) (domain.Address, error)
	// TransferCustody moves tokenId from `from` to `to` on behalf of operator.
	// If `to` is a registered receiver its hook is invoked and the transfer is
	// reverted unless it returns ReceivedSelector.
	TransferCustody(c ctx.Ctx, collection, operator, from, to domain.Address, tokenId domain.TokenId) error
}

// Receiver is implemented by accounts that hold assets through code. Hooks
// receive the ctx of the transfer and may call back into the caller.
type Receiver interface {
	OnAssetReceived(c ctx.Ctx, operator, from, collection domain.Address, tokenId domain.TokenId, data []byte) (Selector, error)
}

// ReceiverFunc adapts a function to Receiver
type ReceiverFunc func(c ctx.Ctx, operator, from, collection domain.Address, tokenId domain.TokenId, data []byte) (Selector, error)

func (f ReceiverFunc) OnAssetReceived(c ctx.Ctx, operator, from, collection domain.Address, tokenId domain.TokenId, data []byte) (Selector, error) {
	return f(c, operator, from, collection, tokenId, data)
}

// SandboxRegistry is a Registry that can also mint and manage approvals, it
// backs the service when no external registry is wired
type SandboxRegistry interface {
	Registry
	Mint(c ctx.Ctx, collection, to domain.Address, tokenId domain.TokenId) error
	Approve(c ctx.Ctx, collection, caller, operator domain.Address, tokenId domain.TokenId) error
	SetApprovalForAll(c ctx.Ctx, collection, owner, operator domain.Address, approved bool) error
	RegisterReceiver(account domain.Address, r Receiver)
}
