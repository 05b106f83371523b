package listing

import (
	"errors"
	"math/big"
	"time"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/asset"
)

var (
	// validation
	ErrInvalidPrice  = errors.New("price must be positive")
	ErrWrongPayment  = errors.New("payment does not match price")
	ErrInvalidId     = errors.New("invalid listing id")
	ErrInvalidCaller = errors.New("invalid caller")

	// authorization
	ErrNotOwner  = errors.New("caller does not own the asset")
	ErrNotSeller = errors.New("caller is not the seller")

	// state conflict
	ErrAlreadyListed = errors.New("asset already listed")
	ErrNotListed     = errors.New("asset not listed")

	// collaborator failures
	ErrCustodyTransferFailed = errors.New("custody transfer failed")
	ErrReturnTransferFailed  = errors.New("return transfer failed")
	ErrPaymentFailed         = errors.New("payment collection failed")
	ErrPayoutFailed          = errors.New("payout failed")
)

// StepError reports which step of an operation a collaborator failed in.
// errors.Is matches both the step sentinel and the collaborator's cause.
type StepError struct {
	Step error
	Err  error
}

func (e *StepError) Error() string {
	return e.Step.Error() + ": " + e.Err.Error()
}

func (e *StepError) Is(target error) bool {
	return target == e.Step
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Id addresses one asset of one collection
type Id struct {
	Collection domain.Address `json:"collection" bson:"collection"`
	TokenId    domain.TokenId `json:"tokenId" bson:"tokenId"`
}

// Normalize lower-cases the collection and canonicalizes the token id so two
// spellings of the same asset share one listing
func (id Id) Normalize() (Id, error) {
	if id.Collection.IsEmpty() {
		return Id{}, ErrInvalidId
	}
	tokenId, err := id.TokenId.Normalize()
	if err != nil {
		return Id{}, ErrInvalidId
	}
	return Id{Collection: id.Collection.ToLower(), TokenId: tokenId}, nil
}

// Listing is an offer to sell one escrowed asset at a fixed price. Inactive
// listings keep the last seller and price for historical queries.
type Listing struct {
	Id        Id             `json:"id"`
	Seller    domain.Address `json:"seller"`
	Price     *big.Int       `json:"price"`
	Active    bool           `json:"active"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Empty is what GetListing answers for an asset that was never listed
func Empty(id Id) *Listing {
	return &Listing{
		Id:     id,
		Seller: domain.EmptyAddress,
		Price:  big.NewInt(0),
		Active: false,
	}
}

func (l *Listing) Clone() *Listing {
	res := *l
	if l.Price != nil {
		res.Price = new(big.Int).Set(l.Price)
	}
	return &res
}

type Repo interface {
	// FindOne returns domain.ErrNotFound for a never listed asset
	FindOne(c ctx.Ctx, id Id) (*Listing, error)
	Upsert(c ctx.Ctx, l *Listing) error
	Delete(c ctx.Ctx, id Id) error
}

// UseCase is the listing registry and settlement engine.
//
// Operations are serialised. A collaborator hook that calls back into the
// engine while an operation is running must pass on the ctx it was handed,
// that ctx marks the call as nested so it runs inside the outer operation.
type UseCase interface {
	List(c ctx.Ctx, id Id, price *big.Int, caller domain.Address) error
	Buy(c ctx.Ctx, id Id, payment *big.Int, caller domain.Address) error
	CancelListing(c ctx.Ctx, id Id, caller domain.Address) error
	GetListing(c ctx.Ctx, id Id) (*Listing, error)

	// Address is the account holding escrowed assets and payments
	Address() domain.Address

	asset.Receiver
}
