package notification

import (
	"math/big"
	"sync"
	"time"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
)

type Type string

const (
	TypeListed    Type = "listed"
	TypeSold      Type = "sold"
	TypeCancelled Type = "cancelled"
)

// Event is a notification emitted by a committed listing operation
type Event struct {
	Id         string         `json:"id"`
	Type       Type           `json:"type"`
	Collection domain.Address `json:"collection"`
	TokenId    domain.TokenId `json:"tokenId"`
	Seller     domain.Address `json:"seller"`
	Buyer      domain.Address `json:"buyer,omitempty"`
	Price      *big.Int       `json:"price,omitempty"`
	Time       time.Time      `json:"time"`
}

// Publisher delivers committed events
type Publisher interface {
	Publish(c ctx.Ctx, events ...Event) error
}

// Subscriber consumes events one at a time
type Subscriber interface {
	Name() string
	Handle(c ctx.Ctx, event Event) error
}

// Recorder is a synchronous in-memory Publisher
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(c ctx.Ctx, events ...Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]Event, len(r.events))
	copy(res, r.events)
	return res
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
