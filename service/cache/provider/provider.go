package provider

import (
	"errors"
	"time"

	"github.com/x-xyz/escrow/base/ctx"
)

// ErrNotFound is returned for a missing or expired key
var ErrNotFound = errors.New("cache: key not found")

// Provider stores raw bytes under already prefixed keys. Get reports the
// remaining ttl, zero when the key never expires.
type Provider interface {
	Get(c ctx.Ctx, key string) ([]byte, time.Duration, error)
	Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error
	Del(c ctx.Ctx, key string) error
}
