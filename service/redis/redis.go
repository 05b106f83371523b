package redis

import (
	"errors"
	"time"

	"github.com/x-xyz/escrow/base/ctx"
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis: key not found")
	// ErrNoTTL is returned by TTL when the key exists without an expire
	ErrNoTTL = errors.New("redis: key has no ttl")
	// ErrNoPool is returned when the service was built without a pool
	ErrNoPool = errors.New("redis: no pool")
)

// Forever stores a key without expire
const Forever time.Duration = 0

// Service is the subset of redis commands the api relies on
type Service interface {
	Get(c ctx.Ctx, key string) ([]byte, error)
	Set(c ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(c ctx.Ctx, keys ...string) (int, error)
	Exists(c ctx.Ctx, key string) (bool, error)
	// TTL returns the remaining seconds of key
	TTL(c ctx.Ctx, key string) (int, error)
	// Publish posts msg on channel and returns the number of receivers
	Publish(c ctx.Ctx, channel string, msg []byte) (int, error)
}
