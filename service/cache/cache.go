package cache

import (
	"time"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/metrics"
	"github.com/x-xyz/escrow/service/cache/provider"
)

// ErrNotFound is the provider sentinel so callers need not import provider
var ErrNotFound = provider.ErrNotFound

type Serializer func(interface{}) ([]byte, error)

type Deserializer func([]byte, interface{}) error

// Service is a typed view over a Provider. Every key is put under Pfx and
// every value lives for Ttl.
type Service interface {
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
}

type ServiceConfig struct {
	Ttl   time.Duration
	Pfx   string
	Cache provider.Provider
	// Metrics defaults to a client tagged with Pfx
	Metrics     metrics.Service
	Serialize   Serializer
	Deserialize Deserializer
}
