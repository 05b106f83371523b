package cache

import (
	"encoding/json"
	"time"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/base/metrics"
	"github.com/x-xyz/escrow/domain/keys"
	"github.com/x-xyz/escrow/service/cache/provider"
)

type impl struct {
	ttl         time.Duration
	pfx         string
	cache       provider.Provider
	met         metrics.Service
	serialize   Serializer
	deserialize Deserializer
}

func New(config ServiceConfig) Service {
	im := &impl{
		ttl:         config.Ttl,
		pfx:         config.Pfx,
		cache:       config.Cache,
		met:         config.Metrics,
		serialize:   config.Serialize,
		deserialize: config.Deserialize,
	}
	if im.met == nil {
		im.met = metrics.New("cache")
	}
	if im.serialize == nil {
		im.serialize = json.Marshal
	}
	if im.deserialize == nil {
		im.deserialize = json.Unmarshal
	}
	return im
}

func (im *impl) fail(c ctx.Ctx, op, key string, err error) error {
	c.WithFields(log.Fields{"err": err, "key": key}).Error(op + " failed")
	im.met.BumpSum(op+".err", 1, "pfx", im.pfx)
	return err
}

func (im *impl) Get(c ctx.Ctx, key string, container interface{}) error {
	key = keys.RedisKey(im.pfx, key)

	val, _, err := im.cache.Get(c, key)
	switch {
	case err == provider.ErrNotFound:
		im.met.BumpSum("get.miss", 1, "pfx", im.pfx)
		return ErrNotFound
	case err != nil:
		return im.fail(c, "cache.Get", key, err)
	}
	im.met.BumpSum("get.hit", 1, "pfx", im.pfx)

	if err := im.deserialize(val, container); err != nil {
		return im.fail(c, "deserialize", key, err)
	}
	return nil
}

func (im *impl) Set(c ctx.Ctx, key string, value interface{}) error {
	key = keys.RedisKey(im.pfx, key)

	val, err := im.serialize(value)
	if err != nil {
		return im.fail(c, "serialize", key, err)
	}
	if err := im.cache.Set(c, key, val, im.ttl); err != nil {
		return im.fail(c, "cache.Set", key, err)
	}
	return nil
}

// Del removes key, a missing key is not an error
func (im *impl) Del(c ctx.Ctx, key string) error {
	key = keys.RedisKey(im.pfx, key)

	if err := im.cache.Del(c, key); err != nil && err != provider.ErrNotFound {
		return im.fail(c, "cache.Del", key, err)
	}
	return nil
}
