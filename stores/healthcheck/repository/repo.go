package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/database/mongoclient"
	hcdomain "github.com/x-xyz/escrow/domain/healthcheck"
	"github.com/x-xyz/escrow/domain/keys"
	"github.com/x-xyz/escrow/service/redis"
)

const pingTimeout = 2 * time.Second

type impl struct {
	mgoClient  *mongoclient.Client
	redisCache redis.Service
}

// New returns a repo checking the given stores, a nil store is not checked
// so the memory driver is always healthy.
func New(
	mgoClient *mongoclient.Client,
	redisCache redis.Service,
) hcdomain.HealthCheckRepo {
	return &impl{
		mgoClient:  mgoClient,
		redisCache: redisCache,
	}
}

func (im *impl) Ping(c ctx.Ctx) error {
	tc, cancel := ctx.WithTimeout(c, pingTimeout)
	defer cancel()

	if im.mgoClient != nil {
		if err := im.mgoClient.Ping(tc, readpref.Primary()); err != nil {
			c.WithField("err", err).Error("ping mongo failed")
			return err
		}
	}

	if im.redisCache != nil {
		if err := im.redisCache.Set(tc, keys.RedisKey(keys.PfxHealthCheck, "testset"), []byte("1"), 30*time.Second); err != nil {
			c.WithField("err", err).Error("test redis set failed")
			return err
		}
	}
	return nil
}
