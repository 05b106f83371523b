package redis

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/database/redisclient"
	"github.com/x-xyz/escrow/base/metrics"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	im Service
}

func Test(t *testing.T) {
	if os.Getenv("REDIS_URI") == "" {
		t.Skip("REDIS_URI not set")
	}
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) SetupSuite() {
	pool := redisclient.MustConnectRedis(os.Getenv("REDIS_URI"), os.Getenv("REDIS_PASSWORD"))
	ts.im = New("test", metrics.New("redis"), &Pools{Src: pool})
}

func (ts *testsuite) TestSetGetDel() {
	k := "test:redis:key"
	v := []byte("value")

	ts.NoError(ts.im.Set(mockCtx, k, v, time.Minute))
	res, err := ts.im.Get(mockCtx, k)
	ts.NoError(err)
	ts.Equal(v, res)

	ttl, err := ts.im.TTL(mockCtx, k)
	ts.NoError(err)
	ts.True(ttl > 0 && ttl <= 60)

	n, err := ts.im.Del(mockCtx, k)
	ts.NoError(err)
	ts.Equal(1, n)

	_, err = ts.im.Get(mockCtx, k)
	ts.Equal(ErrNotFound, err)

	exists, err := ts.im.Exists(mockCtx, k)
	ts.NoError(err)
	ts.False(exists)
}

func (ts *testsuite) TestForever() {
	k := "test:redis:forever"
	ts.NoError(ts.im.Set(mockCtx, k, []byte("v"), Forever))
	_, err := ts.im.TTL(mockCtx, k)
	ts.Equal(ErrNoTTL, err)
	_, err = ts.im.Del(mockCtx, k)
	ts.NoError(err)
}

func (ts *testsuite) TestPublishWithoutSubscribers() {
	n, err := ts.im.Publish(mockCtx, "test:redis:channel", []byte("{}"))
	ts.NoError(err)
	ts.Equal(0, n)
}

func TestNoPool(t *testing.T) {
	im := New("test", metrics.New("redis"), nil)
	_, err := im.Get(mockCtx, "key")
	if err != ErrNoPool {
		t.Fatalf("expected ErrNoPool, got %v", err)
	}
}
