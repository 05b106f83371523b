package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/base/database/mongoclient"
	"github.com/x-xyz/escrow/base/database/redisclient"
	"github.com/x-xyz/escrow/base/goroutine"
	"github.com/x-xyz/escrow/base/log"
	"github.com/x-xyz/escrow/base/metrics"
	bValidator "github.com/x-xyz/escrow/base/validator"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/activity"
	"github.com/x-xyz/escrow/domain/keys"
	"github.com/x-xyz/escrow/domain/listing"
	mmiddleware "github.com/x-xyz/escrow/middleware"
	"github.com/x-xyz/escrow/service/cache"
	"github.com/x-xyz/escrow/service/cache/provider"
	"github.com/x-xyz/escrow/service/cache/provider/primitive"
	redisProvider "github.com/x-xyz/escrow/service/cache/provider/redis"
	"github.com/x-xyz/escrow/service/discord"
	sLedger "github.com/x-xyz/escrow/service/ledger"
	"github.com/x-xyz/escrow/service/notifier"
	"github.com/x-xyz/escrow/service/query"
	"github.com/x-xyz/escrow/service/redis"
	sRegistry "github.com/x-xyz/escrow/service/registry"
	activity_delivery "github.com/x-xyz/escrow/stores/activity/delivery/http"
	activity_repository "github.com/x-xyz/escrow/stores/activity/repository"
	activity_usecase "github.com/x-xyz/escrow/stores/activity/usecase"
	auth_delivery "github.com/x-xyz/escrow/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/escrow/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/escrow/stores/auth/usecase"
	hc_delivery "github.com/x-xyz/escrow/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/escrow/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/escrow/stores/healthcheck/usecase"
	listing_delivery "github.com/x-xyz/escrow/stores/listing/delivery/http"
	listing_repository "github.com/x-xyz/escrow/stores/listing/repository"
	listing_usecase "github.com/x-xyz/escrow/stores/listing/usecase"
	sandbox_delivery "github.com/x-xyz/escrow/stores/sandbox/delivery/http"
)

// MB
const nonceCacheSize = 16

func init() {
	configFile := pflag.String("config", "infra/configs/config.yaml", "path of the yaml config")
	pflag.Parse()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configFile)
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	if err := log.Init(viper.GetBool("debug")); err != nil {
		panic(err)
	}
	if viper.GetBool("debug") {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

//	@title			Escrow Exchange API
//	@version		1.0
//	@description	Fixed price escrow listings for non-fungible assets.

// main
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				retrive token from #/auth/post_auth_sign and apply with `bearer {token}`
func main() {
	defer log.Sync()
	bCtx := ctx.Background()

	e := echo.New()
	e.HideBanner = true
	middL := mmiddleware.InitMiddleware()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	var (
		mongoClient  *mongoclient.Client
		listingRepo  listing.Repo
		activityRepo activity.Repo
	)
	driver := viper.GetString("store.driver")
	if err := checkStore(driver, viper.GetBool("store.allowVolatileCustody")); err != nil {
		log.Log().WithFields(log.Fields{"driver": driver, "err": err}).Panic("store rejected")
	}
	switch driver {
	case driverMongo:
		uri := viper.GetString("mongo.uri")
		authDBName := viper.GetString("mongo.authDBName")
		dbName := viper.GetString("mongo.dbName")
		enableSSL := viper.GetBool("mongo.enableSSL")
		mongoClient = mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
		q := query.New(mongoClient)
		if viper.GetBool("mongo.checkIndex") {
			if err := listing_repository.EnsureIndexes(bCtx, q); err != nil {
				log.Log().WithField("err", err).Panic("listing indexes failed")
			}
			if err := activity_repository.EnsureIndexes(bCtx, q); err != nil {
				log.Log().WithField("err", err).Panic("activity indexes failed")
			}
		}
		listingRepo = listing_repository.NewListingRepo(q)
		activityRepo = activity_repository.NewActivityRepo(q)
	default:
		listingRepo = listing_repository.NewMemoryRepo()
		activityRepo = activity_repository.NewMemoryRepo()
	}

	var (
		redisCache redis.Service
		nonceCache provider.Provider
	)
	if uri := viper.GetString("redis.uri"); uri != "" {
		pool := redisclient.MustConnectRedis(uri, viper.GetString("redis.password"), redisclient.RedisParam{
			PoolMultiplier: viper.GetFloat64("redis.poolMultiplier"),
			Retry:          true,
		})
		redisCache = redis.New("redis", metrics.New("redis"), &redis.Pools{Src: pool})
		nonceCache = redisProvider.NewRedis(redisCache)
	} else {
		nonceCache = primitive.NewPrimitive("nonce", nonceCacheSize)
	}

	registry := sRegistry.New()
	ledger := sLedger.New()

	events := notifier.New(&notifier.Config{
		Workers:     viper.GetInt("notifier.workers"),
		QueueLength: viper.GetInt("notifier.queueLength"),
	})
	decimals := viper.GetInt32("escrow.decimals")
	activityUsecase := activity_usecase.New(&activity_usecase.Config{
		Repo:     activityRepo,
		Decimals: decimals,
	})
	events.Subscribe(activityUsecase)
	if redisCache != nil {
		events.Subscribe(notifier.NewRedisChannel(redisCache, keys.ChannelEvents))
	}
	if botKey := viper.GetString("discord.botKey"); botKey != "" {
		bot, err := discord.New(discord.Config{
			BotKey:    botKey,
			ChannelId: viper.GetString("discord.channelId"),
			Symbol:    viper.GetString("escrow.symbol"),
			Decimals:  decimals,
			AssetUrl:  viper.GetString("discord.assetUrl"),
		})
		if err != nil {
			log.Log().WithField("err", err).Panic("discord.New failed")
		}
		events.Subscribe(bot)
	}

	address := domain.Address(viper.GetString("escrow.address"))
	if !common.IsHexAddress(string(address)) {
		log.Log().WithField("address", address).Panic("invalid escrow.address")
	}
	engine := listing_usecase.New(&listing_usecase.Config{
		Address:   address,
		Repo:      listingRepo,
		Registry:  registry,
		Ledger:    ledger,
		Publisher: events,
	})
	registry.RegisterReceiver(engine.Address(), engine)

	auth := auth_usecase.New(&auth_usecase.Config{
		JwtSecret:          viper.GetString("auth.jwtSecret"),
		SigningMsgTemplate: viper.GetString("auth.signingMsgTemplate"),
		Nonces: cache.New(cache.ServiceConfig{
			Ttl:   viper.GetDuration("auth.nonceTTL"),
			Pfx:   keys.PfxNonce,
			Cache: nonceCache,
		}),
		TokenTTL: viper.GetDuration("auth.tokenTTL"),
	})
	authMiddleware := auth_middleware.New(auth, viper.GetStringSlice("admin.addresses"))

	hc_delivery.New(e, hc_usecase.New(hc_repo.New(mongoClient, redisCache)))
	auth_delivery.New(e, auth, viper.GetString("auth.signingMsgTemplate"))
	auth_delivery.NewCheck(e, authMiddleware)
	listing_delivery.New(e, engine, authMiddleware)
	activity_delivery.New(e, activityUsecase)
	sandbox_delivery.New(e, registry, ledger, authMiddleware)

	serverAddr := fmt.Sprintf(":%d", viper.GetInt("http.port"))
	goroutine.RecoverableGo(func() {
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	})

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	sc, cancel := ctx.WithTimeout(bCtx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sc); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
	events.Close()
}
