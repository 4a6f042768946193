package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/swapi-mirror/internal/config"
	"github.com/iliyamo/swapi-mirror/internal/database"
	"github.com/iliyamo/swapi-mirror/internal/handler"
	"github.com/iliyamo/swapi-mirror/internal/job"
	"github.com/iliyamo/swapi-mirror/internal/logger"
	"github.com/iliyamo/swapi-mirror/internal/middleware"
	"github.com/iliyamo/swapi-mirror/internal/queue"
	"github.com/iliyamo/swapi-mirror/internal/repository"
	"github.com/iliyamo/swapi-mirror/internal/router"
	"github.com/iliyamo/swapi-mirror/internal/service"
	"github.com/iliyamo/swapi-mirror/internal/swapi"
	"github.com/iliyamo/swapi-mirror/internal/utils"
)

func fatal(format string, args ...any) {
	logger.Errorf(format, args...)
	os.Exit(1)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warningf("reading .env: %v", err)
	}
	cfg := config.Load()
	logger.Init(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := utils.NewSessionCodec(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		fatal("session codec: %v", err)
	}

	dbc := cfg.DB()
	db, err := database.Open(dbc.User, dbc.Pass, dbc.Host, dbc.Port, dbc.Name)
	if err != nil {
		fatal("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		fatal("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	resources := repository.NewResourceRepo(db)

	ledger, err := service.NewLedger(codec, tokens, cfg.APITokenBudget, cfg.APITokenTTL)
	if err != nil {
		fatal("ledger: %v", err)
	}

	syncCfg := config.LoadSyncConfig()
	var events service.EventPublisher
	if p := service.NewSyncPublisher(cfg.RabbitURL); p != nil {
		events = p
		go func() {
			if err := queue.StartSyncConsumer(ctx, cfg.RabbitURL, syncCfg.LogDir); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("sync consumer stopped: %v", err)
			}
		}()
	} else {
		logger.Noticef("RABBITMQ_URL not set; sync events are not published")
	}
	syncer := service.NewSynchronizer(swapi.NewClient(syncCfg.BaseURL, syncCfg.Timeout), resources, events)

	if syncCfg.Schedule != "" {
		sched, err := job.NewScheduler(syncCfg.Schedule, job.NewSyncJob(syncer, time.Hour))
		if err != nil {
			fatal("%v", err)
		}
		sched.Start()
		defer sched.Stop()
		logger.Infof("scheduled sync enabled: %s", syncCfg.Schedule)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Noticef("redis unreachable; rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = handler.JSONSerializer{}
	e.Use(echomw.Recover(), middleware.RequestID(), middleware.AccessLog())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(users, codec, ledger, cfg.BcryptCost),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterUser(e, handler.NewUserHandler(users, cfg.BcryptCost), codec)
	router.RegisterAdmin(e, handler.NewAdminHandler(syncer, resources), codec)
	router.RegisterResources(e, handler.NewResourceHandler(service.NewReader(resources), cfg.PublicBaseURL),
		ledger, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	addr := ":" + cfg.Port
	go func() {
		logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	logger.Infof("stopped")
}
