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

	"github.com/iliyamo/maker-accounts/internal/config"
	"github.com/iliyamo/maker-accounts/internal/database"
	"github.com/iliyamo/maker-accounts/internal/handler"
	"github.com/iliyamo/maker-accounts/internal/logging"
	"github.com/iliyamo/maker-accounts/internal/middleware"
	"github.com/iliyamo/maker-accounts/internal/queue"
	"github.com/iliyamo/maker-accounts/internal/repository"
	"github.com/iliyamo/maker-accounts/internal/router"
	"github.com/iliyamo/maker-accounts/internal/service"
	"github.com/iliyamo/maker-accounts/internal/session"
	"github.com/iliyamo/maker-accounts/internal/utils"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	bootLog := logging.New(os.Getenv("APP_ENV"))
	cfg, err := config.Load()
	if err != nil {
		bootLog.Error(context.Background(), "load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logging.SlogLogger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var sessStore session.Store
	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
		sessStore = session.NewRedisStore(rdb, cfg.SessionPrefix)
	} else {
		log.Warn(ctx, "redis unreachable, using in-process sessions and no list cache")
		sessStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessStore, cfg.SessionSecret, cfg.SessionTTL)
	cache := middleware.NewResponseCache(cfg.AccountsCache, rdb)

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.AMQPURL)
	}

	hasher := utils.NewBcryptHasher(cfg.BcryptCost)
	auth := service.NewAuthenticator(store, hasher)
	accounts := service.NewAccountService(store, hasher, sessions, events, log)
	ledger := service.NewQuotaLedger(store)

	if cfg.EventsEnabled {
		go func() {
			err := queue.StartStorageReleasedConsumer(ctx, cfg.AMQPURL, ledger, log)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "storage.released consumer stopped", "error", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, sessions, cache, cfg.CookieSecure, log))
	router.RegisterAccount(e, sessions,
		handler.NewAccountHandler(accounts, sessions, cache, cfg.CookieSecure, log),
		handler.NewStorageHandler(ledger, log))

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info(shutdownCtx, "shutting down")
	return e.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, log *logging.SlogLogger) (service.AccountStore, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn(ctx, "using in-memory account store; data is lost on restart")
		return repository.NewMemoryAccountRepo(), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository.NewAccountRepo(db), func() { _ = db.Close() }, nil
}
