package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinema-session-booking/internal/config"
	"github.com/iliyamo/cinema-session-booking/internal/database"
	"github.com/iliyamo/cinema-session-booking/internal/handler"
	"github.com/iliyamo/cinema-session-booking/internal/middleware"
	"github.com/iliyamo/cinema-session-booking/internal/queue"
	"github.com/iliyamo/cinema-session-booking/internal/registry"
	"github.com/iliyamo/cinema-session-booking/internal/router"
	"github.com/iliyamo/cinema-session-booking/internal/service"
	"github.com/iliyamo/cinema-session-booking/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store setup failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	reg, err := registry.New(ctx, st, logger)
	if err != nil {
		logger.Error("loading sessions failed", "err", err)
		os.Exit(1)
	}

	// Redis is optional; a nil client turns cache and rate limit into pass-throughs.
	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	mws := router.Middlewares{
		Cache:      middleware.NewRedisCache(cacheCfg, rdb),
		Invalidate: middleware.NewCacheInvalidator(cacheCfg, rdb),
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	}

	wg := new(sync.WaitGroup)
	qcfg := config.LoadQueueConfig()
	events := &service.Notifier{Publisher: service.NopPublisher{}, Log: logger}
	if qcfg.Enabled {
		events.Publisher = &service.AMQPPublisher{URL: qcfg.URL, Queue: qcfg.Name, Log: logger}
		if qcfg.RunConsumer {
			consumer := &queue.Consumer{URL: qcfg.URL, Queue: qcfg.Name, LogDir: qcfg.LogDir, Log: logger}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("event consumer stopped", "err", err)
				}
			}()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLog(logger))

	router.RegisterRoutes(e, handler.NewSessionHandler(reg, events), mws)
	router.RegisterStatic(e, cfg.PublicDir)

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("server started at http://"+cfg.Addr(), "env", cfg.Env, "store", cfg.StoreDriver)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen failed", "err", err)
			cancel()
		}
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-exit:
		logger.Info("signal caught", "sig", sig)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	// Handlers are done; let their events reach the broker.
	events.Wait()
	wg.Wait()
}

// openStore picks the persistence backend named by STORE_DRIVER.  The
// returned func releases whatever the store holds open.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewSQLStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, func() { _ = db.Close() }, nil
	case config.StoreMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.StoreFile, "":
		s := store.NewFileStore(cfg.DataFile, store.WithAtomicWrite(cfg.AtomicWrite), store.WithLogger(logger))
		logger.Info("using file store", "path", s.Path(), "atomic", cfg.AtomicWrite)
		return s, func() {}, nil
	default:
		return nil, nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
	}
}
