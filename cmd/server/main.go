package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "github.com/lyvo/session-gateway/docs"
	"github.com/lyvo/session-gateway/internal/api"
	"github.com/lyvo/session-gateway/internal/api/handler"
	"github.com/lyvo/session-gateway/internal/core/navigation"
	"github.com/lyvo/session-gateway/internal/core/service"
	mongodb "github.com/lyvo/session-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/lyvo/session-gateway/internal/infrastructure/db/redis"
	"github.com/lyvo/session-gateway/internal/infrastructure/queue"
	"github.com/lyvo/session-gateway/internal/pkg/config"
	"github.com/lyvo/session-gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                       Lyvo Session Gateway API
// @version                     1.0
// @description                 Session authorization and redirect engine for the Lyvo SPA.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "session-gateway",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("session gateway stopped")
		os.Exit(1)
	}
	log.Info().Msg("session gateway exited")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// 1. Storage
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongodb.Disconnect(mongoClient, shutdownTimeout); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	authRepo := mongodb.NewAuthRepository(db)
	if err := authRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	auditRepo := mongodb.NewSessionAuditRepository(db)

	// 2. Session synchronization: local events go straight to the bus,
	// storage changes from every process come back through the change feed.
	bus := service.NewEventBus(logger.Component("event_bus"))
	defer bus.Close()
	dispatcher := queue.NewDispatcher(cfg.EventWorkers, bus, logger.Component("dispatcher"))
	feed := redisdb.NewChangeFeed(rdb, cfg.Redis.Prefix, dispatcher, logger.Component("change_feed"))

	kv := redisdb.NewKVStore(rdb, cfg.Redis.Prefix)
	store := service.NewSessionStore(kv, logger.Component("session_store"))

	// 3. Services
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, cfg.TokenTTL)
	sessions := service.NewSessionService(authService, store, bus, auditRepo, logger.Component("session_service"))
	tabs := navigation.NewRegistry(store, bus, logger.Component("navigation"))

	// 4. HTTP
	router := api.NewRouter(api.RouterDeps{
		Log:          logger.Component("http"),
		JWTSecret:    cfg.JWTSecret,
		CookieSecure: cfg.CookieSecure,
		SPADir:       cfg.SPADir,
		Auth:         authService,
		Sessions:     sessions,
		Store:        store,
		Tabs:         tabs,
		Health: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Start(gctx)
		<-gctx.Done()
		return nil
	})
	g.Go(func() error {
		return feed.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("session gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		// Open tab streams end here; their clients reconnect elsewhere.
		bus.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
