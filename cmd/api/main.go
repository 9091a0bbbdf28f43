package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/events"
	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/adapters/security"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := mysqlrepo.Open(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()
	repo := mysqlrepo.New(db)

	auth := app.NewAuthService(repo,
		security.NewBcryptHasher(cfg.BcryptCost),
		security.NewTokenSigner(cfg.JWTSecret, cfg.TokenTTL))

	// connect, create tables and seed; the listener only opens after this succeeds
	startup := shared.Retry{Name: "database", Attempts: cfg.DBConnectAttempts, Delay: cfg.DBConnectDelay}
	if err := startup.Run(ctx, func(ctx context.Context) error {
		return prepareStore(ctx, cfg, db, repo, auth)
	}); err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}

	// cache (optional)
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed; cache calls will fall through")
		}
		cache = rc
	}

	// events (optional)
	var publisher domain.EventPublisher = events.Nop{}
	if cfg.RabbitURL != "" {
		p, err := events.Dial(cfg.RabbitURL)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable; booking events disabled")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	// http
	srv := server.New(cfg.CORSOrigins, cfg.TrustProxy)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Auth:        auth,
		Q:           app.NewQueryService(repo, cache, cfg.CacheTTL),
		Bookings:    app.NewBookingService(repo, repo, publisher),
		Catalog:     app.NewCatalogService(repo, cache),
		AuthLimiter: server.NewIPRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst),
		Ready:       func(ctx context.Context) error { return mysqlrepo.Ping(ctx, db) },
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func prepareStore(ctx context.Context, cfg shared.Config, db *sql.DB, repo *mysqlrepo.Repo, auth *app.AuthService) error {
	if err := mysqlrepo.Ping(ctx, db); err != nil {
		return err
	}
	if err := mysqlrepo.EnsureSchema(ctx, db); err != nil {
		return err
	}
	if cfg.SeedOnStart {
		if _, err := app.NewSeeder(repo, cfg.SeedWorkers).SeedIfEmpty(ctx); err != nil {
			return err
		}
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}
	return nil
}
