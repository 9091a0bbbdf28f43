package main

import (
	"context"
	"errors"
	"flag"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/adapters/security"
	"hotel_booking/internal/app"
	"hotel_booking/internal/shared"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

// seed prepares a database out of band: tables, sample catalog and the
// optional admin account. It is safe to run repeatedly.
func main() {
	workers := flag.Int("workers", 0, "concurrent hotel inserts (default SEED_WORKERS)")
	flag.Parse()

	ctx := context.Background()
	cfg, err := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	if err != nil && !errors.Is(err, shared.ErrMissingSecret) {
		log.Fatal().Err(err).Msg("config")
	}
	if *workers > 0 {
		cfg.SeedWorkers = *workers
	}

	log.Info().Str("db", cfg.DBHost+"/"+cfg.DBName).Int("workers", cfg.SeedWorkers).Msg("seeder starting")

	db, err := mysqlrepo.Open(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	defer db.Close()

	startup := shared.Retry{Name: "database", Attempts: cfg.DBConnectAttempts, Delay: cfg.DBConnectDelay}
	if err := startup.Run(ctx, func(ctx context.Context) error {
		if err := mysqlrepo.Ping(ctx, db); err != nil {
			return err
		}
		return mysqlrepo.EnsureSchema(ctx, db)
	}); err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}

	repo := mysqlrepo.New(db)
	n, err := app.NewSeeder(repo, cfg.SeedWorkers).SeedIfEmpty(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	// the signing key is irrelevant here; no token is issued
	auth := app.NewAuthService(repo, security.NewBcryptHasher(cfg.BcryptCost), security.NewTokenSigner("unused", cfg.TokenTTL))
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("admin account failed")
		}
	}
	log.Info().Int("hotels", n).Msg("seeding completed")
}
