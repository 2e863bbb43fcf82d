package main

import (
	"context"
	"database/sql"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"ayurveda_resorts/internal/adapters/observability"
	"ayurveda_resorts/internal/app"
	"ayurveda_resorts/internal/shared"
	mysqlrepo "ayurveda_resorts/internal/storage/mysql"
)

// migrate applies the schema, rewrites stored content in the current
// layout and seeds the admin account from ADMIN_EMAIL/ADMIN_PASSWORD.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	dsn, err := mysqlrepo.MultiStatementDSN(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid MYSQL_DSN")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	// 2) schema
	if cfg.MigrationsDir != "" {
		files, err := mysqlrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir)
		if err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
		log.Info().Int("files", len(files)).Str("dir", cfg.MigrationsDir).Msg("schema applied")
	}

	repo := mysqlrepo.New(db)

	// 3) content: load whatever layout is stored, then save it back in the
	// current one. An empty table is seeded with the defaults.
	before, after, err := app.RewriteContent(ctx, repo)
	if err != nil {
		if se := app.AsSaveError(err); se != nil {
			log.Error().Msg(se.Guide())
		}
		if errors.Is(err, app.ErrContentUndecodable) {
			log.Fatal().Err(err).Msg("stored content left untouched; fix it by hand and rerun")
		}
		log.Fatal().Err(err).Msg("rewrite site content failed")
	}
	log.Info().
		Str("from", string(before)).
		Str("to", string(after.Schema)).
		Int("resorts", len(after.Resorts)).
		Int("hero", len(after.Hero)).
		Msg("content normalized")

	// 4) admin
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		log.Info().Msg("ADMIN_EMAIL/ADMIN_PASSWORD not set; skipping admin seed")
		return
	}
	hash, err := app.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("hash admin password failed")
	}
	if err := repo.UpsertAdmin(ctx, email, hash); err != nil {
		log.Fatal().Err(err).Msg("seed admin failed")
	}
	log.Info().Str("email", email).Msg("admin account ready")
}
