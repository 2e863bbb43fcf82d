package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	server "ayurveda_resorts/internal/adapters/http_server"
	"ayurveda_resorts/internal/adapters/objectstore"
	"ayurveda_resorts/internal/adapters/observability"
	redisad "ayurveda_resorts/internal/adapters/redis"
	"ayurveda_resorts/internal/app"
	"ayurveda_resorts/internal/shared"
	mysqlrepo "ayurveda_resorts/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; continuing without a warm cache")
	}

	catalog := app.NewCatalogService(repo, cache, cfg.CacheTTL)
	if err := catalog.Init(ctx); err != nil {
		log.Error().Err(err).Msg("initial catalog load failed; serving defaults")
	}

	bookings := app.NewBookingService(repo, cfg.ContactPhone)
	editors := app.NewEditorRegistry(repo, catalog)

	h := &server.Handlers{
		Catalog:             catalog,
		Bookings:            bookings,
		Editors:             editors,
		Carousel:            app.Carousel{Interval: cfg.CarouselInterval},
		Bucket:              cfg.StorageBucket,
		UploadMaxEdge:       cfg.UploadMaxEdge,
		UploadMaxBytes:      cfg.UploadMaxBytes,
		UploadSlots:         semaphore.NewWeighted(int64(max(cfg.UploadConcurrency, 1))),
		ContactPhoneDisplay: cfg.ContactPhoneDisplay,
		BookingRatePerMin:   cfg.BookingRatePerMin,
		Deps:                map[string]server.Pinger{"mysql": repo, "redis": cache},
	}

	if cfg.JWTSecret != "" {
		auth := app.NewAuthService(repo, cache, cfg.JWTSecret)
		events, cancel := auth.Subscribe()
		defer cancel()
		go editors.Follow(events)
		go editors.Sweep(ctx, time.Minute)
		h.Auth = auth
	}

	if cfg.StorageURL != "" && cfg.StorageKey != "" {
		objects, err := objectstore.New(cfg.StorageURL, cfg.StorageKey, cfg.StorageRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object store client")
		}
		h.Objects = objects
	}

	// http
	srv := server.New()
	if cfg.MetricsAddr == "" {
		srv.Mount("/metrics", observability.MetricsHandler(reg))
	}
	srv.MountHandlers(h)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
		// hero streams end with the signal instead of holding Shutdown open
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if err := bookings.Drain(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending booking inserts abandoned")
	}
}
