package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	attachcount "caseguard-backend"
	"caseguard-backend/internal/api"
	"caseguard-backend/internal/bus"
	"caseguard-backend/internal/config"
	"caseguard-backend/internal/limiter"
	"caseguard-backend/internal/metrics"
	"caseguard-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL, cfg.RequestTimeout)
	if err != nil {
		logger.Error("failed to connect to db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	repo := storage.NewRepository(store)

	counter, closeCounter, err := buildCounter(cfg, repo)
	if err != nil {
		logger.Error("failed to init counter", slog.String("mode", cfg.Counter.Mode), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeCounter()

	publisher, err := bus.NewPublisher(cfg.NatsURL)
	if err != nil {
		logger.Error("failed to connect to nats", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer publisher.Close()

	handler := &api.Handler{
		Repo:    repo,
		Counter: metrics.NewTrackedService(counter),
		Bus:     publisher,
		Limits:  cfg.Limits,
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	handler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info("caseguard listening",
		slog.String("port", cfg.Port),
		slog.String("counterMode", cfg.Counter.Mode),
		slog.Int("maxAlertsPerCase", cfg.Limits.MaxAlertsPerCase),
		slog.Int("maxFilesPerCase", cfg.Limits.MaxFilesPerCase),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("error", err.Error()))
	}
}

func buildCounter(cfg config.Config, repo *storage.Repository) (limiter.AttachmentService, func(), error) {
	switch cfg.Counter.Mode {
	case config.CounterModeRemote:
		return api.CounterClient{BaseURL: cfg.Counter.URL}, func() {}, nil
	case config.CounterModeSQL:
		counter, err := attachcount.NewCounter(cfg.Counter.Connection)
		if err != nil {
			return nil, nil, err
		}
		return counter, func() { _ = counter.Close() }, nil
	default:
		return repo, func() {}, nil
	}
}
