package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"notifyprefs/internal/config"
	"notifyprefs/internal/events"
	"notifyprefs/internal/handlers"
	"notifyprefs/internal/logger"
	"notifyprefs/internal/metrics"
	"notifyprefs/internal/queue"
	"notifyprefs/internal/storage"
	"notifyprefs/internal/store"
	"notifyprefs/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if err := run(cfg, &log); err != nil {
		log.Fatal().Err(err).Msg("service failed")
	}
}

func run(cfg *config.Config, log *zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	slot, err := openStorage(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer slot.Close()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promRegistry)

	registry := store.NewRegistry(slot, store.RegistryConfig{
		Namespace: cfg.Storage.Namespace,
		SeedDemo:  cfg.Store.SeedDemo,
		IdleTTL:   cfg.Store.IdleTTL,
		Location:  loc,
	}, log, m)

	scheduler := worker.NewScheduler(registry, cfg.Store.FlushInterval, log)
	scheduler.Start(ctx)

	var processor *worker.Processor
	if cfg.RabbitMQ.Enabled {
		queueManager, err := queue.NewManager(queue.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Workers:  cfg.RabbitMQ.Workers,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create RabbitMQ manager: %w", err)
		}

		adapter := events.NewAdapter(registry, cfg.Events.DefaultUser, log, m)
		processor = worker.NewProcessor(adapter, queueManager, log)
		if err := processor.Start(ctx); err != nil {
			queueManager.Close()
			return err
		}
	}

	router := handlers.NewRouter(registry, log, handlers.RouterConfig{
		Timeout: cfg.Server.Timeout,
		Metrics: promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{Registry: promRegistry}),
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("storage", cfg.Storage.Driver).Msg("API server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down server")
	}
	if processor != nil {
		if err := processor.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event processor")
		}
	}
	scheduler.Stop()
	if err := registry.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush stores on shutdown")
	}
	return nil
}

func openStorage(cfg config.StorageConfig, log *zerolog.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case "redis":
		s, err := storage.NewRedisStorage(cfg.RedisAddr, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return s, nil
	case "sqlite":
		s, err := storage.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		return s, nil
	default:
		return storage.NewMemoryStorage(), nil
	}
}
