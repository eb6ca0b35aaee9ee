// Package main is the entry point for the classichub-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"classichub-service/internal/app/bootstrap"
	"classichub-service/internal/config"
	"classichub-service/internal/job"
	"classichub-service/internal/logger"
	"classichub-service/internal/transport/httpserver"
	"classichub-service/internal/validator"
)

func main() {
	cfg, err := config.Load(os.Getenv("APP_CONFIG"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.App.Name, cfg.Logger, cfg.Sentry)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting classichub-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.Bool("database", cfg.Database.Enabled),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("relay", cfg.Relay.Enabled),
	)

	ctx := context.Background()
	app, err := bootstrap.Build(ctx, cfg, log.Logger, bootstrap.Options{})
	if err != nil {
		log.Fatal("failed to build application", zap.Error(err))
	}
	defer app.Close()

	server, err := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:           cfg.App.Port,
			BodyLimit:      cfg.App.BodyLimit,
			RequestTimeout: cfg.App.RequestTimeout,
			Location:       cfg.App.Location(),
		},
		httpserver.Dependencies{
			Performances: app.Performances,
			Artists:      app.Artists,
			News:         app.News,
			Media:        app.Media,
			Stores:       app.Stores,
			Relay:        app.Relay,
			Metrics:      app.Registry,
			Checks:       app.Checks(),
			Validator:    validator.New(),
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to create server", zap.Error(err))
	}

	// Cache warmer with distributed locking
	var warmer *job.CacheWarmer
	if cfg.Warmer.Enabled {
		warmer = job.NewCacheWarmer(
			map[string]job.Target{
				"performances": app.Performances,
				"artists":      app.Artists,
				"news":         app.News,
			},
			job.WarmerConfig{
				Interval: cfg.Warmer.Interval,
				Timeout:  cfg.Warmer.Timeout,
			},
			app.Locker,
			app.Metrics,
			log.Logger,
		)
		warmer.Start(cfg.Warmer.OnStartup)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if warmer != nil {
			warmer.Stop()
		}

		if err := server.Shutdown(10 * time.Second); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
