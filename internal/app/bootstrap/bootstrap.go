// Package bootstrap builds the application graph shared by the API server
// and the operator CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classichub-service/internal/app/assembly"
	"classichub-service/internal/app/service"
	"classichub-service/internal/config"
	"classichub-service/internal/domain"
	"classichub-service/internal/infra/postgres"
	"classichub-service/internal/infra/postgres/migrations"
	"classichub-service/internal/infra/provider/registry"
	rediscache "classichub-service/internal/infra/redis"
	"classichub-service/internal/metrics"
	"classichub-service/internal/relay"
	"classichub-service/internal/store"
	"classichub-service/pkg/locker"
)

// App is the wired application.
type App struct {
	Config *config.Config

	Registry  *prometheus.Registry
	Metrics   *metrics.Collector
	DB        *gorm.DB          // nil when the database is disabled
	Redis     *redis.Client     // nil when Redis is disabled
	Cache     *rediscache.Cache // nil when the snapshot tier is disabled
	Providers *registry.Providers
	Stores    *service.Stores
	Assembler *assembly.Assembler
	Relay     *relay.Relay // nil when the relay is disabled
	Locker    locker.DistributedLocker

	Performances *service.PerformanceService
	Artists      *service.ArtistService
	News         *service.NewsService
	Media        *service.MediaService

	logger *zap.Logger
}

// Options adjusts Build for the caller.
type Options struct {
	// SkipMigrations leaves the schema untouched. The CLI migrates explicitly.
	SkipMigrations bool
}

// Build connects the infrastructure and wires every service. Close must be
// called on the returned App even when only part of it is used.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.NewCollector(a.Registry)

	if err := a.connect(ctx, opts); err != nil {
		a.Close()

		return nil, err
	}

	var cache domain.Cache
	if a.Redis != nil && cfg.Cache.Enabled {
		a.Cache = rediscache.NewCache(a.Redis, logger, cfg.Cache.KeyPrefix)
		cache = a.Cache
		logger.Info("snapshot cache enabled", zap.String("key_prefix", cfg.Cache.KeyPrefix))
	}

	a.Providers = registry.NewProviders(cfg.Provider, cfg.Credentials, logger, a.Metrics)
	a.Stores = service.NewStores(service.StoreSettings{
		PerformanceTTL: cfg.Store.PerformanceTTL,
		DetailTTL:      cfg.Store.DetailTTL,
		FacilityTTL:    cfg.Store.FacilityTTL,
		ArtistTTL:      cfg.Store.ArtistTTL,
		ComposerTTL:    cfg.Store.ComposerTTL,
		NewsTTL:        cfg.Store.NewsTTL,
		VideoTTL:       cfg.Store.VideoTTL,
	}, cache, a.Metrics, logger, time.Now)

	a.Assembler = assembly.New(assembly.Options{
		Metadata:     a.Providers.Metadata,
		Encyclopedia: a.Providers.Encyclopedia,
		Catalog:      a.Providers.Catalog,
		Details:      a.Stores.Details,
		Facilities:   a.Stores.Facilities,
		Concurrency:  cfg.Store.Concurrency,
		Logger:       logger,
	})

	follows, cheers, err := a.localState(ctx)
	if err != nil {
		a.Close()

		return nil, err
	}

	epoch, err := cfg.Rotation.EpochTime(cfg.App.Location())
	if err != nil {
		a.Close()

		return nil, err
	}

	a.Performances = service.NewPerformanceService(a.Providers.Catalog, a.Stores.Performances, a.Assembler, time.Now, logger)
	a.Artists = service.NewArtistService(a.Assembler, a.Providers.Composers, a.Stores, follows, cheers,
		service.ArtistSettings{Epoch: epoch, WeeklySize: cfg.Rotation.Size}, time.Now, logger)
	a.News = service.NewNewsService(a.Providers.News, a.Stores.News, logger)
	a.Media = service.NewMediaService(a.Providers.Videos, a.Stores.Videos, logger)

	if cfg.Relay.Enabled {
		a.Relay = relay.New(relay.Targets(cfg.Provider, cfg.Credentials), relay.Options{
			Timeout:   cfg.Relay.Timeout,
			MaxBytes:  cfg.Relay.MaxBytes,
			SafeURL:   cfg.Relay.SafeURL,
			UserAgent: "classichub-relay/1.0",
			Recorder:  a.Metrics,
			Logger:    logger,
		})
	}

	if a.Redis != nil {
		a.Locker = locker.NewRedisLocker(a.Redis, cfg.Cache.KeyPrefix+":", logger)
	} else {
		a.Locker = locker.NewLocal()
	}

	return a, nil
}

func (a *App) connect(ctx context.Context, opts Options) error {
	cfg := a.Config

	if cfg.Database.Enabled {
		db, err := postgres.NewConnection(cfg.Database, cfg.App.Debug, a.logger)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		a.DB = db

		if !opts.SkipMigrations {
			if err := migrations.Run(db); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			a.logger.Info("database migrations completed")
		}
	} else {
		a.logger.Warn("database disabled, follows and cheers are kept in memory only")
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.Redis = client
		a.logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	return nil
}

// localState loads the persisted follows and cheers.
func (a *App) localState(ctx context.Context) (*store.FollowSet, *store.CheerBoard, error) {
	var repo domain.PreferenceRepository
	if a.DB != nil {
		repo = postgres.NewRepository(a.DB)
	}

	follows := store.NewFollowSet(repo, a.logger)
	cheers := store.NewCheerBoard(repo, a.logger, time.Now)
	if err := errors.Join(follows.Load(ctx), cheers.Load(ctx)); err != nil {
		return nil, nil, err
	}

	return follows, cheers, nil
}

// Checks returns the readiness checks of the connected infrastructure.
func (a *App) Checks() map[string]func(ctx context.Context) error {
	checks := make(map[string]func(ctx context.Context) error)
	if a.DB != nil {
		db := a.DB
		checks["database"] = func(ctx context.Context) error {
			return postgres.HealthCheck(ctx, db)
		}
	}
	if a.Redis != nil {
		client := a.Redis
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}

	return checks
}

// Close releases the connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Warn("closing redis", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := postgres.Close(a.DB); err != nil {
			a.logger.Warn("closing database", zap.Error(err))
		}
	}
}
