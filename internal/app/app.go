// Package app wires the service together and manages its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ngumi22/bds-sub000/internal/cache"
	"github.com/Ngumi22/bds-sub000/internal/catalog"
	"github.com/Ngumi22/bds-sub000/internal/config"
	"github.com/Ngumi22/bds-sub000/internal/event"
	"github.com/Ngumi22/bds-sub000/internal/facet"
	"github.com/Ngumi22/bds-sub000/internal/fetch"
	handler "github.com/Ngumi22/bds-sub000/internal/handler/http"
	"github.com/Ngumi22/bds-sub000/internal/repository/mongodb"
	"github.com/Ngumi22/bds-sub000/internal/resolver"
	"github.com/Ngumi22/bds-sub000/pkg/health"
	pkgkafka "github.com/Ngumi22/bds-sub000/pkg/kafka"
)

// App holds the running components of the search service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *mongodb.DB
	consumers  []*pkgkafka.Consumer
	httpServer *http.Server
}

// NewApp initializes every dependency: the document store, the cache, the
// search pipeline, the invalidation consumers, and the HTTP server.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("init document store: %w", err)
	}
	logger.Info("document store connected", slog.String("database", cfg.MongoDB))

	products := mongodb.NewProductRepository(db)
	categories := mongodb.NewCategoryRepository(db)
	brands := mongodb.NewBrandRepository(db)
	collections := mongodb.NewCollectionRepository(db)
	specs := mongodb.NewSpecificationRepository(db)

	var (
		resultCache cache.Cache
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		resultCache = cache.NewRedisCache(redisClient, logger)
		logger.Info("redis cache initialized", slog.String("addr", cfg.RedisAddr))
	} else {
		resultCache = cache.NewMemoryCache()
		logger.Info("in-process cache initialized")
	}

	service := catalog.NewService(
		resolver.New(categories, brands, collections),
		fetch.New(products),
		facet.New(products, categories, brands, collections, specs),
		resultCache,
		cfg.CacheTTL,
		logger,
	)

	var consumers []*pkgkafka.Consumer
	if len(cfg.KafkaBrokers) > 0 {
		invalidator := event.NewInvalidator(resultCache, logger)
		for _, topic := range event.Topics() {
			consumers = append(consumers, pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  cfg.KafkaGroupID,
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6,
			}, invalidator.Handle, logger))
		}
		logger.Info("kafka invalidation consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.Int("topic_count", len(consumers)),
		)
	} else {
		logger.Info("kafka disabled, cache entries expire on TTL only")
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("mongodb", db.Ping)
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if len(cfg.KafkaBrokers) > 0 {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	router := handler.NewRouter(handler.RouterConfig{
		Service:     service,
		Health:      healthHandler,
		Logger:      logger,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		CacheMaxAge: cfg.HTTPCacheMaxAge,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		consumers:  consumers,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and consumers and blocks until the context is
// canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown stops all components gracefully.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.db.Close(shutdownCtx); err != nil {
		a.logger.Error("document store close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
