package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nutrimatch/backend/config"
	httpDelivery "github.com/nutrimatch/backend/internal/delivery/http"
	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/cache"
	"github.com/nutrimatch/backend/internal/infrastructure/dataset"
	"github.com/nutrimatch/backend/internal/infrastructure/logger"
	"github.com/nutrimatch/backend/internal/infrastructure/persistence"
	"github.com/nutrimatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("starting NutriMatch backend",
		"version", "1.0.0",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Type,
		"database", cfg.Database.Driver)

	// Load the nutrient store; the service cannot answer anything without it
	source := dataset.CSVSource{Path: cfg.Dataset.Path, SynonymsPath: cfg.Dataset.SynonymsPath}
	catalog := usecase.NewCatalog(source, log)
	if _, err := catalog.Reload(ctx); err != nil {
		return fmt.Errorf("load dataset %s: %w", cfg.Dataset.Path, err)
	}

	// Initialize infrastructure dependencies
	resultCache, closeCache, err := newCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	db, err := persistence.Open(persistence.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		Debug:        cfg.Database.Debug,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := persistence.Close(db); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}()

	// Initialize usecase layer
	loc := cfg.Location()
	nutritionService := usecase.NewNutritionService(
		catalog,
		resultCache,
		usecase.NutritionServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			DefaultLimit:       cfg.Matching.DefaultLimit,
			MaxLimit:           cfg.Matching.MaxLimit,
			DefaultProfile:     cfg.Portion.DefaultProfile,
			Location:           loc,
			EnableDebugLogging: cfg.Matching.DebugLogging,
		},
		log,
	)
	matcher := usecase.NewMatchingService(usecase.MatchConfig{EnableDebugLogging: cfg.Matching.DebugLogging}, log)
	suggestionService := usecase.NewSuggestionService(catalog, matcher, nutritionService.Portions(), log)
	mealService := usecase.NewMealService(
		nutritionService,
		nutritionService.Portions(),
		persistence.NewMealRepository(db),
		usecase.MealServiceConfig{Location: loc},
		log,
	)

	if cfg.Dataset.Watch {
		watcher, err := dataset.NewWatcher(
			[]string{cfg.Dataset.Path, cfg.Dataset.SynonymsPath},
			cfg.Dataset.WatchDebounce,
			func(ctx context.Context) error {
				_, err := catalog.Reload(ctx)
				return err
			},
			log,
		)
		if err != nil {
			return err
		}
		go watcher.Run(ctx)
		log.Info("watching dataset for changes", "path", cfg.Dataset.Path, "debounce", cfg.Dataset.WatchDebounce)
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(nutritionService, mealService, suggestionService, log)
	router := httpDelivery.SetupRouter(cfg, handler, log)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newCache builds the configured resolve cache and a func that releases it
func newCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (domain.CacheRepository, func(), error) {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, cfg.Cache.KeyPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("cache ready", "type", "redis", "ttl", cfg.Cache.TTL)
		return redisCache, func() { _ = redisCache.Close() }, nil
	}

	memoryCache := cache.NewMemoryCache(0)
	log.Info("cache ready", "type", "memory", "ttl", cfg.Cache.TTL)
	return memoryCache, func() { _ = memoryCache.Close() }, nil
}
