package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventrove/marketplace-backend/internal/adapters/cache"
	"github.com/eventrove/marketplace-backend/internal/adapters/database"
	"github.com/eventrove/marketplace-backend/internal/adapters/events"
	"github.com/eventrove/marketplace-backend/internal/api/handlers"
	"github.com/eventrove/marketplace-backend/internal/api/routes"
	"github.com/eventrove/marketplace-backend/internal/application/services"
	"github.com/eventrove/marketplace-backend/internal/domain/providers"
	mongoclient "github.com/eventrove/marketplace-backend/internal/infrastructure/clients/mongo"
	"github.com/eventrove/marketplace-backend/internal/infrastructure/clients/postgres"
	redisclient "github.com/eventrove/marketplace-backend/internal/infrastructure/clients/redis"
	"github.com/eventrove/marketplace-backend/internal/infrastructure/observability"
	"github.com/eventrove/marketplace-backend/pkg/config"
)

const memoryCacheMaxEntries = 5000

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Candidate document store (read-only from this service).
	mongoCli, err := mongoclient.NewClient(&cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize MongoDB client")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoCli.Close(ctx); err != nil {
			logger.Error().Err(err).Msg("error closing MongoDB client")
		}
	}()
	logger.Info().Msg("MongoDB client initialized")

	// Analytics and saved search storage.
	pgClient, err := postgres.NewClient(&cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	logger.Info().Msg("PostgreSQL client initialized")

	// Redis powers the optional distributed result cache and the
	// listing update bus. The service degrades to in-process caching
	// without it.
	redisCli, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without it")
		redisCli = nil
	} else {
		defer redisCli.Close()
		logger.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	if cfg.Search.UseRedisResultCache && redisCli != nil {
		cacheProvider = cache.NewRedisAdapter(redisCli, "")
		logger.Info().Msg("result cache backed by Redis")
	} else {
		cacheProvider = cache.NewMemoryAdapter(memoryCacheMaxEntries)
		logger.Info().Msg("result cache backed by in-process store")
	}

	var eventBus providers.EventBus
	if redisCli != nil {
		eventBus = events.NewRedisEventBus(redisCli)
		logger.Info().Msg("event bus initialized")
	} else {
		logger.Warn().Msg("event bus disabled, listing updates will not invalidate the cache")
	}

	// Adapters
	candidateAdapter := database.NewCandidateAdapter(mongoCli)
	analyticsAdapter := database.NewSearchAnalyticsAdapter(pgClient)
	savedSearchAdapter := database.NewSavedSearchAdapter(pgClient)

	// Services
	normalizer := services.NewQueryNormalizer()
	ranker := services.NewSearchRankingService()
	resultCache := services.NewResultCacheService(cacheProvider, metrics)
	rotation := services.NewRotationService()
	analyticsService := services.NewSearchAnalyticsService(analyticsAdapter)
	savedSearchService := services.NewSavedSearchService(savedSearchAdapter, normalizer)

	searchService := services.NewSearchService(
		candidateAdapter,
		normalizer,
		ranker,
		resultCache,
		analyticsService,
		rotation,
		cfg.Search,
		metrics,
	)

	if eventBus != nil {
		invalidation := services.NewCacheInvalidationService(eventBus, resultCache)
		go func() {
			if err := invalidation.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("cache invalidation listener stopped")
			}
		}()
	}

	// Handlers and routing
	searchHandler := handlers.NewSearchHandler(searchService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	savedSearchHandler := handlers.NewSavedSearchHandler(savedSearchService)

	router := routes.NewRouter(searchHandler, analyticsHandler, savedSearchHandler, metrics)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing event bus")
		}
	}

	logger.Info().Msg("server stopped")
}
