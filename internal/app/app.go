package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/routing"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/snippet"
	"github.com/utafrali/storefront/migrations"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Everything opened so far is released again when a later step fails.
	var cleanup closers
	defer func() {
		if err != nil {
			cleanup.closeAll(logger)
		}
	}()

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	cleanup.add("tracer", func() error { return shutdownTracer(context.Background()) })
	database.SetSlowQueryLogging(cfg.SlowQuery, logger)

	// Initialize PostgreSQL.
	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
		MaxConns: cfg.PostgresMaxConns,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	cleanup.add("postgres", func() error {
		pool.Close()
		return nil
	})
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.String("database", cfg.PostgresDB),
	)

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Initialize Redis.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cleanup.add("redis", rdb.Close)
	logger.Info("connected to Redis",
		slog.String("host", cfg.RedisHost),
		slog.Int("db", cfg.RedisDB),
	)

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.ProducerConfig{Brokers: cfg.KafkaBrokers}, logger)
	cleanup.add("kafka producer", producer.Close)
	eventProducer := event.NewProducer(producer, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Repositories.
	channels := postgres.NewSalesChannelRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	seoRepo := postgres.NewSeoURLRepository(pool)
	contexts := redisrepo.NewContextRepository(rdb, cfg.ContextTTL)

	// Caches and their dependency tracing.
	configTracer := cache.NewConfigTracer()
	theme := cache.NewThemeConfigAccessor(postgres.NewThemeRepository(pool))
	httpCache := cache.NewHTTPCache(
		cache.NewRedisStore(rdb),
		cache.NewCacheTracer(configTracer, theme),
		cfg.HTTPCacheTTL,
		handler.CacheVariation,
		logger,
	)

	// Services.
	router := routing.NewStorefrontRouter()
	systemConfig := service.NewSystemConfigService(postgres.NewSystemConfigRepository(pool), rdb, configTracer, cfg.SystemConfigTTL, logger)
	seoURLs := service.NewSeoURLService(router, seoRepo, channels, logger)
	contextService := service.NewContextService(contexts, channels, eventProducer, logger)

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.ProductServiceTimeout
	breakerCfg := httpclient.DefaultCircuitBreakerConfig("product-service")
	breakerCfg.Timeout = cfg.BreakerTimeout
	breakerCfg.FailureRatio = cfg.BreakerFailureRatio
	catalog := service.NewCatalogClient(
		httpclient.NewCircuitBreakerClient(httpclient.New(clientCfg), breakerCfg, logger),
		cfg.ProductServiceURL,
	)

	snippets, err := snippet.NewService(snippet.FS(), snippet.EnGB{}.ISO(), snippet.EnGB{})
	if err != nil {
		return nil, fmt.Errorf("load snippets: %w", err)
	}
	renderer, err := handler.NewRenderer(snippets, theme, channels, seoURLs, logger)
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	// Cache invalidation consumer.
	invalidation := event.NewConsumer(httpCache, systemConfig, theme, seoURLs, logger)
	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, pkgkafka.TopicPrefix, logger)
	cleanup.add("kafka dlq producer", dlq.Close)
	consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.KafkaConsumerGroup,
		Topics:  event.ConsumedTopics,
	}, pkgkafka.IdempotentHandler(
		pkgkafka.NewMemoryIdempotencyStore(time.Hour),
		invalidation.Handle,
		cfg.KafkaConsumerGroup,
		logger,
	), dlq, logger)
	cleanup.add("kafka consumer", consumer.Close)

	// Health checks.
	healthHandler := health.NewHandler(2 * time.Second)
	healthHandler.Register("postgres", pool.Ping)
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterOptional("kafka", producer.Ping)

	// HTTP router.
	forwarder := routing.NewForwarder()
	actions := handler.NewActionResponder(router, forwarder, logger)
	routerCfg := handler.RouterConfig{
		Transformer:    routing.NewRequestTransformer(channels, cfg.DomainRefreshInterval, logger),
		Resolver:       contextService,
		TokenValidator: middleware.HMACValidator(cfg.JWTSecret),
		HTTPCache:      httpCache,
		Forwarder:      forwarder,
		Home:           handler.NewHomeHandler(renderer, logger),
		Context:        handler.NewContextHandler(contextService, router, actions, logger),
		Product: handler.NewProductHandler(handler.ProductDeps{
			Pages:     service.NewProductPageLoader(catalog, reviewRepo, systemConfig, seoURLs, logger),
			QuickView: service.NewQuickViewLoader(catalog, reviewRepo, systemConfig, seoURLs),
			Variants:  service.NewCombinationFinder(catalog),
			Reviews:   service.NewReviewService(reviewRepo, eventProducer, logger),
			Listing:   service.NewReviewLoader(reviewRepo),
			Config:    systemConfig,
			SeoURLs:   seoURLs,
		}, renderer, actions, logger),
		Health:          healthHandler,
		CORS:            middleware.DefaultCORSConfig(),
		PprofCIDRs:      cfg.PprofCIDRs,
		ContextTTL:      cfg.ContextTTL,
		ReviewRateLimit: cfg.ReviewRateLimit,
		ReviewBurst:     cfg.ReviewRateBurst,
		BrowserMaxAge:   cfg.BrowserMaxAge,
	}
	if !cfg.HTTPCacheEnabled {
		routerCfg.HTTPCache = nil
	}
	mux, err := handler.NewRouter(routerCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		dlq:            dlq,
		consumer:       consumer,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the HTTP server and the invalidation consumer and blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := a.consumer.Start(ctx); err != nil {
			a.logger.Error("invalidation consumer stopped", slog.String("error", err.Error()))
		}
	}()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.consumer.Close(); err != nil {
		a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
	}
	if err := a.dlq.Close(); err != nil {
		a.logger.Error("kafka dlq producer close error", slog.String("error", err.Error()))
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}
	a.pool.Close()

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
