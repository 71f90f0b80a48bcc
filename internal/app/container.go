package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"tripndrop/internal/config"
	"tripndrop/internal/domain"
	"tripndrop/internal/geoindex"
	"tripndrop/internal/http/debugserver"
	"tripndrop/internal/http/handlers"
	"tripndrop/internal/http/router"
	"tripndrop/internal/logx"
	"tripndrop/internal/otp"
	"tripndrop/internal/ports/deliverytx"
	"tripndrop/internal/ports/journeylog"
	"tripndrop/internal/repository"
	"tripndrop/internal/repository/memory"
	"tripndrop/internal/service/delivery"
	"tripndrop/internal/service/matching"
	"tripndrop/internal/transport/kafka"
)

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// build builds and returns a new dig container
func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		config.Load,
		NewLogger,
		provideMetrics,
	)
}

// registerDb provides a nil pool when the memory store is selected.
func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		if cfg.Storage == config.StorageMemory {
			return nil, nil
		}
		return dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		provideStore,
		func(cfg *config.Config) *otp.Generator {
			return otp.NewGenerator(cfg.OTP.Length)
		},
		func(cfg *config.Config) (*kafka.Producer, error) {
			return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		},
		provideEventPublisher,
		provideRedis(false),
		provideCandidateIndex,
		provideJourneyLog,
		provideMatchingService,
		provideDeliveryService,
	)
}

func provideStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger logx.Logger) (deliverytx.Store, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory delivery store, data is lost on restart")
		return memory.NewStore(), nil
	}
	if pool == nil {
		return nil, fmt.Errorf("storage %q requires a database pool", cfg.Storage)
	}
	if err := repository.Migrate(ctx, pool); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return repository.NewDeliveryRepo(pool), nil
}

type publisherIn struct {
	dig.In

	Config   *config.Config
	Logger   logx.Logger
	Producer *kafka.Producer
	Retries  prometheus.Counter `name:"event_publish_retries_total"`
	Dropped  prometheus.Counter `name:"event_publish_dropped_total"`
}

type publisherOut struct {
	dig.Out

	Background *kafka.BackgroundPublisher
	Publisher  delivery.EventPublisher
}

// provideEventPublisher queues lifecycle events for a background sender that
// retries transient broker errors. The runner owns the sender goroutine.
func provideEventPublisher(in publisherIn) publisherOut {
	if in.Producer == nil {
		in.Logger.Info("kafka not configured, lifecycle events are not published")
		return publisherOut{}
	}
	pc := in.Config.Publisher
	retrying := kafka.NewRetryingPublisher(in.Producer, in.Logger, in.Retries, kafka.RetryConfig{
		MaxAttempts: pc.MaxAttempts,
		BaseDelay:   pc.BaseDelay,
		MaxDelay:    pc.MaxDelay,
	})
	bg := kafka.NewBackgroundPublisher(retrying, in.Logger, in.Dropped, kafka.BackgroundConfig{
		QueueSize:    pc.QueueSize,
		FlushTimeout: pc.FlushTimeout,
	})
	return publisherOut{Background: bg, Publisher: bg}
}

// provideRedis connects only when the index is enabled, unless required.
func provideRedis(required bool) func(context.Context, *config.Config) (*redis.Client, error) {
	return func(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
		if !required && !cfg.Matching.IndexEnabled {
			return nil, nil
		}
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required")
		}
		return geoindex.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
}

func provideCandidateIndex(rdb *redis.Client) matching.CandidateIndex {
	if rdb == nil {
		return nil
	}
	return geoindex.NewRedisIndex(rdb, "")
}

// provideJourneyLog follows the delivery store's backend. store is taken so
// the schema is migrated before the repo is used.
func provideJourneyLog(cfg *config.Config, pool *pgxpool.Pool, _ deliverytx.Store) journeylog.Store {
	if cfg.Storage == config.StorageMemory || pool == nil {
		return memory.NewJourneyLog()
	}
	return repository.NewJourneyRepo(pool)
}

type matchingIn struct {
	dig.In

	Config   *config.Config
	Logger   logx.Logger
	Store    deliverytx.Store
	Index    matching.CandidateIndex
	Journeys journeylog.Store
	Results  prometheus.Histogram `name:"match_results"`
}

func provideMatchingService(in matchingIn) *matching.Service {
	m := in.Config.Matching
	return matching.NewService(in.Store, in.Index, in.Journeys, matching.Config{
		Radii:         matching.Radii{Strict: m.StrictRadiusKm, Flexible: m.FlexibleRadiusKm},
		DefaultPolicy: domain.RadiusPolicy(m.DefaultPolicy),
		Directional:   m.Directional,
		Timeout:       in.Config.OperationTimeout,
	}, in.Results, in.Logger)
}

type deliveryIn struct {
	dig.In

	Config      *config.Config
	Logger      logx.Logger
	Store       deliverytx.Store
	Codes       *otp.Generator
	Events      delivery.EventPublisher
	Transitions *prometheus.CounterVec `name:"delivery_transitions_total"`
}

func provideDeliveryService(in deliveryIn) *delivery.Service {
	return delivery.NewService(in.Store, in.Codes, nil, in.Events, in.Transitions, in.Config.OperationTimeout, in.Logger)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		handlers.New,
		handlers.NewDeliveryUsecase,
		handlers.NewDeliveryHandler,
		handlers.NewMatchUsecase,
		handlers.NewMatchHandler,
		router.New,
		serverProvider,
		provideDebugServer,
	)
}

type debugOut struct {
	dig.Out

	Server *http.Server `name:"debug_server"`
}

// provideDebugServer returns a nil server when DEBUG_ADDR is unset.
func provideDebugServer(cfg *config.Config, gatherer prometheus.Gatherer, logger logx.Logger) debugOut {
	if cfg.Debug.Addr == "" {
		return debugOut{}
	}
	return debugOut{Server: debugserver.New(debugserver.Config{
		Addr: cfg.Debug.Addr,
		User: cfg.Debug.User,
		Pass: cfg.Debug.Pass,
	}, gatherer, logger.With(logx.String("component", "debug")))}
}
