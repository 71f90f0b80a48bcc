package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"tripndrop/internal/config"
	"tripndrop/internal/domain"
	"tripndrop/internal/http/handlers"
	appmw "tripndrop/internal/http/middleware"
	"tripndrop/internal/logx"
	"tripndrop/internal/metrics"
	"tripndrop/internal/ports/deliverytx"
	"tripndrop/internal/ports/journeylog"
	"tripndrop/internal/repository/memory"
	"tripndrop/internal/service/delivery"
	"tripndrop/internal/service/matching"
	"tripndrop/internal/transport/kafka"
)

// isolateProcess gives config.Load a clean flag set, argv and registry.
func isolateProcess(t *testing.T, env map[string]string) {
	t.Helper()

	oldCommandLine, oldArgs := pflag.CommandLine, os.Args
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pflag.CommandLine = fs
	os.Args = []string{"cmd"}

	oldReg, oldGath := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer, prometheus.DefaultGatherer = reg, reg

	t.Cleanup(func() {
		pflag.CommandLine, os.Args = oldCommandLine, oldArgs
		prometheus.DefaultRegisterer, prometheus.DefaultGatherer = oldReg, oldGath
	})

	t.Setenv("JWT_SECRET", "container-secret")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MATCH_INDEX_ENABLED", "")
	t.Setenv("DEBUG_ADDR", "")
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func setupTestContainer(t *testing.T, cfg *config.Config) *dig.Container {
	t.Helper()

	c := dig.New()

	providers := []struct {
		name     string
		provider any
	}{
		{"context", func() context.Context { return context.Background() }},
		{"logger", logx.Nop},
		{"config", func() *config.Config { return cfg }},
		{"pgxpool", func() *pgxpool.Pool { return nil }},
		{"metrics", func() metricsOut {
			return metricsOut{
				RateLimitExceededTotal: metrics.NewRateLimitExceededTotal(),
				PublishRetriesTotal:    metrics.NewPublishRetriesTotal(),
				PublishDroppedTotal:    metrics.NewPublishDroppedTotal(),
				TransitionsTotal:       metrics.NewTransitionsTotal(),
				MatchResults:           metrics.NewMatchResults(),
				HTTP:                   appmw.HTTPMetrics{Requests: metrics.NewHTTPRequestsTotal(), Duration: metrics.NewHTTPRequestDuration()},
				Gatherer:               prometheus.NewRegistry(),
			}
		}},
	}

	for _, p := range providers {
		err := c.Provide(p.provider)
		require.NoErrorf(t, err, "provide %s", p.name)
	}

	require.NoError(t, registerDomainServices(c))
	require.NoError(t, registerHTTP(c))

	return c
}

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.Port = 8080
	cfg.Storage = config.StorageMemory
	cfg.Auth.JWTSecret = "container-secret"
	return cfg
}

func verifyServer(t *testing.T, srv *http.Server) {
	t.Helper()

	require.NotNil(t, srv, "http.Server is nil")
	require.Equal(t, ":8080", srv.Addr)
	require.Greater(t, srv.ReadHeaderTimeout, time.Duration(0))
	require.Greater(t, srv.ReadTimeout, time.Duration(0))
	require.Greater(t, srv.WriteTimeout, time.Duration(0))
	require.Greater(t, srv.IdleTimeout, time.Duration(0))
}

func TestRegisterDomainServicesAndHTTP_ProvidesServerAndHandlers(t *testing.T) {
	t.Parallel()

	c := setupTestContainer(t, memoryConfig())

	err := c.Invoke(func(
		srv *http.Server,
		base *handlers.Handlers,
		deliveryHandler *handlers.DeliveryHandler,
		matchHandler *handlers.MatchHandler,
		store deliverytx.Store,
		events delivery.EventPublisher,
		index matching.CandidateIndex,
		rdb *redis.Client,
		producer *kafka.Producer,
		background *kafka.BackgroundPublisher,
		journeys journeylog.Store,
	) {
		verifyServer(t, srv)
		require.NotNil(t, base)
		require.NotNil(t, deliveryHandler)
		require.NotNil(t, matchHandler)
		require.IsType(t, &memory.Store{}, store)
		require.Nil(t, events, "no kafka brokers means no publisher")
		require.Nil(t, index, "index disabled means no candidate index")
		require.Nil(t, rdb)
		require.Nil(t, producer)
		require.Nil(t, background)
		require.IsType(t, &memory.JourneyLog{}, journeys)
	})
	require.NoError(t, err)
}

func TestContainer_ServesRequestsInMemoryMode(t *testing.T) {
	t.Parallel()

	c := setupTestContainer(t, memoryConfig())

	err := c.Invoke(func(srv *http.Server) {
		tok, err := appmw.SignToken([]byte("container-secret"), domain.Actor{ID: "s-1", Role: domain.RoleSender}, time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/deliveries", strings.NewReader(`{
			"pickup": {"lat": 12.93, "lng": 77.62},
			"dropoff": {"lat": 12.97, "lng": 77.60},
			"receiver_contact": "+919811111111",
			"vehicle": "car"
		}`))
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	})
	require.NoError(t, err)
}

func TestRegisterDomainServices_PostgresWithoutPool(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.Storage = config.StoragePostgres
	c := setupTestContainer(t, cfg)

	err := c.Invoke(func(deliverytx.Store) {})
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires a database pool")
}

func TestProvideRedis(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()

	rdb, err := provideRedis(false)(context.Background(), cfg)
	require.NoError(t, err)
	require.Nil(t, rdb)

	_, err = provideRedis(true)(context.Background(), cfg)
	require.ErrorContains(t, err, "REDIS_ADDR")
}

func TestProvideDebugServer(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	out := provideDebugServer(cfg, prometheus.NewRegistry(), logx.Nop())
	require.Nil(t, out.Server)

	cfg.Debug = config.Debug{Addr: "127.0.0.1:6060", User: "ops", Pass: "pw"}
	out = provideDebugServer(cfg, prometheus.NewRegistry(), logx.Nop())
	require.NotNil(t, out.Server)
	require.Equal(t, "127.0.0.1:6060", out.Server.Addr)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "10.1.2.3:4000"
	out.Server.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProvideEventPublisher_WrapsProducer(t *testing.T) {
	t.Parallel()

	out := provideEventPublisher(publisherIn{
		Config:   memoryConfig(),
		Logger:   logx.Nop(),
		Producer: &kafka.Producer{},
		Retries:  metrics.NewPublishRetriesTotal(),
		Dropped:  metrics.NewPublishDroppedTotal(),
	})
	require.NotNil(t, out.Background)
	require.Same(t, out.Background, out.Publisher)

	none := provideEventPublisher(publisherIn{Config: memoryConfig(), Logger: logx.Nop()})
	require.Nil(t, none.Background)
	require.Nil(t, none.Publisher)
}

func TestProvideJourneyLog_MemoryMode(t *testing.T) {
	t.Parallel()

	require.IsType(t, &memory.JourneyLog{}, provideJourneyLog(memoryConfig(), nil, nil))
}

func TestProvideAll_Success(t *testing.T) {
	t.Parallel()

	c := dig.New()

	err := provideAll(c,
		func() context.Context { return context.Background() },
		func() time.Duration { return 3 * time.Second },
	)
	require.NoError(t, err)

	err = c.Invoke(func(ctx context.Context, d time.Duration) {
		require.NotNil(t, ctx)
		require.Equal(t, 3*time.Second, d)
	})
	require.NoError(t, err)
}

func TestProvideAll_InvalidProvider(t *testing.T) {
	t.Parallel()

	c := dig.New()

	type bad struct{}
	err := provideAll(c, bad{})
	require.Error(t, err)
}

func TestRegisterCore_ProvidesDependencies(t *testing.T) {
	isolateProcess(t, map[string]string{"LOG_LEVEL": "debug"})

	c := dig.New()
	ctx := context.Background()

	err := registerCore(c, ctx)
	require.NoError(t, err)

	err = c.Invoke(func(
		gotCtx context.Context,
		logger logx.Logger,
		cfg *config.Config,
		hm appmw.HTTPMetrics,
	) {
		require.Equal(t, ctx, gotCtx)
		require.NotNil(t, logger)
		require.Equal(t, "debug", cfg.LogLevel)
		require.NotNil(t, hm.Requests)
	})
	require.NoError(t, err)
}

func TestRegisterDb_UsesDbConnectAndProvidesPool(t *testing.T) {
	t.Parallel()

	c := dig.New()
	ctx := context.Background()

	cfg := &config.Config{
		Storage: config.StoragePostgres,
		DB: config.DB{
			Host: "localhost",
			Port: "5432",
			User: "user",
			Pass: "pass",
			Name: "db",
		},
	}

	require.NoError(t, c.Provide(func() context.Context { return ctx }))
	require.NoError(t, c.Provide(func() *config.Config { return cfg }))
	require.NoError(t, c.Provide(logx.Nop))

	stubPool := &pgxpool.Pool{}

	stubConnect := func(
		gotCtx context.Context,
		_ logx.Logger,
		dsn string,
		retries int,
		delay time.Duration,
	) (*pgxpool.Pool, error) {
		require.Equal(t, ctx, gotCtx)
		require.Equal(t, cfg.DB.DSN(), dsn)
		require.Equal(t, 10, retries)
		require.Equal(t, time.Second, delay)
		return stubPool, nil
	}

	err := registerDb(c, stubConnect)
	require.NoError(t, err)

	err = c.Invoke(func(pool *pgxpool.Pool) {
		require.Equal(t, stubPool, pool)
	})
	require.NoError(t, err)
}

func TestRegisterDb_MemoryStorageSkipsConnect(t *testing.T) {
	t.Parallel()

	c := dig.New()
	require.NoError(t, c.Provide(func() context.Context { return context.Background() }))
	require.NoError(t, c.Provide(memoryConfig))
	require.NoError(t, c.Provide(logx.Nop))

	err := registerDb(c, func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error) {
		require.FailNow(t, "dbConnect must not be called for the memory store")
		return nil, nil
	})
	require.NoError(t, err)

	err = c.Invoke(func(pool *pgxpool.Pool) {
		require.Nil(t, pool)
	})
	require.NoError(t, err)
}

func TestContainerBuilder_Build_DBError(t *testing.T) {
	isolateProcess(t, map[string]string{"STORAGE_DRIVER": "postgres"})

	builder := NewContainerBuilder().
		WithDBConnect(func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error) {
			return nil, errors.New("db failed")
		})

	c, err := builder.build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, c)

	err = c.Invoke(func(pool *pgxpool.Pool) {
		_ = pool
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "db failed")
}

func TestContainerBuilder_MustBuild_MemoryMode(t *testing.T) {
	isolateProcess(t, map[string]string{"STORAGE_DRIVER": "memory"})

	builder := NewContainerBuilder().
		WithLogFatalf(func(format string, args ...interface{}) {
			require.FailNowf(t, "logFatalf must not be called", format, args...)
		})

	c := builder.MustBuild(context.Background())
	require.NotNil(t, c)

	err := c.Invoke(func(srv *http.Server, pool *pgxpool.Pool) {
		require.NotNil(t, srv)
		require.Nil(t, pool)

		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	})
	require.NoError(t, err)
}
