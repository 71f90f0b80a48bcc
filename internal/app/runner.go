package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"tripndrop/internal/logx"
	"tripndrop/internal/transport/kafka"
)

const shutdownTimeout = 15 * time.Second

// Runner runs the HTTP service
type Runner struct {
	runFn func(*dig.Container) error
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run}
}

// MustRun starts the HTTP server using the provided DI container. Shutdown
// and startup timeouts are logged; any other error panics.
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	expected := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	_ = container.Invoke(func(logger logx.Logger) {
		switch {
		case errors.Is(err, context.Canceled):
			logger.Info("shutdown requested, exiting")
		case errors.Is(err, context.DeadlineExceeded):
			logger.Warn("startup aborted: startup timeout exceeded")
		default:
			logger.Error("run error", logx.Err(err))
		}
	})
	if !expected {
		panic(err)
	}
}

type runIn struct {
	dig.In

	Ctx      context.Context
	Server   *http.Server
	Debug    *http.Server `name:"debug_server" optional:"true"`
	Logger   logx.Logger
	Pool     *pgxpool.Pool
	Producer *kafka.Producer
	Events   *kafka.BackgroundPublisher `optional:"true"`
	Redis    *redis.Client
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(in runIn) error {
	stopEvents := startEvents(in.Events)
	errCh := startServer(in.Server, in.Logger)
	if in.Debug != nil {
		startDebug(in.Debug, in.Logger)
	}

	var err error
	select {
	case <-in.Ctx.Done():
		in.Logger.Info("shutting down service-delivery")
		err = in.Ctx.Err()
	case err = <-errCh:
		in.Logger.Error("listen error", logx.Err(err))
	}

	gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
	if in.Debug != nil {
		gracefulShutdown(in.Debug, in.Logger, time.Second)
	}
	// handlers are done, so nothing enqueues past this point
	stopEvents()
	closeResources(in)
	return err
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("service-delivery listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// startEvents runs the event sender until the returned stop func is called.
// stop blocks until the backlog is flushed.
func startEvents(events *kafka.BackgroundPublisher) (stop func()) {
	if events == nil {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	go events.Run(ctx)
	return func() {
		cancel()
		<-events.Done()
	}
}

// startDebug never fails the service: a broken ops listener is only logged.
func startDebug(server *http.Server, logger logx.Logger) {
	go func() {
		logger.Info("debug listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("debug listen error", logx.Err(err))
		}
	}()
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Warn("graceful shutdown error", logx.Err(err))
	}
}

func closeResources(in runIn) {
	if err := in.Producer.Close(); err != nil {
		in.Logger.Warn("kafka producer close error", logx.Err(err))
	}
	if in.Redis != nil {
		if err := in.Redis.Close(); err != nil {
			in.Logger.Warn("redis close error", logx.Err(err))
		}
	}
	if in.Pool != nil {
		in.Pool.Close()
	}
	if err := in.Logger.Sync(); err != nil {
		in.Logger.Debug("logger sync error", logx.Err(err))
	}
}
