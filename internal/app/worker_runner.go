package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"tripndrop/internal/config"
	"tripndrop/internal/logx"
	"tripndrop/internal/ports/deliverytx"
	"tripndrop/internal/service/indexer"
	"tripndrop/internal/transport/kafka"
)

// WorkerRunner runs the index worker
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the consumer using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

type workerIn struct {
	dig.In

	Ctx       context.Context
	Config    *config.Config
	Pool      *pgxpool.Pool
	Logger    logx.Logger
	Store     deliverytx.Store
	Processor *indexer.Processor
	Consumer  *kafka.Consumer
	Closer    workerCloser
}

func runWorker(container *dig.Container) error {
	return container.Invoke(func(in workerIn) error {
		if in.Consumer != nil {
			if err := rebuildIndex(in.Ctx, in.Logger, in.Processor, in.Store); err != nil {
				closeWorker(in.Pool, in.Logger, in.Consumer, in.Closer)
				return err
			}
			go rebuildLoop(in.Ctx, in.Config.Matching.IndexRebuildInterval, in.Logger, in.Processor, in.Store)
		}
		return workerRun(in.Ctx, in.Pool, in.Logger, in.Consumer, in.Closer)
	})
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	closer workerCloser,
) error {
	if consumer == nil {
		closeWorker(pool, logger, nil, closer)
		return fmt.Errorf("kafka consumer is nil: set KAFKA_BROKERS for the worker")
	}
	defer closeWorker(pool, logger, consumer, closer)

	logger.Info("tripndrop-worker started")
	return consumer.Run(ctx)
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, kafkaConsumer *kafka.Consumer, closer workerCloser) {
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if closer != nil {
		if err := closer(); err != nil {
			logger.Error("redis close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
