package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"tripndrop/internal/apperr"
	"tripndrop/internal/config"
	"tripndrop/internal/domain"
	"tripndrop/internal/geoindex"
	"tripndrop/internal/logx"
	"tripndrop/internal/service/indexer"
	"tripndrop/internal/transport/kafka"
)

// MustBuildWorkerContainer builds the index worker container: Kafka
// consumer, Redis index and the delivery store used for rebuilds.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

// MustBuildWorker builds and returns the worker container
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		provideStore,
		provideRedis(true),
		func(rdb *redis.Client) indexer.Index {
			return geoindex.NewRedisIndex(rdb, "")
		},
		indexer.NewProcessor,
		makeIndexerKafka,
		func(cfg *config.Config, logger logx.Logger, h kafka.HandleFunc) (*kafka.Consumer, error) {
			return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, h)
		},
		func(rdb *redis.Client) workerCloser {
			return rdb.Close
		},
	)
}

// workerCloser releases worker-only resources.
type workerCloser func() error

// makeIndexerKafka adapts the processor to the consumer. Validation failures
// will never succeed on retry, so they are skipped.
func makeIndexerKafka(p *indexer.Processor) kafka.HandleFunc {
	return func(ctx context.Context, ev domain.Event) error {
		err := p.Handle(ctx, ev)
		if errors.Is(err, apperr.ErrInvalid) {
			return kafka.Permanent(err)
		}
		return err
	}
}

// rebuildIndex loads the pending set into the index before consuming.
func rebuildIndex(ctx context.Context, logger logx.Logger, p *indexer.Processor, store indexer.PendingLister) error {
	n, err := p.Rebuild(ctx, store)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	logger.Info("index ready", logx.Int("pending", n))
	return nil
}

// rebuildLoop refreshes the index every interval so events lost between
// commit and publish stop being invisible to it. A failed pass keeps the
// previous content.
func rebuildLoop(ctx context.Context, interval time.Duration, logger logx.Logger, p *indexer.Processor, store indexer.PendingLister) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Rebuild(ctx, store); err != nil && ctx.Err() == nil {
				logger.Warn("periodic index rebuild failed", logx.Err(err))
			}
		}
	}
}
