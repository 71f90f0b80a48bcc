package indexer

import (
	"context"
	"fmt"
	"time"

	"tripndrop/internal/domain"
	"tripndrop/internal/logx"
)

// WatermarkLag is subtracted from the rebuild start time. It covers
// deliveries committed after the pending snapshot was read and clock skew
// between service instances and the worker.
const WatermarkLag = 30 * time.Second

// Processor applies delivery events to the candidate index. Only pending
// deliveries belong in the index, so created adds and accepted removes;
// later events find nothing left to do.
type Processor struct {
	index   Index
	factory *actionFactory
	logger  logx.Logger
	now     func() time.Time
}

// NewProcessor creates a new Processor
func NewProcessor(index Index, logger logx.Logger) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{index: index, logger: logger, now: func() time.Time { return time.Now().UTC() }}
	p.factory = newActionFactory(p.onCreated, p.onAccepted)
	return p
}

// Handle processes a single event. Unknown types are ignored.
func (p *Processor) Handle(ctx context.Context, ev domain.Event) error {
	fn, ok := p.factory.get(ev.Type)
	if !ok {
		return nil
	}
	return fn(ctx, ev)
}

func (p *Processor) onCreated(ctx context.Context, ev domain.Event) error {
	if err := ev.Pickup.Validate("pickup"); err != nil {
		return err
	}
	if err := ev.Dropoff.Validate("dropoff"); err != nil {
		return err
	}
	if err := p.index.Add(ctx, ev.DeliveryID, ev.Pickup, ev.Dropoff); err != nil {
		return err
	}
	p.logger.Debug("delivery indexed", logx.String("delivery_id", ev.DeliveryID))
	return nil
}

func (p *Processor) onAccepted(ctx context.Context, ev domain.Event) error {
	if err := p.index.Remove(ctx, ev.DeliveryID); err != nil {
		return err
	}
	p.logger.Debug("delivery unindexed", logx.String("delivery_id", ev.DeliveryID))
	return nil
}

// Rebuild replaces the index content with the current pending set.
func (p *Processor) Rebuild(ctx context.Context, repo PendingLister) (int, error) {
	watermark := p.now().Add(-WatermarkLag)
	pending, err := repo.ListPending(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list pending: %w", err)
	}
	if err := p.index.Replace(ctx, pending, watermark); err != nil {
		return 0, err
	}
	p.logger.Info("candidate index rebuilt",
		logx.Int("pending", len(pending)),
		logx.Time("watermark", watermark),
	)
	return len(pending), nil
}
