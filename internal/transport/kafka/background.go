package kafka

import (
	"context"
	"errors"
	"time"

	"tripndrop/internal/domain"
	"tripndrop/internal/logx"
)

// ErrQueueFull is returned by BackgroundPublisher.Publish when the backlog
// is at capacity. The event is dropped.
var ErrQueueFull = errors.New("kafka: event queue full")

// BackgroundConfig configures BackgroundPublisher
type BackgroundConfig struct {
	QueueSize    int
	FlushTimeout time.Duration
}

// BackgroundPublisher moves broker latency off the request path: Publish
// only enqueues, Run sends.
type BackgroundPublisher struct {
	next    publisher
	logger  logx.Logger
	dropped counter
	cfg     BackgroundConfig
	queue   chan domain.Event
	done    chan struct{}
}

// NewBackgroundPublisher returns nil when next is nil
func NewBackgroundPublisher(next publisher, logger logx.Logger, dropped counter, cfg BackgroundConfig) *BackgroundPublisher {
	if next == nil {
		return nil
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &BackgroundPublisher{
		next:    next,
		logger:  logger,
		dropped: dropped,
		cfg:     cfg,
		queue:   make(chan domain.Event, cfg.QueueSize),
		done:    make(chan struct{}),
	}
}

// Publish enqueues ev and returns without waiting for the broker. The
// caller's ctx is not carried over: the event outlives the request.
func (p *BackgroundPublisher) Publish(_ context.Context, ev domain.Event) error {
	select {
	case p.queue <- ev:
		return nil
	default:
		p.inc()
		p.logger.Warn("kafka event queue full, event dropped",
			logx.String("delivery_id", ev.DeliveryID),
			logx.Int("queue_size", p.cfg.QueueSize),
		)
		return ErrQueueFull
	}
}

// Run sends queued events until ctx is done, then drains the backlog for
// at most FlushTimeout. Done is closed when Run returns.
func (p *BackgroundPublisher) Run(ctx context.Context) {
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			p.flush()
			return
		case ev := <-p.queue:
			err := p.next.Publish(ctx, ev)
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				// interrupted by shutdown, give it another go while flushing
				p.flush(ev)
				return
			}
			p.failed(ev, err)
		}
	}
}

// Done is closed once Run has flushed and returned.
func (p *BackgroundPublisher) Done() <-chan struct{} {
	return p.done
}

func (p *BackgroundPublisher) flush(carry ...domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.FlushTimeout)
	defer cancel()

	lost := 0
	send := func(ev domain.Event) {
		if ctx.Err() != nil {
			lost++
			p.inc()
			return
		}
		if err := p.next.Publish(ctx, ev); err != nil {
			p.failed(ev, err)
		}
	}
	for _, ev := range carry {
		send(ev)
	}
	for {
		select {
		case ev := <-p.queue:
			send(ev)
		default:
			if lost > 0 {
				p.logger.Error("kafka flush timed out, events dropped", logx.Int("dropped", lost))
			}
			return
		}
	}
}

func (p *BackgroundPublisher) failed(ev domain.Event, err error) {
	p.inc()
	p.logger.Error("kafka publish failed, event dropped",
		logx.String("delivery_id", ev.DeliveryID),
		logx.String("type", string(ev.Type)),
		logx.Err(err),
	)
}

func (p *BackgroundPublisher) inc() {
	if p.dropped != nil {
		p.dropped.Inc()
	}
}
