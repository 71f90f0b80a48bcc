package delivery

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tripndrop/internal/apperr"
	"tripndrop/internal/domain"
	"tripndrop/internal/logx"
	"tripndrop/internal/ports/deliverytx"
)

// Service runs the delivery lifecycle: create, accept, start, complete.
type Service struct {
	repo             deliveryRepository
	codes            CodeGenerator
	ids              IDFactory
	events           EventPublisher
	transitions      *prometheus.CounterVec
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates a new Service. events and transitions may be nil.
func NewService(
	r deliveryRepository,
	codes CodeGenerator,
	ids IDFactory,
	events EventPublisher,
	transitions *prometheus.CounterVec,
	timeout time.Duration,
	logger logx.Logger,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if ids == nil {
		ids = NewIDFactory()
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		codes:            codes,
		ids:              ids,
		events:           events,
		transitions:      transitions,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Create stores a new pending delivery on behalf of a sender.
func (s *Service) Create(ctx context.Context, actor domain.Actor, draft domain.Draft) (domain.Delivery, error) {
	if actor.Role != domain.RoleSender || actor.ID == "" {
		s.observe("create", apperr.ErrUnauthorized)
		return domain.Delivery{}, apperr.ErrUnauthorized
	}
	if err := draft.Validate(); err != nil {
		s.observe("create", err)
		return domain.Delivery{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d := domain.NewDelivery(s.ids.NewID(), actor.ID, draft, s.now())
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		return tx.Insert(ctx, &d)
	})
	s.observe("create", err)
	if err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery created",
		logx.String("event", "delivery_created"),
		logx.String("delivery_id", d.ID),
		logx.String("sender_id", d.SenderID),
		logx.String("vehicle", string(d.Vehicle)),
	)
	s.publish(ctx, domain.NewEvent(domain.EventCreated, d, d.CreatedAt))
	return d, nil
}

// Get returns a delivery to its sender, or to its traveler without the OTP.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id string) (domain.Delivery, error) {
	id, err := validateID(id)
	if err != nil {
		return domain.Delivery{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Delivery{}, err
	}
	if d == nil {
		return domain.Delivery{}, apperr.ErrNotFound
	}
	if !d.VisibleTo(actor) {
		return domain.Delivery{}, apperr.ErrUnauthorized
	}
	if actor.ID != d.SenderID {
		return d.Redacted(), nil
	}
	return *d, nil
}

// ListBySender returns the caller's own requests, newest first.
func (s *Service) ListBySender(ctx context.Context, actor domain.Actor) ([]domain.Delivery, error) {
	if actor.Role != domain.RoleSender || actor.ID == "" {
		return nil, apperr.ErrUnauthorized
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.ListBySender(ctx, actor.ID)
}

// ListByTraveler returns the caller's accepted jobs, newest first, without OTPs.
func (s *Service) ListByTraveler(ctx context.Context, actor domain.Actor) ([]domain.Delivery, error) {
	if actor.Role != domain.RoleTraveler || actor.ID == "" {
		return nil, apperr.ErrUnauthorized
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	jobs, err := s.repo.ListByTraveler(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		jobs[i] = jobs[i].Redacted()
	}
	return jobs, nil
}

// Accept assigns a pending delivery to the calling traveler. Exactly one of
// any number of concurrent callers succeeds; the rest get ErrUnavailable.
// The returned delivery carries the freshly issued OTP.
func (s *Service) Accept(ctx context.Context, actor domain.Actor, id string) (domain.Delivery, error) {
	d, err := s.transition(ctx, "accept", id, func(d *domain.Delivery, now time.Time) error {
		return d.Accept(actor, now, s.codes.Generate)
	})
	if errors.Is(err, apperr.ErrConflict) {
		err = apperr.ErrUnavailable
	}
	if err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery accepted",
		logx.String("event", "delivery_accepted"),
		logx.String("delivery_id", d.ID),
		logx.String("traveler_id", d.TravelerID),
	)
	s.publish(ctx, domain.NewEvent(domain.EventAccepted, d, *d.AcceptedAt))
	return d, nil
}

// Start marks the assigned traveler's delivery as in transit.
func (s *Service) Start(ctx context.Context, actor domain.Actor, id string) (domain.Delivery, error) {
	d, err := s.transition(ctx, "start", id, func(d *domain.Delivery, now time.Time) error {
		return d.Start(actor, now)
	})
	if err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery started",
		logx.String("event", "delivery_started"),
		logx.String("delivery_id", d.ID),
		logx.String("traveler_id", d.TravelerID),
	)
	s.publish(ctx, domain.NewEvent(domain.EventStarted, d, *d.StartedAt))
	return d.Redacted(), nil
}

// Complete finishes the delivery when code matches the stored OTP. The code
// is compared verbatim. Wrong codes are counted on the delivery; after
// domain.MaxOTPAttempts of them Complete returns apperr.ErrOTPLocked.
func (s *Service) Complete(ctx context.Context, actor domain.Actor, id, code string) (domain.Delivery, error) {
	d, err := s.transition(ctx, "complete", id, func(d *domain.Delivery, now time.Time) error {
		return d.Complete(actor, code, now)
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidOTP):
			s.logger.Warn("delivery otp mismatch",
				logx.String("delivery_id", id),
				logx.String("traveler_id", actor.ID),
			)
		case errors.Is(err, apperr.ErrOTPLocked):
			s.logger.Warn("delivery otp locked",
				logx.String("delivery_id", id),
				logx.String("traveler_id", actor.ID),
			)
		}
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery completed",
		logx.String("event", "delivery_completed"),
		logx.String("delivery_id", d.ID),
		logx.String("traveler_id", d.TravelerID),
		logx.Time("delivered_at", *d.DeliveredAt),
	)
	s.publish(ctx, domain.NewEvent(domain.EventDelivered, d, *d.DeliveredAt))
	return d.Redacted(), nil
}

// transition loads the row under lock, applies fn and writes the result with
// a status/version compare-and-swap. Nothing is written when fn fails, except
// for a wrong OTP: the bumped attempt counter is committed and the error
// still returned.
func (s *Service) transition(
	ctx context.Context,
	op, id string,
	fn func(d *domain.Delivery, now time.Time) error,
) (domain.Delivery, error) {
	id, err := validateID(id)
	if err != nil {
		s.observe(op, err)
		return domain.Delivery{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		out      domain.Delivery
		rejected error
	)
	err = s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.ErrNotFound
		}

		prevStatus, prevVersion := d.Status, d.Version
		if err := fn(d, s.now()); err != nil {
			if !errors.Is(err, apperr.ErrInvalidOTP) {
				return err
			}
			rejected = err
		}
		d.Version = prevVersion + 1
		if err := tx.Update(ctx, d, prevStatus, prevVersion); err != nil {
			return err
		}
		out = *d
		return nil
	})
	if err == nil {
		err = rejected
	}
	s.observe(op, err)
	if err != nil {
		return domain.Delivery{}, err
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, ev domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("delivery event publish failed",
			logx.String("delivery_id", ev.DeliveryID),
			logx.String("type", string(ev.Type)),
			logx.Err(err),
		)
	}
}

func (s *Service) observe(op string, err error) {
	if s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(op, Outcome(err)).Inc()
}

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrInvalid):
		return "invalid"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, apperr.ErrUnavailable), errors.Is(err, apperr.ErrConflict):
		return "unavailable"
	case errors.Is(err, apperr.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, apperr.ErrInvalidOTP):
		return "invalid_otp"
	case errors.Is(err, apperr.ErrOTPLocked):
		return "otp_locked"
	default:
		return "error"
	}
}

func validateID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", apperr.Invalidf("id", "must not be empty")
	}
	if len(id) > 64 {
		return "", apperr.Invalidf("id", "too long")
	}
	return id, nil
}
