package matching

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"tripndrop/internal/apperr"
	"tripndrop/internal/domain"
	"tripndrop/internal/geo"
	"tripndrop/internal/logx"
)

// HistoryLimit caps the journeys returned by History.
const HistoryLimit = 50

// Query is a traveler's match request. An empty TravelerID is not recorded.
type Query struct {
	TravelerID string
	Journey    domain.Journey
	Policy     domain.RadiusPolicy
}

// Radii holds the radius presets in kilometres.
type Radii struct {
	Strict   float64
	Flexible float64
}

// For resolves policy to a radius.
func (r Radii) For(p domain.RadiusPolicy) (float64, error) {
	switch p {
	case domain.PolicyStrict:
		return r.Strict, nil
	case domain.PolicyFlexible:
		return r.Flexible, nil
	}
	return 0, apperr.Invalidf("radius_policy", "unknown policy %q", p)
}

// Config configures a Service.
type Config struct {
	Radii         Radii
	DefaultPolicy domain.RadiusPolicy
	Directional   bool
	Timeout       time.Duration
}

// Service answers match queries against the pending deliveries.
type Service struct {
	repo     pendingReader
	index    CandidateIndex
	journeys JourneyLog
	matcher  geo.Matcher
	cfg      Config
	results  prometheus.Observer
	logger   logx.Logger
	now      func() time.Time
}

// NewService creates a new Service. index, journeys and results may be nil.
func NewService(
	repo pendingReader,
	index CandidateIndex,
	journeys JourneyLog,
	cfg Config,
	results prometheus.Observer,
	logger logx.Logger,
) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.DefaultPolicy == "" {
		cfg.DefaultPolicy = domain.PolicyFlexible
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:     repo,
		index:    index,
		journeys: journeys,
		matcher:  geo.Matcher{Directional: cfg.Directional},
		cfg:      cfg,
		results:  results,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FindMatches returns the pending deliveries along q.Journey, oldest first.
func (s *Service) FindMatches(ctx context.Context, q Query) ([]domain.Delivery, error) {
	policy := q.Policy
	if policy == "" {
		policy = s.cfg.DefaultPolicy
	}
	radius, err := s.cfg.Radii.For(policy)
	if err != nil {
		return nil, err
	}
	if err := q.Journey.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	pending, err := s.candidates(ctx, q.Journey, radius)
	if err != nil {
		return nil, err
	}
	out, err := Filter(pending, q.Journey, s.matcher, radius)
	if err != nil {
		return nil, err
	}

	if s.results != nil {
		s.results.Observe(float64(len(out)))
	}
	s.logger.Debug("match query served",
		logx.String("vehicle", string(q.Journey.Vehicle)),
		logx.String("policy", string(policy)),
		logx.Int("scanned", len(pending)),
		logx.Int("matched", len(out)),
	)
	s.record(ctx, q, policy, radius, len(out))
	return out, nil
}

// History returns the traveler's recent match queries, newest first.
func (s *Service) History(ctx context.Context, actor domain.Actor) ([]domain.JourneyRecord, error) {
	if actor.Role != domain.RoleTraveler || actor.ID == "" {
		return nil, apperr.ErrUnauthorized
	}
	if s.journeys == nil {
		return []domain.JourneyRecord{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	return s.journeys.ListByTraveler(ctx, actor.ID, HistoryLimit)
}

// record keeps the query for the traveler's history. A failed write is
// logged and never fails the query.
func (s *Service) record(ctx context.Context, q Query, policy domain.RadiusPolicy, radius float64, matches int) {
	if s.journeys == nil || q.TravelerID == "" {
		return
	}
	rec := domain.JourneyRecord{
		ID:         uuid.NewString(),
		TravelerID: q.TravelerID,
		Journey:    q.Journey,
		Policy:     policy,
		RadiusKm:   radius,
		Matches:    matches,
		CreatedAt:  s.now(),
	}
	if err := s.journeys.Append(ctx, rec); err != nil {
		s.logger.Warn("journey not recorded",
			logx.String("traveler_id", q.TravelerID),
			logx.Err(err),
		)
	}
}

// candidates returns the deliveries Filter must see. With an index, that is
// the indexed candidates plus everything created since the index watermark,
// so deliveries the index has not caught up with are still scanned.
func (s *Service) candidates(ctx context.Context, j domain.Journey, radius float64) ([]domain.Delivery, error) {
	if s.index == nil {
		return s.repo.ListPending(ctx, j.Vehicle)
	}

	ids, watermark, err := s.index.Candidates(ctx, j, radius)
	switch {
	case err != nil:
		s.logger.Warn("candidate index unavailable, scanning pending set", logx.Err(err))
		return s.repo.ListPending(ctx, j.Vehicle)
	case watermark.IsZero():
		s.logger.Debug("candidate index not built, scanning pending set")
		return s.repo.ListPending(ctx, j.Vehicle)
	}

	recent, err := s.repo.ListPendingSince(ctx, j.Vehicle, watermark)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return recent, nil
	}
	indexed, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return mergeOldestFirst(indexed, recent), nil
}

// mergeOldestFirst unions two oldest-first lists by id.
func mergeOldestFirst(a, b []domain.Delivery) []domain.Delivery {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]domain.Delivery, 0, len(a)+len(b))
	for _, list := range [][]domain.Delivery{a, b} {
		for _, d := range list {
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
