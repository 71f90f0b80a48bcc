// Package memory is an in-process delivery store. Transactions are
// serialised by a single lock and their writes are staged until commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tripndrop/internal/apperr"
	"tripndrop/internal/domain"
	"tripndrop/internal/ports/deliverytx"
)

// Store keeps deliveries in a map.
type Store struct {
	mu   sync.RWMutex
	rows map[string]domain.Delivery
	seq  map[string]int
	next int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		rows: make(map[string]domain.Delivery),
		seq:  make(map[string]int),
	}
}

// WithTx runs fn holding the store lock and applies its writes only if fn
// returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{s: s, staged: make(map[string]domain.Delivery)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	for _, id := range tx.inserted {
		s.seq[id] = s.next
		s.next++
	}
	for id, d := range tx.staged {
		s.rows[id] = d
	}
	return nil
}

// Get returns a copy of the delivery, or nil.
func (s *Store) Get(_ context.Context, id string) (*domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	cp := clone(d)
	return &cp, nil
}

// GetMany returns the existing deliveries among ids in creation order.
func (s *Store) GetMany(_ context.Context, ids []string) ([]domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return s.collect(func(d domain.Delivery) bool {
		_, ok := want[d.ID]
		return ok
	}, false), nil
}

// ListPending returns pending deliveries of vehicle, oldest first.
func (s *Store) ListPending(_ context.Context, vehicle domain.VehicleClass) ([]domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(d domain.Delivery) bool {
		return d.Status == domain.StatusPending && (vehicle == "" || d.Vehicle == vehicle)
	}, false), nil
}

// ListPendingSince returns pending deliveries of vehicle created at or after
// since, oldest first.
func (s *Store) ListPendingSince(_ context.Context, vehicle domain.VehicleClass, since time.Time) ([]domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(d domain.Delivery) bool {
		return d.Status == domain.StatusPending && (vehicle == "" || d.Vehicle == vehicle) && !d.CreatedAt.Before(since)
	}, false), nil
}

// ListBySender returns the sender's deliveries, newest first.
func (s *Store) ListBySender(_ context.Context, senderID string) ([]domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(d domain.Delivery) bool { return d.SenderID == senderID }, true), nil
}

// ListByTraveler returns the traveler's jobs, newest first.
func (s *Store) ListByTraveler(_ context.Context, travelerID string) ([]domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(d domain.Delivery) bool { return travelerID != "" && d.TravelerID == travelerID }, true), nil
}

// collect must be called with the lock held.
func (s *Store) collect(keep func(domain.Delivery) bool, newestFirst bool) []domain.Delivery {
	out := make([]domain.Delivery, 0)
	for _, d := range s.rows {
		if keep(d) {
			out = append(out, clone(d))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if newestFirst {
			return s.seq[a.ID] > s.seq[b.ID]
		}
		return s.seq[a.ID] < s.seq[b.ID]
	})
	return out
}

type txn struct {
	s        *Store
	staged   map[string]domain.Delivery
	inserted []string
}

func (t *txn) current(id string) (domain.Delivery, bool) {
	if d, ok := t.staged[id]; ok {
		return d, true
	}
	d, ok := t.s.rows[id]
	return d, ok
}

func (t *txn) GetForUpdate(_ context.Context, id string) (*domain.Delivery, error) {
	d, ok := t.current(id)
	if !ok {
		return nil, nil
	}
	cp := clone(d)
	return &cp, nil
}

func (t *txn) Insert(_ context.Context, d *domain.Delivery) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("insert delivery: %w", apperr.Invalidf("id", "must not be empty"))
	}
	if _, exists := t.current(d.ID); exists {
		return fmt.Errorf("insert delivery %s: %w", d.ID, apperr.ErrConflict)
	}
	t.staged[d.ID] = clone(*d)
	t.inserted = append(t.inserted, d.ID)
	return nil
}

func (t *txn) Update(_ context.Context, d *domain.Delivery, expectedStatus domain.DeliveryStatus, expectedVersion int64) error {
	cur, ok := t.current(d.ID)
	if !ok || cur.Status != expectedStatus || cur.Version != expectedVersion {
		return fmt.Errorf("update delivery %s: %w", d.ID, apperr.ErrConflict)
	}
	t.staged[d.ID] = clone(*d)
	return nil
}

func clone(d domain.Delivery) domain.Delivery {
	d.AcceptedAt = cloneTime(d.AcceptedAt)
	d.StartedAt = cloneTime(d.StartedAt)
	d.DeliveredAt = cloneTime(d.DeliveredAt)
	return d
}

func cloneTime[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var _ deliverytx.Store = (*Store)(nil)
