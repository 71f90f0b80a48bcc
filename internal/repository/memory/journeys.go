package memory

import (
	"context"
	"sync"

	"tripndrop/internal/domain"
	"tripndrop/internal/ports/journeylog"
)

// JourneyLog keeps journey records in insertion order.
type JourneyLog struct {
	mu   sync.RWMutex
	recs []domain.JourneyRecord
}

// NewJourneyLog returns an empty JourneyLog.
func NewJourneyLog() *JourneyLog {
	return &JourneyLog{}
}

// Append stores rec.
func (l *JourneyLog) Append(ctx context.Context, rec domain.JourneyRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = append(l.recs, rec)
	return nil
}

// ListByTraveler returns the traveler's newest records first.
func (l *JourneyLog) ListByTraveler(_ context.Context, travelerID string, limit int) ([]domain.JourneyRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.JourneyRecord, 0)
	for i := len(l.recs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if l.recs[i].TravelerID == travelerID {
			out = append(out, l.recs[i])
		}
	}
	return out, nil
}

var _ journeylog.Store = (*JourneyLog)(nil)
