//go:generate mockgen -source=contracts.go -destination=matching_mocks_test.go -package=matching_test

package matching

import (
	"context"
	"time"

	"tripndrop/internal/domain"
)

type pendingReader interface {
	ListPending(ctx context.Context, vehicle domain.VehicleClass) ([]domain.Delivery, error)
	ListPendingSince(ctx context.Context, vehicle domain.VehicleClass, since time.Time) ([]domain.Delivery, error)
	GetMany(ctx context.Context, ids []string) ([]domain.Delivery, error)
}

// CandidateIndex narrows the pending set to deliveries whose endpoints are
// roughly near the journey. It may over-report and may be stale. Every
// delivery created before the returned watermark and still indexed is among
// the ids; a zero watermark means the index has not been built yet.
type CandidateIndex interface {
	Candidates(ctx context.Context, journey domain.Journey, radiusKm float64) ([]string, time.Time, error)
}

// JourneyLog records match queries for the traveler's history.
type JourneyLog interface {
	Append(ctx context.Context, rec domain.JourneyRecord) error
	ListByTraveler(ctx context.Context, travelerID string, limit int) ([]domain.JourneyRecord, error)
}
