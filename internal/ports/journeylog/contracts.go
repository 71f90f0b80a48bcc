package journeylog

import (
	"context"

	"tripndrop/internal/domain"
)

// Store keeps travelers' match queries. Records are append-only.
type Store interface {
	Append(ctx context.Context, rec domain.JourneyRecord) error
	// ListByTraveler returns at most limit records, newest first.
	ListByTraveler(ctx context.Context, travelerID string, limit int) ([]domain.JourneyRecord, error)
}
