//go:generate mockgen -source=contracts.go -destination=indexer_mocks_test.go -package=indexer_test

package indexer

import (
	"context"
	"time"

	"tripndrop/internal/domain"
)

// Index is the spatial candidate index kept in step with pending deliveries.
type Index interface {
	Add(ctx context.Context, id string, pickup, dropoff domain.Coordinate) error
	Remove(ctx context.Context, id string) error
	// Replace swaps the whole content for pending and records that every
	// delivery created before watermark is covered.
	Replace(ctx context.Context, pending []domain.Delivery, watermark time.Time) error
}

// PendingLister lists pending deliveries for a full rebuild.
type PendingLister interface {
	ListPending(ctx context.Context, vehicle domain.VehicleClass) ([]domain.Delivery, error)
}
