package deliverytx

import (
	"context"
	"time"

	"tripndrop/internal/domain"
)

// Repository is the set of writes allowed inside a transaction.
type Repository interface {
	// GetForUpdate locks and returns the delivery, or nil if it does not exist.
	GetForUpdate(ctx context.Context, id string) (*domain.Delivery, error)
	Insert(ctx context.Context, d *domain.Delivery) error
	// Update persists d only if the stored row still has expectedStatus and
	// expectedVersion; otherwise it returns apperr.ErrConflict.
	Update(ctx context.Context, d *domain.Delivery, expectedStatus domain.DeliveryStatus, expectedVersion int64) error
}

// Runner is a transaction runner.
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}

// Reader serves the non-transactional queries.
type Reader interface {
	// Get returns the delivery, or nil if it does not exist.
	Get(ctx context.Context, id string) (*domain.Delivery, error)
	GetMany(ctx context.Context, ids []string) ([]domain.Delivery, error)
	// ListPending returns pending deliveries, oldest first. An empty vehicle
	// means every class.
	ListPending(ctx context.Context, vehicle domain.VehicleClass) ([]domain.Delivery, error)
	// ListPendingSince is ListPending restricted to created_at >= since.
	ListPendingSince(ctx context.Context, vehicle domain.VehicleClass, since time.Time) ([]domain.Delivery, error)
	ListBySender(ctx context.Context, senderID string) ([]domain.Delivery, error)
	ListByTraveler(ctx context.Context, travelerID string) ([]domain.Delivery, error)
}

// Store is a full delivery storage backend.
type Store interface {
	Runner
	Reader
}
