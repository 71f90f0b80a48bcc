//go:generate mockgen -source=contracts.go -destination=delivery_mocks_test.go -package=delivery_test

package delivery

import (
	"context"

	"tripndrop/internal/domain"
	"tripndrop/internal/ports/deliverytx"
)

type deliveryRepository interface {
	WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error
	Get(ctx context.Context, id string) (*domain.Delivery, error)
	ListBySender(ctx context.Context, senderID string) ([]domain.Delivery, error)
	ListByTraveler(ctx context.Context, travelerID string) ([]domain.Delivery, error)
}

// CodeGenerator issues handoff codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// EventPublisher receives committed lifecycle changes.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}
