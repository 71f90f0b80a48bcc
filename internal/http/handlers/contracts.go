package handlers

import (
	"context"

	"tripndrop/internal/domain"
	"tripndrop/internal/service/delivery"
	"tripndrop/internal/service/matching"
)

type deliveryUsecase interface {
	Create(ctx context.Context, actor domain.Actor, draft domain.Draft) (domain.Delivery, error)
	Get(ctx context.Context, actor domain.Actor, id string) (domain.Delivery, error)
	ListBySender(ctx context.Context, actor domain.Actor) ([]domain.Delivery, error)
	ListByTraveler(ctx context.Context, actor domain.Actor) ([]domain.Delivery, error)
	Accept(ctx context.Context, actor domain.Actor, id string) (domain.Delivery, error)
	Start(ctx context.Context, actor domain.Actor, id string) (domain.Delivery, error)
	Complete(ctx context.Context, actor domain.Actor, id, code string) (domain.Delivery, error)
}

// NewDeliveryUsecase wires a delivery.Service into a deliveryUsecase.
func NewDeliveryUsecase(svc *delivery.Service) deliveryUsecase {
	return svc
}

type matchUsecase interface {
	FindMatches(ctx context.Context, q matching.Query) ([]domain.Delivery, error)
	History(ctx context.Context, actor domain.Actor) ([]domain.JourneyRecord, error)
}

// NewMatchUsecase wires a matching.Service into a matchUsecase.
func NewMatchUsecase(svc *matching.Service) matchUsecase {
	return svc
}
