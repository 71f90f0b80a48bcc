package kafka

import (
	"strings"
	"time"

	"tripndrop/internal/domain"
)

// PointDTO is a coordinate on the wire.
type PointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EventDTO is the JSON shape of a delivery lifecycle event
type EventDTO struct {
	DeliveryID string    `json:"delivery_id"`
	Type       string    `json:"type"`
	Vehicle    string    `json:"vehicle"`
	Pickup     PointDTO  `json:"pickup"`
	Dropoff    PointDTO  `json:"dropoff"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToDomain converts EventDTO to domain.Event
func ToDomain(dto EventDTO) domain.Event {
	return domain.Event{
		Type:       domain.EventType(strings.ToLower(strings.TrimSpace(dto.Type))),
		DeliveryID: strings.TrimSpace(dto.DeliveryID),
		Vehicle:    domain.VehicleClass(strings.TrimSpace(dto.Vehicle)),
		Pickup:     domain.Coordinate{Lat: dto.Pickup.Lat, Lng: dto.Pickup.Lng},
		Dropoff:    domain.Coordinate{Lat: dto.Dropoff.Lat, Lng: dto.Dropoff.Lng},
		OccurredAt: dto.OccurredAt,
	}
}

// FromDomain converts domain.Event to EventDTO
func FromDomain(ev domain.Event) EventDTO {
	return EventDTO{
		DeliveryID: ev.DeliveryID,
		Type:       string(ev.Type),
		Vehicle:    string(ev.Vehicle),
		Pickup:     PointDTO{Lat: ev.Pickup.Lat, Lng: ev.Pickup.Lng},
		Dropoff:    PointDTO{Lat: ev.Dropoff.Lat, Lng: ev.Dropoff.Lng},
		OccurredAt: ev.OccurredAt.UTC(),
	}
}
