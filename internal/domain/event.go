package domain

import "time"

// EventType names a lifecycle change.
type EventType string

// Lifecycle events
const (
	EventCreated   EventType = "created"
	EventAccepted  EventType = "accepted"
	EventStarted   EventType = "started"
	EventDelivered EventType = "delivered"
)

// Event is published after a lifecycle change commits.
type Event struct {
	Type       EventType
	DeliveryID string
	Vehicle    VehicleClass
	Pickup     Coordinate
	Dropoff    Coordinate
	OccurredAt time.Time
}

// NewEvent snapshots d as an event of type t.
func NewEvent(t EventType, d Delivery, at time.Time) Event {
	return Event{
		Type:       t,
		DeliveryID: d.ID,
		Vehicle:    d.Vehicle,
		Pickup:     d.Pickup.Coordinate,
		Dropoff:    d.Dropoff.Coordinate,
		OccurredAt: at,
	}
}
