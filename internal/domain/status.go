package domain

import (
	"regexp"
	"strings"
)

type (
	// DeliveryStatus is the lifecycle state of a delivery request.
	DeliveryStatus string
	// PaymentStatus is a bookkeeping flag flipped on completion.
	PaymentStatus string
	// VehicleClass is the vehicle a delivery requires and a traveler uses.
	VehicleClass string
	// Role is the part an actor plays in a delivery.
	Role string
	// RadiusPolicy selects the match radius preset.
	RadiusPolicy string
)

// Lifecycle states, in order.
const (
	StatusPending   DeliveryStatus = "pending"
	StatusAccepted  DeliveryStatus = "accepted"
	StatusInTransit DeliveryStatus = "in-transit"
	StatusDelivered DeliveryStatus = "delivered"
)

// Payment states
const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// Vehicle classes
const (
	VehicleGearedMotorbike VehicleClass = "geared-motorbike"
	VehicleScooter         VehicleClass = "scooter"
	VehicleCar             VehicleClass = "car"
)

// Roles
const (
	RoleSender   Role = "sender"
	RoleTraveler Role = "traveler"
)

// Radius presets
const (
	PolicyStrict   RadiusPolicy = "strict"
	PolicyFlexible RadiusPolicy = "flexible"
)

var allowedStatuses = [...]DeliveryStatus{
	StatusPending, StatusAccepted, StatusInTransit, StatusDelivered,
}

var allowedVehicles = [...]VehicleClass{
	VehicleGearedMotorbike, VehicleScooter, VehicleCar,
}

// Valid checks if the DeliveryStatus is known.
func (s DeliveryStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the VehicleClass is known.
func (v VehicleClass) Valid() bool {
	for _, a := range allowedVehicles {
		if v == a {
			return true
		}
	}
	return false
}

// ParseVehicleClass normalises case and separators, so "Geared Motorbike"
// and "geared_motorbike" both map to VehicleGearedMotorbike.
func ParseVehicleClass(raw string) (VehicleClass, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	v := VehicleClass(s)
	return v, v.Valid()
}

// Valid checks if the Role is known.
func (r Role) Valid() bool {
	return r == RoleSender || r == RoleTraveler
}

// Valid checks if the RadiusPolicy is known.
func (p RadiusPolicy) Valid() bool {
	return p == PolicyStrict || p == PolicyFlexible
}

var reContact = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidateContact checks a receiver phone number.
func ValidateContact(s string) bool {
	return reContact.MatchString(s)
}
