package handlers

import "time"

type pointDTO struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address,omitempty"`
}

type createDeliveryRequest struct {
	Pickup          pointDTO `json:"pickup"`
	Dropoff         pointDTO `json:"dropoff"`
	ReceiverContact string   `json:"receiver_contact"`
	Vehicle         string   `json:"vehicle"`
}

type completeDeliveryRequest struct {
	OTP string `json:"otp"`
}

type matchRequest struct {
	Start        pointDTO `json:"start"`
	End          pointDTO `json:"end"`
	Vehicle      string   `json:"vehicle"`
	RadiusPolicy string   `json:"radius_policy,omitempty"`
}

type locationDTO struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

type deliveryDTO struct {
	ID              string      `json:"id"`
	SenderID        string      `json:"sender_id"`
	TravelerID      string      `json:"traveler_id,omitempty"`
	Pickup          locationDTO `json:"pickup"`
	Dropoff         locationDTO `json:"dropoff"`
	ReceiverContact string      `json:"receiver_contact"`
	Vehicle         string      `json:"vehicle"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	OTP             string      `json:"otp,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	AcceptedAt      *time.Time  `json:"accepted_at,omitempty"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	DeliveredAt     *time.Time  `json:"delivered_at,omitempty"`
}

// matchDTO is what a traveler sees before accepting: no contact details.
type matchDTO struct {
	ID        string      `json:"id"`
	Pickup    locationDTO `json:"pickup"`
	Dropoff   locationDTO `json:"dropoff"`
	Vehicle   string      `json:"vehicle"`
	CreatedAt time.Time   `json:"created_at"`
}

type matchResponse struct {
	Count   int        `json:"count"`
	Matches []matchDTO `json:"matches"`
}

type journeyDTO struct {
	ID           string      `json:"id"`
	Start        locationDTO `json:"start"`
	End          locationDTO `json:"end"`
	Vehicle      string      `json:"vehicle"`
	RadiusPolicy string      `json:"radius_policy"`
	RadiusKm     float64     `json:"radius_km"`
	Matches      int         `json:"matches"`
	CreatedAt    time.Time   `json:"created_at"`
}
