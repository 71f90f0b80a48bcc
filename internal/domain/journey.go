package domain

import "time"

// JourneyRecord is a match query kept in the traveler's history.
type JourneyRecord struct {
	ID         string
	TravelerID string
	Journey    Journey
	Policy     RadiusPolicy
	RadiusKm   float64
	Matches    int
	CreatedAt  time.Time
}
