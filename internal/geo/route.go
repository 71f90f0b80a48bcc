package geo

import (
	"math"

	"tripndrop/internal/apperr"
	"tripndrop/internal/domain"
)

// Matcher decides whether a delivery lies along a journey.
type Matcher struct {
	// Directional additionally requires the pickup to come no later than
	// the drop-off along the journey.
	Directional bool
}

// IsOnRoute is the direction-agnostic check: both pickup and dropoff must be
// within radiusKm of the segment start-end.
func IsOnRoute(pickup, dropoff, start, end domain.Coordinate, radiusKm float64) (bool, error) {
	return Matcher{}.OnRoute(pickup, dropoff, start, end, radiusKm)
}

// OnRoute validates every input and applies the corridor test.
func (m Matcher) OnRoute(pickup, dropoff, start, end domain.Coordinate, radiusKm float64) (bool, error) {
	if err := ValidateRadius(radiusKm); err != nil {
		return false, err
	}
	for _, c := range []struct {
		field string
		c     domain.Coordinate
	}{
		{"pickup", pickup}, {"dropoff", dropoff}, {"start", start}, {"end", end},
	} {
		if err := c.c.Validate(c.field); err != nil {
			return false, err
		}
	}
	return m.onRoute(pickup, dropoff, start, end, radiusKm), nil
}

// onRoute assumes validated inputs.
func (m Matcher) onRoute(pickup, dropoff, start, end domain.Coordinate, radiusKm float64) bool {
	if PointToSegmentDistance(pickup, start, end) > radiusKm {
		return false
	}
	if PointToSegmentDistance(dropoff, start, end) > radiusKm {
		return false
	}
	if !m.Directional {
		return true
	}
	tp, ok := projection(pickup, start, end)
	if !ok {
		return true
	}
	td, _ := projection(dropoff, start, end)
	return clamp01(tp) <= clamp01(td)
}

// ValidateRadius rejects negative and non-finite radii.
func ValidateRadius(radiusKm float64) error {
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 {
		return apperr.Invalidf("radius_km", "must be a finite non-negative number")
	}
	return nil
}
