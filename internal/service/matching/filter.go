package matching

import (
	"tripndrop/internal/domain"
	"tripndrop/internal/geo"
)

// Filter keeps the pending deliveries of the journey's vehicle class whose
// pickup and dropoff both lie within radiusKm of the journey segment.
// Input order is preserved and pending is left untouched.
func Filter(pending []domain.Delivery, journey domain.Journey, m geo.Matcher, radiusKm float64) ([]domain.Delivery, error) {
	if err := journey.Validate(); err != nil {
		return nil, err
	}
	if err := geo.ValidateRadius(radiusKm); err != nil {
		return nil, err
	}

	out := make([]domain.Delivery, 0)
	for _, d := range pending {
		if d.Status != domain.StatusPending || d.Vehicle != journey.Vehicle {
			continue
		}
		ok, err := m.OnRoute(
			d.Pickup.Coordinate, d.Dropoff.Coordinate,
			journey.Start.Coordinate, journey.End.Coordinate,
			radiusKm,
		)
		if err != nil {
			// a stored row with broken coordinates never matches
			continue
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}
