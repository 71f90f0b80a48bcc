package geoindex

import (
	"math"

	"tripndrop/internal/domain"
	"tripndrop/internal/geo"
)

// Redis GEO only accepts latitudes inside the Web Mercator band.
const (
	maxLat = 85.05112878
	slack  = 1.01
)

// Circle is a GEOSEARCH area.
type Circle struct {
	Center   domain.Coordinate
	RadiusKm float64
}

// SearchCircle returns a circle that contains every point within radiusKm of
// the segment start-end.
func SearchCircle(start, end domain.Coordinate, radiusKm float64) Circle {
	mid := geo.Midpoint(start, end)
	half := math.Max(geo.Distance(mid, start), geo.Distance(mid, end))
	return Circle{
		Center:   mid,
		RadiusKm: (half+radiusKm)*slack + 0.05,
	}
}

func indexable(c domain.Coordinate) bool {
	return c.Lat >= -maxLat && c.Lat <= maxLat
}
