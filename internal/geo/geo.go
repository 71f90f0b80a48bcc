// Package geo holds the great-circle helpers used to decide whether a parcel
// lies along a traveler's straight-line journey.
package geo

import (
	"math"

	"tripndrop/internal/domain"
)

const earthRadiusKm = 6371.0

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b domain.Coordinate) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	if h > 1 {
		h = 1
	}
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// PointToSegmentDistance returns the distance in km from p to the nearest
// point of the segment start-end. A degenerate segment degrades to
// Distance(p, start).
func PointToSegmentDistance(p, start, end domain.Coordinate) float64 {
	t, ok := projection(p, start, end)
	if !ok {
		return Distance(p, start)
	}
	return Distance(p, pointAt(start, end, clamp01(t)))
}

// projection returns the unclamped parameter of p's orthogonal projection on
// the line through start and end, using an equirectangular plane centred on
// the segment. ok is false when the segment has no length.
func projection(p, start, end domain.Coordinate) (t float64, ok bool) {
	k := math.Cos(degreesToRadians((start.Lat + end.Lat) / 2))

	ex, ey := wrapLng(end.Lng-start.Lng)*k, end.Lat-start.Lat
	px, py := wrapLng(p.Lng-start.Lng)*k, p.Lat-start.Lat

	lenSq := ex*ex + ey*ey
	if lenSq == 0 {
		return 0, false
	}
	return (px*ex + py*ey) / lenSq, true
}

// pointAt interpolates linearly between start and end in degree space, which
// is linear in the projected plane as well.
func pointAt(start, end domain.Coordinate, t float64) domain.Coordinate {
	return domain.Coordinate{
		Lat: start.Lat + t*(end.Lat-start.Lat),
		Lng: normalizeLng(start.Lng + t*wrapLng(end.Lng-start.Lng)),
	}
}

// Midpoint is the segment point at t=0.5.
func Midpoint(start, end domain.Coordinate) domain.Coordinate {
	return pointAt(start, end, 0.5)
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// wrapLng maps a longitude delta onto [-180, 180).
func wrapLng(d float64) float64 {
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

func normalizeLng(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	return wrapLng(lng)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
