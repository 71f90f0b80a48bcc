package domain

import (
	"math"

	"tripndrop/internal/apperr"
)

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Validate rejects non-finite and out-of-range coordinates. field prefixes
// the reported field name.
func (c Coordinate) Validate(field string) error {
	switch {
	case math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0):
		return apperr.Invalidf(field+".lat", "must be finite")
	case math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0):
		return apperr.Invalidf(field+".lng", "must be finite")
	case c.Lat < -90 || c.Lat > 90:
		return apperr.Invalidf(field+".lat", "must be within [-90, 90], got %v", c.Lat)
	case c.Lng < -180 || c.Lng > 180:
		return apperr.Invalidf(field+".lng", "must be within [-180, 180], got %v", c.Lng)
	}
	return nil
}

// Location is a coordinate plus a display-only address.
type Location struct {
	Coordinate
	Address string
}

// Journey is a traveler's declared trip.
type Journey struct {
	Start   Location
	End     Location
	Vehicle VehicleClass
}

// Validate checks both ends and the vehicle class.
func (j Journey) Validate() error {
	if err := j.Start.Validate("start"); err != nil {
		return err
	}
	if err := j.End.Validate("end"); err != nil {
		return err
	}
	if !j.Vehicle.Valid() {
		return apperr.Invalidf("vehicle", "unknown vehicle class %q", j.Vehicle)
	}
	return nil
}
