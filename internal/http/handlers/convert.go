package handlers

import (
	"strings"

	"tripndrop/internal/apperr"
	"tripndrop/internal/domain"
	"tripndrop/internal/service/matching"
)

func (p pointDTO) toModel(field string) (domain.Location, error) {
	if p.Lat == nil {
		return domain.Location{}, apperr.Invalidf(field+".lat", "is required")
	}
	if p.Lng == nil {
		return domain.Location{}, apperr.Invalidf(field+".lng", "is required")
	}
	return domain.Location{
		Coordinate: domain.Coordinate{Lat: *p.Lat, Lng: *p.Lng},
		Address:    strings.TrimSpace(p.Address),
	}, nil
}

func parseVehicle(raw string) (domain.VehicleClass, error) {
	v, ok := domain.ParseVehicleClass(raw)
	if !ok {
		return "", apperr.Invalidf("vehicle", "unknown vehicle class %q", raw)
	}
	return v, nil
}

func (r createDeliveryRequest) toModel() (domain.Draft, error) {
	pickup, err := r.Pickup.toModel("pickup")
	if err != nil {
		return domain.Draft{}, err
	}
	dropoff, err := r.Dropoff.toModel("dropoff")
	if err != nil {
		return domain.Draft{}, err
	}
	vehicle, err := parseVehicle(r.Vehicle)
	if err != nil {
		return domain.Draft{}, err
	}
	return domain.Draft{
		Pickup:          pickup,
		Dropoff:         dropoff,
		ReceiverContact: r.ReceiverContact,
		Vehicle:         vehicle,
	}, nil
}

func (r matchRequest) toModel() (matching.Query, error) {
	start, err := r.Start.toModel("start")
	if err != nil {
		return matching.Query{}, err
	}
	end, err := r.End.toModel("end")
	if err != nil {
		return matching.Query{}, err
	}
	vehicle, err := parseVehicle(r.Vehicle)
	if err != nil {
		return matching.Query{}, err
	}
	return matching.Query{
		Journey: domain.Journey{Start: start, End: end, Vehicle: vehicle},
		Policy:  domain.RadiusPolicy(strings.ToLower(strings.TrimSpace(r.RadiusPolicy))),
	}, nil
}

func locationToResponse(l domain.Location) locationDTO {
	return locationDTO{Lat: l.Lat, Lng: l.Lng, Address: l.Address}
}

func deliveryToResponse(d domain.Delivery) deliveryDTO {
	return deliveryDTO{
		ID:              d.ID,
		SenderID:        d.SenderID,
		TravelerID:      d.TravelerID,
		Pickup:          locationToResponse(d.Pickup),
		Dropoff:         locationToResponse(d.Dropoff),
		ReceiverContact: d.ReceiverContact,
		Vehicle:         string(d.Vehicle),
		Status:          string(d.Status),
		PaymentStatus:   string(d.PaymentStatus),
		OTP:             d.OTP,
		CreatedAt:       d.CreatedAt,
		AcceptedAt:      d.AcceptedAt,
		StartedAt:       d.StartedAt,
		DeliveredAt:     d.DeliveredAt,
	}
}

func deliveriesToResponse(list []domain.Delivery) []deliveryDTO {
	out := make([]deliveryDTO, 0, len(list))
	for _, d := range list {
		out = append(out, deliveryToResponse(d))
	}
	return out
}

func matchesToResponse(list []domain.Delivery) matchResponse {
	out := make([]matchDTO, 0, len(list))
	for _, d := range list {
		out = append(out, matchDTO{
			ID:        d.ID,
			Pickup:    locationToResponse(d.Pickup),
			Dropoff:   locationToResponse(d.Dropoff),
			Vehicle:   string(d.Vehicle),
			CreatedAt: d.CreatedAt,
		})
	}
	return matchResponse{Count: len(out), Matches: out}
}

func journeysToResponse(list []domain.JourneyRecord) []journeyDTO {
	out := make([]journeyDTO, 0, len(list))
	for _, rec := range list {
		out = append(out, journeyDTO{
			ID:           rec.ID,
			Start:        locationToResponse(rec.Journey.Start),
			End:          locationToResponse(rec.Journey.End),
			Vehicle:      string(rec.Journey.Vehicle),
			RadiusPolicy: string(rec.Policy),
			RadiusKm:     rec.RadiusKm,
			Matches:      rec.Matches,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return out
}
