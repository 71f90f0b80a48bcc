package domain

import (
	"fmt"
	"strings"
	"time"

	"tripndrop/internal/apperr"
	"tripndrop/internal/otp"
)

// Actor is an authenticated caller.
type Actor struct {
	ID   string
	Role Role
}

// Draft is what a sender submits to create a delivery.
type Draft struct {
	Pickup          Location
	Dropoff         Location
	ReceiverContact string
	Vehicle         VehicleClass
}

// Validate checks coordinates, contact and vehicle class.
func (d Draft) Validate() error {
	if err := d.Pickup.Validate("pickup"); err != nil {
		return err
	}
	if err := d.Dropoff.Validate("dropoff"); err != nil {
		return err
	}
	if !ValidateContact(strings.TrimSpace(d.ReceiverContact)) {
		return apperr.Invalidf("receiver_contact", "must be a phone number")
	}
	if !d.Vehicle.Valid() {
		return apperr.Invalidf("vehicle", "unknown vehicle class %q", d.Vehicle)
	}
	return nil
}

// Delivery is a sender's request to move a parcel from Pickup to Dropoff.
type Delivery struct {
	ID              string
	SenderID        string
	Pickup          Location
	Dropoff         Location
	ReceiverContact string
	Vehicle         VehicleClass
	TravelerID      string
	Status          DeliveryStatus
	OTP             string
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
	AcceptedAt      *time.Time
	StartedAt       *time.Time
	DeliveredAt     *time.Time
	Version         int64
	// OTPAttempts counts rejected completion codes.
	OTPAttempts int
}

// MaxOTPAttempts is how many wrong codes a delivery tolerates before
// completion is refused for good.
const MaxOTPAttempts = 5

// NewDelivery builds a pending delivery from a validated draft.
func NewDelivery(id, senderID string, d Draft, now time.Time) Delivery {
	return Delivery{
		ID:              id,
		SenderID:        senderID,
		Pickup:          d.Pickup,
		Dropoff:         d.Dropoff,
		ReceiverContact: strings.TrimSpace(d.ReceiverContact),
		Vehicle:         d.Vehicle,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		CreatedAt:       now,
	}
}

// Accept assigns the delivery to actor and stores a fresh code from gen.
// gen is only called once every guard has passed.
func (d *Delivery) Accept(actor Actor, now time.Time, gen func() (string, error)) error {
	if actor.Role != RoleTraveler || actor.ID == "" || actor.ID == d.SenderID {
		return apperr.ErrUnauthorized
	}
	if d.Status != StatusPending {
		return apperr.ErrUnavailable
	}
	code, err := gen()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	d.TravelerID = actor.ID
	d.OTP = code
	d.Status = StatusAccepted
	d.AcceptedAt = &now
	return nil
}

// Start moves an accepted delivery into transit.
func (d *Delivery) Start(actor Actor, now time.Time) error {
	if err := d.checkCarrier(actor, StatusAccepted); err != nil {
		return err
	}
	d.Status = StatusInTransit
	d.StartedAt = &now
	return nil
}

// Complete finishes an in-transit delivery if code matches the stored OTP.
func (d *Delivery) Complete(actor Actor, code string, now time.Time) error {
	if err := d.checkCarrier(actor, StatusInTransit); err != nil {
		return err
	}
	if d.OTPAttempts >= MaxOTPAttempts {
		return apperr.ErrOTPLocked
	}
	if !otp.Verify(code, d.OTP) {
		d.OTPAttempts++
		return apperr.ErrInvalidOTP
	}
	d.Status = StatusDelivered
	d.DeliveredAt = &now
	d.PaymentStatus = PaymentCompleted
	return nil
}

func (d *Delivery) checkCarrier(actor Actor, want DeliveryStatus) error {
	if d.TravelerID == "" {
		return apperr.ErrInvalidTransition
	}
	if actor.ID != d.TravelerID {
		return apperr.ErrUnauthorized
	}
	if d.Status != want {
		return apperr.ErrInvalidTransition
	}
	return nil
}

// VisibleTo reports whether actor may read the delivery.
func (d *Delivery) VisibleTo(actor Actor) bool {
	return actor.ID != "" && (actor.ID == d.SenderID || actor.ID == d.TravelerID)
}

// Redacted returns a copy without the OTP.
func (d Delivery) Redacted() Delivery {
	d.OTP = ""
	return d
}

// CheckInvariants reports the first broken state invariant, if any.
func (d *Delivery) CheckInvariants() error {
	pending := d.Status == StatusPending
	delivered := d.Status == StatusDelivered
	switch {
	case !d.Status.Valid():
		return fmt.Errorf("unknown status %q", d.Status)
	case pending != (d.TravelerID == ""):
		return fmt.Errorf("traveler %q inconsistent with status %s", d.TravelerID, d.Status)
	case pending != (d.OTP == ""):
		return fmt.Errorf("otp presence inconsistent with status %s", d.Status)
	case delivered != (d.DeliveredAt != nil):
		return fmt.Errorf("delivered_at inconsistent with status %s", d.Status)
	case delivered != (d.PaymentStatus == PaymentCompleted):
		return fmt.Errorf("payment %s inconsistent with status %s", d.PaymentStatus, d.Status)
	}
	return nil
}
