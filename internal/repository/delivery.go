package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripndrop/internal/apperr"
	"tripndrop/internal/domain"
	"tripndrop/internal/ports/deliverytx"
)

const deliveryColumns = `
    id, sender_id,
    pickup_lat, pickup_lng, pickup_address,
    dropoff_lat, dropoff_lng, dropoff_address,
    receiver_contact, vehicle, traveler_id, status, otp, payment_status,
    created_at, accepted_at, started_at, delivered_at, version, otp_attempts`

// DeliveryRepo is the Postgres delivery store.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// откатываем в случае паники
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get returns the delivery or nil.
func (r *DeliveryRepo) Get(ctx context.Context, id string) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`, id)
	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %q: %w", id, err)
	}
	return &d, nil
}

// GetMany returns the existing deliveries among ids, oldest first.
func (r *DeliveryRepo) GetMany(ctx context.Context, ids []string) ([]domain.Delivery, error) {
	if len(ids) == 0 {
		return []domain.Delivery{}, nil
	}
	return r.list(ctx, "get deliveries", `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE id = ANY($1)
        ORDER BY created_at, id
    `, ids)
}

// ListPending returns pending deliveries, oldest first.
func (r *DeliveryRepo) ListPending(ctx context.Context, vehicle domain.VehicleClass) ([]domain.Delivery, error) {
	return r.list(ctx, "list pending", `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE status = 'pending' AND ($1 = '' OR vehicle = $1)
        ORDER BY created_at, id
    `, string(vehicle))
}

// ListPendingSince returns pending deliveries created at or after since,
// oldest first.
func (r *DeliveryRepo) ListPendingSince(ctx context.Context, vehicle domain.VehicleClass, since time.Time) ([]domain.Delivery, error) {
	return r.list(ctx, "list pending since", `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE status = 'pending' AND ($1 = '' OR vehicle = $1) AND created_at >= $2
        ORDER BY created_at, id
    `, string(vehicle), since)
}

// ListBySender returns the sender's deliveries, newest first.
func (r *DeliveryRepo) ListBySender(ctx context.Context, senderID string) ([]domain.Delivery, error) {
	return r.list(ctx, "list by sender", `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE sender_id = $1
        ORDER BY created_at DESC, id DESC
    `, senderID)
}

// ListByTraveler returns the traveler's jobs, newest first.
func (r *DeliveryRepo) ListByTraveler(ctx context.Context, travelerID string) ([]domain.Delivery, error) {
	return r.list(ctx, "list by traveler", `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE traveler_id = $1
        ORDER BY created_at DESC, id DESC
    `, travelerID)
}

func (r *DeliveryRepo) list(ctx context.Context, op, query string, args ...any) ([]domain.Delivery, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Delivery, error) {
		return scanDelivery(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// TxRepo is the transaction-scoped repository.
type TxRepo struct {
	tx pgx.Tx
}

// GetForUpdate locks the row until the transaction ends.
func (r *TxRepo) GetForUpdate(ctx context.Context, id string) (*domain.Delivery, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1 FOR UPDATE`, id)
	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %q for update: %w", id, err)
	}
	return &d, nil
}

// Insert adds a new delivery.
func (r *TxRepo) Insert(ctx context.Context, d *domain.Delivery) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO deliveries (`+deliveryColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
                NULLIF($11, ''), $12, NULLIF($13, ''), $14, $15, $16, $17, $18, $19, $20)
    `,
		d.ID, d.SenderID,
		d.Pickup.Lat, d.Pickup.Lng, d.Pickup.Address,
		d.Dropoff.Lat, d.Dropoff.Lng, d.Dropoff.Address,
		d.ReceiverContact, string(d.Vehicle), d.TravelerID, string(d.Status), d.OTP, string(d.PaymentStatus),
		d.CreatedAt, d.AcceptedAt, d.StartedAt, d.DeliveredAt, d.Version, d.OTPAttempts,
	)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("insert delivery %s: %w", d.ID, apperr.ErrConflict)
		}
		return fmt.Errorf("insert delivery %s: %w", d.ID, err)
	}
	return nil
}

// Update writes the mutable columns if status and version still match.
func (r *TxRepo) Update(ctx context.Context, d *domain.Delivery, expectedStatus domain.DeliveryStatus, expectedVersion int64) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE deliveries
        SET traveler_id    = NULLIF($2, ''),
            status         = $3,
            otp            = NULLIF($4, ''),
            payment_status = $5,
            accepted_at    = $6,
            started_at     = $7,
            delivered_at   = $8,
            version        = $9,
            otp_attempts   = $12
        WHERE id = $1 AND status = $10 AND version = $11
    `,
		d.ID, d.TravelerID, string(d.Status), d.OTP, string(d.PaymentStatus),
		d.AcceptedAt, d.StartedAt, d.DeliveredAt, d.Version,
		string(expectedStatus), expectedVersion, d.OTPAttempts,
	)
	if err != nil {
		if IsCheckViolation(err) {
			return fmt.Errorf("update delivery %s: %w", d.ID, apperr.ErrInvalidTransition)
		}
		return fmt.Errorf("update delivery %s: %w", d.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("update delivery %s: %w", d.ID, apperr.ErrConflict)
	}
	return nil
}

func scanDelivery(row pgx.Row) (domain.Delivery, error) {
	var (
		d                     domain.Delivery
		vehicle, status, pay  string
		travelerID, otp       *string
		accepted, started, dv *time.Time
	)
	err := row.Scan(
		&d.ID, &d.SenderID,
		&d.Pickup.Lat, &d.Pickup.Lng, &d.Pickup.Address,
		&d.Dropoff.Lat, &d.Dropoff.Lng, &d.Dropoff.Address,
		&d.ReceiverContact, &vehicle, &travelerID, &status, &otp, &pay,
		&d.CreatedAt, &accepted, &started, &dv, &d.Version, &d.OTPAttempts,
	)
	if err != nil {
		return domain.Delivery{}, err
	}
	d.Vehicle = domain.VehicleClass(vehicle)
	d.Status = domain.DeliveryStatus(status)
	d.PaymentStatus = domain.PaymentStatus(pay)
	if travelerID != nil {
		d.TravelerID = *travelerID
	}
	if otp != nil {
		d.OTP = *otp
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.AcceptedAt = utc(accepted)
	d.StartedAt = utc(started)
	d.DeliveredAt = utc(dv)
	return d, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

var _ deliverytx.Store = (*DeliveryRepo)(nil)
