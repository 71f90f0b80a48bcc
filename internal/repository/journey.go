package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripndrop/internal/domain"
	"tripndrop/internal/ports/journeylog"
)

// JourneyRepo is the Postgres journey history.
type JourneyRepo struct {
	db *pgxpool.Pool
}

// NewJourneyRepo creates a new JourneyRepo.
func NewJourneyRepo(db *pgxpool.Pool) *JourneyRepo {
	return &JourneyRepo{db: db}
}

// Append inserts rec.
func (r *JourneyRepo) Append(ctx context.Context, rec domain.JourneyRecord) error {
	j := rec.Journey
	_, err := r.db.Exec(ctx, `
        INSERT INTO journeys (
            id, traveler_id,
            start_lat, start_lng, start_address,
            end_lat, end_lng, end_address,
            vehicle, radius_policy, radius_km, matches, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `,
		rec.ID, rec.TravelerID,
		j.Start.Lat, j.Start.Lng, j.Start.Address,
		j.End.Lat, j.End.Lng, j.End.Address,
		string(j.Vehicle), string(rec.Policy), rec.RadiusKm, rec.Matches, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert journey %s: %w", rec.ID, err)
	}
	return nil
}

// ListByTraveler returns at most limit records, newest first.
func (r *JourneyRepo) ListByTraveler(ctx context.Context, travelerID string, limit int) ([]domain.JourneyRecord, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, traveler_id,
               start_lat, start_lng, start_address,
               end_lat, end_lng, end_address,
               vehicle, radius_policy, radius_km, matches, created_at
        FROM journeys
        WHERE traveler_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `, travelerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list journeys: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.JourneyRecord, error) {
		var (
			rec             domain.JourneyRecord
			vehicle, policy string
		)
		err := row.Scan(
			&rec.ID, &rec.TravelerID,
			&rec.Journey.Start.Lat, &rec.Journey.Start.Lng, &rec.Journey.Start.Address,
			&rec.Journey.End.Lat, &rec.Journey.End.Lng, &rec.Journey.End.Address,
			&vehicle, &policy, &rec.RadiusKm, &rec.Matches, &rec.CreatedAt,
		)
		rec.Journey.Vehicle = domain.VehicleClass(vehicle)
		rec.Policy = domain.RadiusPolicy(policy)
		rec.CreatedAt = rec.CreatedAt.UTC()
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("list journeys: %w", err)
	}
	return out, nil
}

var _ journeylog.Store = (*JourneyRepo)(nil)
