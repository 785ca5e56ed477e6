package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores call leads in the relational database.
type PostgresRepository struct {
	pool querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithQuerier(q querier) *PostgresRepository {
	if q == nil {
		panic("leads: querier required")
	}
	return &PostgresRepository{pool: q}
}

const leadColumns = `id, call_id, created_at, disposition, caller_name, phone,
		year, make, model, drives, mileage_km, price_given, city, notes, asking_price,
		distance_km, pickup_postal, city_raw, city_score, rule_applied,
		auto_offer_eligible, auto_offer_initial, auto_offer_final, auto_offer_status, desired_price,
		callback_best_number, callback_number`

// Save inserts the record. Replaying the same call id updates the row.
func (r *PostgresRepository) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	query := `
		INSERT INTO call_leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
		ON CONFLICT (call_id) DO UPDATE SET
			disposition = EXCLUDED.disposition,
			price_given = EXCLUDED.price_given,
			notes = EXCLUDED.notes,
			rule_applied = EXCLUDED.rule_applied,
			auto_offer_final = EXCLUDED.auto_offer_final,
			auto_offer_status = EXCLUDED.auto_offer_status,
			callback_best_number = EXCLUDED.callback_best_number,
			callback_number = EXCLUDED.callback_number
	`
	if _, err := r.pool.Exec(ctx, query,
		id,
		rec.CallID,
		ts,
		rec.Disposition,
		rec.CallerName,
		rec.Phone,
		rec.Year,
		rec.Make,
		rec.Model,
		rec.Drives,
		rec.MileageKm,
		rec.PriceGiven,
		rec.City,
		rec.Notes,
		rec.AskingPrice,
		rec.DistanceKm,
		rec.PickupPostal,
		rec.CityRaw,
		rec.CityScore,
		rec.RuleApplied,
		rec.AutoOfferEligible,
		rec.AutoOfferInitial,
		rec.AutoOfferFinal,
		rec.AutoOfferStatus,
		rec.DesiredPrice,
		rec.CallbackBestNumber,
		rec.CallbackNumber,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

// GetByCallID fetches the lead for one call.
func (r *PostgresRepository) GetByCallID(ctx context.Context, callID string) (*Record, error) {
	query := `SELECT ` + leadColumns + ` FROM call_leads WHERE call_id = $1`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, callID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return rec, nil
}

// List returns leads newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + leadColumns + ` FROM call_leads
		WHERE ($1 = '' OR auto_offer_status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(
		&rec.ID,
		&rec.CallID,
		&rec.Timestamp,
		&rec.Disposition,
		&rec.CallerName,
		&rec.Phone,
		&rec.Year,
		&rec.Make,
		&rec.Model,
		&rec.Drives,
		&rec.MileageKm,
		&rec.PriceGiven,
		&rec.City,
		&rec.Notes,
		&rec.AskingPrice,
		&rec.DistanceKm,
		&rec.PickupPostal,
		&rec.CityRaw,
		&rec.CityScore,
		&rec.RuleApplied,
		&rec.AutoOfferEligible,
		&rec.AutoOfferInitial,
		&rec.AutoOfferFinal,
		&rec.AutoOfferStatus,
		&rec.DesiredPrice,
		&rec.CallbackBestNumber,
		&rec.CallbackNumber,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
