// Package audit persists evaluation outcomes in Postgres.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/md-rashed-zaman/availcap/libs/db"
	otelx "github.com/md-rashed-zaman/availcap/libs/otel"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/evaluation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
)

// Schema creates the evaluation audit table. Only outcomes are stored; configurations are never
// read back as a provider's schedule.
const Schema = `
CREATE TABLE IF NOT EXISTS availability_evaluations (
	id                 UUID PRIMARY KEY,
	business_id        TEXT,
	valid              BOOLEAN NOT NULL,
	confirmed          BOOLEAN NOT NULL DEFAULT false,
	strategy           TEXT NOT NULL DEFAULT '',
	available_slots    INTEGER NOT NULL DEFAULT 0,
	total_capacity     INTEGER NOT NULL DEFAULT 0,
	errors             JSONB NOT NULL DEFAULT '[]',
	document           JSONB NOT NULL,
	traceparent        TEXT NOT NULL DEFAULT '',
	tracestate         TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
ALTER TABLE availability_evaluations ADD COLUMN IF NOT EXISTS traceparent TEXT NOT NULL DEFAULT '';
ALTER TABLE availability_evaluations ADD COLUMN IF NOT EXISTS tracestate TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS availability_evaluations_business_created_idx
	ON availability_evaluations (business_id, created_at DESC);
`

// ErrBusinessRequired is returned by ListRecent when no business scope is given.
var ErrBusinessRequired = errors.New("business id is required")

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

func (r *Repository) Record(ctx context.Context, o evaluation.Outcome) error {
	doc, err := json.Marshal(o.Document)
	if err != nil {
		return err
	}
	errs := o.Errors
	if errs == nil {
		errs = validation.Errors{}
	}
	rawErrs, err := json.Marshal(errs)
	if err != nil {
		return err
	}
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err = r.pool.Exec(ctx, `
		INSERT INTO availability_evaluations
			(id, business_id, valid, confirmed, strategy, available_slots, total_capacity, errors, document,
			 traceparent, tracestate, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, o.ID, o.BusinessID, o.Valid, o.Confirmed, o.Document.Strategy.Type,
		o.Capacity.AvailableSlotCount, o.Capacity.TotalAppointmentCapacity, rawErrs, doc,
		traceparent, tracestate, o.EvaluatedAt)
	return err
}

type Entry struct {
	ID                       string          `json:"id"`
	BusinessID               string          `json:"business_id,omitempty"`
	Valid                    bool            `json:"valid"`
	Confirmed                bool            `json:"confirmed"`
	Strategy                 string          `json:"strategy"`
	AvailableSlotCount       int             `json:"available_slot_count"`
	TotalAppointmentCapacity int             `json:"total_appointment_capacity"`
	Errors                   json.RawMessage `json:"errors"`
	Document                 json.RawMessage `json:"document"`
	Traceparent              string          `json:"traceparent,omitempty"`
	Tracestate               string          `json:"tracestate,omitempty"`
	CreatedAt                string          `json:"created_at"`
}

// ListRecent returns one business's newest entries first.
func (r *Repository) ListRecent(ctx context.Context, businessID string, limit int) ([]Entry, error) {
	businessID = strings.TrimSpace(businessID)
	if businessID == "" {
		return nil, ErrBusinessRequired
	}
	limit = ClampLimit(limit)
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, COALESCE(business_id, ''), valid, confirmed, strategy,
			available_slots, total_capacity, errors, document, traceparent, tracestate, created_at
		FROM availability_evaluations
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt time.Time
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.Valid, &e.Confirmed, &e.Strategy,
			&e.AvailableSlotCount, &e.TotalAppointmentCapacity, &e.Errors, &e.Document,
			&e.Traceparent, &e.Tracestate, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

// ClampLimit applies the listing default and ceiling.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
