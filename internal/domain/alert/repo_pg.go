package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const alertCols = `id, type, message, active, triggered_by, triggered_at, deactivated_at`

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.Type, &a.Message, &a.Active, &a.TriggeredBy,
		&a.TriggeredAt, &a.DeactivatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO alerts (id, type, message, active, triggered_by)
		VALUES ($1,$2,$3,true,$4)
		RETURNING triggered_at`,
		a.ID, a.Type, a.Message, a.TriggeredBy,
	).Scan(&a.TriggeredAt)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	a.Active = true
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	a, err := scanAlert(r.pool.QueryRow(ctx,
		`SELECT `+alertCols+` FROM alerts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("alert not found")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) (*Alert, error) {
	// The WHERE active guard makes concurrent deactivations race-safe:
	// exactly one caller wins, the rest see the conflict.
	a, err := scanAlert(r.pool.QueryRow(ctx, `
		UPDATE alerts SET active = false, deactivated_at = now()
		WHERE id = $1 AND active
		RETURNING `+alertCols, id))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.Conflict("alert already deactivated")
	}
	if err != nil {
		return nil, fmt.Errorf("deactivate alert: %w", err)
	}
	return a, nil
}

func (r *repoPG) ListActive(ctx context.Context) ([]*Alert, error) {
	return r.query(ctx, `SELECT `+alertCols+` FROM alerts
		WHERE active ORDER BY triggered_at DESC`)
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Alert, error) {
	return r.query(ctx, `SELECT `+alertCols+` FROM alerts ORDER BY triggered_at DESC`)
}

func (r *repoPG) query(ctx context.Context, q string) ([]*Alert, error) {
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
