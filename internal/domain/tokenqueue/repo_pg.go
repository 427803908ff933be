package tokenqueue

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) GetCurrent(ctx context.Context, department string) (*QueueState, error) {
	// Create-at-zero if absent; DO UPDATE with a no-op assignment makes
	// RETURNING yield the existing row.
	const q = `
		INSERT INTO token_queues (department, current_token, updated_at)
		VALUES ($1, 0, now())
		ON CONFLICT (department) DO UPDATE SET department = EXCLUDED.department
		RETURNING department, current_token, last_reset_at, updated_at`

	var s QueueState
	err := r.pool.QueryRow(ctx, q, department).
		Scan(&s.Department, &s.CurrentToken, &s.LastResetAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get queue state: %w", err)
	}
	return &s, nil
}

func (r *repoPG) Advance(ctx context.Context, department string) (*QueueState, error) {
	const q = `
		INSERT INTO token_queues (department, current_token, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (department) DO UPDATE
		SET current_token = token_queues.current_token + 1, updated_at = now()
		RETURNING department, current_token, last_reset_at, updated_at`

	var s QueueState
	err := r.pool.QueryRow(ctx, q, department).
		Scan(&s.Department, &s.CurrentToken, &s.LastResetAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("advance queue: %w", err)
	}
	return &s, nil
}

func (r *repoPG) Reset(ctx context.Context, department string) (*QueueState, error) {
	const q = `
		INSERT INTO token_queues (department, current_token, last_reset_at, updated_at)
		VALUES ($1, 0, now(), now())
		ON CONFLICT (department) DO UPDATE
		SET current_token = 0, last_reset_at = now(), updated_at = now()
		RETURNING department, current_token, last_reset_at, updated_at`

	var s QueueState
	err := r.pool.QueryRow(ctx, q, department).
		Scan(&s.Department, &s.CurrentToken, &s.LastResetAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("reset queue: %w", err)
	}
	return &s, nil
}

func (r *repoPG) NextSequence(ctx context.Context, department string) (int64, error) {
	const q = `
		INSERT INTO counters (department, seq)
		VALUES ($1, 1)
		ON CONFLICT (department) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq`

	var seq int64
	if err := r.pool.QueryRow(ctx, q, department).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
