package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const scheduleColumns = `id, department, type, patient_token, doctor_name,
	room_number, scheduled_time, status, notes, created_at, updated_at`

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.Department, &s.Type, &s.PatientToken, &s.DoctorName,
		&s.RoomNumber, &s.ScheduledTime, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) Create(ctx context.Context, s *Schedule) error {
	const q = `
		INSERT INTO schedules (department, type, patient_token, doctor_name,
			room_number, scheduled_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, q, s.Department, s.Type, s.PatientToken,
		s.DoctorName, s.RoomNumber, s.ScheduledTime, s.Status, s.Notes).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`

	s, err := scanSchedule(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("schedule not found")
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return s, nil
}

func (r *repoPG) Update(ctx context.Context, s *Schedule) error {
	const q = `
		UPDATE schedules
		SET type = $2, doctor_name = $3, room_number = $4, scheduled_time = $5,
			status = $6, notes = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, q, s.ID, s.Type, s.DoctorName, s.RoomNumber,
		s.ScheduledTime, s.Status, s.Notes).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("schedule not found")
		}
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("schedule not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, department string) ([]*Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM schedules`
	args := []interface{}{}
	if department != "" {
		q += ` WHERE department = $1`
		args = append(args, department)
	}
	q += ` ORDER BY scheduled_time ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repoPG) ListByPatientToken(ctx context.Context, token string) ([]*Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM schedules
		WHERE patient_token = $1 ORDER BY scheduled_time ASC`

	rows, err := r.pool.Query(ctx, q, token)
	if err != nil {
		return nil, fmt.Errorf("list schedules by token: %w", err)
	}
	defer rows.Close()

	var out []*Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
