package schedule

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns schedules ordered by scheduled time ascending, optionally
	// filtered to one department.
	List(ctx context.Context, department string) ([]*Schedule, error)
	ListByPatientToken(ctx context.Context, token string) ([]*Schedule, error)
}
