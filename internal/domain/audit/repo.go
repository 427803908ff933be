package audit

import (
	"context"

	"github.com/google/uuid"
)

// Repository is append-and-read only by construction.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	List(ctx context.Context, q Query) ([]*Entry, error)
}
