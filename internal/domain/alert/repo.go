package alert

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	// Deactivate flips an active alert off and stamps deactivatedAt. An
	// already-inactive alert yields a conflict error.
	Deactivate(ctx context.Context, id uuid.UUID) (*Alert, error)
	// ListActive and ListAll return alerts newest-first by triggeredAt.
	ListActive(ctx context.Context) ([]*Alert, error)
	ListAll(ctx context.Context) ([]*Alert, error)
}
