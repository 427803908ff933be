package inventory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts a new item; the drug name is unique (case-sensitive)
	// and a duplicate yields a conflict error.
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Item, error)
	// ListLowStock evaluates the threshold predicate at query time.
	ListLowStock(ctx context.Context) ([]*Item, error)
}
