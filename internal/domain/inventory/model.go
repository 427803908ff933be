// Package inventory is the pharmacy drug-stock ledger. Low-stock status is
// always computed from current stock against the reorder threshold, never
// stored.
package inventory

import (
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID               uuid.UUID `json:"id"`
	DrugName         string    `json:"drugName"`
	CurrentStock     int       `json:"currentStock"`
	ReorderThreshold int       `json:"reorderThreshold"`
	Location         *string   `json:"location,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	IsLowStock       bool      `json:"isLowStock"`
}

// LowStock is boundary-inclusive: stock equal to the threshold counts.
func (i *Item) LowStock() bool {
	return i.CurrentStock <= i.ReorderThreshold
}

type CreateInput struct {
	DrugName         string  `json:"drugName"`
	CurrentStock     *int    `json:"currentStock"`
	ReorderThreshold *int    `json:"reorderThreshold"`
	Location         *string `json:"location"`
	Notes            *string `json:"notes"`
}

// UpdateInput is a partial patch; nil fields are left unchanged.
type UpdateInput struct {
	DrugName         *string `json:"drugName"`
	CurrentStock     *int    `json:"currentStock"`
	ReorderThreshold *int    `json:"reorderThreshold"`
	Location         *string `json:"location"`
	Notes            *string `json:"notes"`
}
