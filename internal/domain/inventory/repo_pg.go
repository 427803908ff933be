package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const itemCols = `id, drug_name, current_stock, reorder_threshold, location,
	notes, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.DrugName, &it.CurrentStock, &it.ReorderThreshold,
		&it.Location, &it.Notes, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.IsLowStock = it.LowStock()
	return &it, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repoPG) Create(ctx context.Context, item *Item) error {
	item.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO inventory_items (id, drug_name, current_stock, reorder_threshold, location, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		item.ID, item.DrugName, item.CurrentStock, item.ReorderThreshold,
		item.Location, item.Notes,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("drug %q already tracked", item.DrugName)
	}
	if err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}
	item.IsLowStock = item.LowStock()
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemCols+` FROM inventory_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("inventory item not found")
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *repoPG) Update(ctx context.Context, item *Item) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET drug_name = $2, current_stock = $3, reorder_threshold = $4,
			location = $5, notes = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		item.ID, item.DrugName, item.CurrentStock, item.ReorderThreshold,
		item.Location, item.Notes,
	).Scan(&item.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("drug %q already tracked", item.DrugName)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("inventory item not found")
	}
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	item.IsLowStock = item.LowStock()
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("inventory item not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*Item, error) {
	return r.query(ctx, `SELECT `+itemCols+` FROM inventory_items ORDER BY drug_name ASC`)
}

func (r *repoPG) ListLowStock(ctx context.Context) ([]*Item, error) {
	return r.query(ctx, `SELECT `+itemCols+` FROM inventory_items
		WHERE current_stock <= reorder_threshold ORDER BY drug_name ASC`)
}

func (r *repoPG) query(ctx context.Context, q string) ([]*Item, error) {
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
