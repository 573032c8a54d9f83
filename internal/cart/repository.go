package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Lines(ctx context.Context, userID uuid.UUID) ([]Line, error)
	Quantity(ctx context.Context, userID, productID uuid.UUID) (int, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Lines(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	query := `
		SELECT p.id AS product_id, p.name, p.price, p.image, p.category, p.stock, c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, p.name
	`
	lines := make([]Line, 0)
	if err := r.db.SelectContext(ctx, &lines, query, userID); err != nil {
		return nil, fmt.Errorf("repository: failed to select cart for user %s: %w", userID, err)
	}
	return lines, nil
}

// Quantity returns 0 when the user has no line for the product.
func (r *repository) Quantity(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	var qty int
	err := r.db.GetContext(ctx, &qty,
		`SELECT quantity FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("repository: failed to select cart line: %w", err)
	}
	return qty, nil
}

func (r *repository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, userID, productID, quantity, time.Now().UTC()); err != nil {
		return fmt.Errorf("repository: failed to upsert cart line: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID); err != nil {
		return fmt.Errorf("repository: failed to delete cart line: %w", err)
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("repository: failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
