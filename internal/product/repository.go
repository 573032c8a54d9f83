package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/db"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Product, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, description, price, original_price, category, image, images, stock,
	rating, reviews, features, specifications, is_new, is_featured, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause builds the filter predicate with '?' placeholders; callers
// Rebind the final query for the driver.
func whereClause(f ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + likeEscaper.Replace(s) + "%"
		conds = append(conds, "(name ILIKE ? OR description ILIKE ?)")
		args = append(args, pattern, pattern)
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Product, int, error) {
	where, args := whereClause(filter)

	var total int
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM products` + where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	listQuery := r.db.Rebind(`SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY ` + filter.SortBy.orderBy() + ` LIMIT ? OFFSET ?`)

	products := make([]Product, 0, limit)
	if err := r.db.SelectContext(ctx, &products, listQuery, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to list products: %w", err)
	}

	return products, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}
	return &p, nil
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	if err := r.db.SelectContext(ctx, &categories, `SELECT DISTINCT category FROM products ORDER BY category`); err != nil {
		return nil, fmt.Errorf("repository: failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *repository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`, name); err != nil {
		return false, fmt.Errorf("repository: failed to check product name: %w", err)
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product ID: %w", err)
		}
		p.ID = id
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO products (id, name, description, price, original_price, category, image, images, stock,
			rating, reviews, features, specifications, is_new, is_featured, created_at, updated_at)
		VALUES (:id, :name, :description, :price, :original_price, :category, :image, :images, :stock,
			:rating, :reviews, :features, :specifications, :is_new, :is_featured, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		if db.IsCheckViolation(err) {
			return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
		}
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products SET
			name = :name, description = :description, price = :price, original_price = :original_price,
			category = :category, image = :image, images = :images, stock = :stock, rating = :rating,
			reviews = :reviews, features = :features, specifications = :specifications,
			is_new = :is_new, is_featured = :is_featured, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		if db.IsCheckViolation(err) {
			return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
		}
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	return requireAffected(res, p.ID)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %s: %w", id, err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read rows affected for product %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
