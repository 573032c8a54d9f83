package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	List(ctx context.Context, status Status, limit, offset int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `o.id, o.user_id, o.items, o.total_amount, o.status, o.shipping_address,
	o.payment_method, o.payment_id, o.razorpay_order_id, o.created_at, o.updated_at`

// orderRow carries the joined customer columns alongside the order.
type orderRow struct {
	Order
	CustomerName  sql.NullString `db:"customer_name"`
	CustomerEmail sql.NullString `db:"customer_email"`
}

func (r orderRow) toOrder() Order {
	o := r.Order
	if r.CustomerName.Valid || r.CustomerEmail.Valid {
		o.Customer = &Customer{Name: r.CustomerName.String, Email: r.CustomerEmail.String}
	}
	return o
}

// Create inserts the order and decrements stock for every item in a single
// transaction. Any item short on stock rolls the whole order back.
func (r *repository) Create(ctx context.Context, o *Order) (err error) {
	if o.ID == uuid.Nil {
		id, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		o.ID = id
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				zerolog.Ctx(ctx).Error().Err(rbErr).Stringer("order_id", o.ID).Msg("failed to rollback order transaction")
			}
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	insert := `
		INSERT INTO orders (id, user_id, items, total_amount, status, shipping_address,
			payment_method, payment_id, razorpay_order_id, created_at, updated_at)
		VALUES (:id, :user_id, :items, :total_amount, :status, :shipping_address,
			:payment_method, :payment_id, :razorpay_order_id, :created_at, :updated_at)
	`
	if _, err = tx.NamedExecContext(ctx, insert, o); err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	// Lock rows in a stable order so concurrent checkouts cannot deadlock.
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID.String() < items[j].ProductID.String() })

	for _, it := range items {
		var res sql.Result
		res, err = tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1, updated_at = $2 WHERE id = $3 AND stock >= $1`,
			it.Quantity, now, it.ProductID)
		if err != nil {
			return fmt.Errorf("repository: failed to reserve stock for product %s: %w", it.ProductID, err)
		}
		var n int64
		if n, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("repository: failed to read rows affected: %w", err)
		}
		if n == 0 {
			err = fmt.Errorf("%w: product %s", ErrInsufficientStock, it.ProductID)
			return err
		}
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + `, u.name AS customer_name, u.email AS customer_email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`

	var row orderRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}
	o := row.toOrder()
	return &o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC`

	orders := make([]Order, 0)
	if err := r.db.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, fmt.Errorf("repository: failed to select orders for user %s: %w", userID, err)
	}
	return orders, nil
}

func (r *repository) List(ctx context.Context, status Status, limit, offset int) ([]Order, int, error) {
	where := ""
	var args []any
	if status != "" {
		where = ` WHERE o.status = ?`
		args = append(args, status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM orders o`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count orders: %w", err)
	}

	query := r.db.Rebind(`SELECT ` + orderColumns + `, u.name AS customer_name, u.email AS customer_email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id` + where + `
		ORDER BY o.created_at DESC LIMIT ? OFFSET ?`)

	rows := make([]orderRow, 0, limit)
	if err := r.db.SelectContext(ctx, &rows, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to list orders: %w", err)
	}

	orders := make([]Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toOrder())
	}
	return orders, total, nil
}

// UpdateStatus moves the order from one status to another. It fails with
// ErrStatusConflict when the stored status is no longer from.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("repository: failed to update status for order %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read rows affected for order %s: %w", id, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("repository: failed to check order %s: %w", id, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}
