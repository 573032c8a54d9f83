package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/db"
)

type Repository interface {
	Create(ctx context.Context, user *User) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, int, error)
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, name, email, password_hash, role, is_blocked, created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) (uuid.UUID, error) {
	if user.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to generate user ID: %w", err)
		}
		user.ID = id
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, name, email, password_hash, role, is_blocked, created_at, updated_at)
		VALUES (:id, :name, :email, :password_hash, :role, :is_blocked, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if db.IsUniqueViolation(err) {
			return uuid.Nil, ErrEmailExists
		}
		return uuid.Nil, fmt.Errorf("repository: failed to insert user: %w", err)
	}

	return user.ID, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by id %s: %w", id, err)
	}
	return &u, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by email: %w", err)
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count users: %w", err)
	}

	users := make([]User, 0, limit)
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_blocked = $1, updated_at = $2 WHERE id = $3`,
		blocked, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update blocked flag for user %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
