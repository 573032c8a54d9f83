package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/pagination"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	CreateUser(ctx context.Context, user *User, password string) (*User, error)
	Register(ctx context.Context, name, email, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context, page, limit int) (*Page, error)
	ToggleBlock(ctx context.Context, id uuid.UUID) (*User, error)
}

type service struct {
	repo Repository
	cost int
}

type Option func(*service)

// WithBcryptCost overrides bcrypt.DefaultCost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *service) { s.cost = cost }
}

func NewService(repo Repository, opts ...Option) Service {
	s := &service{repo: repo, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateUser(ctx context.Context, user *User, password string) (*User, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("internal error hashing password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Name = strings.TrimSpace(user.Name)
	if user.Role == "" {
		user.Role = RoleUser
	}

	createdID, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to create user in repository")
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	user.ID = createdID

	zerolog.Ctx(ctx).Info().Stringer("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

func (s *service) Register(ctx context.Context, name, email, password string) (*User, error) {
	return s.CreateUser(ctx, &User{Name: name, Email: email, Role: RoleUser}, password)
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		zerolog.Ctx(ctx).Warn().Stringer("user_id", u.ID).Msg("login with wrong password")
		return nil, ErrInvalidCredentials
	}

	if u.IsBlocked {
		return nil, ErrBlocked
	}

	return u, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id '%s': %w", id, err)
	}
	return u, nil
}

func (s *service) ListUsers(ctx context.Context, page, limit int) (*Page, error) {
	p := pagination.New(page, limit, 10)

	users, total, err := s.repo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &Page{
		Users:       users,
		TotalPages:  p.TotalPages(total),
		CurrentPage: p.Page,
		TotalUsers:  total,
	}, nil
}

func (s *service) ToggleBlock(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.IsAdmin() {
		return nil, ErrCannotBlockAdmin
	}

	blocked := !u.IsBlocked
	if err := s.repo.SetBlocked(ctx, id, blocked); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to toggle block for user '%s': %w", id, err)
	}
	u.IsBlocked = blocked

	zerolog.Ctx(ctx).Info().Stringer("user_id", id).Bool("blocked", blocked).Msg("user block status changed")
	return u, nil
}
