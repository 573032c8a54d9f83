package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/pagination"
)

// CartClearer empties a user's cart once their order is placed.
type CartClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

type Metrics interface {
	OrderCreated(paymentMethod string)
}

type nopMetrics struct{}

func (nopMetrics) OrderCreated(string) {}

type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, in CreateInput) (*Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]Order, error)
	GetOrder(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) (*Page, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error)
}

type service struct {
	repo    Repository
	cart    CartClearer
	metrics Metrics
}

type Option func(*service)

func WithMetrics(m Metrics) Option {
	return func(s *service) { s.metrics = m }
}

func NewService(repo Repository, cart CartClearer, opts ...Option) Service {
	s := &service{repo: repo, cart: cart, metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, in CreateInput) (*Order, error) {
	logger := zerolog.Ctx(ctx)

	if err := in.Validate(); err != nil {
		logger.Warn().Err(err).Stringer("user_id", userID).Msg("order rejected")
		return nil, err
	}

	o := &Order{
		UserID:          userID,
		Items:           in.Items,
		TotalAmount:     in.TotalAmount.Round(2),
		Status:          StatusPending,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentID:       in.PaymentID,
		RazorpayOrderID: in.RazorpayOrderID,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			logger.Warn().Err(err).Stringer("user_id", userID).Msg("order rejected: insufficient stock")
			return nil, err
		}
		logger.Error().Err(err).Msg("failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	s.metrics.OrderCreated(o.PaymentMethod)
	logger.Info().
		Stringer("order_id", o.ID).
		Stringer("user_id", userID).
		Str("total", o.TotalAmount.StringFixed(2)).
		Str("payment_method", o.PaymentMethod).
		Msg("order created")

	if err := s.cart.Clear(ctx, userID); err != nil {
		logger.Error().Err(err).Stringer("order_id", o.ID).Msg("order placed but cart could not be cleared")
	}

	return o, nil
}

func (s *service) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

// GetOrder hides other users' orders behind ErrNotFound.
func (s *service) GetOrder(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	if !isAdmin && o.UserID != requesterID {
		zerolog.Ctx(ctx).Warn().
			Stringer("order_id", id).
			Stringer("requester_id", requesterID).
			Msg("order requested by non-owner")
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Status != "" {
		if _, err := ParseStatus(string(filter.Status)); err != nil {
			return nil, err
		}
	}

	p := pagination.New(filter.Page, filter.Limit, 10)
	orders, total, err := s.repo.List(ctx, filter.Status, p.Limit, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return &Page{
		Orders:      orders,
		TotalPages:  p.TotalPages(total),
		CurrentPage: p.Page,
		TotalOrders: total,
	}, nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error) {
	logger := zerolog.Ctx(ctx)

	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == status {
		return current, nil
	}

	if !current.Status.CanTransition(status) {
		logger.Warn().
			Stringer("order_id", id).
			Stringer("current_status", current.Status).
			Stringer("new_status", status).
			Msg("invalid status transition attempt")
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, current.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, current.Status, status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, ErrStatusConflict) {
			logger.Warn().Stringer("order_id", id).Stringer("expected_status", current.Status).Msg("concurrent status update")
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	logger.Info().
		Stringer("order_id", id).
		Stringer("old_status", current.Status).
		Stringer("new_status", status).
		Msg("order status updated")

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to reload order: %w", err)
	}
	return updated, nil
}
