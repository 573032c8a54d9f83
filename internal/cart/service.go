package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
)

// ProductReader is the slice of the catalog the cart needs for stock checks.
type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	products ProductReader
}

func NewService(repo Repository, products ProductReader) Service {
	return &service{repo: repo, products: products}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	lines, err := s.repo.Lines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cart: %w", err)
	}
	return newCart(lines), nil
}

// AddItem creates the line or increments it. The stock check and the write
// are not atomic; concurrent adds may oversell by a small margin.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	p, err := s.product(ctx, productID)
	if err != nil {
		return err
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}

	existing, err := s.repo.Quantity(ctx, userID, productID)
	if err != nil {
		return fmt.Errorf("service: failed to read cart line: %w", err)
	}

	newQuantity := existing + quantity
	if p.Stock < newQuantity {
		zerolog.Ctx(ctx).Warn().
			Stringer("product_id", productID).
			Int("stock", p.Stock).
			Int("requested", newQuantity).
			Msg("add to cart rejected: insufficient stock")
		return ErrInsufficientStock
	}

	if err := s.repo.SetQuantity(ctx, userID, productID, newQuantity); err != nil {
		return fmt.Errorf("service: failed to add item to cart: %w", err)
	}
	return nil
}

func (s *service) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	p, err := s.product(ctx, productID)
	if err != nil {
		return err
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}

	if err := s.repo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		return fmt.Errorf("service: failed to update cart line: %w", err)
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, productID); err != nil {
		return fmt.Errorf("service: failed to remove cart line: %w", err)
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}
	return nil
}

func (s *service) product(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to load product %s: %w", id, err)
	}
	return p, nil
}
