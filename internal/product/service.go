package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/pagination"
)

type Service interface {
	ListProducts(ctx context.Context, filter ListFilter) (*Page, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch Patch) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) (*Page, error) {
	p := pagination.New(filter.Page, filter.Limit, 12)
	filter.SortBy = ParseSortKey(string(filter.SortBy))

	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return &Page{Products: []Product{}, CurrentPage: p.Page}, nil
	}

	products, total, err := s.repo.List(ctx, filter, p.Limit, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return &Page{
		Products:      products,
		TotalPages:    p.TotalPages(total),
		CurrentPage:   p.Page,
		TotalProducts: total,
	}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}
	return p, nil
}

func (s *service) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	p.ID = uuid.Nil
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	zerolog.Ctx(ctx).Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return p, nil
}

// UpdateProduct merges patch into the stored product and saves the result.
func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, patch Patch) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to load product for update: %w", err)
	}

	patch.Apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to reload product: %w", err)
	}

	zerolog.Ctx(ctx).Info().Stringer("product_id", id).Msg("product updated")
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	zerolog.Ctx(ctx).Info().Stringer("product_id", id).Msg("product deleted")
	return nil
}
