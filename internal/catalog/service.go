package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]ProductWithStats, error)
	Get(ctx context.Context, productID int64) (Product, error)
	Create(ctx context.Context, input ProductInput) (int64, error)
	Update(ctx context.Context, productID int64, input ProductInput) error
	Deactivate(ctx context.Context, productID int64) error
}

// Service handles the product catalog.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns active products with order statistics.
func (s *Service) List(ctx context.Context) ([]ProductWithStats, error) {
	return s.repo.List(ctx)
}

// Get fetches one product, active or not.
func (s *Service) Get(ctx context.Context, productID int64) (Product, error) {
	return s.repo.Get(ctx, productID)
}

// Create validates and inserts a product.
func (s *Service) Create(ctx context.Context, input ProductInput) (Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return Product{}, fmt.Errorf("catalog: invalid product: %w", err)
	}
	productID, err := s.repo.Create(ctx, input)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, productID)
}

// Update validates and rewrites a product.
func (s *Service) Update(ctx context.Context, productID int64, input ProductInput) (Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return Product{}, fmt.Errorf("catalog: invalid product: %w", err)
	}
	if err := s.repo.Update(ctx, productID, input); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, productID)
}

// Deactivate hides a product from the catalog without touching its orders.
func (s *Service) Deactivate(ctx context.Context, productID int64) error {
	return s.repo.Deactivate(ctx, productID)
}
