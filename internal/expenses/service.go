package expenses

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wearkati/katicontrol/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]Expense, error)
	Get(ctx context.Context, expenseID int64) (Expense, error)
	Create(ctx context.Context, date time.Time, input ExpenseInput) (int64, error)
	Update(ctx context.Context, expenseID int64, date time.Time, input ExpenseInput) error
	Delete(ctx context.Context, expenseID int64) error
	SumByDrop(ctx context.Context, dropID int64) (float64, error)
}

// Service handles expense tracking.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New(), now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// List returns expenses matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Expense, error) {
	return s.repo.List(ctx, filter)
}

// Get fetches one expense.
func (s *Service) Get(ctx context.Context, expenseID int64) (Expense, error) {
	return s.repo.Get(ctx, expenseID)
}

// Create validates and inserts an expense.
func (s *Service) Create(ctx context.Context, input ExpenseInput) (Expense, error) {
	if err := s.validate.Struct(input); err != nil {
		return Expense{}, fmt.Errorf("expenses: invalid expense: %w", err)
	}
	date, err := shared.ParseDate(input.Date, s.now())
	if err != nil {
		return Expense{}, fmt.Errorf("expenses: invalid date: %w", err)
	}
	expenseID, err := s.repo.Create(ctx, date, input)
	if err != nil {
		return Expense{}, err
	}
	return s.repo.Get(ctx, expenseID)
}

// Update validates and rewrites an expense.
func (s *Service) Update(ctx context.Context, expenseID int64, input ExpenseInput) (Expense, error) {
	if err := s.validate.Struct(input); err != nil {
		return Expense{}, fmt.Errorf("expenses: invalid expense: %w", err)
	}
	date, err := shared.ParseDate(input.Date, s.now())
	if err != nil {
		return Expense{}, fmt.Errorf("expenses: invalid date: %w", err)
	}
	if err := s.repo.Update(ctx, expenseID, date, input); err != nil {
		return Expense{}, err
	}
	return s.repo.Get(ctx, expenseID)
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, expenseID int64) error {
	return s.repo.Delete(ctx, expenseID)
}

// SumByDrop totals a drop's direct expenses.
func (s *Service) SumByDrop(ctx context.Context, dropID int64) (float64, error) {
	return s.repo.SumByDrop(ctx, dropID)
}
