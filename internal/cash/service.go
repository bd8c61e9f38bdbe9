package cash

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wearkati/katicontrol/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]Movement, error)
	Create(ctx context.Context, date time.Time, input MovementInput) (Movement, error)
	Update(ctx context.Context, transactionID int64, date time.Time, input MovementInput) (Movement, error)
	Delete(ctx context.Context, transactionID int64) error
	PositionSums(ctx context.Context) (totalPaid, totalExpenses, injections, withdrawals, unpaidEstimate float64, err error)
}

// Service handles manual cash movements and the derived cash position.
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

// Overview returns all movements plus the current position.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	movements, err := s.repo.List(ctx)
	if err != nil {
		return Overview{}, err
	}
	position, err := s.Position(ctx)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Movements: movements, Position: position}, nil
}

// Position computes the current cash standing.
func (s *Service) Position(ctx context.Context) (Position, error) {
	totalPaid, totalExpenses, injections, withdrawals, unpaidEstimate, err := s.repo.PositionSums(ctx)
	if err != nil {
		return Position{}, fmt.Errorf("cash: position sums: %w", err)
	}
	return BuildPosition(totalPaid, totalExpenses, injections, withdrawals, unpaidEstimate), nil
}

// Create validates and inserts a movement.
func (s *Service) Create(ctx context.Context, input MovementInput) (Movement, error) {
	if err := s.validate.Struct(input); err != nil {
		return Movement{}, fmt.Errorf("cash: invalid movement: %w", err)
	}
	date, err := shared.ParseDate(input.Date, s.now())
	if err != nil {
		return Movement{}, fmt.Errorf("cash: invalid date: %w", err)
	}
	return s.repo.Create(ctx, date, input)
}

// Update validates and rewrites a movement.
func (s *Service) Update(ctx context.Context, transactionID int64, input MovementInput) (Movement, error) {
	if err := s.validate.Struct(input); err != nil {
		return Movement{}, fmt.Errorf("cash: invalid movement: %w", err)
	}
	date, err := shared.ParseDate(input.Date, s.now())
	if err != nil {
		return Movement{}, fmt.Errorf("cash: invalid date: %w", err)
	}
	return s.repo.Update(ctx, transactionID, date, input)
}

// Delete removes a movement.
func (s *Service) Delete(ctx context.Context, transactionID int64) error {
	return s.repo.Delete(ctx, transactionID)
}
