package drops

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wearkati/katicontrol/internal/orders"
	"github.com/wearkati/katicontrol/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]DropWithStats, error)
	Get(ctx context.Context, dropID int64) (Drop, error)
	Create(ctx context.Context, input DropInput, startDate, endDate *time.Time) (int64, error)
	Update(ctx context.Context, dropID int64, input DropInput, startDate, endDate *time.Time) error
	Delete(ctx context.Context, dropID int64) error
}

// OrdersPort supplies a drop's qualifying orders for the ROI aggregation.
type OrdersPort interface {
	ListByDrop(ctx context.Context, dropID int64) ([]orders.JoinedOrder, error)
}

// ExpensesPort supplies the drop-scoped expense total.
type ExpensesPort interface {
	SumByDrop(ctx context.Context, dropID int64) (float64, error)
}

// Service handles drop planning and profitability.
type Service struct {
	repo     RepositoryPort
	orders   OrdersPort
	expenses ExpensesPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort, ordersPort OrdersPort, expensesPort ExpensesPort) *Service {
	return &Service{repo: repo, orders: ordersPort, expenses: expensesPort, validate: validator.New()}
}

// List returns all drops with counters.
func (s *Service) List(ctx context.Context) ([]DropWithStats, error) {
	return s.repo.List(ctx)
}

// Get builds the drop detail: the drop, its enriched active orders and the
// ROI aggregation over them.
func (s *Service) Get(ctx context.Context, dropID int64) (DropDetail, error) {
	drop, err := s.repo.Get(ctx, dropID)
	if err != nil {
		return DropDetail{}, err
	}
	orderRows, err := s.orders.ListByDrop(ctx, dropID)
	if err != nil {
		return DropDetail{}, err
	}
	directExpenses, err := s.expenses.SumByDrop(ctx, dropID)
	if err != nil {
		return DropDetail{}, err
	}
	enriched := make([]orders.EnrichedOrder, 0, len(orderRows))
	for _, row := range orderRows {
		enriched = append(enriched, orders.Enrich(row))
	}
	return DropDetail{
		Drop:   drop,
		Orders: enriched,
		ROI:    ComputeROI(orderRows, directExpenses),
	}, nil
}

// Create validates and inserts a drop.
func (s *Service) Create(ctx context.Context, input DropInput) (Drop, error) {
	if input.Status == "" {
		input.Status = "planned"
	}
	if err := s.validate.Struct(input); err != nil {
		return Drop{}, fmt.Errorf("drops: invalid drop: %w", err)
	}
	startDate, endDate, err := parseDates(input)
	if err != nil {
		return Drop{}, err
	}
	dropID, err := s.repo.Create(ctx, input, startDate, endDate)
	if err != nil {
		return Drop{}, err
	}
	return s.repo.Get(ctx, dropID)
}

// Update validates and rewrites a drop.
func (s *Service) Update(ctx context.Context, dropID int64, input DropInput) (Drop, error) {
	if input.Status == "" {
		input.Status = "planned"
	}
	if err := s.validate.Struct(input); err != nil {
		return Drop{}, fmt.Errorf("drops: invalid drop: %w", err)
	}
	startDate, endDate, err := parseDates(input)
	if err != nil {
		return Drop{}, err
	}
	if err := s.repo.Update(ctx, dropID, input, startDate, endDate); err != nil {
		return Drop{}, err
	}
	return s.repo.Get(ctx, dropID)
}

// Delete removes a drop.
func (s *Service) Delete(ctx context.Context, dropID int64) error {
	return s.repo.Delete(ctx, dropID)
}

func parseDates(input DropInput) (*time.Time, *time.Time, error) {
	parse := func(raw *string) (*time.Time, error) {
		if raw == nil || *raw == "" {
			return nil, nil
		}
		t, err := time.Parse(shared.DateLayout, *raw)
		if err != nil {
			return nil, fmt.Errorf("drops: invalid date %q: %w", *raw, err)
		}
		return &t, nil
	}
	startDate, err := parse(input.StartDate)
	if err != nil {
		return nil, nil, err
	}
	endDate, err := parse(input.EndDate)
	if err != nil {
		return nil, nil, err
	}
	return startDate, endDate, nil
}
