package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wearkati/katicontrol/internal/costing"
	"github.com/wearkati/katicontrol/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]JoinedOrder, error)
	Get(ctx context.Context, orderID int64) (JoinedOrder, error)
	MaterialOverrides(ctx context.Context, orderID int64, productID *int64) ([]MaterialOverride, error)
	Create(ctx context.Context, date time.Time, input OrderInput) (int64, error)
	Update(ctx context.Context, orderID int64, date time.Time, input OrderInput) error
	Delete(ctx context.Context, orderID int64) error
	GetCosts(ctx context.Context, orderID int64) (CostRecordRow, error)
	UpsertCosts(ctx context.Context, orderID int64, input CostInput) (CostRecordRow, error)
	SaveSyncLines(ctx context.Context, lines []SyncLine) (int, error)
}

// Service handles order management and profitability enrichment.
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

// Enrich projects profitability onto a joined order.
func Enrich(j JoinedOrder) EnrichedOrder {
	p := costing.Project(j.SellingPrice, j.Discount, j.Cost, j.Estimates)
	return EnrichedOrder{
		Order:          j.Order,
		DropName:       j.DropName,
		COGS:           p.COGS,
		CostStatus:     p.CostStatus,
		EffectivePrice: p.EffectivePrice,
		GrossProfit:    p.GrossProfit,
		ProfitLabel:    p.ProfitLabel,
	}
}

// List returns profit-enriched orders matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]EnrichedOrder, error) {
	joined, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	enriched := make([]EnrichedOrder, 0, len(joined))
	for _, j := range joined {
		enriched = append(enriched, Enrich(j))
	}
	return enriched, nil
}

// Get returns the full order detail: enrichment, cost record and material
// overrides.
func (s *Service) Get(ctx context.Context, orderID int64) (OrderDetail, error) {
	j, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	detail := OrderDetail{EnrichedOrder: Enrich(j)}
	overrides, err := s.repo.MaterialOverrides(ctx, orderID, j.ProductID)
	if err != nil {
		return OrderDetail{}, err
	}
	detail.MaterialOverrides = overrides
	costs, err := s.repo.GetCosts(ctx, orderID)
	switch {
	case err == nil:
		detail.Costs = &costs
	case !shared.IsNotFound(err):
		return OrderDetail{}, err
	}
	return detail, nil
}

// Create validates and inserts an order, then returns its detail view.
func (s *Service) Create(ctx context.Context, input OrderInput) (OrderDetail, error) {
	input.applyDefaults()
	if err := s.validate.Struct(input); err != nil {
		return OrderDetail{}, fmt.Errorf("orders: invalid order: %w", err)
	}
	date, err := shared.ParseDate(input.OrderDate, s.now())
	if err != nil {
		return OrderDetail{}, fmt.Errorf("orders: invalid order date: %w", err)
	}
	orderID, err := s.repo.Create(ctx, date, input)
	if err != nil {
		return OrderDetail{}, err
	}
	return s.Get(ctx, orderID)
}

// Update validates and rewrites an order, then returns its detail view.
func (s *Service) Update(ctx context.Context, orderID int64, input OrderInput) (OrderDetail, error) {
	input.applyDefaults()
	if err := s.validate.Struct(input); err != nil {
		return OrderDetail{}, fmt.Errorf("orders: invalid order: %w", err)
	}
	date, err := shared.ParseDate(input.OrderDate, s.now())
	if err != nil {
		return OrderDetail{}, fmt.Errorf("orders: invalid order date: %w", err)
	}
	if err := s.repo.Update(ctx, orderID, date, input); err != nil {
		return OrderDetail{}, err
	}
	return s.Get(ctx, orderID)
}

// Delete removes an order with its cost record and overrides.
func (s *Service) Delete(ctx context.Context, orderID int64) error {
	return s.repo.Delete(ctx, orderID)
}

// GetCosts fetches an order's cost record.
func (s *Service) GetCosts(ctx context.Context, orderID int64) (CostRecordRow, error) {
	return s.repo.GetCosts(ctx, orderID)
}

// UpsertCosts writes an order's cost record; the tri-state status is derived
// server-side from the supplied fields.
func (s *Service) UpsertCosts(ctx context.Context, orderID int64, input CostInput) (CostRecordRow, error) {
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return CostRecordRow{}, err
	}
	return s.repo.UpsertCosts(ctx, orderID, input)
}

// Sync ingests a storefront checkout: validates the payload, fans it out to
// one line per item and upserts the lot idempotently.
func (s *Service) Sync(ctx context.Context, payload SyncPayload) (int, error) {
	if err := s.validate.Struct(payload); err != nil {
		return 0, fmt.Errorf("orders: invalid sync payload: %w", err)
	}
	lines := BuildSyncLines(payload, s.now())
	return s.repo.SaveSyncLines(ctx, lines)
}
