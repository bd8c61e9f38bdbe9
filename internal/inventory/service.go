package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wearkati/katicontrol/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, itemID int64) (Item, error)
	Create(ctx context.Context, date time.Time, input ItemInput) (int64, error)
	Update(ctx context.Context, itemID int64, date time.Time, input ItemInput, replaceLinkSet bool) error
	Delete(ctx context.Context, itemID int64) error
	ProductLinks(ctx context.Context, itemID int64) ([]ProductLink, error)
	ItemsByProduct(ctx context.Context, productID int64) ([]ProductUsageItem, error)
	ConsumptionRows(ctx context.Context, itemID int64, dropID *int64) ([]ConsumptionRow, error)
	ItemsWithQuantity(ctx context.Context, dropID *int64) ([]Item, error)
	DropStocks(ctx context.Context) ([]DropStock, error)
	CostProxyByDrop(ctx context.Context, dropID int64) (CostProxy, error)
	GeneralStock(ctx context.Context) (GeneralStock, error)
}

// Service coordinates stock purchases, usage links and consumption reporting.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// QuantityConsumed computes the consumption breakdown for one item. The drop
// scope restricts qualifying orders to that drop.
func (s *Service) QuantityConsumed(ctx context.Context, itemID int64, dropID *int64) (Consumption, error) {
	rows, err := s.repo.ConsumptionRows(ctx, itemID, dropID)
	if err != nil {
		return Consumption{}, fmt.Errorf("inventory: consumption rows: %w", err)
	}
	return Consume(rows), nil
}

// Enrich attaches usage links and, when the item declares a quantity, the
// consumption breakdown and remaining quantity.
func (s *Service) Enrich(ctx context.Context, item Item) (EnrichedItem, error) {
	links, err := s.repo.ProductLinks(ctx, item.ItemID)
	if err != nil {
		return EnrichedItem{}, err
	}
	enriched := EnrichedItem{Item: item, ProductLinks: links}
	if item.Quantity == nil {
		return enriched, nil
	}
	consumed, err := s.QuantityConsumed(ctx, item.ItemID, item.DropID)
	if err != nil {
		return EnrichedItem{}, err
	}
	remaining := Remaining(*item.Quantity, consumed)
	enriched.QuantityConsumed = &consumed.Total
	enriched.QuantityConsumedProduction = &consumed.Production
	enriched.QuantityConsumedSampling = &consumed.Sampling
	enriched.QuantityRemaining = &remaining
	return enriched, nil
}

// List returns all items with enrichment.
func (s *Service) List(ctx context.Context) ([]EnrichedItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]EnrichedItem, 0, len(items))
	for _, item := range items {
		enriched, err := s.Enrich(ctx, item)
		if err != nil {
			return nil, err
		}
		result = append(result, enriched)
	}
	return result, nil
}

// Get returns one enriched item.
func (s *Service) Get(ctx context.Context, itemID int64) (EnrichedItem, error) {
	item, err := s.repo.Get(ctx, itemID)
	if err != nil {
		return EnrichedItem{}, err
	}
	return s.Enrich(ctx, item)
}

// Create records a stock purchase.
func (s *Service) Create(ctx context.Context, input ItemInput) (EnrichedItem, error) {
	if input.ItemName == "" {
		return EnrichedItem{}, errors.New("inventory: item name required")
	}
	if input.Category == "" {
		input.Category = CategoryFabric
	}
	if !input.Category.Valid() {
		return EnrichedItem{}, fmt.Errorf("inventory: unknown category %q", input.Category)
	}
	date, err := shared.ParseDate(input.Date, s.now())
	if err != nil {
		return EnrichedItem{}, fmt.Errorf("inventory: invalid date: %w", err)
	}
	itemID, err := s.repo.Create(ctx, date, input)
	if err != nil {
		return EnrichedItem{}, err
	}
	return s.Get(ctx, itemID)
}

// Update rewrites a stock purchase. Links are replaced only when the payload
// carries a product_links array.
func (s *Service) Update(ctx context.Context, itemID int64, input ItemInput, replaceLinkSet bool) (EnrichedItem, error) {
	if input.Category == "" {
		input.Category = CategoryFabric
	}
	if !input.Category.Valid() {
		return EnrichedItem{}, fmt.Errorf("inventory: unknown category %q", input.Category)
	}
	date, err := shared.ParseDate(input.Date, s.now())
	if err != nil {
		return EnrichedItem{}, fmt.Errorf("inventory: invalid date: %w", err)
	}
	if err := s.repo.Update(ctx, itemID, date, input, replaceLinkSet); err != nil {
		return EnrichedItem{}, err
	}
	return s.Get(ctx, itemID)
}

// Delete removes a stock purchase.
func (s *Service) Delete(ctx context.Context, itemID int64) error {
	return s.repo.Delete(ctx, itemID)
}

// ItemsByProduct lists the bill-of-materials view for one product.
func (s *Service) ItemsByProduct(ctx context.Context, productID int64) ([]ProductUsageItem, error) {
	return s.repo.ItemsByProduct(ctx, productID)
}

// Summary builds the per-drop consumption summary: category value proxies
// from cost records plus the per-item quantity breakdown, and the general
// (drop-less) stock bucket.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	stocks, err := s.repo.DropStocks(ctx)
	if err != nil {
		return Summary{}, err
	}
	for i := range stocks {
		dropID := stocks[i].DropID
		proxy, err := s.repo.CostProxyByDrop(ctx, dropID)
		if err != nil {
			return Summary{}, err
		}
		stocks[i].FabricConsumed = proxy.Fabric
		stocks[i].TrimsConsumed = proxy.Trims
		stocks[i].PackagingConsumed = proxy.Packaging
		stocks[i].FabricRemaining = stocks[i].FabricStock - proxy.Fabric
		stocks[i].TrimsRemaining = stocks[i].TrimsStock - proxy.Trims
		stocks[i].PackagingRemaining = stocks[i].PackagingStock - proxy.Packaging
		stocks[i].TotalConsumed = proxy.Fabric + proxy.Trims + proxy.Packaging
		stocks[i].TotalRemaining = stocks[i].TotalStock - stocks[i].TotalConsumed

		items, err := s.repo.ItemsWithQuantity(ctx, &dropID)
		if err != nil {
			return Summary{}, err
		}
		withQty := make([]EnrichedItem, 0, len(items))
		for _, item := range items {
			enriched, err := s.Enrich(ctx, item)
			if err != nil {
				return Summary{}, err
			}
			withQty = append(withQty, enriched)
		}
		stocks[i].ItemsWithQuantity = withQty
	}

	general, err := s.repo.GeneralStock(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Drops: stocks, General: general}, nil
}
