package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wearkati/katicontrol/internal/shared"
)

type memoryRepo struct {
	items       map[int64]Item
	links       map[int64][]ProductLink
	consumption map[int64][]ConsumptionRow
	nextID      int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		items:       make(map[int64]Item),
		links:       make(map[int64][]ProductLink),
		consumption: make(map[int64][]ConsumptionRow),
	}
}

func (r *memoryRepo) List(ctx context.Context) ([]Item, error) {
	items := []Item{}
	for _, item := range r.items {
		items = append(items, item)
	}
	return items, nil
}

func (r *memoryRepo) Get(ctx context.Context, itemID int64) (Item, error) {
	item, ok := r.items[itemID]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return item, nil
}

func (r *memoryRepo) Create(ctx context.Context, date time.Time, input ItemInput) (int64, error) {
	r.nextID++
	r.items[r.nextID] = Item{
		ItemID:     r.nextID,
		Date:       date,
		ItemName:   input.ItemName,
		Category:   input.Category,
		Quantity:   input.Quantity,
		Unit:       input.Unit,
		UnitCost:   input.UnitCost,
		TotalValue: input.TotalValue,
		DropID:     input.DropID,
		Notes:      input.Notes,
	}
	return r.nextID, nil
}

func (r *memoryRepo) Update(ctx context.Context, itemID int64, date time.Time, input ItemInput, replaceLinkSet bool) error {
	item, ok := r.items[itemID]
	if !ok {
		return shared.ErrNotFound
	}
	item.Date = date
	item.ItemName = input.ItemName
	item.Category = input.Category
	item.Quantity = input.Quantity
	item.TotalValue = input.TotalValue
	r.items[itemID] = item
	if replaceLinkSet {
		links := []ProductLink{}
		for _, link := range input.Links {
			links = append(links, ProductLink{ProductID: link.ProductID, UsagePerPiece: link.UsagePerPiece})
		}
		r.links[itemID] = links
	}
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, itemID int64) error {
	if _, ok := r.items[itemID]; !ok {
		return shared.ErrNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *memoryRepo) ProductLinks(ctx context.Context, itemID int64) ([]ProductLink, error) {
	return r.links[itemID], nil
}

func (r *memoryRepo) ItemsByProduct(ctx context.Context, productID int64) ([]ProductUsageItem, error) {
	return nil, nil
}

func (r *memoryRepo) ConsumptionRows(ctx context.Context, itemID int64, dropID *int64) ([]ConsumptionRow, error) {
	return r.consumption[itemID], nil
}

func (r *memoryRepo) ItemsWithQuantity(ctx context.Context, dropID *int64) ([]Item, error) {
	items := []Item{}
	for _, item := range r.items {
		if item.Quantity == nil {
			continue
		}
		if dropID != nil && (item.DropID == nil || *item.DropID != *dropID) {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *memoryRepo) DropStocks(ctx context.Context) ([]DropStock, error) {
	return nil, nil
}

func (r *memoryRepo) CostProxyByDrop(ctx context.Context, dropID int64) (CostProxy, error) {
	return CostProxy{}, nil
}

func (r *memoryRepo) GeneralStock(ctx context.Context) (GeneralStock, error) {
	return GeneralStock{}, nil
}

func fp(v float64) *float64 { return &v }

func TestConsumePartitionsProductionAndSampling(t *testing.T) {
	rows := []ConsumptionRow{
		{OrderID: 1, IsSample: false, UsagePerPiece: 10},
		{OrderID: 2, IsSample: false, UsagePerPiece: 10},
		{OrderID: 3, IsSample: true, UsagePerPiece: 15},
	}
	c := Consume(rows)
	require.InDelta(t, 20, c.Production, 0.0001)
	require.InDelta(t, 15, c.Sampling, 0.0001)
	require.InDelta(t, 35, c.Total, 0.0001)
}

func TestConsumeOverrideReplacesRate(t *testing.T) {
	rows := []ConsumptionRow{
		{OrderID: 1, Override: fp(2.5), UsagePerPiece: 4},
		{OrderID: 2, UsagePerPiece: 4},
	}
	c := Consume(rows)
	// The override replaces the default rate, never adds to it.
	require.InDelta(t, 6.5, c.Total, 0.0001)
}

func TestEnrichComputesRemaining(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	item, err := svc.Create(ctx, ItemInput{
		ItemName:   "Bazin riche blanc",
		Category:   CategoryFabric,
		Quantity:   fp(100),
		TotalValue: 250000,
		Date:       "2026-03-01",
	})
	require.NoError(t, err)

	repo.consumption[item.ItemID] = []ConsumptionRow{
		{OrderID: 1, UsagePerPiece: 10},
		{OrderID: 2, UsagePerPiece: 10},
		{OrderID: 3, IsSample: true, UsagePerPiece: 15},
	}

	enriched, err := svc.Get(ctx, item.ItemID)
	require.NoError(t, err)
	require.NotNil(t, enriched.QuantityRemaining)
	require.InDelta(t, 35, *enriched.QuantityConsumed, 0.0001)
	require.InDelta(t, 20, *enriched.QuantityConsumedProduction, 0.0001)
	require.InDelta(t, 15, *enriched.QuantityConsumedSampling, 0.0001)
	require.InDelta(t, 65, *enriched.QuantityRemaining, 0.0001)
}

func TestEnrichSkipsConsumptionWithoutQuantity(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	item, err := svc.Create(ctx, ItemInput{ItemName: "Thread", Category: CategoryTrims, TotalValue: 5000})
	require.NoError(t, err)

	enriched, err := svc.Get(ctx, item.ItemID)
	require.NoError(t, err)
	require.Nil(t, enriched.QuantityConsumed)
	require.Nil(t, enriched.QuantityRemaining)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), ItemInput{ItemName: "x", Category: "plastic", TotalValue: 1})
	require.Error(t, err)
}

func TestDeleteMissingItem(t *testing.T) {
	svc := NewService(newMemoryRepo())
	err := svc.Delete(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
