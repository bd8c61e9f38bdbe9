package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wearkati/katicontrol/internal/costing"
	"github.com/wearkati/katicontrol/internal/shared"
)

type memoryRepo struct {
	orders    map[int64]JoinedOrder
	costs     map[int64]CostRecordRow
	overrides map[int64][]MaterialOverride
	synced    map[string]SyncLine
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders:    make(map[int64]JoinedOrder),
		costs:     make(map[int64]CostRecordRow),
		overrides: make(map[int64][]MaterialOverride),
		synced:    make(map[string]SyncLine),
	}
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]JoinedOrder, error) {
	result := []JoinedOrder{}
	for _, j := range r.orders {
		if filter.Status != "" && j.ProductionStatus != filter.Status {
			continue
		}
		result = append(result, j)
	}
	return result, nil
}

func (r *memoryRepo) Get(ctx context.Context, orderID int64) (JoinedOrder, error) {
	j, ok := r.orders[orderID]
	if !ok {
		return JoinedOrder{}, shared.ErrNotFound
	}
	return j, nil
}

func (r *memoryRepo) MaterialOverrides(ctx context.Context, orderID int64, productID *int64) ([]MaterialOverride, error) {
	return r.overrides[orderID], nil
}

func (r *memoryRepo) Create(ctx context.Context, date time.Time, input OrderInput) (int64, error) {
	r.nextID++
	j := JoinedOrder{}
	j.OrderID = r.nextID
	j.OrderDate = date
	j.ProductName = input.ProductName
	j.SellingPrice = input.SellingPrice
	j.Discount = input.Discount
	j.PaymentStatus = input.PaymentStatus
	j.ProductionStatus = input.ProductionStatus
	j.MeasurementsStatus = input.MeasurementsStatus
	r.orders[r.nextID] = j
	if !input.Costs.Empty() {
		if _, err := r.UpsertCosts(ctx, r.nextID, input.Costs); err != nil {
			return 0, err
		}
	}
	if len(input.MaterialOverrides) > 0 {
		r.overrides[r.nextID] = input.MaterialOverrides
	}
	return r.nextID, nil
}

func (r *memoryRepo) Update(ctx context.Context, orderID int64, date time.Time, input OrderInput) error {
	j, ok := r.orders[orderID]
	if !ok {
		return shared.ErrNotFound
	}
	j.OrderDate = date
	j.SellingPrice = input.SellingPrice
	j.Discount = input.Discount
	j.ProductionStatus = input.ProductionStatus
	r.orders[orderID] = j
	if len(input.MaterialOverrides) > 0 {
		r.overrides[orderID] = input.MaterialOverrides
	}
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, orderID int64) error {
	if _, ok := r.orders[orderID]; !ok {
		return shared.ErrNotFound
	}
	delete(r.orders, orderID)
	delete(r.costs, orderID)
	return nil
}

func (r *memoryRepo) GetCosts(ctx context.Context, orderID int64) (CostRecordRow, error) {
	c, ok := r.costs[orderID]
	if !ok {
		return CostRecordRow{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) UpsertCosts(ctx context.Context, orderID int64, input CostInput) (CostRecordRow, error) {
	rec := input.Record()
	row := CostRecordRow{
		OrderID:    orderID,
		CostRecord: rec,
		CostStatus: costing.Status(&rec),
		Notes:      input.Notes,
	}
	r.costs[orderID] = row
	j := r.orders[orderID]
	j.Cost = &row.CostRecord
	r.orders[orderID] = j
	return row, nil
}

func (r *memoryRepo) SaveSyncLines(ctx context.Context, lines []SyncLine) (int, error) {
	for _, line := range lines {
		r.synced[line.ExternalID] = line
	}
	return len(lines), nil
}

func f(v float64) *float64 { return &v }

func TestCreateEnrichesProfit(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	detail, err := svc.Create(ctx, OrderInput{
		OrderDate:    "2026-04-02",
		SellingPrice: 45000,
		Discount:     5000,
		Costs:        CostInput{FabricCost: f(5000), SewingCost: f(3000)},
	})
	require.NoError(t, err)
	require.InDelta(t, 40000, detail.EffectivePrice, 0.0001)
	require.InDelta(t, 8000, detail.COGS, 0.0001)
	require.InDelta(t, 32000, detail.GrossProfit, 0.0001)
	require.Equal(t, costing.StatusPartial, detail.CostStatus)
	require.Equal(t, "Partial Profit", detail.ProfitLabel)
	require.NotNil(t, detail.Costs)
}

func TestCreateDefaultsStatuses(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	detail, err := svc.Create(context.Background(), OrderInput{SellingPrice: 10000})
	require.NoError(t, err)
	require.Equal(t, "new", detail.ProductionStatus)
	require.Equal(t, "unpaid", detail.PaymentStatus)
	require.Equal(t, "missing", detail.MeasurementsStatus)
}

func TestUpsertCostsRecomputesStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	detail, err := svc.Create(ctx, OrderInput{SellingPrice: 10000})
	require.NoError(t, err)

	row, err := svc.UpsertCosts(ctx, detail.OrderID, CostInput{
		FabricCost: f(5000), SewingCost: f(3000), TrimsCost: f(700), PackagingCost: f(300),
		DeliveryCostPaidByBusiness: f(0), PaymentFee: f(0), OtherOrderCost: f(0),
	})
	require.NoError(t, err)
	require.Equal(t, costing.StatusComplete, row.CostStatus)

	row, err = svc.UpsertCosts(ctx, detail.OrderID, CostInput{FabricCost: f(5000)})
	require.NoError(t, err)
	require.Equal(t, costing.StatusPartial, row.CostStatus)
}

func TestUpsertCostsMissingOrder(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.UpsertCosts(context.Background(), 99, CostInput{FabricCost: f(1)})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetWithoutCostRecord(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, OrderInput{SellingPrice: 20000})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, created.OrderID)
	require.NoError(t, err)
	require.Nil(t, detail.Costs)
	require.Equal(t, costing.StatusEstimated, detail.CostStatus)
	require.Equal(t, "Estimated Profit", detail.ProfitLabel)
}
