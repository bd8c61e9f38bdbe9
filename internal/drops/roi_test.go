package drops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wearkati/katicontrol/internal/costing"
	"github.com/wearkati/katicontrol/internal/orders"
)

func f(v float64) *float64 { return &v }

func joined(price, discount float64, cost *costing.CostRecord, est *costing.ProductEstimates) orders.JoinedOrder {
	j := orders.JoinedOrder{Cost: cost, Estimates: est}
	j.SellingPrice = price
	j.Discount = discount
	return j
}

func TestComputeROIMixedStatuses(t *testing.T) {
	complete := &costing.CostRecord{
		FabricCost: f(5000), SewingCost: f(3000), TrimsCost: f(700), PackagingCost: f(300),
		DeliveryCostPaidByBusiness: f(500), PaymentFee: f(250), OtherOrderCost: f(250),
	}
	partial := &costing.CostRecord{FabricCost: f(4000)}
	est := &costing.ProductEstimates{FabricEst: 6000, SewingEst: 4000}

	rows := []orders.JoinedOrder{
		joined(30000, 0, complete, est),  // COGS 10000, complete
		joined(25000, 5000, partial, est), // COGS 4000, partial counts as estimated
		joined(20000, 0, nil, est),       // COGS 10000 from estimates
	}
	roi := ComputeROI(rows, 8000)

	require.InDelta(t, 70000, roi.TotalRevenue, 0.0001)
	require.InDelta(t, 24000, roi.TotalCOGS, 0.0001)
	require.InDelta(t, 46000, roi.GrossProfit, 0.0001)
	require.InDelta(t, 8000, roi.DirectExpenses, 0.0001)
	require.InDelta(t, 38000, roi.NetProfit, 0.0001)
	require.InDelta(t, -38000, roi.BreakEvenRemaining, 0.0001)
	require.Equal(t, costing.StatusEstimated, roi.ProfitStatus)
	require.Equal(t, 3, roi.OrderCount)
	require.Equal(t, 1, roi.CompleteCostCount)
	require.Equal(t, 2, roi.EstimatedCostCount)
}

func TestComputeROIAllComplete(t *testing.T) {
	complete := &costing.CostRecord{
		FabricCost: f(5000), SewingCost: f(3000), TrimsCost: f(700), PackagingCost: f(300),
		DeliveryCostPaidByBusiness: f(0), PaymentFee: f(0), OtherOrderCost: f(0),
	}
	rows := []orders.JoinedOrder{joined(30000, 0, complete, nil)}
	roi := ComputeROI(rows, 0)
	require.Equal(t, costing.StatusComplete, roi.ProfitStatus)
	require.Equal(t, 1, roi.CompleteCostCount)
	require.Zero(t, roi.EstimatedCostCount)
}

func TestComputeROINoCostsNoDefaults(t *testing.T) {
	rows := []orders.JoinedOrder{joined(15000, 0, nil, nil)}
	roi := ComputeROI(rows, 20000)
	require.Zero(t, roi.TotalCOGS)
	require.Equal(t, 1, roi.EstimatedCostCount)
	require.InDelta(t, 15000, roi.GrossProfit, 0.0001)
	// Still 5000 short of covering direct expenses.
	require.InDelta(t, 5000, roi.BreakEvenRemaining, 0.0001)
}

func TestComputeROIEmptyDrop(t *testing.T) {
	roi := ComputeROI(nil, 0)
	require.Equal(t, costing.StatusComplete, roi.ProfitStatus)
	require.Zero(t, roi.OrderCount)
}
