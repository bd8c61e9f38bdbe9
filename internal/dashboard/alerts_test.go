package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wearkati/katicontrol/internal/costing"
)

func tp(t time.Time) *time.Time { return &t }

func fp(v float64) *float64 { return &v }

func TestCheckDropPaceBehindSchedule(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	// 60% of the window elapsed but only 30% of target collected.
	alert, ok := CheckDropPace(DropPace{
		DropName:      "Capsule Mars",
		StartDate:     tp(start),
		EndDate:       tp(end),
		TargetRevenue: fp(100000),
		ActualRevenue: 30000,
	}, today)
	require.True(t, ok)
	require.Equal(t, AlertDanger, alert.Type)
	require.Equal(t, "drop_pace", alert.Category)
	require.Contains(t, alert.Message, "Capsule Mars")
	require.Contains(t, alert.Message, "30%")
	require.Contains(t, alert.Message, "60%")
}

func TestCheckDropPaceQuietBeforeGate(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	// Zero revenue but only 20% elapsed: too early to judge.
	_, ok := CheckDropPace(DropPace{
		DropName:      "Capsule Mars",
		StartDate:     tp(start),
		EndDate:       tp(end),
		TargetRevenue: fp(100000),
	}, today)
	require.False(t, ok)
}

func TestCheckDropPaceQuietWithoutTarget(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, ok := CheckDropPace(DropPace{
		DropName:  "Capsule Mars",
		StartDate: tp(start),
		EndDate:   tp(end),
	}, today)
	require.False(t, ok)
}

func TestCheckStock(t *testing.T) {
	unit := "m"

	alert, ok := CheckStock("Wax bleu", 50, 0, &unit)
	require.True(t, ok)
	require.Equal(t, AlertDanger, alert.Type)
	require.Contains(t, alert.Message, "Stock épuisé")

	alert, ok = CheckStock("Wax bleu", 50, 10, &unit)
	require.True(t, ok)
	require.Equal(t, AlertWarning, alert.Type)
	require.Contains(t, alert.Message, "Stock faible")
	require.Contains(t, alert.Message, "20%")

	_, ok = CheckStock("Wax bleu", 50, 30, &unit)
	require.False(t, ok)
}

func TestCheckCashRisk(t *testing.T) {
	// Pipeline of 100000 needs 40000 provisioned; alert below 20000.
	alert, ok := CheckCashRisk(15000, 100000)
	require.True(t, ok)
	require.Equal(t, AlertDanger, alert.Type)
	require.Equal(t, "cash", alert.Category)

	_, ok = CheckCashRisk(25000, 100000)
	require.False(t, ok)
}

func TestComputeProfitSummaryMixedCompleteness(t *testing.T) {
	complete := costing.CostRecord{
		FabricCost: fp(5000), SewingCost: fp(3000), TrimsCost: fp(0), PackagingCost: fp(500),
		DeliveryCostPaidByBusiness: fp(0), PaymentFee: fp(500), OtherOrderCost: fp(0),
	}
	rows := []ProfitRow{
		{SellingPrice: 30000, Discount: 0, Cost: &complete},
		{SellingPrice: 25000, Discount: 5000, Estimates: &costing.ProductEstimates{
			FabricEst: 4000, SewingEst: 2000, TrimsEst: 500, PackagingEst: 500,
		}},
	}

	summary := ComputeProfitSummary(rows, 6000)
	require.Equal(t, 50000.0, summary.TotalRevenue)
	require.Equal(t, 16000.0, summary.TotalCOGS)
	require.Equal(t, 34000.0, summary.GrossProfit)
	require.Equal(t, 28000.0, summary.NetProfit)
	require.Equal(t, 68.0, summary.GrossMarginPct)
	require.Equal(t, 1, summary.CompleteOrders)
	require.Equal(t, 1, summary.EstimatedOrders)
	require.Equal(t, costing.StatusEstimated, summary.CompletenessStatus)
}

func TestComputeProfitSummaryEmpty(t *testing.T) {
	summary := ComputeProfitSummary(nil, 0)
	require.Zero(t, summary.TotalRevenue)
	require.Zero(t, summary.GrossMarginPct)
	require.Equal(t, costing.StatusComplete, summary.CompletenessStatus)
}
