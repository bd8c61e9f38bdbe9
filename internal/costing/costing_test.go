package costing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func fullRecord() *CostRecord {
	return &CostRecord{
		FabricCost:                 f(5000),
		SewingCost:                 f(3000),
		TrimsCost:                  f(700),
		PackagingCost:              f(300),
		DeliveryCostPaidByBusiness: f(1000),
		PaymentFee:                 f(450),
		OtherOrderCost:             f(550),
	}
}

func TestStatus(t *testing.T) {
	require.Equal(t, StatusEstimated, Status(nil))
	require.Equal(t, StatusEstimated, Status(&CostRecord{}))
	require.Equal(t, StatusComplete, Status(fullRecord()))
	require.Equal(t, StatusPartial, Status(&CostRecord{FabricCost: f(5000)}))

	// Zero is a recorded value, not a missing one.
	rec := fullRecord()
	rec.OtherOrderCost = f(0)
	require.Equal(t, StatusComplete, Status(rec))
}

func TestCOGSFallsBackToEstimates(t *testing.T) {
	est := &ProductEstimates{FabricEst: 6000, SewingEst: 4000, TrimsEst: 500, PackagingEst: 500}

	got := COGS(nil, est)
	require.Equal(t, StatusEstimated, got.Status)
	require.InDelta(t, 11000, got.Total, 0.0001)

	// A record with no filled fields behaves like no record at all.
	got = COGS(&CostRecord{}, est)
	require.Equal(t, StatusEstimated, got.Status)
	require.InDelta(t, 11000, got.Total, 0.0001)

	// No record and no product defaults: zero COGS, still estimated.
	got = COGS(nil, nil)
	require.Equal(t, StatusEstimated, got.Status)
	require.Zero(t, got.Total)
}

func TestCOGSPartialSumsOnlyFilledFields(t *testing.T) {
	rec := &CostRecord{FabricCost: f(5000), SewingCost: f(3000)}
	est := &ProductEstimates{FabricEst: 20000, SewingEst: 20000}

	got := COGS(rec, est)
	require.Equal(t, StatusPartial, got.Status)
	require.InDelta(t, 8000, got.Total, 0.0001)
}

func TestCOGSComplete(t *testing.T) {
	got := COGS(fullRecord(), nil)
	require.Equal(t, StatusComplete, got.Status)
	require.InDelta(t, 11000, got.Total, 0.0001)
}

func TestProject(t *testing.T) {
	rec := &CostRecord{FabricCost: f(5000), SewingCost: f(3000)}

	p := Project(45000, 5000, rec, nil)
	require.InDelta(t, 40000, p.EffectivePrice, 0.0001)
	require.InDelta(t, 8000, p.COGS, 0.0001)
	require.InDelta(t, 32000, p.GrossProfit, 0.0001)
	require.Equal(t, StatusPartial, p.CostStatus)
	require.Equal(t, "Partial Profit", p.ProfitLabel)

	p = Project(45000, 0, nil, nil)
	require.Equal(t, "Estimated Profit", p.ProfitLabel)
	require.InDelta(t, 45000, p.GrossProfit, 0.0001)
}
