package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wearkati/katicontrol/internal/inventory"
)

type memoryRepo struct {
	counts    AlertCounts
	pacing    []DropPace
	recRows   []RecommendationRow
	recSince  time.Time
	profit    []ProfitRow
	expenses  float64
	monthly   []MonthlyPoint
	byProduct []ProductRevenue
	byCat     []CategoryExpense
}

func (m *memoryRepo) CashReceivedWindows(context.Context, time.Time) (CashReceived, int64, error) {
	return CashReceived{}, 0, nil
}
func (m *memoryRepo) StatusCounts(context.Context) ([]StatusCount, error)           { return nil, nil }
func (m *memoryRepo) PaymentBreakdowns(context.Context) ([]PaymentBreakdown, error) { return nil, nil }
func (m *memoryRepo) MissingInputs(context.Context) ([]MissingInput, error)         { return nil, nil }
func (m *memoryRepo) CashSnapshot(context.Context) (CashSnapshot, error)            { return CashSnapshot{}, nil }
func (m *memoryRepo) ActiveDrops(context.Context) ([]ActiveDrop, error)             { return nil, nil }
func (m *memoryRepo) MonthlyTrend(context.Context, time.Time) ([]MonthlyPoint, error) {
	return m.monthly, nil
}
func (m *memoryRepo) RevenueByProduct(context.Context) ([]ProductRevenue, error) {
	return m.byProduct, nil
}
func (m *memoryRepo) ExpensesByCategory(context.Context) ([]CategoryExpense, error) {
	return m.byCat, nil
}
func (m *memoryRepo) ProfitRows(context.Context) ([]ProfitRow, error)   { return m.profit, nil }
func (m *memoryRepo) TotalExpenses(context.Context) (float64, error)    { return m.expenses, nil }
func (m *memoryRepo) Sales(context.Context) (SalesReport, error)        { return SalesReport{}, nil }
func (m *memoryRepo) AlertCounts(context.Context) (AlertCounts, error)  { return m.counts, nil }
func (m *memoryRepo) PacingDrops(context.Context) ([]DropPace, error)   { return m.pacing, nil }
func (m *memoryRepo) RecommendationRows(_ context.Context, since time.Time) ([]RecommendationRow, error) {
	m.recSince = since
	return m.recRows, nil
}

type memoryStock struct {
	items []inventory.EnrichedItem
}

func (m *memoryStock) List(context.Context) ([]inventory.EnrichedItem, error) {
	return m.items, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 7, 10, 30, 0, 0, time.UTC)
}

func TestAlertsOrderedBySeverityGroups(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{
		counts: AlertCounts{
			MissingHeight: 2,
			UnpaidCount:   3,
			UnpaidOwed:    45000,
			MissingCosts:  1,
			PipelineValue: 100000,
			RecordedCash:  10000,
		},
		pacing: []DropPace{{
			DropName:      "Capsule Mars",
			StartDate:     tp(start),
			EndDate:       tp(end),
			TargetRevenue: fp(100000),
			ActualRevenue: 20000,
		}},
	}
	unit := "m"
	qty, remaining := 50.0, 5.0
	stock := &memoryStock{items: []inventory.EnrichedItem{{
		Item:              inventory.Item{ItemName: "Wax bleu", Quantity: &qty, Unit: &unit},
		QuantityRemaining: &remaining,
	}}}
	svc := NewService(repo, stock, nil)
	svc.WithNow(fixedNow)

	alerts, err := svc.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 6)

	require.Equal(t, "data", alerts[0].Category)
	require.Contains(t, alerts[0].Message, "2 commandes sans taille")

	require.Equal(t, "payment", alerts[1].Category)
	require.Equal(t, AlertDanger, alerts[1].Type)
	require.Contains(t, alerts[1].Message, "45000 FCFA dus")

	require.Equal(t, "costs", alerts[2].Category)
	require.Contains(t, alerts[2].Message, "1 commande sans coûts")

	require.Equal(t, "drop_pace", alerts[3].Category)
	require.Equal(t, "inventory", alerts[4].Category)
	require.Equal(t, "cash", alerts[5].Category)
}

func TestRecommendationsUseTrailingWindow(t *testing.T) {
	repo := &memoryRepo{recRows: []RecommendationRow{
		{ProductName: "Robe Ankara", RecentSales: 3, AvgPrice: 40000, EstCOGS: 10000},
	}}
	svc := NewService(repo, nil, nil)
	svc.WithNow(fixedNow)

	recs, err := svc.Recommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC), repo.recSince)
}

func TestProfitabilityAssemblesSummary(t *testing.T) {
	repo := &memoryRepo{
		profit: []ProfitRow{
			{SellingPrice: 30000, Discount: 0},
		},
		expenses: 5000,
		monthly:  []MonthlyPoint{{Month: "2026-03", RecognizedRevenue: 30000, Collected: 15000, OrderCount: 1}},
	}
	svc := NewService(repo, nil, nil)
	svc.WithNow(fixedNow)

	report, err := svc.Profitability(context.Background())
	require.NoError(t, err)
	require.Equal(t, 30000.0, report.Summary.TotalRevenue)
	require.Equal(t, 5000.0, report.Summary.TotalExpenses)
	require.Equal(t, 1, report.Summary.EstimatedOrders)
	require.Len(t, report.Monthly, 1)
}
