package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wearkati/katicontrol/internal/inventory"
)

const trendMonths = 6

// RepositoryPort abstracts the aggregate queries for the service.
type RepositoryPort interface {
	CashReceivedWindows(ctx context.Context, today time.Time) (CashReceived, int64, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	PaymentBreakdowns(ctx context.Context) ([]PaymentBreakdown, error)
	MissingInputs(ctx context.Context) ([]MissingInput, error)
	CashSnapshot(ctx context.Context) (CashSnapshot, error)
	ActiveDrops(ctx context.Context) ([]ActiveDrop, error)
	MonthlyTrend(ctx context.Context, since time.Time) ([]MonthlyPoint, error)
	RevenueByProduct(ctx context.Context) ([]ProductRevenue, error)
	ExpensesByCategory(ctx context.Context) ([]CategoryExpense, error)
	ProfitRows(ctx context.Context) ([]ProfitRow, error)
	TotalExpenses(ctx context.Context) (float64, error)
	Sales(ctx context.Context) (SalesReport, error)
	AlertCounts(ctx context.Context) (AlertCounts, error)
	PacingDrops(ctx context.Context) ([]DropPace, error)
	RecommendationRows(ctx context.Context, since time.Time) ([]RecommendationRow, error)
}

// StockPort exposes the enriched inventory view the stock alerts read.
type StockPort interface {
	List(ctx context.Context) ([]inventory.EnrichedItem, error)
}

// Service assembles the dashboard reports.
type Service struct {
	repo  RepositoryPort
	stock StockPort
	cache *Cache
	now   func() time.Time
}

// NewService builds Service. cache may be nil.
func NewService(repo RepositoryPort, stock StockPort, cache *Cache) *Service {
	return &Service{repo: repo, stock: stock, cache: cache, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Cache exposes the report cache so mutations elsewhere can invalidate it.
func (s *Service) Cache() *Cache {
	return s.cache
}

func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) cached(ctx context.Context, report string, dest any, loader func(context.Context) (any, error)) error {
	key, err := s.cache.BuildKey(ctx, report)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

// Morning builds the daily opening board, fanning the seven queries out
// concurrently.
func (s *Service) Morning(ctx context.Context) (MorningBoard, error) {
	var board MorningBoard
	err := s.cached(ctx, "morning", &board, func(ctx context.Context) (any, error) {
		var board MorningBoard
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			received, ordersToday, err := s.repo.CashReceivedWindows(ctx, s.today())
			board.CashReceived = received
			board.OrdersToday = ordersToday
			return err
		})
		g.Go(func() error {
			counts, err := s.repo.StatusCounts(ctx)
			board.ByStatus = counts
			return err
		})
		g.Go(func() error {
			breakdowns, err := s.repo.PaymentBreakdowns(ctx)
			board.ByPayment = breakdowns
			return err
		})
		g.Go(func() error {
			inputs, err := s.repo.MissingInputs(ctx)
			board.MissingInputs = inputs
			return err
		})
		g.Go(func() error {
			snapshot, err := s.repo.CashSnapshot(ctx)
			board.Cash = snapshot
			return err
		})
		g.Go(func() error {
			drops, err := s.repo.ActiveDrops(ctx)
			board.ActiveDrops = drops
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return board, nil
	})
	return board, err
}

// Profitability builds the whole-business P&L page.
func (s *Service) Profitability(ctx context.Context) (ProfitabilityReport, error) {
	var report ProfitabilityReport
	err := s.cached(ctx, "profitability", &report, func(ctx context.Context) (any, error) {
		var report ProfitabilityReport
		var profitRows []ProfitRow
		var totalExpenses float64
		since := s.today().AddDate(0, -trendMonths+1, 0)
		since = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			rows, err := s.repo.ProfitRows(ctx)
			profitRows = rows
			return err
		})
		g.Go(func() error {
			total, err := s.repo.TotalExpenses(ctx)
			totalExpenses = total
			return err
		})
		g.Go(func() error {
			monthly, err := s.repo.MonthlyTrend(ctx, since)
			report.Monthly = monthly
			return err
		})
		g.Go(func() error {
			byProduct, err := s.repo.RevenueByProduct(ctx)
			report.ByProduct = byProduct
			return err
		})
		g.Go(func() error {
			byCategory, err := s.repo.ExpensesByCategory(ctx)
			report.ExpensesByCategory = byCategory
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		report.Summary = ComputeProfitSummary(profitRows, totalExpenses)
		return report, nil
	})
	return report, err
}

// Sales builds the sales mix report.
func (s *Service) Sales(ctx context.Context) (SalesReport, error) {
	var report SalesReport
	err := s.cached(ctx, "sales", &report, func(ctx context.Context) (any, error) {
		return s.repo.Sales(ctx)
	})
	return report, err
}

// Alerts builds the ordered alert feed: data gaps first, then drop pace,
// stock and treasury.
func (s *Service) Alerts(ctx context.Context) ([]Alert, error) {
	alerts := []Alert{}
	err := s.cached(ctx, "alerts", &alerts, func(ctx context.Context) (any, error) {
		counts, err := s.repo.AlertCounts(ctx)
		if err != nil {
			return nil, err
		}
		alerts := s.dataGapAlerts(counts)

		pacing, err := s.repo.PacingDrops(ctx)
		if err != nil {
			return nil, err
		}
		today := s.today()
		for _, drop := range pacing {
			if alert, ok := CheckDropPace(drop, today); ok {
				alerts = append(alerts, alert)
			}
		}

		stockAlerts, err := s.stockAlerts(ctx)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, stockAlerts...)

		if alert, ok := CheckCashRisk(counts.RecordedCash, counts.PipelineValue); ok {
			alerts = append(alerts, alert)
		}
		return alerts, nil
	})
	return alerts, err
}

func (s *Service) dataGapAlerts(counts AlertCounts) []Alert {
	alerts := []Alert{}
	if counts.MissingHeight > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertWarning,
			Category: "data",
			Message:  plural(counts.MissingHeight, "commande sans taille renseignée", "commandes sans taille renseignée"),
			Count:    counts.MissingHeight,
			Action:   "orders",
		})
	}
	if counts.UnpaidCount > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertDanger,
			Category: "payment",
			Message:  plural(counts.UnpaidCount, "commande en attente de paiement", "commandes en attente de paiement") + formatOwed(counts.UnpaidOwed),
			Count:    counts.UnpaidCount,
			Action:   "orders",
		})
	}
	if counts.MissingMeasurements > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertWarning,
			Category: "data",
			Message:  plural(counts.MissingMeasurements, "commande sur mesure sans mensurations", "commandes sur mesure sans mensurations"),
			Count:    counts.MissingMeasurements,
			Action:   "orders",
		})
	}
	if counts.MissingCosts > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertInfo,
			Category: "costs",
			Message:  plural(counts.MissingCosts, "commande sans coûts enregistrés", "commandes sans coûts enregistrés"),
			Count:    counts.MissingCosts,
			Action:   "orders",
		})
	}
	if counts.UncategorizedExpense > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertInfo,
			Category: "expenses",
			Message:  plural(counts.UncategorizedExpense, "dépense sans catégorie", "dépenses sans catégorie"),
			Count:    counts.UncategorizedExpense,
			Action:   "expenses",
		})
	}
	return alerts
}

func (s *Service) stockAlerts(ctx context.Context) ([]Alert, error) {
	if s.stock == nil {
		return nil, nil
	}
	items, err := s.stock.List(ctx)
	if err != nil {
		return nil, err
	}
	alerts := []Alert{}
	for _, item := range items {
		if item.Quantity == nil || item.QuantityRemaining == nil {
			continue
		}
		if alert, ok := CheckStock(item.ItemName, *item.Quantity, *item.QuantityRemaining, item.Unit); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

func plural(count int64, singular, pluralForm string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", count, pluralForm)
}

func formatOwed(owed float64) string {
	if owed <= 0 {
		return ""
	}
	return fmt.Sprintf(" (%.0f FCFA dus)", owed)
}

// Recommendations scores the trailing two weeks of sales.
func (s *Service) Recommendations(ctx context.Context) ([]Recommendation, error) {
	recs := []Recommendation{}
	err := s.cached(ctx, "recommendations", &recs, func(ctx context.Context) (any, error) {
		since := s.today().AddDate(0, 0, -recommendWindowDays)
		rows, err := s.repo.RecommendationRows(ctx, since)
		if err != nil {
			return nil, err
		}
		return BuildRecommendations(rows), nil
	})
	return recs, err
}
