package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearkati/katicontrol/internal/costing"
)

// Repository runs the aggregate SQL behind the dashboard reports.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CashReceivedWindows sums collected money for today, the trailing week and
// the month to date, plus today's order count. Cancelled orders drop out;
// returned ones keep their money because it was actually received.
func (r *Repository) CashReceivedWindows(ctx context.Context, today time.Time) (CashReceived, int64, error) {
	weekAgo := today.AddDate(0, 0, -7)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	var received CashReceived
	var ordersToday int64
	err := r.pool.QueryRow(ctx, `SELECT
COALESCE(SUM(amount_paid) FILTER (WHERE order_date = $1), 0),
COALESCE(SUM(amount_paid) FILTER (WHERE order_date >= $2), 0),
COALESCE(SUM(amount_paid) FILTER (WHERE order_date >= $3), 0),
COUNT(*) FILTER (WHERE order_date = $1)
FROM orders WHERE production_status <> 'cancelled'`, today, weekAgo, monthStart).
		Scan(&received.Today, &received.Week, &received.Month, &ordersToday)
	return received, ordersToday, err
}

// StatusCounts groups the open pipeline by production status.
func (r *Repository) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT production_status, COUNT(*)
FROM orders WHERE production_status NOT IN ('cancelled','returned')
GROUP BY production_status ORDER BY production_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := []StatusCount{}
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.ProductionStatus, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// PaymentBreakdowns groups undelivered open orders by payment state.
func (r *Repository) PaymentBreakdowns(ctx context.Context) ([]PaymentBreakdown, error) {
	rows, err := r.pool.Query(ctx, `SELECT payment_status, COUNT(*),
COALESCE(SUM(selling_price - discount), 0), COALESCE(SUM(amount_paid), 0)
FROM orders WHERE production_status NOT IN ('cancelled','returned','delivered')
GROUP BY payment_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	breakdowns := []PaymentBreakdown{}
	for rows.Next() {
		var b PaymentBreakdown
		if err := rows.Scan(&b.PaymentStatus, &b.Count, &b.TotalOwed, &b.TotalPaid); err != nil {
			return nil, err
		}
		breakdowns = append(breakdowns, b)
	}
	return breakdowns, rows.Err()
}

// MissingInputs lists the oldest open orders with data gaps, capped at 20.
func (r *Repository) MissingInputs(ctx context.Context) ([]MissingInput, error) {
	rows, err := r.pool.Query(ctx, `SELECT o.order_id, o.customer_name,
COALESCE(o.product_name, p.product_name, 'Produit'), o.order_date,
(o.height IS NULL OR o.height = ''),
o.payment_status IN ('unpaid','partial'),
(o.size IN ('Custom','Sur mesure','Sur Mesure') AND o.measurements_status = 'missing'),
(oc.cost_id IS NULL OR oc.cost_status = 'ESTIMATED')
FROM orders o
LEFT JOIN products p ON p.product_id = o.product_id
LEFT JOIN order_costs oc ON oc.order_id = o.order_id
WHERE o.production_status NOT IN ('delivered','cancelled','returned')
AND (
  (o.height IS NULL OR o.height = '')
  OR o.payment_status IN ('unpaid','partial')
  OR (o.size IN ('Custom','Sur mesure','Sur Mesure') AND o.measurements_status = 'missing')
  OR oc.cost_id IS NULL OR oc.cost_status = 'ESTIMATED'
)
ORDER BY o.order_date ASC
LIMIT 20`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	inputs := []MissingInput{}
	for rows.Next() {
		var m MissingInput
		if err := rows.Scan(&m.OrderID, &m.CustomerName, &m.ProductName, &m.OrderDate,
			&m.MissingHeight, &m.IncompletePayment, &m.MissingMeasurements, &m.MissingCosts); err != nil {
			return nil, err
		}
		inputs = append(inputs, m)
	}
	return inputs, rows.Err()
}

// CashSnapshot assembles the recorded cash position.
func (r *Repository) CashSnapshot(ctx context.Context) (CashSnapshot, error) {
	var s CashSnapshot
	err := r.pool.QueryRow(ctx, `SELECT
(SELECT COALESCE(SUM(amount_paid),0) FROM orders WHERE production_status <> 'cancelled'),
(SELECT COALESCE(SUM(amount),0) FROM expenses),
(SELECT COALESCE(SUM(amount),0) FROM cash_movements WHERE type='owner_injection'),
(SELECT COALESCE(SUM(amount),0) FROM cash_movements WHERE type='owner_withdrawal')`).
		Scan(&s.TotalPaid, &s.TotalExpenses, &s.Injections, &s.Withdrawals)
	if err != nil {
		return CashSnapshot{}, err
	}
	s.Recorded = s.TotalPaid - s.TotalExpenses + (s.Injections - s.Withdrawals)
	return s, nil
}

// ActiveDrops summarises running campaigns against their targets.
func (r *Repository) ActiveDrops(ctx context.Context) ([]ActiveDrop, error) {
	rows, err := r.pool.Query(ctx, `SELECT d.drop_id, d.drop_name, d.start_date, d.end_date,
d.target_units, d.target_revenue,
COUNT(o.order_id), COALESCE(SUM(o.amount_paid), 0)
FROM drops d
LEFT JOIN orders o ON o.drop_id = d.drop_id AND o.production_status NOT IN ('cancelled','returned')
WHERE d.status = 'active'
GROUP BY d.drop_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ActiveDrop{}
	for rows.Next() {
		var d ActiveDrop
		if err := rows.Scan(&d.DropID, &d.DropName, &d.StartDate, &d.EndDate,
			&d.TargetUnits, &d.TargetRevenue, &d.ActualUnits, &d.ActualRevenue); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// MonthlyTrend returns the recognized-vs-collected revenue trend since the
// given month.
func (r *Repository) MonthlyTrend(ctx context.Context, since time.Time) ([]MonthlyPoint, error) {
	rows, err := r.pool.Query(ctx, `SELECT to_char(order_date, 'YYYY-MM') AS month,
COALESCE(SUM(selling_price - discount), 0),
COALESCE(SUM(amount_paid), 0),
COUNT(*)
FROM orders
WHERE production_status NOT IN ('cancelled','returned') AND order_date >= $1
GROUP BY month ORDER BY month`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	points := []MonthlyPoint{}
	for rows.Next() {
		var p MonthlyPoint
		if err := rows.Scan(&p.Month, &p.RecognizedRevenue, &p.Collected, &p.OrderCount); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// RevenueByProduct ranks products by recognized revenue, top 15.
func (r *Repository) RevenueByProduct(ctx context.Context) ([]ProductRevenue, error) {
	rows, err := r.pool.Query(ctx, `SELECT COALESCE(o.product_name, p.product_name, 'Inconnu') AS pname,
COUNT(*), COALESCE(SUM(o.selling_price - o.discount), 0), COALESCE(AVG(o.selling_price - o.discount), 0)
FROM orders o LEFT JOIN products p ON p.product_id = o.product_id
WHERE o.production_status NOT IN ('cancelled','returned')
GROUP BY pname ORDER BY 3 DESC LIMIT 15`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ProductRevenue{}
	for rows.Next() {
		var p ProductRevenue
		if err := rows.Scan(&p.ProductName, &p.OrderCount, &p.Revenue, &p.AvgPrice); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// ExpensesByCategory totals expenses per category.
func (r *Repository) ExpensesByCategory(ctx context.Context) ([]CategoryExpense, error) {
	rows, err := r.pool.Query(ctx, `SELECT category, COALESCE(SUM(amount),0), COUNT(*)
FROM expenses GROUP BY category ORDER BY 2 DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []CategoryExpense{}
	for rows.Next() {
		var c CategoryExpense
		if err := rows.Scan(&c.Category, &c.Total, &c.Count); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ProfitRows fetches every qualifying order with its cost record and product
// estimates for the whole-business P&L.
func (r *Repository) ProfitRows(ctx context.Context) ([]ProfitRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT o.selling_price, o.discount,
oc.cost_id, oc.fabric_cost, oc.sewing_cost, oc.trims_cost, oc.packaging_cost,
oc.delivery_cost_paid_by_business, oc.payment_fee, oc.other_order_cost,
p.fabric_est, p.sewing_est, p.trims_est, p.packaging_est
FROM orders o
LEFT JOIN order_costs oc ON oc.order_id = o.order_id
LEFT JOIN products p ON p.product_id = o.product_id
WHERE o.production_status NOT IN ('cancelled','returned')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ProfitRow{}
	for rows.Next() {
		var (
			row        ProfitRow
			costID     *int64
			rec        costing.CostRecord
			fabricEst  *float64
			sewingEst  *float64
			trimsEst   *float64
			packingEst *float64
		)
		if err := rows.Scan(&row.SellingPrice, &row.Discount,
			&costID, &rec.FabricCost, &rec.SewingCost, &rec.TrimsCost, &rec.PackagingCost,
			&rec.DeliveryCostPaidByBusiness, &rec.PaymentFee, &rec.OtherOrderCost,
			&fabricEst, &sewingEst, &trimsEst, &packingEst); err != nil {
			return nil, err
		}
		if costID != nil {
			row.Cost = &rec
		}
		if fabricEst != nil {
			row.Estimates = &costing.ProductEstimates{
				FabricEst: *fabricEst, SewingEst: *sewingEst, TrimsEst: *trimsEst, PackagingEst: *packingEst,
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// TotalExpenses sums all expenses.
func (r *Repository) TotalExpenses(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount),0) FROM expenses`).Scan(&total)
	return total, err
}

// Sales runs the sales mix queries.
func (r *Repository) Sales(ctx context.Context) (SalesReport, error) {
	report := SalesReport{
		ByChannel:      []ChannelStat{},
		ByCustomerType: []CustomerTypeStat{},
		BySize:         []SizeCount{},
		ByColor:        []ColorCount{},
		TopProducts:    []TopProduct{},
	}

	rows, err := r.pool.Query(ctx, `SELECT channel, COUNT(*), COALESCE(SUM(selling_price-discount),0)
FROM orders WHERE production_status NOT IN ('cancelled','returned') AND channel IS NOT NULL
GROUP BY channel ORDER BY 3 DESC`)
	if err != nil {
		return SalesReport{}, err
	}
	for rows.Next() {
		var s ChannelStat
		if err := rows.Scan(&s.Channel, &s.Orders, &s.Revenue); err != nil {
			rows.Close()
			return SalesReport{}, err
		}
		report.ByChannel = append(report.ByChannel, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SalesReport{}, err
	}

	rows, err = r.pool.Query(ctx, `SELECT customer_type, COUNT(*), COALESCE(SUM(selling_price-discount),0)
FROM orders WHERE production_status NOT IN ('cancelled','returned') AND customer_type IS NOT NULL
GROUP BY customer_type`)
	if err != nil {
		return SalesReport{}, err
	}
	for rows.Next() {
		var s CustomerTypeStat
		if err := rows.Scan(&s.CustomerType, &s.Count, &s.Revenue); err != nil {
			rows.Close()
			return SalesReport{}, err
		}
		report.ByCustomerType = append(report.ByCustomerType, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SalesReport{}, err
	}

	rows, err = r.pool.Query(ctx, `SELECT size, COUNT(*)
FROM orders WHERE production_status NOT IN ('cancelled','returned') AND size IS NOT NULL
GROUP BY size ORDER BY 2 DESC`)
	if err != nil {
		return SalesReport{}, err
	}
	for rows.Next() {
		var s SizeCount
		if err := rows.Scan(&s.Size, &s.Count); err != nil {
			rows.Close()
			return SalesReport{}, err
		}
		report.BySize = append(report.BySize, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SalesReport{}, err
	}

	rows, err = r.pool.Query(ctx, `SELECT color, COUNT(*)
FROM orders WHERE production_status NOT IN ('cancelled','returned') AND color IS NOT NULL
GROUP BY color ORDER BY 2 DESC LIMIT 10`)
	if err != nil {
		return SalesReport{}, err
	}
	for rows.Next() {
		var c ColorCount
		if err := rows.Scan(&c.Color, &c.Count); err != nil {
			rows.Close()
			return SalesReport{}, err
		}
		report.ByColor = append(report.ByColor, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SalesReport{}, err
	}

	rows, err = r.pool.Query(ctx, `SELECT COALESCE(o.product_name, p.product_name, 'Inconnu') AS pname,
COUNT(*), COALESCE(SUM(o.selling_price-o.discount),0)
FROM orders o LEFT JOIN products p ON p.product_id = o.product_id
WHERE o.production_status NOT IN ('cancelled','returned')
GROUP BY pname ORDER BY 2 DESC LIMIT 10`)
	if err != nil {
		return SalesReport{}, err
	}
	for rows.Next() {
		var t TopProduct
		if err := rows.Scan(&t.ProductName, &t.Units, &t.Revenue); err != nil {
			rows.Close()
			return SalesReport{}, err
		}
		report.TopProducts = append(report.TopProducts, t)
	}
	rows.Close()
	return report, rows.Err()
}

// AlertCounts bundles the scalar counts the alerts engine needs.
type AlertCounts struct {
	MissingHeight        int64
	UnpaidCount          int64
	UnpaidOwed           float64
	MissingMeasurements  int64
	MissingCosts         int64
	UncategorizedExpense int64
	PipelineValue        float64
	RecordedCash         float64
}

// AlertCounts runs the scalar alert queries in one round trip.
func (r *Repository) AlertCounts(ctx context.Context) (AlertCounts, error) {
	var c AlertCounts
	err := r.pool.QueryRow(ctx, `SELECT
(SELECT COUNT(*) FROM orders WHERE (height IS NULL OR height='') AND production_status NOT IN ('delivered','cancelled','returned')),
(SELECT COUNT(*) FROM orders WHERE payment_status IN ('unpaid','partial') AND production_status NOT IN ('cancelled','returned','delivered')),
(SELECT COALESCE(SUM(selling_price - discount - amount_paid),0) FROM orders WHERE payment_status IN ('unpaid','partial') AND production_status NOT IN ('cancelled','returned','delivered')),
(SELECT COUNT(*) FROM orders WHERE size IN ('Custom','Sur mesure','Sur Mesure') AND measurements_status='missing' AND production_status NOT IN ('delivered','cancelled','returned')),
(SELECT COUNT(*) FROM orders o LEFT JOIN order_costs oc ON oc.order_id=o.order_id WHERE oc.cost_id IS NULL AND o.production_status NOT IN ('cancelled','returned')),
(SELECT COUNT(*) FROM expenses WHERE category IS NULL OR category=''),
(SELECT COALESCE(SUM(selling_price),0) FROM orders WHERE production_status IN ('new','in_progress')),
(SELECT COALESCE(SUM(amount_paid),0) FROM orders WHERE production_status <> 'cancelled')
 - (SELECT COALESCE(SUM(amount),0) FROM expenses)
 + (SELECT COALESCE(SUM(amount),0) FROM cash_movements WHERE type='owner_injection')
 - (SELECT COALESCE(SUM(amount),0) FROM cash_movements WHERE type='owner_withdrawal')`).
		Scan(&c.MissingHeight, &c.UnpaidCount, &c.UnpaidOwed, &c.MissingMeasurements,
			&c.MissingCosts, &c.UncategorizedExpense, &c.PipelineValue, &c.RecordedCash)
	return c, err
}

// PacingDrops returns active drops with an end date for the pace check.
func (r *Repository) PacingDrops(ctx context.Context) ([]DropPace, error) {
	rows, err := r.pool.Query(ctx, `SELECT d.drop_name, d.start_date, d.end_date, d.target_revenue,
COALESCE(SUM(o.amount_paid),0)
FROM drops d
LEFT JOIN orders o ON o.drop_id = d.drop_id AND o.production_status NOT IN ('cancelled','returned')
WHERE d.status = 'active' AND d.end_date IS NOT NULL
GROUP BY d.drop_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []DropPace{}
	for rows.Next() {
		var d DropPace
		if err := rows.Scan(&d.DropName, &d.StartDate, &d.EndDate, &d.TargetRevenue, &d.ActualRevenue); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// RecommendationRows fetches per-product trading figures since the window
// start, most sold first.
func (r *Repository) RecommendationRows(ctx context.Context, since time.Time) ([]RecommendationRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT COALESCE(o.product_name, p.product_name, 'Inconnu') AS pname,
COUNT(*),
COALESCE(AVG(o.selling_price - o.discount), 0),
COALESCE(MAX(p.fabric_est + p.sewing_est + p.trims_est + p.packaging_est), 0)
FROM orders o LEFT JOIN products p ON p.product_id = o.product_id
WHERE o.order_date >= $1 AND o.production_status NOT IN ('cancelled','returned')
GROUP BY pname ORDER BY 2 DESC LIMIT 10`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []RecommendationRow{}
	for rows.Next() {
		var row RecommendationRow
		if err := rows.Scan(&row.ProductName, &row.RecentSales, &row.AvgPrice, &row.EstCOGS); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
