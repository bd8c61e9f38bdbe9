package dashboard

import (
	"time"

	"github.com/wearkati/katicontrol/internal/costing"
)

// CashReceived is money actually collected (amount_paid), cancelled orders
// excluded. Distinct from recognized revenue, which nets price of discount
// regardless of collection.
type CashReceived struct {
	Today float64 `json:"today"`
	Week  float64 `json:"week"`
	Month float64 `json:"month"`
}

// StatusCount is the production pipeline bucket.
type StatusCount struct {
	ProductionStatus string `json:"production_status"`
	Count            int64  `json:"count"`
}

// PaymentBreakdown groups open orders by payment state with what they owe.
type PaymentBreakdown struct {
	PaymentStatus string  `json:"payment_status"`
	Count         int64   `json:"count"`
	TotalOwed     float64 `json:"total_owed"`
	TotalPaid     float64 `json:"total_paid"`
}

// MissingInput is one open order with at least one data gap worth chasing.
type MissingInput struct {
	OrderID             int64     `json:"order_id"`
	CustomerName        *string   `json:"customer_name"`
	ProductName         string    `json:"product_name"`
	OrderDate           time.Time `json:"order_date"`
	MissingHeight       bool      `json:"missing_height"`
	IncompletePayment   bool      `json:"incomplete_payment"`
	MissingMeasurements bool      `json:"missing_measurements"`
	MissingCosts        bool      `json:"missing_costs"`
}

// CashSnapshot is the recorded cash position with its components.
type CashSnapshot struct {
	Recorded      float64 `json:"recorded"`
	TotalPaid     float64 `json:"total_paid"`
	TotalExpenses float64 `json:"total_expenses"`
	Injections    float64 `json:"injections"`
	Withdrawals   float64 `json:"withdrawals"`
}

// ActiveDrop summarises a running campaign against its targets.
type ActiveDrop struct {
	DropID        int64      `json:"drop_id"`
	DropName      string     `json:"drop_name"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	TargetUnits   *int64     `json:"target_units"`
	TargetRevenue *float64   `json:"target_revenue"`
	ActualUnits   int64      `json:"actual_units"`
	ActualRevenue float64    `json:"actual_revenue"`
}

// MorningBoard is the daily opening screen.
type MorningBoard struct {
	CashReceived  CashReceived       `json:"cash_received"`
	OrdersToday   int64              `json:"orders_today"`
	ByStatus      []StatusCount      `json:"by_status"`
	ByPayment     []PaymentBreakdown `json:"by_payment"`
	MissingInputs []MissingInput     `json:"missing_inputs"`
	Cash          CashSnapshot       `json:"cash"`
	ActiveDrops   []ActiveDrop       `json:"active_drops"`
}

// MonthlyPoint is one month of the revenue trend. RecognizedRevenue nets
// price of discount; Collected is cash in.
type MonthlyPoint struct {
	Month             string  `json:"month"`
	RecognizedRevenue float64 `json:"recognized_revenue"`
	Collected         float64 `json:"collected"`
	OrderCount        int64   `json:"order_count"`
}

// ProductRevenue ranks a product by recognized revenue.
type ProductRevenue struct {
	ProductName string  `json:"product_name"`
	OrderCount  int64   `json:"order_count"`
	Revenue     float64 `json:"revenue"`
	AvgPrice    float64 `json:"avg_price"`
}

// CategoryExpense totals expenses per category.
type CategoryExpense struct {
	Category *string `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// ProfitRow is the minimal order shape the whole-business P&L folds over.
type ProfitRow struct {
	SellingPrice float64
	Discount     float64
	Cost         *costing.CostRecord
	Estimates    *costing.ProductEstimates
}

// ProfitSummary is the whole-business P&L with its completeness caveat.
type ProfitSummary struct {
	TotalRevenue       float64            `json:"total_revenue"`
	TotalCOGS          float64            `json:"total_cogs"`
	GrossProfit        float64            `json:"gross_profit"`
	TotalExpenses      float64            `json:"total_expenses"`
	NetProfit          float64            `json:"net_profit"`
	GrossMarginPct     float64            `json:"gross_margin_pct"`
	CompleteOrders     int                `json:"complete_orders"`
	EstimatedOrders    int                `json:"estimated_orders"`
	CompletenessStatus costing.CostStatus `json:"completeness_status"`
}

// ComputeProfitSummary folds all qualifying orders into the P&L. Any order
// without a complete cost record taints the whole summary as estimated.
func ComputeProfitSummary(rows []ProfitRow, totalExpenses float64) ProfitSummary {
	summary := ProfitSummary{TotalExpenses: totalExpenses}
	for _, row := range rows {
		summary.TotalRevenue += row.SellingPrice - row.Discount
		breakdown := costing.COGS(row.Cost, row.Estimates)
		summary.TotalCOGS += breakdown.Total
		if breakdown.Status == costing.StatusComplete {
			summary.CompleteOrders++
		} else {
			summary.EstimatedOrders++
		}
	}
	summary.GrossProfit = summary.TotalRevenue - summary.TotalCOGS
	summary.NetProfit = summary.GrossProfit - totalExpenses
	if summary.TotalRevenue > 0 {
		summary.GrossMarginPct = summary.GrossProfit / summary.TotalRevenue * 100
	}
	summary.CompletenessStatus = costing.StatusComplete
	if summary.EstimatedOrders > 0 {
		summary.CompletenessStatus = costing.StatusEstimated
	}
	return summary
}

// ProfitabilityReport is the profitability page payload.
type ProfitabilityReport struct {
	Summary            ProfitSummary     `json:"summary"`
	Monthly            []MonthlyPoint    `json:"monthly"`
	ByProduct          []ProductRevenue  `json:"by_product"`
	ExpensesByCategory []CategoryExpense `json:"expenses_by_category"`
}

// ChannelStat totals recognized revenue per sales channel.
type ChannelStat struct {
	Channel string  `json:"channel"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// CustomerTypeStat totals recognized revenue per customer type.
type CustomerTypeStat struct {
	CustomerType string  `json:"customer_type"`
	Count        int64   `json:"count"`
	Revenue      float64 `json:"revenue"`
}

// SizeCount counts orders per size.
type SizeCount struct {
	Size  string `json:"size"`
	Count int64  `json:"count"`
}

// ColorCount counts orders per color.
type ColorCount struct {
	Color string `json:"color"`
	Count int64  `json:"count"`
}

// TopProduct ranks a product by units sold.
type TopProduct struct {
	ProductName string  `json:"product_name"`
	Units       int64   `json:"units"`
	Revenue     float64 `json:"revenue"`
}

// SalesReport is the sales mix payload.
type SalesReport struct {
	ByChannel      []ChannelStat      `json:"by_channel"`
	ByCustomerType []CustomerTypeStat `json:"by_customer_type"`
	BySize         []SizeCount        `json:"by_size"`
	ByColor        []ColorCount       `json:"by_color"`
	TopProducts    []TopProduct       `json:"top_products"`
}
