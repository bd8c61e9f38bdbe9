package drops

import (
	"time"

	"github.com/wearkati/katicontrol/internal/costing"
	"github.com/wearkati/katicontrol/internal/orders"
)

// Drop is one sales campaign with its planning targets.
type Drop struct {
	DropID             int64      `json:"drop_id"`
	DropName           string     `json:"drop_name"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	Status             string     `json:"status"`
	TargetUnits        *int64     `json:"target_units"`
	TargetRevenue      *float64   `json:"target_revenue"`
	TargetGrossProfit  *float64   `json:"target_gross_profit"`
	TargetNetProfit    *float64   `json:"target_net_profit"`
	PlannedBudgetTotal *float64   `json:"planned_budget_total"`
	Notes              *string    `json:"notes"`
	CreatedAt          time.Time  `json:"created_at"`
}

// DropWithStats decorates a drop with order counters. ActualRevenue is cash
// collected (amount_paid), counted over all orders including cancelled ones,
// because refunds are tracked as cash movements, not order edits.
type DropWithStats struct {
	Drop
	OrderCount    int64   `json:"order_count"`
	ActualRevenue float64 `json:"actual_revenue"`
	ActiveOrders  int64   `json:"active_orders"`
}

// DropInput is the write shape for drops.
type DropInput struct {
	DropName           string   `json:"drop_name" validate:"required"`
	StartDate          *string  `json:"start_date"`
	EndDate            *string  `json:"end_date"`
	Status             string   `json:"status"`
	TargetUnits        *int64   `json:"target_units"`
	TargetRevenue      *float64 `json:"target_revenue"`
	TargetGrossProfit  *float64 `json:"target_gross_profit"`
	TargetNetProfit    *float64 `json:"target_net_profit"`
	PlannedBudgetTotal *float64 `json:"planned_budget_total"`
	Notes              *string  `json:"notes"`
}

// ROI is the drop profitability aggregation.
type ROI struct {
	TotalRevenue       float64            `json:"total_revenue"`
	TotalCOGS          float64            `json:"total_cogs"`
	GrossProfit        float64            `json:"gross_profit"`
	DirectExpenses     float64            `json:"direct_expenses"`
	NetProfit          float64            `json:"net_profit"`
	BreakEvenRemaining float64            `json:"break_even_remaining"`
	ProfitStatus       costing.CostStatus `json:"profit_status"`
	OrderCount         int                `json:"order_count"`
	CompleteCostCount  int                `json:"complete_cost_count"`
	EstimatedCostCount int                `json:"estimated_cost_count"`
}

// DropDetail is the drop page payload.
type DropDetail struct {
	Drop   Drop                   `json:"drop"`
	Orders []orders.EnrichedOrder `json:"orders"`
	ROI    ROI                    `json:"roi"`
}

// ComputeROI folds a drop's non-cancelled orders into the profitability
// aggregation. Revenue recognizes discounted prices, not cash collected.
// PARTIAL cost records contribute their recorded fields to COGS but still
// count toward the estimated tally, so the drop-level status stays honest
// about incomplete bookkeeping. An order with neither a cost record nor
// product defaults contributes zero COGS and counts as estimated.
func ComputeROI(orderRows []orders.JoinedOrder, directExpenses float64) ROI {
	roi := ROI{DirectExpenses: directExpenses, OrderCount: len(orderRows)}
	for _, o := range orderRows {
		roi.TotalRevenue += o.EffectivePrice()
		breakdown := costing.COGS(o.Cost, o.Estimates)
		roi.TotalCOGS += breakdown.Total
		if breakdown.Status == costing.StatusComplete {
			roi.CompleteCostCount++
		} else {
			roi.EstimatedCostCount++
		}
	}
	roi.GrossProfit = roi.TotalRevenue - roi.TotalCOGS
	roi.NetProfit = roi.GrossProfit - directExpenses
	roi.BreakEvenRemaining = directExpenses - roi.GrossProfit
	roi.ProfitStatus = costing.StatusComplete
	if roi.EstimatedCostCount > 0 {
		roi.ProfitStatus = costing.StatusEstimated
	}
	return roi
}
