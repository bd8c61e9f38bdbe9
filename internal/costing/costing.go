// Package costing holds the pure cost-of-goods and profitability math.
// Functions here take data, never store handles; missing data is a normal
// input expressed through nil pointers and the ESTIMATED/PARTIAL statuses.
package costing

// CostStatus classifies how complete a cost record is.
type CostStatus string

const (
	// StatusComplete means all seven cost fields are recorded.
	StatusComplete CostStatus = "COMPLETE"
	// StatusPartial means at least one but not all cost fields are recorded.
	StatusPartial CostStatus = "PARTIAL"
	// StatusEstimated means no cost fields are recorded; totals fall back to
	// the product's default estimates.
	StatusEstimated CostStatus = "ESTIMATED"
)

// CostRecord carries the seven optional per-order cost fields. A nil field
// means "not entered"; zero is a recorded value and counts as filled.
type CostRecord struct {
	FabricCost                 *float64 `json:"fabric_cost"`
	SewingCost                 *float64 `json:"sewing_cost"`
	TrimsCost                  *float64 `json:"trims_cost"`
	PackagingCost              *float64 `json:"packaging_cost"`
	DeliveryCostPaidByBusiness *float64 `json:"delivery_cost_paid_by_business"`
	PaymentFee                 *float64 `json:"payment_fee"`
	OtherOrderCost             *float64 `json:"other_order_cost"`
}

func (r *CostRecord) fields() []*float64 {
	return []*float64{
		r.FabricCost,
		r.SewingCost,
		r.TrimsCost,
		r.PackagingCost,
		r.DeliveryCostPaidByBusiness,
		r.PaymentFee,
		r.OtherOrderCost,
	}
}

// ProductEstimates carries a product's four default cost estimates.
type ProductEstimates struct {
	FabricEst    float64 `json:"fabric_est"`
	SewingEst    float64 `json:"sewing_est"`
	TrimsEst     float64 `json:"trims_est"`
	PackagingEst float64 `json:"packaging_est"`
}

// Sum returns the combined default estimate.
func (e ProductEstimates) Sum() float64 {
	return e.FabricEst + e.SewingEst + e.TrimsEst + e.PackagingEst
}

// Breakdown is the COGS result for one order.
type Breakdown struct {
	Total  float64    `json:"total"`
	Status CostStatus `json:"status"`
}

// Status classifies a cost record from which of its fields are populated.
// A nil record is ESTIMATED.
func Status(rec *CostRecord) CostStatus {
	if rec == nil {
		return StatusEstimated
	}
	fields := rec.fields()
	filled := 0
	for _, f := range fields {
		if f != nil {
			filled++
		}
	}
	switch filled {
	case 0:
		return StatusEstimated
	case len(fields):
		return StatusComplete
	default:
		return StatusPartial
	}
}

// COGS computes total cost-of-goods-sold for one order. When the record is
// absent or wholly unfilled the product's default estimates are used and the
// result is forced to ESTIMATED. A PARTIAL record sums only the fields that
// are present, which understates true cost; the status flag carries that
// caveat to the caller.
func COGS(rec *CostRecord, est *ProductEstimates) Breakdown {
	status := Status(rec)
	if rec == nil || status == StatusEstimated {
		var total float64
		if est != nil {
			total = est.Sum()
		}
		return Breakdown{Total: total, Status: StatusEstimated}
	}
	var total float64
	for _, f := range rec.fields() {
		if f != nil {
			total += *f
		}
	}
	return Breakdown{Total: total, Status: status}
}

// ProfitLabel maps a cost status to the human-facing confidence label.
func ProfitLabel(status CostStatus) string {
	switch status {
	case StatusComplete:
		return "Actual Profit"
	case StatusPartial:
		return "Partial Profit"
	default:
		return "Estimated Profit"
	}
}

// Projection is the read-side profitability view of one order.
type Projection struct {
	COGS           float64    `json:"cogs"`
	CostStatus     CostStatus `json:"cost_status"`
	EffectivePrice float64    `json:"effective_price"`
	GrossProfit    float64    `json:"gross_profit"`
	ProfitLabel    string     `json:"profit_label"`
}

// Project combines selling price, discount and COGS into the per-order
// profitability projection.
func Project(sellingPrice, discount float64, rec *CostRecord, est *ProductEstimates) Projection {
	breakdown := COGS(rec, est)
	effective := sellingPrice - discount
	return Projection{
		COGS:           breakdown.Total,
		CostStatus:     breakdown.Status,
		EffectivePrice: effective,
		GrossProfit:    effective - breakdown.Total,
		ProfitLabel:    ProfitLabel(breakdown.Status),
	}
}
