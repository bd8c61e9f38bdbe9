package orders

import (
	"time"

	"github.com/wearkati/katicontrol/internal/costing"
)

// Order is one made-to-order line. Every order is a single piece; multi-item
// purchases arrive as one order per line (see sync and import).
type Order struct {
	OrderID                    int64     `json:"order_id"`
	CreatedAt                  time.Time `json:"created_at"`
	OrderDate                  time.Time `json:"order_date"`
	DropID                     *int64    `json:"drop_id"`
	ProductID                  *int64    `json:"product_id"`
	ProductName                *string   `json:"product_name"`
	Channel                    *string   `json:"channel"`
	CustomerType               *string   `json:"customer_type"`
	CustomerName               *string   `json:"customer_name"`
	CustomerContact            *string   `json:"customer_contact"`
	SellingPrice               float64   `json:"selling_price"`
	Discount                   float64   `json:"discount"`
	PromoCode                  *string   `json:"promo_code"`
	Size                       *string   `json:"size"`
	Height                     *string   `json:"height"`
	Color                      *string   `json:"color"`
	MeasurementsStatus         string    `json:"measurements_status"`
	PaymentMethod              *string   `json:"payment_method"`
	PaymentStatus              string    `json:"payment_status"`
	AmountPaid                 float64   `json:"amount_paid"`
	DeliveryFeeChargedToClient float64   `json:"delivery_fee_charged_to_client"`
	ProductionStatus           string    `json:"production_status"`
	TailorAssigned             *string   `json:"tailor_assigned"`
	Notes                      *string   `json:"notes"`
	IsSample                   bool      `json:"is_sample"`
	IsImported                 bool      `json:"is_imported"`
	ImportSource               *string   `json:"import_source"`
	ExternalSource             *string   `json:"external_source,omitempty"`
	ExternalID                 *string   `json:"external_id,omitempty"`
	ExternalGroupID            *string   `json:"external_group_id,omitempty"`
}

// EffectivePrice is the selling price net of discount.
func (o Order) EffectivePrice() float64 {
	return o.SellingPrice - o.Discount
}

// JoinedOrder is an order with its cost record and product estimates joined
// in. Cost is nil when no cost record exists; Estimates is nil when the order
// points at no product.
type JoinedOrder struct {
	Order
	DropName  *string
	Cost      *costing.CostRecord
	Estimates *costing.ProductEstimates
}

// EnrichedOrder is the read-side order shape: the raw row plus the
// profitability projection.
type EnrichedOrder struct {
	Order
	DropName       *string            `json:"drop_name"`
	COGS           float64            `json:"cogs"`
	CostStatus     costing.CostStatus `json:"cost_status"`
	EffectivePrice float64            `json:"effective_price"`
	GrossProfit    float64            `json:"gross_profit"`
	ProfitLabel    string             `json:"profit_label"`
}

// OrderDetail adds the cost record and material overrides to the enriched
// view.
type OrderDetail struct {
	EnrichedOrder
	Costs             *CostRecordRow     `json:"costs"`
	MaterialOverrides []MaterialOverride `json:"material_overrides"`
}

// CostRecordRow is a persisted cost record with its bookkeeping columns.
type CostRecordRow struct {
	CostID  int64 `json:"cost_id"`
	OrderID int64 `json:"order_id"`
	costing.CostRecord
	CostStatus costing.CostStatus `json:"cost_status"`
	Notes      *string            `json:"notes"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// MaterialOverride is an order-specific material quantity, joined with the
// item name and the product's default rate for comparison.
type MaterialOverride struct {
	ItemID        int64    `json:"item_id"`
	QuantityUsed  float64  `json:"quantity_used"`
	ItemName      string   `json:"item_name,omitempty"`
	Unit          *string  `json:"unit,omitempty"`
	UsagePerPiece *float64 `json:"usage_per_piece,omitempty"`
}

// CostInput is the write shape for cost records. Absent fields stay NULL;
// an explicit zero is a recorded value.
type CostInput struct {
	FabricCost                 *float64 `json:"fabric_cost"`
	SewingCost                 *float64 `json:"sewing_cost"`
	TrimsCost                  *float64 `json:"trims_cost"`
	PackagingCost              *float64 `json:"packaging_cost"`
	DeliveryCostPaidByBusiness *float64 `json:"delivery_cost_paid_by_business"`
	PaymentFee                 *float64 `json:"payment_fee"`
	OtherOrderCost             *float64 `json:"other_order_cost"`
	Notes                      *string  `json:"notes"`
}

// Record converts the input to a costing record for status evaluation.
func (c CostInput) Record() costing.CostRecord {
	return costing.CostRecord{
		FabricCost:                 c.FabricCost,
		SewingCost:                 c.SewingCost,
		TrimsCost:                  c.TrimsCost,
		PackagingCost:              c.PackagingCost,
		DeliveryCostPaidByBusiness: c.DeliveryCostPaidByBusiness,
		PaymentFee:                 c.PaymentFee,
		OtherOrderCost:             c.OtherOrderCost,
	}
}

// Empty reports whether no cost field is set at all.
func (c CostInput) Empty() bool {
	return c.FabricCost == nil && c.SewingCost == nil && c.TrimsCost == nil &&
		c.PackagingCost == nil && c.DeliveryCostPaidByBusiness == nil &&
		c.PaymentFee == nil && c.OtherOrderCost == nil
}

// OrderInput is the write shape for orders. Inline cost fields and material
// overrides piggyback on create so a full order can land in one call.
type OrderInput struct {
	OrderDate                  string             `json:"order_date"`
	DropID                     *int64             `json:"drop_id"`
	ProductID                  *int64             `json:"product_id"`
	ProductName                *string            `json:"product_name"`
	Channel                    *string            `json:"channel"`
	CustomerType               *string            `json:"customer_type"`
	CustomerName               *string            `json:"customer_name"`
	CustomerContact            *string            `json:"customer_contact"`
	SellingPrice               float64            `json:"selling_price" validate:"gte=0"`
	Discount                   float64            `json:"discount" validate:"gte=0"`
	PromoCode                  *string            `json:"promo_code"`
	Size                       *string            `json:"size"`
	Height                     *string            `json:"height"`
	Color                      *string            `json:"color"`
	MeasurementsStatus         string             `json:"measurements_status"`
	PaymentMethod              *string            `json:"payment_method"`
	PaymentStatus              string             `json:"payment_status"`
	AmountPaid                 float64            `json:"amount_paid" validate:"gte=0"`
	DeliveryFeeChargedToClient float64            `json:"delivery_fee_charged_to_client"`
	ProductionStatus           string             `json:"production_status"`
	TailorAssigned             *string            `json:"tailor_assigned"`
	Notes                      *string            `json:"notes"`
	IsSample                   bool               `json:"is_sample"`
	Costs                      CostInput          `json:"costs"`
	MaterialOverrides          []MaterialOverride `json:"material_overrides"`
}

func (in *OrderInput) applyDefaults() {
	if in.MeasurementsStatus == "" {
		in.MeasurementsStatus = "missing"
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = "unpaid"
	}
	if in.ProductionStatus == "" {
		in.ProductionStatus = "new"
	}
}

// ListFilter narrows the order list.
type ListFilter struct {
	DropID         *int64
	Status         string
	PaymentStatus  string
	ExternalSource string
	Limit          int
	Offset         int
}
