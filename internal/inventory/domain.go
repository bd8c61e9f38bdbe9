package inventory

import "time"

// Category enumerates the stock categories the business tracks.
type Category string

const (
	CategoryFabric      Category = "fabric"
	CategoryTrims       Category = "trims"
	CategoryPackaging   Category = "packaging"
	CategoryAccessories Category = "accessories"
	CategoryOther       Category = "other"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryFabric, CategoryTrims, CategoryPackaging, CategoryAccessories, CategoryOther:
		return true
	}
	return false
}

// Item is one recorded stock purchase.
type Item struct {
	ItemID     int64      `json:"item_id"`
	Date       time.Time  `json:"date"`
	ItemName   string     `json:"item_name"`
	Category   Category   `json:"category"`
	Quantity   *float64   `json:"quantity"`
	Unit       *string    `json:"unit"`
	UnitCost   *float64   `json:"unit_cost"`
	TotalValue float64    `json:"total_value"`
	DropID     *int64     `json:"drop_id"`
	DropName   *string    `json:"drop_name,omitempty"`
	Notes      *string    `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ProductLink is a default consumption rate: how much of an item one produced
// piece of a product uses.
type ProductLink struct {
	ID            int64   `json:"id"`
	ProductID     int64   `json:"product_id"`
	ProductName   string  `json:"product_name"`
	UsagePerPiece float64 `json:"usage_per_piece"`
}

// ProductLinkInput is the write shape for replacing an item's usage links.
type ProductLinkInput struct {
	ProductID     int64   `json:"product_id"`
	UsagePerPiece float64 `json:"usage_per_piece"`
}

// ProductUsageItem is an item as seen from a product's bill of materials.
type ProductUsageItem struct {
	ItemID        int64   `json:"item_id"`
	ItemName      string  `json:"item_name"`
	Unit          *string `json:"unit"`
	UsagePerPiece float64 `json:"usage_per_piece"`
}

// ConsumptionRow is one qualifying order joined against the item's usage
// rate and any order-specific override. Qualifying means the order's product
// has a rate for the item and the order is not cancelled or returned.
type ConsumptionRow struct {
	OrderID       int64
	IsSample      bool
	Override      *float64
	UsagePerPiece float64
}

// Consumption is the quantity-consumed breakdown for one item.
type Consumption struct {
	Total      float64 `json:"total"`
	Production float64 `json:"production"`
	Sampling   float64 `json:"sampling"`
}

// Consume folds qualifying order rows into a consumption breakdown. Per row
// the consumed quantity is the order override when present, else the
// product's default rate (a coalesce, never a sum). Sample orders land in
// Sampling, everything else in Production; Total is always their sum.
func Consume(rows []ConsumptionRow) Consumption {
	var c Consumption
	for _, row := range rows {
		qty := row.UsagePerPiece
		if row.Override != nil {
			qty = *row.Override
		}
		if row.IsSample {
			c.Sampling += qty
		} else {
			c.Production += qty
		}
	}
	c.Total = c.Production + c.Sampling
	return c
}

// Remaining returns item quantity minus consumed. Negative values signal
// overconsumption relative to the recorded purchase; reported, not prevented.
func Remaining(quantity float64, consumed Consumption) float64 {
	return quantity - consumed.Total
}

// EnrichedItem is an item with its usage links and, when the item has a
// declared quantity, the consumption breakdown.
type EnrichedItem struct {
	Item
	ProductLinks               []ProductLink `json:"product_links"`
	QuantityConsumed           *float64      `json:"quantity_consumed"`
	QuantityConsumedProduction *float64      `json:"quantity_consumed_production"`
	QuantityConsumedSampling   *float64      `json:"quantity_consumed_sampling"`
	QuantityRemaining          *float64      `json:"quantity_remaining"`
}

// ItemInput is the write shape for stock purchases.
type ItemInput struct {
	Date       string             `json:"date"`
	ItemName   string             `json:"item_name" validate:"required"`
	Category   Category           `json:"category"`
	Quantity   *float64           `json:"quantity"`
	Unit       *string            `json:"unit"`
	UnitCost   *float64           `json:"unit_cost"`
	TotalValue float64            `json:"total_value" validate:"gte=0"`
	DropID     *int64             `json:"drop_id"`
	Notes      *string            `json:"notes"`
	Links      []ProductLinkInput `json:"product_links"`
}

// DropStock is the per-drop value summary used by the inventory summary
// query. Consumed figures use the cost-record proxy: summed cost fields of
// the drop's order cost records.
type DropStock struct {
	DropID             int64          `json:"drop_id"`
	DropName           string         `json:"drop_name"`
	FabricStock        float64        `json:"fabric_stock"`
	TrimsStock         float64        `json:"trims_stock"`
	PackagingStock     float64        `json:"packaging_stock"`
	TotalStock         float64        `json:"total_stock"`
	FabricConsumed     float64        `json:"fabric_consumed"`
	TrimsConsumed      float64        `json:"trims_consumed"`
	PackagingConsumed  float64        `json:"packaging_consumed"`
	FabricRemaining    float64        `json:"fabric_remaining"`
	TrimsRemaining     float64        `json:"trims_remaining"`
	PackagingRemaining float64        `json:"packaging_remaining"`
	TotalConsumed      float64        `json:"total_consumed"`
	TotalRemaining     float64        `json:"total_remaining"`
	ItemsWithQuantity  []EnrichedItem `json:"items_with_quantity"`
}

// GeneralStock summarises stock not scoped to any drop.
type GeneralStock struct {
	TotalStock float64 `json:"total_stock"`
	ItemCount  int64   `json:"item_count"`
}

// Summary is the full inventory summary payload.
type Summary struct {
	Drops   []DropStock  `json:"drops"`
	General GeneralStock `json:"general"`
}

// CostProxy carries the summed cost-record fields for a drop's orders.
type CostProxy struct {
	Fabric    float64
	Trims     float64
	Packaging float64
}
