package catalog

import (
	"time"

	"github.com/wearkati/katicontrol/internal/costing"
)

// Product is one sellable style. The four estimate fields are the default
// cost assumptions used whenever an order has no recorded costs.
type Product struct {
	ProductID    int64     `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Collection   *string   `json:"collection"`
	Category     *string   `json:"category"`
	Type         *string   `json:"type"`
	DefaultPrice *float64  `json:"default_price"`
	FabricEst    float64   `json:"fabric_est"`
	SewingEst    float64   `json:"sewing_est"`
	TrimsEst     float64   `json:"trims_est"`
	PackagingEst float64   `json:"packaging_est"`
	ActiveStatus bool      `json:"active_status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Estimates returns the product's default cost estimates in costing form.
func (p Product) Estimates() costing.ProductEstimates {
	return costing.ProductEstimates{
		FabricEst:    p.FabricEst,
		SewingEst:    p.SewingEst,
		TrimsEst:     p.TrimsEst,
		PackagingEst: p.PackagingEst,
	}
}

// ProductWithStats decorates a product with its order statistics. The average
// selling price is net of discounts and excludes cancelled and returned
// orders.
type ProductWithStats struct {
	Product
	TotalOrders     int64   `json:"total_orders"`
	AvgSellingPrice float64 `json:"avg_selling_price"`
}

// ProductInput is the write shape for products.
type ProductInput struct {
	ProductName  string   `json:"product_name" validate:"required"`
	Collection   *string  `json:"collection"`
	Category     *string  `json:"category"`
	Type         *string  `json:"type"`
	DefaultPrice *float64 `json:"default_price"`
	FabricEst    float64  `json:"fabric_est" validate:"gte=0"`
	SewingEst    float64  `json:"sewing_est" validate:"gte=0"`
	TrimsEst     float64  `json:"trims_est" validate:"gte=0"`
	PackagingEst float64  `json:"packaging_est" validate:"gte=0"`
	ActiveStatus *bool    `json:"active_status"`
}
