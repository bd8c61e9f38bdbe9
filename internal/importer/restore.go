package importer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearkati/katicontrol/internal/platform/db"
)

// Dump is a full-database snapshot as uploaded to the restore endpoint.
// Dates and timestamps travel as strings and are cast by Postgres, so both
// day precision ("2024-01-15") and full timestamps are accepted.
type Dump struct {
	Drops                  []DumpDrop         `json:"drops"`
	Products               []DumpProduct      `json:"products"`
	Orders                 []DumpOrder        `json:"orders"`
	OrderCosts             []DumpOrderCost    `json:"order_costs"`
	Expenses               []DumpExpense      `json:"expenses"`
	CashMovements          []DumpCashMovement `json:"cash_movements"`
	InventoryItems         []DumpInventory    `json:"inventory_items"`
	InventoryProductUsages []DumpProductUsage `json:"inventory_product_usages"`
	OrderInventoryUsages   []DumpOrderUsage   `json:"order_inventory_usages"`
}

// DumpDrop mirrors the drops table.
type DumpDrop struct {
	DropID             int64    `json:"drop_id"`
	DropName           string   `json:"drop_name"`
	StartDate          *string  `json:"start_date"`
	EndDate            *string  `json:"end_date"`
	Status             string   `json:"status"`
	TargetUnits        *int64   `json:"target_units"`
	TargetRevenue      *float64 `json:"target_revenue"`
	TargetGrossProfit  *float64 `json:"target_gross_profit"`
	TargetNetProfit    *float64 `json:"target_net_profit"`
	PlannedBudgetTotal *float64 `json:"planned_budget_total"`
	Notes              *string  `json:"notes"`
	CreatedAt          *string  `json:"created_at"`
}

// DumpProduct mirrors the products table.
type DumpProduct struct {
	ProductID    int64    `json:"product_id"`
	ProductName  string   `json:"product_name"`
	Collection   *string  `json:"collection"`
	Category     *string  `json:"category"`
	Type         *string  `json:"type"`
	DefaultPrice *float64 `json:"default_price"`
	FabricEst    float64  `json:"fabric_est"`
	SewingEst    float64  `json:"sewing_est"`
	TrimsEst     float64  `json:"trims_est"`
	PackagingEst float64  `json:"packaging_est"`
	ActiveStatus bool     `json:"active_status"`
	CreatedAt    *string  `json:"created_at"`
}

// DumpOrder mirrors the orders table.
type DumpOrder struct {
	OrderID                    int64    `json:"order_id"`
	CreatedAt                  *string  `json:"created_at"`
	OrderDate                  string   `json:"order_date"`
	DropID                     *int64   `json:"drop_id"`
	ProductID                  *int64   `json:"product_id"`
	ProductName                *string  `json:"product_name"`
	Channel                    *string  `json:"channel"`
	CustomerType               *string  `json:"customer_type"`
	CustomerName               *string  `json:"customer_name"`
	CustomerContact            *string  `json:"customer_contact"`
	SellingPrice               float64  `json:"selling_price"`
	Discount                   float64  `json:"discount"`
	PromoCode                  *string  `json:"promo_code"`
	Size                       *string  `json:"size"`
	Height                     *string  `json:"height"`
	Color                      *string  `json:"color"`
	MeasurementsStatus         string   `json:"measurements_status"`
	PaymentMethod              *string  `json:"payment_method"`
	PaymentStatus              string   `json:"payment_status"`
	AmountPaid                 float64  `json:"amount_paid"`
	DeliveryFeeChargedToClient float64  `json:"delivery_fee_charged_to_client"`
	ProductionStatus           string   `json:"production_status"`
	TailorAssigned             *string  `json:"tailor_assigned"`
	Notes                      *string  `json:"notes"`
	IsSample                   bool     `json:"is_sample"`
	IsImported                 bool     `json:"is_imported"`
	ImportSource               *string  `json:"import_source"`
	ExternalSource             *string  `json:"external_source"`
	ExternalID                 *string  `json:"external_id"`
	ExternalGroupID            *string  `json:"external_group_id"`
}

// DumpOrderCost mirrors the order_costs table.
type DumpOrderCost struct {
	CostID                     int64    `json:"cost_id"`
	OrderID                    int64    `json:"order_id"`
	FabricCost                 *float64 `json:"fabric_cost"`
	SewingCost                 *float64 `json:"sewing_cost"`
	TrimsCost                  *float64 `json:"trims_cost"`
	PackagingCost              *float64 `json:"packaging_cost"`
	DeliveryCostPaidByBusiness *float64 `json:"delivery_cost_paid_by_business"`
	PaymentFee                 *float64 `json:"payment_fee"`
	OtherOrderCost             *float64 `json:"other_order_cost"`
	CostStatus                 string   `json:"cost_status"`
	Notes                      *string  `json:"notes"`
	CreatedAt                  *string  `json:"created_at"`
	UpdatedAt                  *string  `json:"updated_at"`
}

// DumpExpense mirrors the expenses table.
type DumpExpense struct {
	ExpenseID   int64   `json:"expense_id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    *string `json:"category"`
	Vendor      *string `json:"vendor"`
	Notes       *string `json:"notes"`
	ReceiptPath *string `json:"receipt_path"`
	DropID      *int64  `json:"drop_id"`
	CreatedAt   *string `json:"created_at"`
}

// DumpCashMovement mirrors the cash_movements table.
type DumpCashMovement struct {
	TransactionID int64   `json:"transaction_id"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	Note          *string `json:"note"`
	CreatedAt     *string `json:"created_at"`
}

// DumpInventory mirrors the inventory_items table.
type DumpInventory struct {
	ItemID     int64    `json:"item_id"`
	Date       string   `json:"date"`
	ItemName   string   `json:"item_name"`
	Category   string   `json:"category"`
	Quantity   *float64 `json:"quantity"`
	Unit       *string  `json:"unit"`
	UnitCost   *float64 `json:"unit_cost"`
	TotalValue float64  `json:"total_value"`
	DropID     *int64   `json:"drop_id"`
	Notes      *string  `json:"notes"`
	CreatedAt  *string  `json:"created_at"`
}

// DumpProductUsage mirrors the inventory_product_usages table.
type DumpProductUsage struct {
	ID            int64   `json:"id"`
	ItemID        int64   `json:"item_id"`
	ProductID     int64   `json:"product_id"`
	UsagePerPiece float64 `json:"usage_per_piece"`
}

// DumpOrderUsage mirrors the order_inventory_usages table.
type DumpOrderUsage struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"order_id"`
	ItemID       int64   `json:"item_id"`
	QuantityUsed float64 `json:"quantity_used"`
}

// Counts reports how many rows each table received.
type Counts struct {
	Drops                  int `json:"drops"`
	Products               int `json:"products"`
	Orders                 int `json:"orders"`
	OrderCosts             int `json:"order_costs"`
	Expenses               int `json:"expenses"`
	CashMovements          int `json:"cash_movements"`
	InventoryItems         int `json:"inventory_items"`
	InventoryProductUsages int `json:"inventory_product_usages"`
	OrderInventoryUsages   int `json:"order_inventory_usages"`
}

// Restorer replaces the whole database from a dump.
type Restorer struct {
	pool *pgxpool.Pool
}

// NewRestorer builds Restorer.
func NewRestorer(pool *pgxpool.Pool) *Restorer {
	return &Restorer{pool: pool}
}

// restoreTables lists every replaced table with its serial column, in
// dependency order. Deletes run in reverse.
var restoreTables = []struct {
	name   string
	serial string
}{
	{"drops", "drop_id"},
	{"products", "product_id"},
	{"orders", "order_id"},
	{"order_costs", "cost_id"},
	{"expenses", "expense_id"},
	{"cash_movements", "transaction_id"},
	{"inventory_items", "item_id"},
	{"inventory_product_usages", "id"},
	{"order_inventory_usages", "id"},
}

// Restore wipes and reloads all nine tables inside one transaction with FK
// checking suspended, then resyncs the serial sequences. Any failure rolls
// everything back to the pre-restore state.
func (r *Restorer) Restore(ctx context.Context, dump Dump) (Counts, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SET LOCAL session_replication_role = 'replica'`); err != nil {
			return fmt.Errorf("importer: suspend fk checks: %w", err)
		}
		for i := len(restoreTables) - 1; i >= 0; i-- {
			if _, err := tx.Exec(ctx, `DELETE FROM `+restoreTables[i].name); err != nil {
				return fmt.Errorf("importer: clear %s: %w", restoreTables[i].name, err)
			}
		}

		if err := insertDump(ctx, tx, dump); err != nil {
			return err
		}

		for _, table := range restoreTables {
			_, err := tx.Exec(ctx, fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%s','%s'), COALESCE(MAX(%s), 0) + 1, false) FROM %s`,
				table.name, table.serial, table.serial, table.name))
			if err != nil {
				return fmt.Errorf("importer: resync %s sequence: %w", table.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return Counts{}, err
	}
	return Counts{
		Drops:                  len(dump.Drops),
		Products:               len(dump.Products),
		Orders:                 len(dump.Orders),
		OrderCosts:             len(dump.OrderCosts),
		Expenses:               len(dump.Expenses),
		CashMovements:          len(dump.CashMovements),
		InventoryItems:         len(dump.InventoryItems),
		InventoryProductUsages: len(dump.InventoryProductUsages),
		OrderInventoryUsages:   len(dump.OrderInventoryUsages),
	}, nil
}

func insertDump(ctx context.Context, tx pgx.Tx, dump Dump) error {
	for _, d := range dump.Drops {
		_, err := tx.Exec(ctx, `INSERT INTO drops
(drop_id, drop_name, start_date, end_date, status, target_units, target_revenue,
 target_gross_profit, target_net_profit, planned_budget_total, notes, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,COALESCE($12::timestamptz, NOW()))`,
			d.DropID, d.DropName, d.StartDate, d.EndDate, d.Status, d.TargetUnits,
			d.TargetRevenue, d.TargetGrossProfit, d.TargetNetProfit, d.PlannedBudgetTotal,
			d.Notes, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("importer: restore drop %d: %w", d.DropID, err)
		}
	}
	for _, p := range dump.Products {
		_, err := tx.Exec(ctx, `INSERT INTO products
(product_id, product_name, collection, category, type, default_price,
 fabric_est, sewing_est, trims_est, packaging_est, active_status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,COALESCE($12::timestamptz, NOW()))`,
			p.ProductID, p.ProductName, p.Collection, p.Category, p.Type, p.DefaultPrice,
			p.FabricEst, p.SewingEst, p.TrimsEst, p.PackagingEst, p.ActiveStatus, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("importer: restore product %d: %w", p.ProductID, err)
		}
	}
	for _, o := range dump.Orders {
		_, err := tx.Exec(ctx, `INSERT INTO orders
(order_id, created_at, order_date, drop_id, product_id, product_name, channel,
 customer_type, customer_name, customer_contact, selling_price, discount, promo_code,
 size, height, color, measurements_status, payment_method, payment_status, amount_paid,
 delivery_fee_charged_to_client, production_status, tailor_assigned, notes,
 is_sample, is_imported, import_source, external_source, external_id, external_group_id)
VALUES ($1,COALESCE($2::timestamptz, NOW()),$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30)`,
			o.OrderID, o.CreatedAt, o.OrderDate, o.DropID, o.ProductID, o.ProductName, o.Channel,
			o.CustomerType, o.CustomerName, o.CustomerContact, o.SellingPrice, o.Discount, o.PromoCode,
			o.Size, o.Height, o.Color, o.MeasurementsStatus, o.PaymentMethod, o.PaymentStatus, o.AmountPaid,
			o.DeliveryFeeChargedToClient, o.ProductionStatus, o.TailorAssigned, o.Notes,
			o.IsSample, o.IsImported, o.ImportSource, o.ExternalSource, o.ExternalID, o.ExternalGroupID)
		if err != nil {
			return fmt.Errorf("importer: restore order %d: %w", o.OrderID, err)
		}
	}
	for _, c := range dump.OrderCosts {
		_, err := tx.Exec(ctx, `INSERT INTO order_costs
(cost_id, order_id, fabric_cost, sewing_cost, trims_cost, packaging_cost,
 delivery_cost_paid_by_business, payment_fee, other_order_cost, cost_status, notes,
 created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,COALESCE($12::timestamptz, NOW()),COALESCE($13::timestamptz, NOW()))`,
			c.CostID, c.OrderID, c.FabricCost, c.SewingCost, c.TrimsCost, c.PackagingCost,
			c.DeliveryCostPaidByBusiness, c.PaymentFee, c.OtherOrderCost, defaultStatus(c.CostStatus),
			c.Notes, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("importer: restore cost %d: %w", c.CostID, err)
		}
	}
	for _, e := range dump.Expenses {
		_, err := tx.Exec(ctx, `INSERT INTO expenses
(expense_id, date, amount, category, vendor, notes, receipt_path, drop_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,COALESCE($9::timestamptz, NOW()))`,
			e.ExpenseID, e.Date, e.Amount, e.Category, e.Vendor, e.Notes, e.ReceiptPath,
			e.DropID, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("importer: restore expense %d: %w", e.ExpenseID, err)
		}
	}
	for _, m := range dump.CashMovements {
		_, err := tx.Exec(ctx, `INSERT INTO cash_movements
(transaction_id, date, type, amount, note, created_at)
VALUES ($1,$2,$3,$4,$5,COALESCE($6::timestamptz, NOW()))`,
			m.TransactionID, m.Date, m.Type, m.Amount, m.Note, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("importer: restore movement %d: %w", m.TransactionID, err)
		}
	}
	for _, it := range dump.InventoryItems {
		_, err := tx.Exec(ctx, `INSERT INTO inventory_items
(item_id, date, item_name, category, quantity, unit, unit_cost, total_value, drop_id, notes, created_at)
VALUES ($1,$2,$3,COALESCE(NULLIF($4,''),'fabric'),$5,$6,$7,$8,$9,$10,COALESCE($11::timestamptz, NOW()))`,
			it.ItemID, it.Date, it.ItemName, it.Category, it.Quantity, it.Unit, it.UnitCost,
			it.TotalValue, it.DropID, it.Notes, it.CreatedAt)
		if err != nil {
			return fmt.Errorf("importer: restore item %d: %w", it.ItemID, err)
		}
	}
	for _, u := range dump.InventoryProductUsages {
		_, err := tx.Exec(ctx, `INSERT INTO inventory_product_usages
(id, item_id, product_id, usage_per_piece) VALUES ($1,$2,$3,$4)`,
			u.ID, u.ItemID, u.ProductID, u.UsagePerPiece)
		if err != nil {
			return fmt.Errorf("importer: restore product usage %d: %w", u.ID, err)
		}
	}
	for _, u := range dump.OrderInventoryUsages {
		_, err := tx.Exec(ctx, `INSERT INTO order_inventory_usages
(id, order_id, item_id, quantity_used) VALUES ($1,$2,$3,$4)`,
			u.ID, u.OrderID, u.ItemID, u.QuantityUsed)
		if err != nil {
			return fmt.Errorf("importer: restore order usage %d: %w", u.ID, err)
		}
	}
	return nil
}

func defaultStatus(status string) string {
	if status == "" {
		return "ESTIMATED"
	}
	return status
}
