package importer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearkati/katicontrol/internal/costing"
)

// Repository persists imported orders and serves the export queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertImported writes all rows, and their partial cost records where a cost
// figure was given, in one transaction.
func (r *Repository) InsertImported(ctx context.Context, rows []Row) ([]int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		var orderID int64
		err := tx.QueryRow(ctx, `INSERT INTO orders
(order_date, product_name, selling_price, discount, amount_paid,
 payment_status, size, color, customer_name, production_status,
 is_imported, import_source, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,TRUE,$11,$12)
RETURNING order_id`,
			row.Date, row.ProductName, row.SellingPrice, row.Discount, row.AmountPaid,
			row.PaymentStatus, row.Size, row.Color, row.CustomerName, row.ProductionStatus,
			importSource, row.Notes).Scan(&orderID)
		if err != nil {
			return nil, err
		}
		if rec := row.CostRecord(); rec != nil {
			status := costing.Status(rec)
			_, err = tx.Exec(ctx, `INSERT INTO order_costs
(order_id, fabric_cost, sewing_cost, cost_status, notes)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (order_id) DO NOTHING`,
				orderID, rec.FabricCost, rec.SewingCost, status, "Coût partiel importé Excel")
			if err != nil {
				return nil, err
			}
		}
		ids = append(ids, orderID)
	}
	return ids, tx.Commit(ctx)
}

// SheetData is a query result shaped for a spreadsheet sheet.
type SheetData struct {
	Headers []string
	Rows    [][]any
}

func (r *Repository) querySheet(ctx context.Context, sql string) (SheetData, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return SheetData{}, err
	}
	defer rows.Close()

	var data SheetData
	for _, field := range rows.FieldDescriptions() {
		data.Headers = append(data.Headers, field.Name)
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return SheetData{}, err
		}
		data.Rows = append(data.Rows, values)
	}
	return data, rows.Err()
}

// OrdersExport is the flat commercial view of every order with its drop and
// cost record, newest first.
func (r *Repository) OrdersExport(ctx context.Context) (SheetData, error) {
	return r.querySheet(ctx, `SELECT o.order_id, o.order_date, o.customer_name,
COALESCE(o.product_name, p.product_name) AS article,
d.drop_name, o.channel, o.customer_type,
o.selling_price, o.discount, (o.selling_price - o.discount) AS effective_price,
o.amount_paid, o.payment_status, o.payment_method,
o.size, o.height, o.color,
o.production_status, o.measurements_status, o.tailor_assigned, o.notes,
oc.fabric_cost, oc.sewing_cost, oc.trims_cost, oc.packaging_cost,
oc.delivery_cost_paid_by_business, oc.payment_fee, oc.other_order_cost, oc.cost_status
FROM orders o
LEFT JOIN products p ON p.product_id = o.product_id
LEFT JOIN drops d ON d.drop_id = o.drop_id
LEFT JOIN order_costs oc ON oc.order_id = o.order_id
ORDER BY o.order_date DESC`)
}

// NamedSheet pairs a sheet name with its rows, keeping workbook order.
type NamedSheet struct {
	Name string
	Data SheetData
}

// FullExport gathers the four sheets of the complete workbook.
func (r *Repository) FullExport(ctx context.Context) ([]NamedSheet, error) {
	queries := []NamedSheet{
		{Name: "Commandes"},
		{Name: "Dépenses"},
		{Name: "Mouvements Cash"},
		{Name: "Drops"},
	}
	sql := []string{
		`SELECT o.*, d.drop_name FROM orders o LEFT JOIN drops d ON d.drop_id = o.drop_id ORDER BY o.order_date DESC`,
		`SELECT e.*, d.drop_name FROM expenses e LEFT JOIN drops d ON d.drop_id = e.drop_id ORDER BY e.date DESC`,
		`SELECT * FROM cash_movements ORDER BY date DESC`,
		`SELECT * FROM drops ORDER BY created_at DESC`,
	}
	for i := range queries {
		data, err := r.querySheet(ctx, sql[i])
		if err != nil {
			return nil, err
		}
		queries[i].Data = data
	}
	return queries, nil
}
