package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearkati/katicontrol/internal/shared"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `i.item_id, i.date, i.item_name, i.category, i.quantity, i.unit, i.unit_cost, i.total_value, i.drop_id, d.drop_name, i.notes, i.created_at`

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ItemID, &item.Date, &item.ItemName, &item.Category, &item.Quantity, &item.Unit, &item.UnitCost, &item.TotalValue, &item.DropID, &item.DropName, &item.Notes, &item.CreatedAt)
	return item, err
}

// List returns all stock purchases, newest first.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+`
FROM inventory_items i
LEFT JOIN drops d ON d.drop_id = i.drop_id
ORDER BY i.date DESC, i.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get fetches a single item.
func (r *Repository) Get(ctx context.Context, itemID int64) (Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, `SELECT `+itemColumns+`
FROM inventory_items i
LEFT JOIN drops d ON d.drop_id = i.drop_id
WHERE i.item_id=$1`, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, shared.ErrNotFound
	}
	return item, err
}

// Create inserts an item and its usage links in one transaction.
func (r *Repository) Create(ctx context.Context, date time.Time, input ItemInput) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var itemID int64
	err = tx.QueryRow(ctx, `INSERT INTO inventory_items (date, item_name, category, quantity, unit, unit_cost, total_value, drop_id, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING item_id`,
		date, input.ItemName, string(input.Category), input.Quantity, input.Unit, input.UnitCost, input.TotalValue, input.DropID, input.Notes).Scan(&itemID)
	if err != nil {
		return 0, err
	}
	if err := replaceLinks(ctx, tx, itemID, input.Links); err != nil {
		return 0, err
	}
	return itemID, tx.Commit(ctx)
}

// Update rewrites an item and, when links are supplied, replaces its usage links.
func (r *Repository) Update(ctx context.Context, itemID int64, date time.Time, input ItemInput, replaceLinkSet bool) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE inventory_items SET date=$1, item_name=$2, category=$3, quantity=$4, unit=$5, unit_cost=$6, total_value=$7, drop_id=$8, notes=$9
WHERE item_id=$10`,
		date, input.ItemName, string(input.Category), input.Quantity, input.Unit, input.UnitCost, input.TotalValue, input.DropID, input.Notes, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	if replaceLinkSet {
		if err := replaceLinks(ctx, tx, itemID, input.Links); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func replaceLinks(ctx context.Context, tx pgx.Tx, itemID int64, links []ProductLinkInput) error {
	if _, err := tx.Exec(ctx, `DELETE FROM inventory_product_usages WHERE item_id=$1`, itemID); err != nil {
		return err
	}
	for _, link := range links {
		if link.ProductID == 0 || link.UsagePerPiece == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, `INSERT INTO inventory_product_usages (item_id, product_id, usage_per_piece)
VALUES ($1,$2,$3)
ON CONFLICT (item_id, product_id) DO UPDATE SET usage_per_piece=EXCLUDED.usage_per_piece`, itemID, link.ProductID, link.UsagePerPiece); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an item; usage links cascade.
func (r *Repository) Delete(ctx context.Context, itemID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE item_id=$1`, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ProductLinks lists an item's usage rates with product names.
func (r *Repository) ProductLinks(ctx context.Context, itemID int64) ([]ProductLink, error) {
	rows, err := r.pool.Query(ctx, `SELECT ipu.id, ipu.product_id, p.product_name, ipu.usage_per_piece
FROM inventory_product_usages ipu
JOIN products p ON p.product_id = ipu.product_id
WHERE ipu.item_id=$1
ORDER BY p.product_name`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	links := []ProductLink{}
	for rows.Next() {
		var link ProductLink
		if err := rows.Scan(&link.ID, &link.ProductID, &link.ProductName, &link.UsagePerPiece); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// ItemsByProduct lists the items a product draws from, with rates.
func (r *Repository) ItemsByProduct(ctx context.Context, productID int64) ([]ProductUsageItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.item_id, i.item_name, i.unit, ipu.usage_per_piece
FROM inventory_product_usages ipu
JOIN inventory_items i ON i.item_id = ipu.item_id
WHERE ipu.product_id=$1
ORDER BY i.item_name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ProductUsageItem{}
	for rows.Next() {
		var item ProductUsageItem
		if err := rows.Scan(&item.ItemID, &item.ItemName, &item.Unit, &item.UsagePerPiece); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ConsumptionRows fetches qualifying orders for an item: the product has a
// usage rate for the item, the order is not cancelled/returned, optionally
// scoped to one drop. The coalesce itself happens in Consume.
func (r *Repository) ConsumptionRows(ctx context.Context, itemID int64, dropID *int64) ([]ConsumptionRow, error) {
	query := `SELECT o.order_id, o.is_sample, oiu.quantity_used, ipu.usage_per_piece
FROM orders o
JOIN inventory_product_usages ipu ON ipu.product_id = o.product_id AND ipu.item_id = $1
LEFT JOIN order_inventory_usages oiu ON oiu.order_id = o.order_id AND oiu.item_id = $1
WHERE o.production_status NOT IN ('cancelled','returned')`
	args := []any{itemID}
	if dropID != nil {
		query += ` AND o.drop_id = $2`
		args = append(args, *dropID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ConsumptionRow{}
	for rows.Next() {
		var row ConsumptionRow
		if err := rows.Scan(&row.OrderID, &row.IsSample, &row.Override, &row.UsagePerPiece); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ItemsWithQuantity lists items that declare a quantity, optionally scoped to
// a drop; used by the summary query and the low-stock alert scan.
func (r *Repository) ItemsWithQuantity(ctx context.Context, dropID *int64) ([]Item, error) {
	query := `SELECT ` + itemColumns + `
FROM inventory_items i
LEFT JOIN drops d ON d.drop_id = i.drop_id
WHERE i.quantity IS NOT NULL`
	args := []any{}
	if dropID != nil {
		query += ` AND i.drop_id = $1`
		args = append(args, *dropID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DropStocks returns per-drop stock values by category for drops holding any
// stock.
func (r *Repository) DropStocks(ctx context.Context) ([]DropStock, error) {
	rows, err := r.pool.Query(ctx, `SELECT d.drop_id, d.drop_name,
COALESCE(SUM(CASE WHEN i.category='fabric'    THEN i.total_value ELSE 0 END),0),
COALESCE(SUM(CASE WHEN i.category='trims'     THEN i.total_value ELSE 0 END),0),
COALESCE(SUM(CASE WHEN i.category='packaging' THEN i.total_value ELSE 0 END),0),
COALESCE(SUM(i.total_value),0) AS total_stock
FROM drops d
LEFT JOIN inventory_items i ON i.drop_id = d.drop_id
GROUP BY d.drop_id, d.drop_name
HAVING COALESCE(SUM(i.total_value),0) > 0
ORDER BY d.drop_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stocks := []DropStock{}
	for rows.Next() {
		var s DropStock
		if err := rows.Scan(&s.DropID, &s.DropName, &s.FabricStock, &s.TrimsStock, &s.PackagingStock, &s.TotalStock); err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// CostProxyByDrop sums the cost-record fields of a drop's orders, the value
// proxy for consumed fabric/trims/packaging.
func (r *Repository) CostProxyByDrop(ctx context.Context, dropID int64) (CostProxy, error) {
	var proxy CostProxy
	err := r.pool.QueryRow(ctx, `SELECT
COALESCE(SUM(oc.fabric_cost),0),
COALESCE(SUM(oc.trims_cost),0),
COALESCE(SUM(oc.packaging_cost),0)
FROM order_costs oc
JOIN orders o ON o.order_id = oc.order_id
WHERE o.drop_id=$1`, dropID).Scan(&proxy.Fabric, &proxy.Trims, &proxy.Packaging)
	return proxy, err
}

// GeneralStock totals stock not attached to any drop.
func (r *Repository) GeneralStock(ctx context.Context) (GeneralStock, error) {
	var g GeneralStock
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_value),0), COUNT(*) FROM inventory_items WHERE drop_id IS NULL`).Scan(&g.TotalStock, &g.ItemCount)
	return g, err
}
