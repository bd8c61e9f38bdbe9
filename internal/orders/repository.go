package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearkati/katicontrol/internal/costing"
	"github.com/wearkati/katicontrol/internal/shared"
)

// Repository persists orders, cost records and material overrides.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `o.order_id, o.created_at, o.order_date, o.drop_id, o.product_id, o.product_name,
o.channel, o.customer_type, o.customer_name, o.customer_contact, o.selling_price, o.discount,
o.promo_code, o.size, o.height, o.color, o.measurements_status, o.payment_method, o.payment_status,
o.amount_paid, o.delivery_fee_charged_to_client, o.production_status, o.tailor_assigned, o.notes,
o.is_sample, o.is_imported, o.import_source, o.external_source, o.external_id, o.external_group_id`

const joinedColumns = orderColumns + `,
d.drop_name, p.product_name,
oc.cost_id, oc.fabric_cost, oc.sewing_cost, oc.trims_cost, oc.packaging_cost,
oc.delivery_cost_paid_by_business, oc.payment_fee, oc.other_order_cost,
p.fabric_est, p.sewing_est, p.trims_est, p.packaging_est`

const joinedFrom = `
FROM orders o
LEFT JOIN drops d ON d.drop_id = o.drop_id
LEFT JOIN products p ON p.product_id = o.product_id
LEFT JOIN order_costs oc ON oc.order_id = o.order_id`

func scanJoined(row pgx.Row) (JoinedOrder, error) {
	var (
		j          JoinedOrder
		pName      *string
		costID     *int64
		rec        costing.CostRecord
		fabricEst  *float64
		sewingEst  *float64
		trimsEst   *float64
		packingEst *float64
	)
	err := row.Scan(
		&j.OrderID, &j.CreatedAt, &j.OrderDate, &j.DropID, &j.ProductID, &j.ProductName,
		&j.Channel, &j.CustomerType, &j.CustomerName, &j.CustomerContact, &j.SellingPrice, &j.Discount,
		&j.PromoCode, &j.Size, &j.Height, &j.Color, &j.MeasurementsStatus, &j.PaymentMethod, &j.PaymentStatus,
		&j.AmountPaid, &j.DeliveryFeeChargedToClient, &j.ProductionStatus, &j.TailorAssigned, &j.Notes,
		&j.IsSample, &j.IsImported, &j.ImportSource, &j.ExternalSource, &j.ExternalID, &j.ExternalGroupID,
		&j.DropName, &pName,
		&costID, &rec.FabricCost, &rec.SewingCost, &rec.TrimsCost, &rec.PackagingCost,
		&rec.DeliveryCostPaidByBusiness, &rec.PaymentFee, &rec.OtherOrderCost,
		&fabricEst, &sewingEst, &trimsEst, &packingEst,
	)
	if err != nil {
		return JoinedOrder{}, err
	}
	// Ad-hoc orders carry their own product name; catalog orders inherit it.
	if j.ProductName == nil {
		j.ProductName = pName
	}
	if costID != nil {
		j.Cost = &rec
	}
	if fabricEst != nil {
		j.Estimates = &costing.ProductEstimates{
			FabricEst:    *fabricEst,
			SewingEst:    *sewingEst,
			TrimsEst:     *trimsEst,
			PackagingEst: *packingEst,
		}
	}
	return j, nil
}

// List returns joined orders matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]JoinedOrder, error) {
	query := `SELECT ` + joinedColumns + joinedFrom + `
WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.DropID != nil {
		query += ` AND o.drop_id = ` + arg(*filter.DropID)
	}
	if filter.Status != "" {
		query += ` AND o.production_status = ` + arg(filter.Status)
	}
	if filter.PaymentStatus != "" {
		query += ` AND o.payment_status = ` + arg(filter.PaymentStatus)
	}
	if filter.ExternalSource != "" {
		query += ` AND o.external_source = ` + arg(filter.ExternalSource)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` ORDER BY o.order_date DESC, o.created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []JoinedOrder{}
	for rows.Next() {
		j, err := scanJoined(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

// ListByDrop returns a drop's joined orders excluding cancelled and returned
// ones; the ROI aggregation works over exactly this set.
func (r *Repository) ListByDrop(ctx context.Context, dropID int64) ([]JoinedOrder, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+joinedColumns+joinedFrom+`
WHERE o.drop_id = $1 AND o.production_status NOT IN ('cancelled','returned')`, dropID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []JoinedOrder{}
	for rows.Next() {
		j, err := scanJoined(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

// Get fetches one joined order.
func (r *Repository) Get(ctx context.Context, orderID int64) (JoinedOrder, error) {
	j, err := scanJoined(r.pool.QueryRow(ctx, `SELECT `+joinedColumns+joinedFrom+`
WHERE o.order_id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return JoinedOrder{}, shared.ErrNotFound
	}
	return j, err
}

// MaterialOverrides lists an order's recorded usage quantities with item
// names and the product's default rate for comparison.
func (r *Repository) MaterialOverrides(ctx context.Context, orderID int64, productID *int64) ([]MaterialOverride, error) {
	rows, err := r.pool.Query(ctx, `SELECT oiu.item_id, oiu.quantity_used, i.item_name, i.unit, ipu.usage_per_piece
FROM order_inventory_usages oiu
JOIN inventory_items i ON i.item_id = oiu.item_id
LEFT JOIN inventory_product_usages ipu ON ipu.item_id = oiu.item_id AND ipu.product_id = $2
WHERE oiu.order_id = $1`, orderID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	overrides := []MaterialOverride{}
	for rows.Next() {
		var o MaterialOverride
		if err := rows.Scan(&o.ItemID, &o.QuantityUsed, &o.ItemName, &o.Unit, &o.UsagePerPiece); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

// Create inserts an order with its optional inline cost record and material
// overrides in one transaction.
func (r *Repository) Create(ctx context.Context, date time.Time, input OrderInput) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var orderID int64
	err = tx.QueryRow(ctx, `INSERT INTO orders (order_date, drop_id, product_id, product_name, channel,
customer_type, customer_name, customer_contact, selling_price, discount, promo_code, size, height,
color, measurements_status, payment_method, payment_status, amount_paid,
delivery_fee_charged_to_client, production_status, tailor_assigned, notes, is_sample)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
RETURNING order_id`,
		date, input.DropID, input.ProductID, input.ProductName, input.Channel,
		input.CustomerType, input.CustomerName, input.CustomerContact, input.SellingPrice, input.Discount,
		input.PromoCode, input.Size, input.Height, input.Color, input.MeasurementsStatus,
		input.PaymentMethod, input.PaymentStatus, input.AmountPaid,
		input.DeliveryFeeChargedToClient, input.ProductionStatus, input.TailorAssigned, input.Notes,
		input.IsSample).Scan(&orderID)
	if err != nil {
		return 0, err
	}
	if !input.Costs.Empty() {
		if err := upsertCosts(ctx, tx, orderID, input.Costs); err != nil {
			return 0, err
		}
	}
	if err := replaceOverrides(ctx, tx, orderID, input.MaterialOverrides); err != nil {
		return 0, err
	}
	return orderID, tx.Commit(ctx)
}

// Update rewrites an order and replaces its material overrides when any are
// supplied.
func (r *Repository) Update(ctx context.Context, orderID int64, date time.Time, input OrderInput) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE orders SET order_date=$1, drop_id=$2, product_id=$3, product_name=$4,
channel=$5, customer_type=$6, customer_name=$7, customer_contact=$8, selling_price=$9, discount=$10,
promo_code=$11, size=$12, height=$13, color=$14, measurements_status=$15, payment_method=$16,
payment_status=$17, amount_paid=$18, delivery_fee_charged_to_client=$19, production_status=$20,
tailor_assigned=$21, notes=$22, is_sample=$23
WHERE order_id=$24`,
		date, input.DropID, input.ProductID, input.ProductName,
		input.Channel, input.CustomerType, input.CustomerName, input.CustomerContact, input.SellingPrice, input.Discount,
		input.PromoCode, input.Size, input.Height, input.Color, input.MeasurementsStatus, input.PaymentMethod,
		input.PaymentStatus, input.AmountPaid, input.DeliveryFeeChargedToClient, input.ProductionStatus,
		input.TailorAssigned, input.Notes, input.IsSample, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	if err := replaceOverrides(ctx, tx, orderID, input.MaterialOverrides); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceOverrides(ctx context.Context, tx pgx.Tx, orderID int64, overrides []MaterialOverride) error {
	if len(overrides) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_inventory_usages WHERE order_id=$1`, orderID); err != nil {
		return err
	}
	for _, o := range overrides {
		if o.ItemID == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, `INSERT INTO order_inventory_usages (order_id, item_id, quantity_used)
VALUES ($1,$2,$3)
ON CONFLICT (order_id, item_id) DO UPDATE SET quantity_used=EXCLUDED.quantity_used`, orderID, o.ItemID, o.QuantityUsed); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an order; costs and overrides cascade.
func (r *Repository) Delete(ctx context.Context, orderID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const costColumns = `cost_id, order_id, fabric_cost, sewing_cost, trims_cost, packaging_cost,
delivery_cost_paid_by_business, payment_fee, other_order_cost, cost_status, notes, created_at, updated_at`

func scanCostRow(row pgx.Row) (CostRecordRow, error) {
	var c CostRecordRow
	err := row.Scan(&c.CostID, &c.OrderID, &c.FabricCost, &c.SewingCost, &c.TrimsCost, &c.PackagingCost,
		&c.DeliveryCostPaidByBusiness, &c.PaymentFee, &c.OtherOrderCost, &c.CostStatus, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetCosts fetches the cost record for one order.
func (r *Repository) GetCosts(ctx context.Context, orderID int64) (CostRecordRow, error) {
	c, err := scanCostRow(r.pool.QueryRow(ctx, `SELECT `+costColumns+` FROM order_costs WHERE order_id=$1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return CostRecordRow{}, shared.ErrNotFound
	}
	return c, err
}

// UpsertCosts creates or replaces an order's cost record; the status column
// is always recomputed from the supplied fields, never trusted from input.
func (r *Repository) UpsertCosts(ctx context.Context, orderID int64, input CostInput) (CostRecordRow, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return CostRecordRow{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := upsertCosts(ctx, tx, orderID, input); err != nil {
		return CostRecordRow{}, err
	}
	c, err := scanCostRow(tx.QueryRow(ctx, `SELECT `+costColumns+` FROM order_costs WHERE order_id=$1`, orderID))
	if err != nil {
		return CostRecordRow{}, err
	}
	return c, tx.Commit(ctx)
}

func upsertCosts(ctx context.Context, tx pgx.Tx, orderID int64, input CostInput) error {
	rec := input.Record()
	status := costing.Status(&rec)
	_, err := tx.Exec(ctx, `INSERT INTO order_costs (order_id, fabric_cost, sewing_cost, trims_cost, packaging_cost,
delivery_cost_paid_by_business, payment_fee, other_order_cost, cost_status, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (order_id) DO UPDATE SET
fabric_cost=EXCLUDED.fabric_cost, sewing_cost=EXCLUDED.sewing_cost, trims_cost=EXCLUDED.trims_cost,
packaging_cost=EXCLUDED.packaging_cost, delivery_cost_paid_by_business=EXCLUDED.delivery_cost_paid_by_business,
payment_fee=EXCLUDED.payment_fee, other_order_cost=EXCLUDED.other_order_cost,
cost_status=EXCLUDED.cost_status, notes=EXCLUDED.notes, updated_at=NOW()`,
		orderID, input.FabricCost, input.SewingCost, input.TrimsCost, input.PackagingCost,
		input.DeliveryCostPaidByBusiness, input.PaymentFee, input.OtherOrderCost, string(status), input.Notes)
	return err
}

// SaveSyncLines upserts externally sourced order lines in one transaction,
// keyed on (external_source, external_id). Replays overwrite in place.
func (r *Repository) SaveSyncLines(ctx context.Context, lines []SyncLine) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	synced := 0
	for _, line := range lines {
		if _, err := tx.Exec(ctx, `INSERT INTO orders (order_date, product_name, channel, customer_type,
customer_name, customer_contact, selling_price, discount, promo_code, size, height, color,
measurements_status, payment_method, payment_status, amount_paid, delivery_fee_charged_to_client,
production_status, notes, is_imported, import_source, external_source, external_id, external_group_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,TRUE,$20,$20,$21,$22)
ON CONFLICT (external_source, external_id) DO UPDATE SET
order_date=EXCLUDED.order_date, product_name=EXCLUDED.product_name, channel=EXCLUDED.channel,
customer_type=EXCLUDED.customer_type, customer_name=EXCLUDED.customer_name,
customer_contact=EXCLUDED.customer_contact, selling_price=EXCLUDED.selling_price,
discount=EXCLUDED.discount, promo_code=EXCLUDED.promo_code, size=EXCLUDED.size,
height=EXCLUDED.height, color=EXCLUDED.color, measurements_status=EXCLUDED.measurements_status,
payment_method=EXCLUDED.payment_method, payment_status=EXCLUDED.payment_status,
amount_paid=EXCLUDED.amount_paid, delivery_fee_charged_to_client=EXCLUDED.delivery_fee_charged_to_client,
notes=EXCLUDED.notes, is_imported=TRUE, import_source=EXCLUDED.import_source,
external_group_id=EXCLUDED.external_group_id`,
			line.OrderDate, line.ProductName, line.Channel, line.CustomerType,
			line.CustomerName, line.CustomerContact, line.SellingPrice, line.Discount, line.PromoCode,
			line.Size, line.Height, line.Color, line.MeasurementsStatus, line.PaymentMethod,
			line.PaymentStatus, line.AmountPaid, line.DeliveryFeeChargedToClient, line.ProductionStatus,
			line.Notes, line.Source, line.ExternalID, line.ExternalGroupID); err != nil {
			return 0, err
		}
		synced++
	}
	return synced, tx.Commit(ctx)
}
