package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearkati/katicontrol/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `p.product_id, p.product_name, p.collection, p.category, p.type, p.default_price, p.fabric_est, p.sewing_est, p.trims_est, p.packaging_est, p.active_status, p.created_at`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(&p.ProductID, &p.ProductName, &p.Collection, &p.Category, &p.Type, &p.DefaultPrice, &p.FabricEst, &p.SewingEst, &p.TrimsEst, &p.PackagingEst, &p.ActiveStatus, &p.CreatedAt)
}

// List returns active products with order statistics. Cancelled and returned
// orders are excluded from the counts and the discounted price average.
func (r *Repository) List(ctx context.Context) ([]ProductWithStats, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+`,
COUNT(o.order_id) AS total_orders,
COALESCE(AVG(o.selling_price - o.discount), 0) AS avg_selling_price
FROM products p
LEFT JOIN orders o ON o.product_id = p.product_id
  AND o.production_status NOT IN ('cancelled','returned')
WHERE p.active_status
GROUP BY p.product_id
ORDER BY p.product_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []ProductWithStats{}
	for rows.Next() {
		var p ProductWithStats
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Collection, &p.Category, &p.Type, &p.DefaultPrice, &p.FabricEst, &p.SewingEst, &p.TrimsEst, &p.PackagingEst, &p.ActiveStatus, &p.CreatedAt, &p.TotalOrders, &p.AvgSellingPrice); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Get fetches a product regardless of active status.
func (r *Repository) Get(ctx context.Context, productID int64) (Product, error) {
	var p Product
	err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.product_id=$1`, productID), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

// Create inserts a product.
func (r *Repository) Create(ctx context.Context, input ProductInput) (int64, error) {
	var productID int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products (product_name, collection, category, type, default_price, fabric_est, sewing_est, trims_est, packaging_est)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING product_id`,
		input.ProductName, input.Collection, input.Category, input.Type, input.DefaultPrice,
		input.FabricEst, input.SewingEst, input.TrimsEst, input.PackagingEst).Scan(&productID)
	return productID, err
}

// Update rewrites a product. A nil ActiveStatus keeps the product active.
func (r *Repository) Update(ctx context.Context, productID int64, input ProductInput) error {
	active := true
	if input.ActiveStatus != nil {
		active = *input.ActiveStatus
	}
	tag, err := r.pool.Exec(ctx, `UPDATE products SET product_name=$1, collection=$2, category=$3, type=$4, default_price=$5,
fabric_est=$6, sewing_est=$7, trims_est=$8, packaging_est=$9, active_status=$10
WHERE product_id=$11`,
		input.ProductName, input.Collection, input.Category, input.Type, input.DefaultPrice,
		input.FabricEst, input.SewingEst, input.TrimsEst, input.PackagingEst, active, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a product. History keeps pointing at it.
func (r *Repository) Deactivate(ctx context.Context, productID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET active_status=FALSE WHERE product_id=$1`, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
