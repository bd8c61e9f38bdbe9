package drops

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearkati/katicontrol/internal/shared"
)

// Repository persists drops in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const dropColumns = `d.drop_id, d.drop_name, d.start_date, d.end_date, d.status, d.target_units,
d.target_revenue, d.target_gross_profit, d.target_net_profit, d.planned_budget_total, d.notes, d.created_at`

func scanDrop(row pgx.Row, d *Drop) error {
	return row.Scan(&d.DropID, &d.DropName, &d.StartDate, &d.EndDate, &d.Status, &d.TargetUnits,
		&d.TargetRevenue, &d.TargetGrossProfit, &d.TargetNetProfit, &d.PlannedBudgetTotal, &d.Notes, &d.CreatedAt)
}

// List returns all drops with order counters, newest first.
func (r *Repository) List(ctx context.Context) ([]DropWithStats, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+dropColumns+`,
COUNT(o.order_id) AS order_count,
COALESCE(SUM(o.amount_paid), 0) AS actual_revenue,
COALESCE(SUM(CASE WHEN o.production_status NOT IN ('cancelled','returned') THEN 1 ELSE 0 END), 0) AS active_orders
FROM drops d
LEFT JOIN orders o ON o.drop_id = d.drop_id
GROUP BY d.drop_id
ORDER BY d.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []DropWithStats{}
	for rows.Next() {
		var d DropWithStats
		if err := rows.Scan(&d.DropID, &d.DropName, &d.StartDate, &d.EndDate, &d.Status, &d.TargetUnits,
			&d.TargetRevenue, &d.TargetGrossProfit, &d.TargetNetProfit, &d.PlannedBudgetTotal, &d.Notes, &d.CreatedAt,
			&d.OrderCount, &d.ActualRevenue, &d.ActiveOrders); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// Get fetches one drop.
func (r *Repository) Get(ctx context.Context, dropID int64) (Drop, error) {
	var d Drop
	err := scanDrop(r.pool.QueryRow(ctx, `SELECT `+dropColumns+` FROM drops d WHERE d.drop_id=$1`, dropID), &d)
	if errors.Is(err, pgx.ErrNoRows) {
		return Drop{}, shared.ErrNotFound
	}
	return d, err
}

// Create inserts a drop.
func (r *Repository) Create(ctx context.Context, input DropInput, startDate, endDate *time.Time) (int64, error) {
	var dropID int64
	err := r.pool.QueryRow(ctx, `INSERT INTO drops (drop_name, start_date, end_date, status, target_units,
target_revenue, target_gross_profit, target_net_profit, planned_budget_total, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING drop_id`,
		input.DropName, startDate, endDate, input.Status, input.TargetUnits,
		input.TargetRevenue, input.TargetGrossProfit, input.TargetNetProfit, input.PlannedBudgetTotal, input.Notes).Scan(&dropID)
	return dropID, err
}

// Update rewrites a drop.
func (r *Repository) Update(ctx context.Context, dropID int64, input DropInput, startDate, endDate *time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE drops SET drop_name=$1, start_date=$2, end_date=$3, status=$4,
target_units=$5, target_revenue=$6, target_gross_profit=$7, target_net_profit=$8,
planned_budget_total=$9, notes=$10
WHERE drop_id=$11`,
		input.DropName, startDate, endDate, input.Status, input.TargetUnits,
		input.TargetRevenue, input.TargetGrossProfit, input.TargetNetProfit, input.PlannedBudgetTotal, input.Notes, dropID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a drop; orders, expenses and stock keep their rows with the
// association nulled.
func (r *Repository) Delete(ctx context.Context, dropID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM drops WHERE drop_id=$1`, dropID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
