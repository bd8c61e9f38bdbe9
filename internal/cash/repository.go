package cash

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearkati/katicontrol/internal/shared"
)

// Repository persists cash movements and computes position sums.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const movementColumns = `transaction_id, date, type, amount, note, created_at`

func scanMovement(row pgx.Row) (Movement, error) {
	var m Movement
	err := row.Scan(&m.TransactionID, &m.Date, &m.Type, &m.Amount, &m.Note, &m.CreatedAt)
	return m, err
}

// List returns all movements, newest first.
func (r *Repository) List(ctx context.Context) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+movementColumns+` FROM cash_movements ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := []Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// Create inserts a movement.
func (r *Repository) Create(ctx context.Context, date time.Time, input MovementInput) (Movement, error) {
	m, err := scanMovement(r.pool.QueryRow(ctx, `INSERT INTO cash_movements (date, type, amount, note)
VALUES ($1,$2,$3,$4) RETURNING `+movementColumns, date, input.Type, input.Amount, input.Note))
	return m, err
}

// Update rewrites a movement.
func (r *Repository) Update(ctx context.Context, transactionID int64, date time.Time, input MovementInput) (Movement, error) {
	m, err := scanMovement(r.pool.QueryRow(ctx, `UPDATE cash_movements SET date=$1, type=$2, amount=$3, note=$4
WHERE transaction_id=$5 RETURNING `+movementColumns, date, input.Type, input.Amount, input.Note, transactionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Movement{}, shared.ErrNotFound
	}
	return m, err
}

// Delete removes a movement.
func (r *Repository) Delete(ctx context.Context, transactionID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cash_movements WHERE transaction_id=$1`, transactionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// PositionSums fetches the raw sums the position is assembled from in one
// round trip.
func (r *Repository) PositionSums(ctx context.Context) (totalPaid, totalExpenses, injections, withdrawals, unpaidEstimate float64, err error) {
	err = r.pool.QueryRow(ctx, `SELECT
(SELECT COALESCE(SUM(amount_paid),0) FROM orders WHERE production_status NOT IN ('cancelled','returned')),
(SELECT COALESCE(SUM(amount),0) FROM expenses),
(SELECT COALESCE(SUM(amount),0) FROM cash_movements WHERE type='owner_injection'),
(SELECT COALESCE(SUM(amount),0) FROM cash_movements WHERE type='owner_withdrawal'),
(SELECT COALESCE(SUM((selling_price - discount) - amount_paid),0) FROM orders
 WHERE payment_status IN ('unpaid','partial') AND production_status NOT IN ('cancelled','returned'))`).
		Scan(&totalPaid, &totalExpenses, &injections, &withdrawals, &unpaidEstimate)
	return
}
