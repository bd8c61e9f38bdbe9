package expenses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearkati/katicontrol/internal/shared"
)

// Repository persists expenses in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const expenseColumns = `e.expense_id, e.date, e.amount, e.category, e.vendor, e.notes, e.receipt_path, e.drop_id, d.drop_name, e.created_at`

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ExpenseID, &e.Date, &e.Amount, &e.Category, &e.Vendor, &e.Notes, &e.ReceiptPath, &e.DropID, &e.DropName, &e.CreatedAt)
	return e, err
}

// List returns expenses matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Expense, error) {
	query := `SELECT ` + expenseColumns + `
FROM expenses e
LEFT JOIN drops d ON d.drop_id = e.drop_id
WHERE 1=1`
	args := []any{}
	if filter.DropID != nil {
		args = append(args, *filter.DropID)
		query += fmt.Sprintf(` AND e.drop_id = $%d`, len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND e.category = $%d`, len(args))
	}
	query += ` ORDER BY e.date DESC, e.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// Get fetches one expense.
func (r *Repository) Get(ctx context.Context, expenseID int64) (Expense, error) {
	e, err := scanExpense(r.pool.QueryRow(ctx, `SELECT `+expenseColumns+`
FROM expenses e
LEFT JOIN drops d ON d.drop_id = e.drop_id
WHERE e.expense_id=$1`, expenseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Expense{}, shared.ErrNotFound
	}
	return e, err
}

// Create inserts an expense.
func (r *Repository) Create(ctx context.Context, date time.Time, input ExpenseInput) (int64, error) {
	var expenseID int64
	err := r.pool.QueryRow(ctx, `INSERT INTO expenses (date, amount, category, vendor, notes, receipt_path, drop_id)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING expense_id`,
		date, input.Amount, input.Category, input.Vendor, input.Notes, input.ReceiptPath, input.DropID).Scan(&expenseID)
	return expenseID, err
}

// Update rewrites an expense.
func (r *Repository) Update(ctx context.Context, expenseID int64, date time.Time, input ExpenseInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE expenses SET date=$1, amount=$2, category=$3, vendor=$4, notes=$5, receipt_path=$6, drop_id=$7
WHERE expense_id=$8`,
		date, input.Amount, input.Category, input.Vendor, input.Notes, input.ReceiptPath, input.DropID, expenseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an expense.
func (r *Repository) Delete(ctx context.Context, expenseID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE expense_id=$1`, expenseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumByDrop totals a drop's direct expenses.
func (r *Repository) SumByDrop(ctx context.Context, dropID int64) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount),0) FROM expenses WHERE drop_id=$1`, dropID).Scan(&total)
	return total, err
}
