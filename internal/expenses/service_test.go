package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wearkati/katicontrol/internal/shared"
)

type memoryRepo struct {
	expenses map[int64]Expense
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{expenses: make(map[int64]Expense)}
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Expense, error) {
	result := []Expense{}
	for _, e := range r.expenses {
		if filter.DropID != nil && (e.DropID == nil || *e.DropID != *filter.DropID) {
			continue
		}
		if filter.Category != "" && (e.Category == nil || *e.Category != filter.Category) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (r *memoryRepo) Get(ctx context.Context, expenseID int64) (Expense, error) {
	e, ok := r.expenses[expenseID]
	if !ok {
		return Expense{}, shared.ErrNotFound
	}
	return e, nil
}

func (r *memoryRepo) Create(ctx context.Context, date time.Time, input ExpenseInput) (int64, error) {
	r.nextID++
	r.expenses[r.nextID] = Expense{
		ExpenseID: r.nextID,
		Date:      date,
		Amount:    input.Amount,
		Category:  input.Category,
		DropID:    input.DropID,
	}
	return r.nextID, nil
}

func (r *memoryRepo) Update(ctx context.Context, expenseID int64, date time.Time, input ExpenseInput) error {
	e, ok := r.expenses[expenseID]
	if !ok {
		return shared.ErrNotFound
	}
	e.Date = date
	e.Amount = input.Amount
	e.Category = input.Category
	r.expenses[expenseID] = e
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, expenseID int64) error {
	if _, ok := r.expenses[expenseID]; !ok {
		return shared.ErrNotFound
	}
	delete(r.expenses, expenseID)
	return nil
}

func (r *memoryRepo) SumByDrop(ctx context.Context, dropID int64) (float64, error) {
	var total float64
	for _, e := range r.expenses {
		if e.DropID != nil && *e.DropID == dropID {
			total += e.Amount
		}
	}
	return total, nil
}

func str(s string) *string { return &s }

func TestCreateRequiresPositiveAmount(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), ExpenseInput{Amount: 0})
	require.Error(t, err)
	_, err = svc.Create(context.Background(), ExpenseInput{Amount: -100})
	require.Error(t, err)
}

func TestCreateDefaultsDateToToday(t *testing.T) {
	svc := NewService(newMemoryRepo())
	today := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return today })

	expense, err := svc.Create(context.Background(), ExpenseInput{Amount: 12000, Category: str("transport")})
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), expense.Date)
}

func TestSumByDrop(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()
	dropID := int64(3)

	_, err := svc.Create(ctx, ExpenseInput{Amount: 5000, DropID: &dropID, Date: "2026-02-01"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ExpenseInput{Amount: 3000, DropID: &dropID, Date: "2026-02-02"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ExpenseInput{Amount: 9999, Date: "2026-02-03"})
	require.NoError(t, err)

	total, err := svc.SumByDrop(ctx, dropID)
	require.NoError(t, err)
	require.InDelta(t, 8000, total, 0.0001)
}
