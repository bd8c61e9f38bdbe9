package cash

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wearkati/katicontrol/internal/shared"
)

type memoryRepo struct {
	movements map[int64]Movement
	sums      [5]float64
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{movements: make(map[int64]Movement)}
}

func (r *memoryRepo) List(ctx context.Context) ([]Movement, error) {
	result := []Movement{}
	for _, m := range r.movements {
		result = append(result, m)
	}
	return result, nil
}

func (r *memoryRepo) Create(ctx context.Context, date time.Time, input MovementInput) (Movement, error) {
	r.nextID++
	m := Movement{TransactionID: r.nextID, Date: date, Type: input.Type, Amount: input.Amount, Note: input.Note}
	r.movements[r.nextID] = m
	return m, nil
}

func (r *memoryRepo) Update(ctx context.Context, transactionID int64, date time.Time, input MovementInput) (Movement, error) {
	m, ok := r.movements[transactionID]
	if !ok {
		return Movement{}, shared.ErrNotFound
	}
	m.Date = date
	m.Type = input.Type
	m.Amount = input.Amount
	r.movements[transactionID] = m
	return m, nil
}

func (r *memoryRepo) Delete(ctx context.Context, transactionID int64) error {
	if _, ok := r.movements[transactionID]; !ok {
		return shared.ErrNotFound
	}
	delete(r.movements, transactionID)
	return nil
}

func (r *memoryRepo) PositionSums(ctx context.Context) (float64, float64, float64, float64, float64, error) {
	return r.sums[0], r.sums[1], r.sums[2], r.sums[3], r.sums[4], nil
}

func TestBuildPosition(t *testing.T) {
	p := BuildPosition(120000, 40000, 50000, 10000, 25000)
	require.InDelta(t, 120000, p.TotalPaid, 0.0001)
	require.InDelta(t, 120000-40000+50000-10000, p.RecordedCash, 0.0001)
	require.InDelta(t, p.RecordedCash+25000, p.EstimatedCash, 0.0001)
	require.True(t, p.HasIncomplete)

	// Fully collected book: nothing outstanding, nothing flagged.
	p = BuildPosition(120000, 40000, 0, 0, 0)
	require.False(t, p.HasIncomplete)
	require.InDelta(t, p.RecordedCash, p.EstimatedCash, 0.0001)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), MovementInput{Type: "loan", Amount: 1000})
	require.Error(t, err)
}

func TestOverview(t *testing.T) {
	repo := newMemoryRepo()
	repo.sums = [5]float64{100000, 30000, 20000, 5000, 15000}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, MovementInput{Type: TypeOwnerInjection, Amount: 20000, Date: "2026-01-05"})
	require.NoError(t, err)

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, overview.Movements, 1)
	require.InDelta(t, 85000, overview.Position.RecordedCash, 0.0001)
	require.InDelta(t, 100000, overview.Position.EstimatedCash, 0.0001)
	require.True(t, overview.Position.HasIncomplete)
}
