package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wearkati/katicontrol/internal/shared"
)

type memoryRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product)}
}

func (r *memoryRepo) List(ctx context.Context) ([]ProductWithStats, error) {
	result := []ProductWithStats{}
	for _, p := range r.products {
		if p.ActiveStatus {
			result = append(result, ProductWithStats{Product: p})
		}
	}
	return result, nil
}

func (r *memoryRepo) Get(ctx context.Context, productID int64) (Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, input ProductInput) (int64, error) {
	r.nextID++
	r.products[r.nextID] = Product{
		ProductID:    r.nextID,
		ProductName:  input.ProductName,
		Collection:   input.Collection,
		DefaultPrice: input.DefaultPrice,
		FabricEst:    input.FabricEst,
		SewingEst:    input.SewingEst,
		TrimsEst:     input.TrimsEst,
		PackagingEst: input.PackagingEst,
		ActiveStatus: true,
	}
	return r.nextID, nil
}

func (r *memoryRepo) Update(ctx context.Context, productID int64, input ProductInput) error {
	p, ok := r.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	p.ProductName = input.ProductName
	p.FabricEst = input.FabricEst
	p.SewingEst = input.SewingEst
	p.TrimsEst = input.TrimsEst
	p.PackagingEst = input.PackagingEst
	if input.ActiveStatus != nil {
		p.ActiveStatus = *input.ActiveStatus
	}
	r.products[productID] = p
	return nil
}

func (r *memoryRepo) Deactivate(ctx context.Context, productID int64) error {
	p, ok := r.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	p.ActiveStatus = false
	r.products[productID] = p
	return nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), ProductInput{})
	require.Error(t, err)
}

func TestDeactivateHidesFromList(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, ProductInput{ProductName: "Boubou brodé", FabricEst: 6000, SewingEst: 4000})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Deactivate(ctx, created.ProductID))

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	// Deactivated products stay fetchable so order history keeps resolving.
	got, err := svc.Get(ctx, created.ProductID)
	require.NoError(t, err)
	require.False(t, got.ActiveStatus)
}

func TestEstimatesSum(t *testing.T) {
	p := Product{FabricEst: 6000, SewingEst: 4000, TrimsEst: 500, PackagingEst: 500}
	require.InDelta(t, 11000, p.Estimates().Sum(), 0.0001)
}
