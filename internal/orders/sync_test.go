package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func syncPayload() SyncPayload {
	return SyncPayload{
		OrderID:       "WK-1042",
		CreatedAt:     "2026-05-10T14:03:00Z",
		Status:        "SUCCESS",
		TransactionID: "TX-77",
		Customer: SyncCustomer{
			FirstName: "Awa",
			LastName:  "Ndiaye",
			Email:     "awa@example.com",
			Phone:     "+221770000000",
			City:      "Dakar",
		},
		Items: []SyncItem{
			{ProductName: "Robe Kati", Price: 30000, Quantity: 1, StandardSize: "M", Color: "indigo"},
			{ProductName: "Ensemble Wax", Price: 20000, Quantity: 1, SizeType: "sur-mesure",
				Measurements: SyncMeasurements{Height: "172", Bust: "92"}},
		},
		Summary: SyncSummary{Subtotal: 50000, Discount: 5000, Shipping: 2000, PromoCode: "KATI10"},
	}
}

func TestMapPaymentStatus(t *testing.T) {
	require.Equal(t, "paid", MapPaymentStatus("SUCCESS"))
	require.Equal(t, "paid", MapPaymentStatus("completed"))
	require.Equal(t, "pending", MapPaymentStatus("Processing"))
	require.Equal(t, "unpaid", MapPaymentStatus("failed"))
	require.Equal(t, "unpaid", MapPaymentStatus(""))
}

func TestBuildSyncLinesApportionsDiscountAndShipping(t *testing.T) {
	now := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)
	lines := BuildSyncLines(syncPayload(), now)
	require.Len(t, lines, 2)

	first := lines[0]
	require.Equal(t, "WK-1042:1", first.ExternalID)
	require.Equal(t, "WK-1042", first.ExternalGroupID)
	require.Equal(t, SyncSource, first.Source)
	require.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), first.OrderDate)
	require.InDelta(t, 30000, first.SellingPrice, 0.0001)
	// 30000/50000 of the 5000 discount.
	require.InDelta(t, 3000, first.Discount, 0.0001)
	// Shipping splits evenly across the two lines.
	require.InDelta(t, 1000, first.DeliveryFeeChargedToClient, 0.0001)
	require.Equal(t, "paid", first.PaymentStatus)
	require.InDelta(t, 28000, first.AmountPaid, 0.0001)
	require.Equal(t, "standard", first.MeasurementsStatus)
	require.NotNil(t, first.Size)
	require.Equal(t, "M", *first.Size)

	second := lines[1]
	require.Equal(t, "WK-1042:2", second.ExternalID)
	require.Equal(t, "complete", second.MeasurementsStatus)
	require.Equal(t, "Sur Mesure", *second.Size)
	require.Equal(t, "172", *second.Height)
	require.Contains(t, *second.Notes, "item 2/2")
	require.Contains(t, *second.Notes, "Buste 92cm")
	require.Contains(t, *second.Notes, "Transaction TX-77")
}

func TestBuildSyncLinesUnpaidRecordsNothingCollected(t *testing.T) {
	payload := syncPayload()
	payload.Status = "failed"
	lines := BuildSyncLines(payload, time.Now())
	for _, line := range lines {
		require.Zero(t, line.AmountPaid)
		require.Equal(t, "unpaid", line.PaymentStatus)
	}
}

func TestSyncIdempotentOnReplay(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	synced, err := svc.Sync(ctx, syncPayload())
	require.NoError(t, err)
	require.Equal(t, 2, synced)

	// Replaying the same webhook must not create extra lines.
	synced, err = svc.Sync(ctx, syncPayload())
	require.NoError(t, err)
	require.Equal(t, 2, synced)
	require.Len(t, repo.synced, 2)
}

func TestSyncRejectsEmptyItems(t *testing.T) {
	svc := NewService(newMemoryRepo())
	payload := syncPayload()
	payload.Items = nil
	_, err := svc.Sync(context.Background(), payload)
	require.Error(t, err)
}
