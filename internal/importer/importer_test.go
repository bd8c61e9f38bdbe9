package importer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wearkati/katicontrol/internal/costing"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	file := excelize.NewFile()
	defer file.Close()
	for i, row := range rows {
		anchor, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow("Sheet1", anchor, &row))
	}
	buf, err := file.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func importToday() time.Time {
	return time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
}

func TestParseWorkbookFrenchHeaders(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Date", "Produit", "Prix", "Remise", "Coût", "Taille", "Couleur", "Client", "Paiement", "Statut"},
		{"2026-01-15", "Abaya Brodée", "45 000 FCFA", "5000", "18000", "M", "Bleu nuit", "Fatou Diallo", "Payé", "Livré"},
	})

	rows, errs, err := ParseWorkbook(buf, importToday())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Equal(t, 2, row.Line)
	require.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), row.Date)
	require.Equal(t, "Abaya Brodée", row.ProductName)
	require.Equal(t, 45000.0, row.SellingPrice)
	require.Equal(t, 5000.0, row.Discount)
	require.Equal(t, "paid", row.PaymentStatus)
	require.Equal(t, 40000.0, row.AmountPaid)
	require.Equal(t, "delivered", row.ProductionStatus)
	require.Equal(t, "Fatou Diallo", *row.CustomerName)
	require.Equal(t, 18000.0, row.Cost)
	require.Contains(t, row.Notes, "ligne 2")
}

func TestParseWorkbookCostSplit(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Date", "Article", "Price", "Cost"},
		{"2026-02-01", "Boubou", "30000", "10000"},
	})

	rows, _, err := ParseWorkbook(buf, importToday())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rec := rows[0].CostRecord()
	require.NotNil(t, rec)
	require.Equal(t, 6000.0, *rec.FabricCost)
	require.Equal(t, 4000.0, *rec.SewingCost)
	require.Equal(t, costing.StatusPartial, costing.Status(rec))
}

func TestParseWorkbookDefaultsAndFallbacks(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Name", "Price", "Payment"},
		{"Jupe Plissée", "20000", "Partiel"},
	})

	rows, errs, err := ParseWorkbook(buf, importToday())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, rows, 1)

	// A bare Name column backs both product and customer.
	row := rows[0]
	require.Equal(t, "Jupe Plissée", row.ProductName)
	require.Equal(t, "Jupe Plissée", *row.CustomerName)
	require.Equal(t, "partial", row.PaymentStatus)
	require.Zero(t, row.AmountPaid, "partial payment collects nothing at import")
	require.Equal(t, "new", row.ProductionStatus)
	require.Equal(t, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), row.Date, "missing date falls back to today")
	require.Nil(t, row.CostRecord())
}

func TestParseWorkbookBadDateReportsRow(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Date", "Article", "Price"},
		{"pas une date", "Robe", "10000"},
		{"2026-02-10", "Robe", "12000"},
	})

	rows, errs, err := ParseWorkbook(buf, importToday())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "Ligne 2")
	require.Equal(t, 3, rows[0].Line)
}

func TestMapKeywords(t *testing.T) {
	require.Equal(t, "paid", MapPaymentKeyword("Payé intégralement"))
	require.Equal(t, "partial", MapPaymentKeyword("acompte partiel"))
	require.Equal(t, "unpaid", MapPaymentKeyword("rien"))

	require.Equal(t, "delivered", MapStatusKeyword("Livrée"))
	require.Equal(t, "cancelled", MapStatusKeyword("Annulé"))
	require.Equal(t, "ready", MapStatusKeyword("Prêt"))
	require.Equal(t, "in_progress", MapStatusKeyword("En cours"))
	require.Equal(t, "new", MapStatusKeyword(""))
}

type memoryRepo struct {
	rows []Row
}

func (m *memoryRepo) InsertImported(_ context.Context, rows []Row) ([]int64, error) {
	m.rows = append(m.rows, rows...)
	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = int64(i + 1)
	}
	return ids, nil
}

func TestImportPartialSuccess(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Date", "Article", "Price"},
		{"n/a", "Robe", "10000"},
		{"2026-02-10", "Boubou", "12000"},
	})

	repo := &memoryRepo{}
	svc := NewService(repo)
	svc.WithNow(importToday)

	result, err := svc.Import(context.Background(), buf)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	require.Equal(t, []int64{1}, result.OrderIDs)
	require.Len(t, repo.rows, 1)
	require.Equal(t, "Boubou", repo.rows[0].ProductName)
}
