package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportPort abstracts the export queries for the exporter.
type ExportPort interface {
	OrdersExport(ctx context.Context) (SheetData, error)
	FullExport(ctx context.Context) ([]NamedSheet, error)
}

// Exporter builds the xlsx downloads.
type Exporter struct {
	repo ExportPort
}

// NewExporter builds Exporter.
func NewExporter(repo ExportPort) *Exporter {
	return &Exporter{repo: repo}
}

// WriteOrders streams the single-sheet orders workbook.
func (e *Exporter) WriteOrders(ctx context.Context, w io.Writer) error {
	data, err := e.repo.OrdersExport(ctx)
	if err != nil {
		return err
	}
	return writeWorkbook(w, []NamedSheet{{Name: "Commandes", Data: data}})
}

// WriteAll streams the complete four-sheet workbook.
func (e *Exporter) WriteAll(ctx context.Context, w io.Writer) error {
	sheets, err := e.repo.FullExport(ctx)
	if err != nil {
		return err
	}
	return writeWorkbook(w, sheets)
}

// WriteTemplate streams the single-row import model showing the expected
// headers and value formats.
func (e *Exporter) WriteTemplate(w io.Writer) error {
	return writeWorkbook(w, []NamedSheet{{
		Name: "Modele",
		Data: SheetData{
			Headers: []string{"Date", "Article", "Price", "Discount", "Cost", "Size", "Color", "Customer", "Payment", "Status"},
			Rows: [][]any{{
				"2024-01-15", "Abaya Brodée", 45000, 0, 18000, "M", "Bleu nuit",
				"Fatou Diallo", "Paid", "Delivered",
			}},
		},
	}})
}

func writeWorkbook(w io.Writer, sheets []NamedSheet) error {
	file := excelize.NewFile()
	defer file.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := file.SetSheetName(file.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("importer: name sheet %q: %w", sheet.Name, err)
			}
		} else {
			if _, err := file.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("importer: add sheet %q: %w", sheet.Name, err)
			}
		}
		if err := writeSheet(file, sheet.Name, sheet.Data); err != nil {
			return err
		}
	}
	return file.Write(w)
}

func writeSheet(file *excelize.File, name string, data SheetData) error {
	header := make([]any, len(data.Headers))
	for i, h := range data.Headers {
		header[i] = h
	}
	if err := file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("importer: write header of %q: %w", name, err)
	}
	for i, row := range data.Rows {
		cells := make([]any, len(row))
		for j, value := range row {
			cells[j] = exportValue(value)
		}
		anchor, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(name, anchor, &cells); err != nil {
			return fmt.Errorf("importer: write row %d of %q: %w", i+2, name, err)
		}
	}
	return nil
}

// exportValue flattens driver types to spreadsheet-friendly values.
func exportValue(value any) any {
	switch v := value.(type) {
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case nil:
		return ""
	default:
		return v
	}
}
