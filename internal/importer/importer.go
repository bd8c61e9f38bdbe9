package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wearkati/katicontrol/internal/costing"
	"github.com/wearkati/katicontrol/internal/shared"
)

// Cost split applied to a single imported "Cost" figure: the bulk is assumed
// to be fabric, the rest sewing. The other five cost fields stay unrecorded
// so the computed status is honest about what the spreadsheet knew.
const (
	importFabricShare = 0.6
	importSewingShare = 0.4
)

const importSource = "excel_import"

// Row is one spreadsheet line mapped to an order, ready to insert.
type Row struct {
	Line             int
	Date             time.Time
	ProductName      string
	SellingPrice     float64
	Discount         float64
	AmountPaid       float64
	PaymentStatus    string
	ProductionStatus string
	Size             *string
	Color            *string
	CustomerName     *string
	Notes            string
	Cost             float64
}

// CostRecord returns the 60/40 fabric/sewing split for the row's cost figure,
// or nil when no cost was given.
func (r Row) CostRecord() *costing.CostRecord {
	if r.Cost <= 0 {
		return nil
	}
	fabric := r.Cost * importFabricShare
	sewing := r.Cost * importSewingShare
	return &costing.CostRecord{FabricCost: &fabric, SewingCost: &sewing}
}

// Result reports a finished import. Partial success is normal: failed lines
// land in Errors with their human row number, the rest are created.
type Result struct {
	Created  int      `json:"created"`
	Errors   []string `json:"errors"`
	OrderIDs []int64  `json:"order_ids"`
}

// ParseWorkbook reads the first sheet of an xlsx stream and maps each data
// row to an order. Line numbers are human: header row is 1, first data row 2.
func ParseWorkbook(reader io.Reader, today time.Time) ([]Row, []string, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("importer: workbook has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("importer: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("importer: sheet %q is empty", sheets[0])
	}

	columns := resolveColumns(rows[0])
	parsed := []Row{}
	errs := []string{}
	for i, cells := range rows[1:] {
		if blankRow(cells) {
			continue
		}
		line := i + 2
		row, err := mapRow(cells, columns, line, today)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Ligne %d: %v", line, err))
			continue
		}
		parsed = append(parsed, row)
	}
	return parsed, errs, nil
}

func mapRow(cells []string, columns map[string]int, line int, today time.Time) (Row, error) {
	cell := func(field string) string {
		idx, ok := columns[field]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	date, err := parseCellDate(cell(fieldDate), today)
	if err != nil {
		return Row{}, err
	}

	price := cleanNumber(cell(fieldPrice))
	discount := cleanNumber(cell(fieldDiscount))
	payment := MapPaymentKeyword(cell(fieldPayment))
	amountPaid := 0.0
	if payment == "paid" {
		amountPaid = price - discount
	}

	product := cell(fieldProduct)
	if product == "" {
		product = "Importé"
	}

	return Row{
		Line:             line,
		Date:             date,
		ProductName:      product,
		SellingPrice:     price,
		Discount:         discount,
		AmountPaid:       amountPaid,
		PaymentStatus:    payment,
		ProductionStatus: MapStatusKeyword(cell(fieldStatus)),
		Size:             optional(cell(fieldSize)),
		Color:            optional(cell(fieldColor)),
		CustomerName:     optional(cell(fieldCustomer)),
		Notes:            fmt.Sprintf("Importé depuis Excel, ligne %d", line),
		Cost:             cleanNumber(cell(fieldCost)),
	}, nil
}

// cleanNumber strips currency symbols, spaces and thousand separators before
// parsing. Unparseable values count as zero, matching spreadsheet habits.
func cleanNumber(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return value
}

// MapPaymentKeyword maps free-text payment cells, EN and FR, to a payment
// status. Anything unrecognized is unpaid.
func MapPaymentKeyword(raw string) string {
	folded := foldHeader(raw)
	switch {
	case strings.Contains(folded, "paid") || strings.Contains(folded, "paye"):
		return "paid"
	case strings.Contains(folded, "partial") || strings.Contains(folded, "partiel"):
		return "partial"
	default:
		return "unpaid"
	}
}

// MapStatusKeyword maps free-text status cells, EN and FR, to a production
// status. Anything unrecognized is new.
func MapStatusKeyword(raw string) string {
	folded := foldHeader(raw)
	switch {
	case strings.Contains(folded, "deliver") || strings.Contains(folded, "livr"):
		return "delivered"
	case strings.Contains(folded, "cancel") || strings.Contains(folded, "annul"):
		return "cancelled"
	case strings.Contains(folded, "ready") || strings.Contains(folded, "pret"):
		return "ready"
	case strings.Contains(folded, "progress") || strings.Contains(folded, "cours"):
		return "in_progress"
	default:
		return "new"
	}
}

var importDateLayouts = []string{
	shared.DateLayout,
	"02/01/2006",
	"2/1/2006",
	"01-02-06",
	"2006/01/02",
}

// parseCellDate accepts the date spellings spreadsheets produce. An empty
// cell falls back to today, a present but unreadable one is an error.
func parseCellDate(raw string, today time.Time) (time.Time, error) {
	if raw == "" {
		return shared.Day(today), nil
	}
	if len(raw) >= len(shared.DateLayout) {
		if date, err := time.Parse(shared.DateLayout, raw[:len(shared.DateLayout)]); err == nil {
			return date, nil
		}
	}
	for _, layout := range importDateLayouts {
		if date, err := time.Parse(layout, raw); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("date illisible %q", raw)
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func optional(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

// RepositoryPort abstracts persistence for the import service.
type RepositoryPort interface {
	InsertImported(ctx context.Context, rows []Row) ([]int64, error)
}

// Service runs spreadsheet imports.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Import parses the workbook and inserts all mapped rows in one transaction.
func (s *Service) Import(ctx context.Context, reader io.Reader) (Result, error) {
	rows, rowErrs, err := ParseWorkbook(reader, s.now())
	if err != nil {
		return Result{}, err
	}
	ids, err := s.repo.InsertImported(ctx, rows)
	if err != nil {
		return Result{}, err
	}
	return Result{Created: len(ids), Errors: rowErrs, OrderIDs: ids}, nil
}
