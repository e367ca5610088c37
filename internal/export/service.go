package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/invoices-tracker/internal/entity"
)

const (
	SheetInvoices  = "Invoices"
	SheetLineItems = "Line Items"
	ContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// InvoiceSource lists every invoice matching a search query.
type InvoiceSource interface {
	All(ctx context.Context, query string) ([]entity.InvoiceDocument, error)
}

// Service produces XLSX bytes for invoice exports.
type Service struct {
	invoices InvoiceSource
	logger   *zap.Logger
}

func NewService(invoices InvoiceSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{invoices: invoices, logger: logger}
}

var invoiceHeaders = []string{
	"Invoice ID",
	"File Name",
	"Vendor",
	"Vendor Address",
	"Tax ID",
	"Invoice Number",
	"Invoice Date",
	"Currency",
	"Subtotal",
	"Tax %",
	"Total",
	"PO Number",
	"PO Date",
	"Line Items",
	"Created At",
}

var lineItemHeaders = []string{
	"Invoice ID",
	"Invoice Number",
	"Vendor",
	"Description",
	"Unit Price",
	"Quantity",
	"Total",
}

// ExportInvoicesXLSX returns a workbook with one row per invoice on the
// Invoices sheet and one row per line item on the Line Items sheet.
// An empty query exports everything.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, query string) ([]byte, error) {
	start := time.Now()

	docs, err := s.invoices.All(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetInvoices); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetLineItems); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	writeRow(f, SheetInvoices, 1, toAny(invoiceHeaders))
	writeRow(f, SheetLineItems, 1, toAny(lineItemHeaders))

	itemRow := 2
	for i, d := range docs {
		writeRow(f, SheetInvoices, i+2, []any{
			d.ID,
			d.FileName,
			d.Vendor.Name,
			d.Vendor.Address,
			d.Vendor.TaxID,
			d.Invoice.Number,
			d.Invoice.Date,
			d.Invoice.Currency,
			money(d.Invoice.Subtotal),
			money(d.Invoice.TaxPercent),
			money(d.Invoice.Total),
			d.Invoice.PONumber,
			d.Invoice.PODate,
			len(d.Invoice.LineItems),
			d.CreatedAt,
		})
		for _, li := range d.Invoice.LineItems {
			writeRow(f, SheetLineItems, itemRow, []any{
				d.ID,
				d.Invoice.Number,
				d.Vendor.Name,
				truncate(li.Description, 250),
				li.UnitPrice,
				li.Quantity,
				li.Total,
			})
			itemRow++
		}
	}

	_ = f.SetColWidth(SheetInvoices, "A", "B", 38) // ids, file names
	_ = f.SetColWidth(SheetInvoices, "C", "D", 30) // vendor
	_ = f.SetColWidth(SheetInvoices, "E", "O", 14)
	_ = f.SetColWidth(SheetLineItems, "A", "C", 24)
	_ = f.SetColWidth(SheetLineItems, "D", "D", 60) // description
	_ = f.SetColWidth(SheetLineItems, "E", "G", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		zap.String("q", query),
		zap.Int("rows", len(docs)),
		zap.Int("line_items", itemRow-2),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// money leaves the cell blank when the amount is absent.
func money(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
