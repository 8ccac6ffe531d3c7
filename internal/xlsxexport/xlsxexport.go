// =============================================================================
// Payments Portal - XLSX Exporter
// =============================================================================
//
// Alternate export format for offices that file payments in spreadsheets.
// The workbook carries the same header and data row as the CSV document on a
// single sheet named "Payment".
//
// =============================================================================

package xlsxexport

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dln-law/payments-portal/internal/apperr"
	"github.com/dln-law/payments-portal/internal/csvexport"
	"github.com/dln-law/payments-portal/internal/types"
)

// SheetName is the worksheet holding the export.
const SheetName = "Payment"

// ContentType is the media type of the downloaded workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Build renders the workbook.
//
// RETURNS:
//   - The .xlsx file contents.
//   - apperr.ErrNoActiveIntent when intent is nil.
func Build(intent *types.PaymentIntent, sel *types.ProviderSelection) ([]byte, error) {
	if intent == nil {
		return nil, apperr.ErrNoActiveIntent
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := append([]string(nil), csvexport.Columns...)
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	row := csvexport.Row(intent, sel)
	if err := f.SetSheetRow(SheetName, "A2", &row); err != nil {
		return nil, fmt.Errorf("failed to write data row: %w", err)
	}

	// Bold header row.
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(csvexport.Columns))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", style); err != nil {
		return nil, fmt.Errorf("failed to style header row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName returns payment_<epoch-ms>.xlsx for t.
func FileName(t time.Time) string {
	return fmt.Sprintf("payment_%d.xlsx", t.UnixMilli())
}

// Parse reads an exported workbook back into a record.
func Parse(r io.Reader) (csvexport.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return csvexport.Record{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return csvexport.Record{}, fmt.Errorf("failed to read sheet %q: %w", SheetName, err)
	}
	if len(rows) != 2 {
		return csvexport.Record{}, fmt.Errorf("expected header and one data row, found %d rows", len(rows))
	}

	for i, name := range csvexport.Columns {
		if i >= len(rows[0]) || rows[0][i] != name {
			return csvexport.Record{}, fmt.Errorf("unexpected header in column %d", i+1)
		}
	}

	// GetRows drops trailing empty cells.
	data := make([]string, len(csvexport.Columns))
	copy(data, rows[1])
	return csvexport.FromRow(data)
}
