// =============================================================================
// Payments Portal - CSV Exporter
// =============================================================================
//
// Serializes the staged PaymentIntent (plus the optional provider selection)
// into a two-line CSV document for manual download, and reads such documents
// back for QA tooling.
//
// DOCUMENT FORMAT:
//   Timestamp,Name,Email,Phone,CaseID,MatterType,Amount,Provider,Memo,Notes
//   "2026-10-19T13:30:00.000Z","Jane Doe",...,"He said ""hi"""
//
//   - Exactly one header line and one data line, joined by "\n"
//   - Every data field is double-quoted; internal quotes are doubled
//   - No trailing newline
//
// =============================================================================

package csvexport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dln-law/payments-portal/internal/apperr"
	"github.com/dln-law/payments-portal/internal/types"
)

// ContentType is the media type of the downloaded document.
const ContentType = "text/csv;charset=utf-8"

// Columns is the fixed header row.
var Columns = []string{
	"Timestamp", "Name", "Email", "Phone", "CaseID",
	"MatterType", "Amount", "Provider", "Memo", "Notes",
}

// Header is Columns joined as the first line of the document.
var Header = strings.Join(Columns, ",")

// Record is one exported payment as read back from a document.
type Record struct {
	Timestamp  string `json:"timestamp" yaml:"timestamp"`
	Name       string `json:"name" yaml:"name"`
	Email      string `json:"email" yaml:"email"`
	Phone      string `json:"phone" yaml:"phone"`
	CaseID     string `json:"caseId" yaml:"caseId"`
	MatterType string `json:"matterType" yaml:"matterType"`
	Amount     string `json:"amount" yaml:"amount"`
	Provider   string `json:"provider" yaml:"provider"`
	Memo       string `json:"memo" yaml:"memo"`
	Notes      string `json:"notes" yaml:"notes"`
}

// =============================================================================
// EXPORT
// =============================================================================

// Row returns the data row values in column order. Provider and Memo are
// empty when sel is nil.
func Row(intent *types.PaymentIntent, sel *types.ProviderSelection) []string {
	var providerID, memo string
	if sel != nil {
		providerID = sel.Provider
		memo = sel.Memo
	}

	return []string{
		intent.Timestamp,
		intent.Name,
		intent.Email,
		intent.Phone,
		intent.CaseID,
		intent.MatterType,
		intent.AmountDollars,
		providerID,
		memo,
		intent.Notes,
	}
}

// Build renders the CSV document.
//
// PARAMETERS:
//   - intent: The staged intent, or nil when nothing has been submitted.
//   - sel: The live provider selection, or nil.
//
// RETURNS:
//   - The document text.
//   - apperr.ErrNoActiveIntent when intent is nil.
func Build(intent *types.PaymentIntent, sel *types.ProviderSelection) (string, error) {
	if intent == nil {
		return "", apperr.ErrNoActiveIntent
	}

	row := Row(intent, sel)
	quoted := make([]string, len(row))
	for i, field := range row {
		quoted[i] = Quote(field)
	}

	return Header + "\n" + strings.Join(quoted, ","), nil
}

// Quote wraps field in double quotes, doubling any quotes inside it.
func Quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// FileName returns payment_<epoch-ms>.csv for t.
func FileName(t time.Time) string {
	return fmt.Sprintf("payment_%d.csv", t.UnixMilli())
}

// =============================================================================
// READ BACK
// =============================================================================

// Parse reads an exported document.
//
// RETURNS:
//   - The single data record.
//   - An error if the header differs from Columns or the document does not
//     hold exactly one data row.
func Parse(r io.Reader) (Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Columns)

	rows, err := reader.ReadAll()
	if err != nil {
		return Record{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return Record{}, errors.New("CSV document is empty")
	}

	for i, name := range Columns {
		if got := strings.TrimPrefix(rows[0][i], "\ufeff"); got != name {
			return Record{}, fmt.Errorf("unexpected header column %d: got %q, want %q", i+1, got, name)
		}
	}

	if len(rows) != 2 {
		return Record{}, fmt.Errorf("expected exactly one data row, found %d", len(rows)-1)
	}

	return FromRow(rows[1])
}

// FromRow maps column-ordered values to a Record.
func FromRow(row []string) (Record, error) {
	if len(row) != len(Columns) {
		return Record{}, fmt.Errorf("expected %d columns, found %d", len(Columns), len(row))
	}
	return Record{
		Timestamp:  row[0],
		Name:       row[1],
		Email:      row[2],
		Phone:      row[3],
		CaseID:     row[4],
		MatterType: row[5],
		Amount:     row[6],
		Provider:   row[7],
		Memo:       row[8],
		Notes:      row[9],
	}, nil
}
