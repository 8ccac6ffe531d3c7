// =============================================================================
// Payments Portal - Inspect Command
// =============================================================================
//
// Reads an exported payment document (CSV or XLSX) back and prints it, so
// staff can check an export before keying it into the payment system.
//
// COMMAND USAGE:
//   portal inspect exports/payment_1760880600123.csv
//   portal inspect --yaml exports/payment_1760880600123.xlsx
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dln-law/payments-portal/internal/csvexport"
	"github.com/dln-law/payments-portal/internal/payload"
	"github.com/dln-law/payments-portal/internal/xlsxexport"
)

// inspectYAML prints the record as YAML.
var inspectYAML bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Read an exported payment document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectYAML, "yaml", false, "Print the record as YAML")
}

func runInspect(out io.Writer, path string) error {
	rec, err := readExport(path)
	if err != nil {
		return err
	}

	if inspectYAML {
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(rec)
	}

	rows := [][2]string{
		{"Timestamp", rec.Timestamp},
		{"Name", rec.Name},
		{"Email", rec.Email},
		{"Phone", rec.Phone},
		{"Case ID", rec.CaseID},
		{"Matter Type", rec.MatterType},
		{"Amount", rec.Amount},
		{"Provider", rec.Provider},
		{"Memo", rec.Memo},
		{"Notes", rec.Notes},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%-12s %s\n", r[0]+":", r[1])
	}

	// Flag amounts that would not survive the intake rules.
	if _, err := payload.ParseAmountCents(rec.Amount); err != nil {
		fmt.Fprintf(out, "\n! amount %q does not parse: %v\n", rec.Amount, err)
	}
	return nil
}

// readExport parses the document at path according to its extension.
func readExport(path string) (csvexport.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return csvexport.Record{}, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvexport.Parse(f)
	case ".xlsx":
		return xlsxexport.Parse(f)
	default:
		return csvexport.Record{}, fmt.Errorf("unsupported export type: %s", filepath.Ext(path))
	}
}
