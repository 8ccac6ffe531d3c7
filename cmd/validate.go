// =============================================================================
// Payments Portal - Validate Command
// =============================================================================
//
// Checks payment (or contact) form files against the intake rules without
// staging anything. Files are validated concurrently; a failure in one file
// does not stop the others.
//
// COMMAND USAGE:
//   portal validate payment.yaml other.yaml
//   portal validate --contact contact.yaml
//   cat payment.yaml | portal validate -
//
// =============================================================================

package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dln-law/payments-portal/internal/types"
	"github.com/dln-law/payments-portal/internal/validation"
)

// validateContact validates contact forms instead of payment forms.
var validateContact bool

// validateResult is the outcome for one file.
type validateResult struct {
	File     string
	Failures []types.ValidationFailure
	Err      error
}

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate form files against the intake rules",
	Long: `Validate one or more YAML or JSON form files against the payment intake
rules (or the contact form rules with --contact). Every failing field is
reported, not just the first one. Use "-" to read a form from stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(
		&validateContact,
		"contact",
		false,
		"Validate contact form files instead of payment forms",
	)
}

func runValidate(cmd *cobra.Command, files []string) error {
	v := validation.New(validation.Options{
		MatterTypes:    appConfig.Form.MatterTypes,
		MinAmountCents: appConfig.Form.MinAmountCents,
	})

	var wg sync.WaitGroup
	results := make([]validateResult, len(files))

	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			results[i] = validateFile(cmd, v, file)
		}(i, file)
	}
	wg.Wait()

	out := cmd.OutOrStdout()
	var invalid int
	for _, r := range results {
		switch {
		case r.Err != nil:
			invalid++
			fmt.Fprintf(out, "✗ %s: %v\n", r.File, r.Err)
		case len(r.Failures) > 0:
			invalid++
			fmt.Fprintf(out, "✗ %s\n%s\n", r.File, validation.FormatFailures(r.Failures))
		default:
			fmt.Fprintf(out, "✓ %s\n", r.File)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d form(s) failed validation", invalid, len(files))
	}
	return nil
}

func validateFile(cmd *cobra.Command, v *validation.Validator, file string) validateResult {
	data, err := readFormFile(file, cmd.InOrStdin())
	if err != nil {
		return validateResult{File: file, Err: err}
	}

	if validateContact {
		in, err := decodeContactForm(data)
		if err != nil {
			return validateResult{File: file, Err: err}
		}
		return validateResult{File: file, Failures: v.ValidateContact(in)}
	}

	in, err := decodePaymentForm(data)
	if err != nil {
		return validateResult{File: file, Err: err}
	}
	return validateResult{File: file, Failures: v.ValidatePayment(in)}
}
