// =============================================================================
// Payments Portal - Intake Command
// =============================================================================
//
// Runs one payment form through the whole intake flow, the same way the
// website does:
//
//   1. submit           - validate, build and stage the payment intent
//   2. select-provider  - build the confirmation (memo, display amount)
//   3. open-provider    - placeholder redirect, only logged (--open)
//   4. download-export  - render CSV or XLSX and deliver it (unless --no-export)
//
// COMMAND USAGE:
//   portal intake --form payment.yaml --provider venmo
//   portal intake --form - --format xlsx < payment.yaml
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dln-law/payments-portal/internal/apperr"
	"github.com/dln-law/payments-portal/internal/delivery"
	"github.com/dln-law/payments-portal/internal/payload"
	"github.com/dln-law/payments-portal/internal/portal"
	"github.com/dln-law/payments-portal/internal/provider"
	"github.com/dln-law/payments-portal/internal/staging"
	"github.com/dln-law/payments-portal/internal/storage"
	"github.com/dln-law/payments-portal/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	intakeForm     string
	intakeProvider string
	intakeFormat   string
	intakeOpen     bool
	intakeNoExport bool
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Run a payment form through validation, staging, selection and export",
	Long: `Run one payment form through the full intake flow: validate and stage
the payment intent, confirm the chosen payment method and export the staged
record. The export is delivered to the configured sink (local directory or
S3). No payment provider is contacted; --open only shows where a real
integration would redirect.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntake(cmd.Context(), cmd)
	},
}

func init() {
	rootCmd.AddCommand(intakeCmd)

	intakeCmd.Flags().StringVar(&intakeForm, "form", "", "Path to the payment form file (YAML or JSON, - for stdin)")
	intakeCmd.Flags().StringVar(&intakeProvider, "provider", "", "Payment method to confirm (paypal, venmo, square, cashapp)")
	intakeCmd.Flags().StringVar(&intakeFormat, "format", "", "Export format: csv or xlsx (default from config)")
	intakeCmd.Flags().BoolVar(&intakeOpen, "open", false, "Simulate opening the provider after confirmation")
	intakeCmd.Flags().BoolVar(&intakeNoExport, "no-export", false, "Skip the export step")
	intakeCmd.MarkFlagRequired("form")
}

// =============================================================================
// MAIN INTAKE FUNCTION
// =============================================================================

func runIntake(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	data, err := readFormFile(intakeForm, cmd.InOrStdin())
	if err != nil {
		return err
	}
	form, err := decodePaymentForm(data)
	if err != nil {
		return err
	}

	// The CLI is a single page session: an in-memory store stands in for
	// browser session storage.
	ui := newTerminalUI(out)
	session := portal.NewSession(portal.Options{
		Validator: validation.New(validation.Options{
			MatterTypes:    appConfig.Form.MatterTypes,
			MinAmountCents: appConfig.Form.MinAmountCents,
		}),
		Builder:              payload.NewBuilder(),
		Stager:               staging.New(storage.NewMemoryStore(), logger),
		Providers:            provider.NewRegistry(appConfig.Providers),
		UI:                   ui,
		Logger:               logger,
		SuccessBannerTimeout: appConfig.UI.SuccessBannerTimeout,
		ExportFormat:         appConfig.Export.Format,
	})
	events := portal.NewDispatcher()
	session.Register(events)

	// =========================================================================
	// STEP 1: SUBMIT
	// =========================================================================

	if err := events.Dispatch(ctx, portal.EventSubmit, portal.Payload{Form: form}); err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("payment form rejected with %d error(s)", len(ve.Failures))
		}
		return err
	}
	if _, ok := session.Intent(); !ok {
		// Honeypot: dropped without a trace, as on the website.
		return errors.New("submission dropped")
	}

	// =========================================================================
	// STEP 2 + 3: SELECT AND OPEN PROVIDER
	// =========================================================================

	if intakeProvider != "" {
		if err := events.Dispatch(ctx, portal.EventSelectProvider, portal.Payload{Provider: intakeProvider}); err != nil {
			return err
		}
		if intakeOpen {
			if err := events.Dispatch(ctx, portal.EventOpenProvider, portal.Payload{}); err != nil {
				return err
			}
		}
	}

	// =========================================================================
	// STEP 4: EXPORT
	// =========================================================================

	if intakeNoExport {
		return nil
	}

	if err := events.Dispatch(ctx, portal.EventDownloadExport, portal.Payload{Format: intakeFormat}); err != nil {
		return err
	}

	sink, err := delivery.FromConfig(ctx, appConfig.Export)
	if err != nil {
		return err
	}
	for _, a := range ui.artifacts {
		res, err := sink.Put(ctx, a.Name, a.ContentType, a.Body)
		if err != nil {
			return fmt.Errorf("failed to deliver export: %w", err)
		}
		fmt.Fprintf(out, "\nExport written: %s\n", res.Location)
	}

	return nil
}
