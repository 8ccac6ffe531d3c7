// =============================================================================
// Payments Portal - Portal Session
// =============================================================================
//
// A Session is one page instance of the payments portal. It wires the
// validation, build, stage, select and export steps to named events and
// reports every visible outcome through the UI interface.
//
// FLOW:
//   submit -> validate -> build -> stage -> reveal payment methods
//   select-provider -> confirmation modal
//   open-provider / download-export -> placeholder redirect or export
//   close-modal / Escape -> drop the selection
//
// A Session is not safe for concurrent use; events for one session must be
// delivered one at a time.
//
// =============================================================================

package portal

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dln-law/payments-portal/internal/apperr"
	"github.com/dln-law/payments-portal/internal/config"
	"github.com/dln-law/payments-portal/internal/csvexport"
	"github.com/dln-law/payments-portal/internal/payload"
	"github.com/dln-law/payments-portal/internal/provider"
	"github.com/dln-law/payments-portal/internal/staging"
	"github.com/dln-law/payments-portal/internal/types"
	"github.com/dln-law/payments-portal/internal/validation"
	"github.com/dln-law/payments-portal/internal/xlsxexport"
)

// DefaultSuccessBannerTimeout hides the contact success banner.
const DefaultSuccessBannerTimeout = 5 * time.Second

// Options are the collaborators of a Session.
type Options struct {
	Validator *validation.Validator
	Builder   *payload.Builder
	Stager    *staging.Stager
	Providers *provider.Registry
	UI        UI
	Logger    *slog.Logger

	// SuccessBannerTimeout defaults to DefaultSuccessBannerTimeout.
	SuccessBannerTimeout time.Duration

	// ExportFormat is used when a download request names no format.
	// Default: "csv"
	ExportFormat string

	// Now stamps export file names. Default: time.Now
	Now func() time.Time
}

// Session handles the events of one page instance.
type Session struct {
	validator *validation.Validator
	builder   *payload.Builder
	stager    *staging.Stager
	providers *provider.Registry
	ui        UI
	logger    *slog.Logger

	bannerTimeout time.Duration
	exportFormat  string
	now           func() time.Time

	selection *types.ProviderSelection
}

// NewSession creates a Session. Stager, Providers and UI are required.
func NewSession(opts Options) *Session {
	s := &Session{
		validator:     opts.Validator,
		builder:       opts.Builder,
		stager:        opts.Stager,
		providers:     opts.Providers,
		ui:            opts.UI,
		logger:        opts.Logger,
		bannerTimeout: opts.SuccessBannerTimeout,
		exportFormat:  opts.ExportFormat,
		now:           opts.Now,
	}
	if s.validator == nil {
		s.validator = validation.New(validation.DefaultOptions())
	}
	if s.builder == nil {
		s.builder = payload.NewBuilder()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.bannerTimeout <= 0 {
		s.bannerTimeout = DefaultSuccessBannerTimeout
	}
	if s.exportFormat == "" {
		s.exportFormat = config.FormatCSV
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Register wires every handler of the session to src.
func (s *Session) Register(src EventSource) {
	src.On(EventSubmit, func(ctx context.Context, p Payload) error { return s.Submit(ctx, p.Form) })
	src.On(EventSelectProvider, func(ctx context.Context, p Payload) error { return s.SelectProvider(ctx, p.Provider) })
	src.On(EventOpenProvider, func(ctx context.Context, _ Payload) error { return s.OpenProvider(ctx) })
	src.On(EventDownloadExport, func(ctx context.Context, p Payload) error { return s.DownloadExport(ctx, p.Format) })
	src.On(EventCloseModal, func(ctx context.Context, _ Payload) error { return s.CloseModal(ctx) })
	src.On(EventKeydown, func(ctx context.Context, p Payload) error { return s.Keydown(ctx, p.Key) })
	src.On(EventAmountInput, func(ctx context.Context, p Payload) error { return s.AmountInput(ctx, p.Value) })
	src.On(EventAmountBlur, func(ctx context.Context, p Payload) error { return s.AmountBlur(ctx, p.Value) })
	src.On(EventContactSubmit, func(ctx context.Context, p Payload) error { return s.SubmitContact(ctx, p.Contact) })
}

// =============================================================================
// PAYMENT FORM
// =============================================================================

// Submit validates, builds and stages a payment form submission.
//
// RETURNS:
//   - nil on success, and also when the honeypot field is filled (the
//     submission is dropped without any visible signal).
//   - *apperr.ValidationError when any field fails.
//   - An internal error when staging fails.
func (s *Session) Submit(ctx context.Context, in types.RawFormInput) error {
	s.ui.ClearFailures()

	if strings.TrimSpace(in.Website) != "" {
		s.logger.Warn("honeypot triggered, submission dropped", "form", FormPayment)
		return nil
	}

	if failures := s.validator.ValidatePayment(in); len(failures) > 0 {
		s.ui.ShowFailures(failures)
		s.logger.Info("payment form rejected", "failures", len(failures))
		return &apperr.ValidationError{Failures: failures}
	}

	intent, err := s.builder.Build(in)
	if err != nil {
		return s.fail(apperr.Wrap(err))
	}

	if err := s.stager.Stage(ctx, intent); err != nil {
		return s.fail(apperr.Wrap(err))
	}

	s.logger.Info("payment form validated",
		"case_id", intent.CaseID,
		"matter_type", intent.MatterType,
		"amount_cents", intent.AmountCents,
	)

	// A new submission invalidates any open confirmation.
	if s.selection != nil {
		s.selection = nil
		s.ui.Hide(SectionPaymentModal)
	}
	s.ui.Show(SectionPaymentMethods)
	return nil
}

// AmountInput sanitizes the amount field on every keystroke.
func (s *Session) AmountInput(_ context.Context, value string) error {
	s.ui.SetFieldValue(types.FieldAmount, payload.SanitizeAmountInput(value))
	return nil
}

// AmountBlur formats the amount field to two decimals when it loses focus.
func (s *Session) AmountBlur(_ context.Context, value string) error {
	s.ui.SetFieldValue(types.FieldAmount, payload.FormatAmountOnBlur(value))
	return nil
}

// =============================================================================
// PROVIDER SELECTION
// =============================================================================

// SelectProvider opens the confirmation modal for provider id.
// On error nothing changes except the alert.
func (s *Session) SelectProvider(_ context.Context, id string) error {
	s.logger.Info("payment method selected", "provider", id)

	intent, err := s.stager.Require()
	if err != nil {
		return s.fail(err)
	}
	sel, err := s.providers.Select(id, intent)
	if err != nil {
		return s.fail(err)
	}

	s.selection = &sel
	s.ui.ConfirmSelection(sel)
	s.ui.Show(SectionPaymentModal)
	return nil
}

// OpenProvider is the placeholder redirect. It never navigates anywhere.
func (s *Session) OpenProvider(_ context.Context) error {
	if s.selection == nil {
		return nil
	}
	if _, ok := s.stager.Current(); !ok {
		return nil
	}

	s.logger.Info("would redirect to provider",
		"provider", s.selection.Provider,
		"url", provider.PlaceholderURL(s.selection.Provider),
		"memo", s.selection.Memo,
	)
	s.ui.Alert("Payment integration not yet implemented. This would redirect to: " + s.selection.DisplayName)
	return nil
}

// CloseModal drops the selection and hides the confirmation.
func (s *Session) CloseModal(_ context.Context) error {
	s.selection = nil
	s.ui.Hide(SectionPaymentModal)
	return nil
}

// Keydown closes the modal on Escape while a selection is open.
func (s *Session) Keydown(ctx context.Context, key string) error {
	if key == "Escape" && s.selection != nil {
		return s.CloseModal(ctx)
	}
	return nil
}

// Selection returns the live provider selection.
func (s *Session) Selection() (types.ProviderSelection, bool) {
	if s.selection == nil {
		return types.ProviderSelection{}, false
	}
	return *s.selection, true
}

// Intent returns the staged payment intent.
func (s *Session) Intent() (types.PaymentIntent, bool) {
	return s.stager.Current()
}

// =============================================================================
// EXPORT
// =============================================================================

// DownloadExport renders the staged intent and hands it to UI.Download.
//
// PARAMETERS:
//   - format: "csv" or "xlsx"; empty uses the session default.
func (s *Session) DownloadExport(_ context.Context, format string) error {
	if format == "" {
		format = s.exportFormat
	}

	intent, err := s.stager.Require()
	if err != nil {
		return s.fail(err)
	}

	var (
		name, contentType string
		body              []byte
	)
	switch format {
	case config.FormatCSV:
		doc, err := csvexport.Build(intent, s.selection)
		if err != nil {
			return s.fail(err)
		}
		name, contentType, body = csvexport.FileName(s.now()), csvexport.ContentType, []byte(doc)
	case config.FormatXLSX:
		doc, err := xlsxexport.Build(intent, s.selection)
		if err != nil {
			return s.fail(apperr.Wrap(err))
		}
		name, contentType, body = xlsxexport.FileName(s.now()), xlsxexport.ContentType, doc
	default:
		return s.fail(&apperr.AppError{
			Kind:      apperr.Internal,
			PublicMsg: "Unsupported export format.",
			Err:       errors.New("unsupported export format: " + format),
		})
	}

	s.logger.Info("payment export generated", "file", name, "case_id", intent.CaseID)
	s.ui.Download(name, contentType, body)
	return nil
}

// =============================================================================
// CONTACT FORM
// =============================================================================

// SubmitContact validates the contact form and shows the success banner.
// Nothing is sent anywhere.
func (s *Session) SubmitContact(_ context.Context, in types.ContactInput) error {
	s.ui.ClearFailures()

	if strings.TrimSpace(in.Website) != "" {
		s.logger.Warn("honeypot triggered, submission dropped", "form", FormContact)
		return nil
	}

	if failures := s.validator.ValidateContact(in); len(failures) > 0 {
		s.ui.ShowFailures(failures)
		return &apperr.ValidationError{Failures: failures}
	}

	s.logger.Info("contact form submitted", "email", strings.TrimSpace(in.Email))
	s.ui.ResetForm(FormContact)
	s.ui.Show(SectionFormSuccess)
	s.ui.HideAfter(SectionFormSuccess, s.bannerTimeout)
	return nil
}

// fail alerts the user with the public message of err and returns it.
func (s *Session) fail(err error) error {
	if apperr.KindOf(err) == apperr.Internal {
		s.logger.Error("portal step failed", "error", err)
	}
	s.ui.Alert(apperr.PublicMessage(err))
	return err
}
