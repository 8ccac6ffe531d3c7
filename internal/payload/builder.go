// =============================================================================
// Payments Portal - Payload Builder
// =============================================================================
//
// The builder maps a validated RawFormInput to a PaymentIntent.
//
// PRECONDITION:
//   The input has already passed validation.ValidatePayment. The builder does
//   not re-check field rules; it only refuses amounts it cannot parse, so a
//   caller that skips validation gets an error instead of a garbage record.
//
// =============================================================================

package payload

import (
	"fmt"
	"strings"
	"time"

	"github.com/dln-law/payments-portal/internal/types"
)

// TimestampLayout is the sortable UTC representation stored in PaymentIntent.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Builder produces PaymentIntent records.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder that stamps records with the wall clock.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// WithClock returns a copy of the builder that reads time from now.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	return &Builder{now: now}
}

// Build normalizes the input into a PaymentIntent.
//
// PARAMETERS:
//   - in: Form input that passed validation.
//
// RETURNS:
//   - The PaymentIntent with trimmed strings, cents and timestamp filled in.
//   - An error if the amount cannot be parsed.
func (b *Builder) Build(in types.RawFormInput) (types.PaymentIntent, error) {
	cents, err := ParseAmountCents(in.Amount)
	if err != nil {
		return types.PaymentIntent{}, fmt.Errorf("failed to parse amount: %w", err)
	}

	return types.PaymentIntent{
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		CaseID:        strings.TrimSpace(in.CaseID),
		MatterType:    strings.TrimSpace(in.MatterType),
		AmountCents:   cents,
		AmountDollars: FormatCents(cents),
		Notes:         strings.TrimSpace(in.Notes),
		Timestamp:     b.now().UTC().Format(TimestampLayout),
	}, nil
}
