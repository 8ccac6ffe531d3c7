// =============================================================================
// Payments Portal - Validation Engine
// =============================================================================
//
// This module validates the payment intake form and the contact form before
// anything is built or staged.
//
// VALIDATION STRATEGY:
//   Rules are declared as struct tags on the input types (internal/types) and
//   evaluated by go-playground/validator with a few custom tags:
//   - required_trimmed : non-empty after trimming whitespace
//   - simple_email     : one "@", non-whitespace local and domain parts,
//                        a "." in the domain
//   - case_id          : [A-Za-z0-9-], 3 to 32 characters
//   - matter_type      : one of the configured matter types (any non-empty
//                        value when none are configured)
//   - payment_amount   : a finite decimal at or above the minimum amount
//
// ERROR HANDLING:
//   - Failures are collected, not thrown. Every field is checked; a field
//     contributes at most one failure.
//   - Failures come back in form order so the summary banner reads top to
//     bottom.
//   - Highlighting fields is the caller's job.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dln-law/payments-portal/internal/payload"
	"github.com/dln-law/payments-portal/internal/types"
)

// =============================================================================
// PATTERNS
// =============================================================================

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	caseIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{3,32}$`)
)

// =============================================================================
// VALIDATOR
// =============================================================================

// Options controls the configurable parts of the payment rules.
type Options struct {
	// MatterTypes lists the accepted matter type selections.
	// Empty means any non-empty selection is accepted.
	MatterTypes []string

	// MinAmountCents is the smallest acceptable payment.
	// Default: 100 ($1.00)
	MinAmountCents int64
}

// DefaultOptions returns the default validation options.
func DefaultOptions() Options {
	return Options{MinAmountCents: 100}
}

// Validator checks form input against the intake rules.
type Validator struct {
	validate    *validator.Validate
	matterTypes map[string]struct{}
	minAmount   int64
}

// New creates a Validator with the given options.
func New(opts Options) *Validator {
	if opts.MinAmountCents <= 0 {
		opts.MinAmountCents = DefaultOptions().MinAmountCents
	}

	v := &Validator{
		validate:    validator.New(),
		matterTypes: make(map[string]struct{}, len(opts.MatterTypes)),
		minAmount:   opts.MinAmountCents,
	}
	for _, mt := range opts.MatterTypes {
		v.matterTypes[strings.TrimSpace(mt)] = struct{}{}
	}

	// Report failures under the json field names.
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.mustRegister("required_trimmed", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.mustRegister("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	v.mustRegister("case_id", func(fl validator.FieldLevel) bool {
		return caseIDPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	v.mustRegister("matter_type", v.validMatterType)
	v.mustRegister("payment_amount", v.validAmount)

	return v
}

func (v *Validator) mustRegister(tag string, fn validator.Func) {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: failed to register %s: %v", tag, err))
	}
}

func (v *Validator) validMatterType(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return false
	}
	if len(v.matterTypes) == 0 {
		return true
	}
	_, ok := v.matterTypes[value]
	return ok
}

func (v *Validator) validAmount(fl validator.FieldLevel) bool {
	dollars, err := payload.ParseAmount(fl.Field().String())
	if err != nil {
		return false
	}

	cents, err := payload.CentsFromAmount(dollars)
	if err != nil {
		return false
	}

	// Compare the exact value, not the rounded cents: 0.995 is below 1.00
	// even though it rounds to 100 cents.
	minDollars := payload.CentsToRat(v.minAmount)
	return dollars.Cmp(minDollars) >= 0 && cents >= v.minAmount
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// ValidatePayment checks the payment form and returns every failure.
//
// PARAMETERS:
//   - in: The raw payment form values.
//
// RETURNS:
//   - The ordered failures; empty when the input is acceptable.
func (v *Validator) ValidatePayment(in types.RawFormInput) []types.ValidationFailure {
	return v.collect(in, v.paymentMessage)
}

// ValidateContact checks the contact form and returns every failure.
func (v *Validator) ValidateContact(in types.ContactInput) []types.ValidationFailure {
	return v.collect(in, contactMessage)
}

func (v *Validator) collect(in any, messageFor func(field string) (string, string)) []types.ValidationFailure {
	failures := make([]types.ValidationFailure, 0)

	err := v.validate.Struct(in)
	if err == nil {
		return failures
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		// Only reachable when in is not a struct, which is a programming error.
		panic(fmt.Sprintf("validation: unexpected error: %v", err))
	}

	for _, fe := range fieldErrors {
		message, summary := messageFor(fe.Field())
		failures = append(failures, types.ValidationFailure{
			Field:   fe.Field(),
			Message: message,
			Summary: summary,
		})
	}

	return failures
}

// =============================================================================
// MESSAGES
// =============================================================================

func (v *Validator) paymentMessage(field string) (message, summary string) {
	switch field {
	case types.FieldName:
		return "Please enter your full name", "Full name is required"
	case types.FieldEmail:
		return "Please enter a valid email address", "Valid email address is required"
	case types.FieldCaseID:
		return "Please enter a valid Case/Reference ID (3-32 characters, alphanumeric and dashes only)",
			"Valid Case/Reference ID is required"
	case types.FieldMatterType:
		return "Please select a matter type", "Matter type is required"
	case types.FieldAmount:
		min := payload.FormatCents(v.minAmount)
		return fmt.Sprintf("Please enter a valid amount (minimum $%s)", min),
			fmt.Sprintf("Valid payment amount is required (minimum $%s)", min)
	case types.FieldAcknowledgeRelationship:
		return "You must acknowledge this statement",
			"You must acknowledge the attorney-client relationship statement"
	case types.FieldAcknowledgeConfidential:
		return "You must acknowledge this statement",
			"You must acknowledge the confidentiality statement"
	default:
		return "Invalid value", fmt.Sprintf("%s is invalid", field)
	}
}

func contactMessage(field string) (message, summary string) {
	switch field {
	case types.FieldName:
		return "Please enter your name", "Name is required"
	case types.FieldEmail:
		return "Please enter a valid email address", "Valid email address is required"
	case types.FieldPhone:
		return "Please enter your phone number", "Phone number is required"
	case types.FieldMessage:
		return "Please enter a message", "Message is required"
	default:
		return "Invalid value", fmt.Sprintf("%s is invalid", field)
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatFailures formats failures for display on a terminal.
func FormatFailures(failures []types.ValidationFailure) string {
	if len(failures) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(failures)))

	for i, f := range failures {
		builder.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, f.Field, f.Summary))
	}

	return builder.String()
}
