// =============================================================================
// Payments Portal - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - validation
//   - payload
//   - staging
//   - provider
//   - csvexport / xlsxexport
//   - portal / server
//
// =============================================================================

package types

// =============================================================================
// FIELD NAMES
// =============================================================================

// Field names reported in ValidationFailure.Field. They match the json tags
// of RawFormInput and ContactInput.
const (
	FieldName                    = "name"
	FieldEmail                   = "email"
	FieldPhone                   = "phone"
	FieldCaseID                  = "caseId"
	FieldMatterType              = "matterType"
	FieldAmount                  = "amount"
	FieldNotes                   = "notes"
	FieldAcknowledgeRelationship = "acknowledgeRelationship"
	FieldAcknowledgeConfidential = "acknowledgeConfidential"
	FieldMessage                 = "message"
)

// =============================================================================
// FORM INPUT
// =============================================================================

// RawFormInput holds the untrusted values collected from the payment form at
// submission time. No invariants hold on this type.
//
// The form tags match the element identifiers used by the site's markup so
// that a plain HTML form post binds without translation.
type RawFormInput struct {
	Name       string `json:"name" yaml:"name" form:"payer-name" validate:"required_trimmed"`
	Email      string `json:"email" yaml:"email" form:"payer-email" validate:"required_trimmed,simple_email"`
	Phone      string `json:"phone" yaml:"phone" form:"payer-phone"`
	CaseID     string `json:"caseId" yaml:"caseId" form:"case-id" validate:"required_trimmed,case_id"`
	MatterType string `json:"matterType" yaml:"matterType" form:"matter-type" validate:"required_trimmed,matter_type"`
	Amount     string `json:"amount" yaml:"amount" form:"amount" validate:"payment_amount"`
	Notes      string `json:"notes" yaml:"notes" form:"notes"`

	AcknowledgeRelationship bool `json:"acknowledgeRelationship" yaml:"acknowledgeRelationship" form:"acknowledge-relationship" validate:"required"`
	AcknowledgeConfidential bool `json:"acknowledgeConfidential" yaml:"acknowledgeConfidential" form:"acknowledge-confidential" validate:"required"`

	// Website is the honeypot field. It is hidden from humans, so any value
	// here marks the submission as automated.
	Website string `json:"website,omitempty" yaml:"website,omitempty" form:"website"`
}

// ContactInput holds the values of the site's contact form.
type ContactInput struct {
	Name    string `json:"name" yaml:"name" form:"name" validate:"required_trimmed"`
	Email   string `json:"email" yaml:"email" form:"email" validate:"required_trimmed,simple_email"`
	Phone   string `json:"phone" yaml:"phone" form:"phone" validate:"required_trimmed"`
	Message string `json:"message" yaml:"message" form:"message" validate:"required_trimmed"`
	Website string `json:"website,omitempty" yaml:"website,omitempty" form:"website"`
}

// =============================================================================
// VALIDATION FAILURE
// =============================================================================

// ValidationFailure is a single (field, message) pair produced by the
// validator. A submission produces an ordered sequence of these; an empty
// sequence means the input is acceptable.
type ValidationFailure struct {
	// Field is the json name of the failing field.
	Field string `json:"field"`

	// Message is the guidance shown next to the field.
	Message string `json:"message"`

	// Summary is the line shown in the validation summary banner.
	Summary string `json:"summary"`
}

// =============================================================================
// PAYMENT INTENT
// =============================================================================

// PaymentIntent is the normalized, validated record of a payment the user
// intends to make. It is created once per successful validation pass and is
// passed by value; nothing mutates it after creation.
//
// INVARIANT: AmountCents >= 100.
type PaymentIntent struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	CaseID     string `json:"caseId"`
	MatterType string `json:"matterType"`

	// AmountCents is the amount rounded half up to the nearest cent.
	AmountCents int64 `json:"amountCents"`

	// AmountDollars is AmountCents/100 with exactly two decimals.
	AmountDollars string `json:"amountDollars"`

	Notes string `json:"notes"`

	// Timestamp is the UTC capture time, e.g. "2026-10-19T14:03:07.120Z".
	Timestamp string `json:"ts"`
}

// =============================================================================
// PROVIDER SELECTION
// =============================================================================

// ProviderSelection is the display-only confirmation payload produced when
// the user picks a payment provider for the staged PaymentIntent.
type ProviderSelection struct {
	Provider      string `json:"provider"`
	DisplayName   string `json:"displayName"`
	Memo          string `json:"memo"`
	DisplayAmount string `json:"displayAmount"`
	AmountCents   int64  `json:"amountCents"`
}
