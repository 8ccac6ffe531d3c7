package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dln-law/payments-portal/internal/types"
)

// Kind classifies an error for presentation.
type Kind string

const (
	Validation        Kind = "validation"
	NoActiveIntent    Kind = "no_active_intent"
	UnknownOrDisabled Kind = "unknown_or_disabled_provider"
	Internal          Kind = "internal"
)

// AppError is a domain error with a message that is safe to show the user.
type AppError struct {
	Kind      Kind
	PublicMsg string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error { return e.Err }

// Sentinels for the two user-visible blocking conditions.
var (
	ErrNoActiveIntent = &AppError{
		Kind:      NoActiveIntent,
		PublicMsg: "Please fill out the payment form first.",
	}
	ErrUnknownOrDisabledProvider = &AppError{
		Kind:      UnknownOrDisabled,
		PublicMsg: "This payment method is currently unavailable. Please try another option.",
	}
)

// ValidationError carries every failure of one submission.
type ValidationError struct {
	Failures []types.ValidationFailure
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		fields = append(fields, f.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// Wrap marks an infrastructure error as internal.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Kind: Internal, PublicMsg: "Something went wrong. Please try again.", Err: err}
}

// KindOf reports the kind of err, defaulting to Internal.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return Validation
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

func PublicMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "Please correct the highlighted fields."
	}
	var ae *AppError
	if errors.As(err, &ae) && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return "Something went wrong. Please try again."
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusUnprocessableEntity
	case NoActiveIntent:
		return http.StatusConflict
	case UnknownOrDisabled:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
