package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dln-law/payments-portal/internal/types"
)

func TestKindAndStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"validation", &ValidationError{Failures: []types.ValidationFailure{{Field: "name"}}}, Validation, http.StatusUnprocessableEntity},
		{"no intent", ErrNoActiveIntent, NoActiveIntent, http.StatusConflict},
		{"wrapped no intent", fmt.Errorf("select: %w", ErrNoActiveIntent), NoActiveIntent, http.StatusConflict},
		{"provider", ErrUnknownOrDisabledProvider, UnknownOrDisabled, http.StatusBadRequest},
		{"plain", errors.New("boom"), Internal, http.StatusInternalServerError},
		{"wrapped internal", Wrap(errors.New("disk")), Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf = %s, want %s", got, tt.kind)
			}
			if got := HTTPStatus(tt.err); got != tt.status {
				t.Errorf("HTTPStatus = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestPublicMessage(t *testing.T) {
	t.Parallel()

	if got := PublicMessage(fmt.Errorf("x: %w", ErrNoActiveIntent)); got != "Please fill out the payment form first." {
		t.Errorf("unexpected message %q", got)
	}
	if got := PublicMessage(errors.New("secret detail")); got == "secret detail" {
		t.Error("internal error details must not leak")
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Failures: []types.ValidationFailure{{Field: "name"}, {Field: "email"}}}
	if err.Error() != "validation failed: name, email" {
		t.Errorf("unexpected error string %q", err.Error())
	}
}
