package provider

import (
	"errors"
	"testing"

	"github.com/dln-law/payments-portal/internal/apperr"
	"github.com/dln-law/payments-portal/internal/config"
	"github.com/dln-law/payments-portal/internal/types"
)

func testRegistry() *Registry {
	return NewRegistry([]config.ProviderConfig{
		{ID: "paypal", Enabled: true, DisplayName: "PayPal"},
		{ID: "venmo", Enabled: true},
		{ID: "square", Enabled: false},
		{ID: "cashapp", Enabled: true},
	})
}

func staged() *types.PaymentIntent {
	return &types.PaymentIntent{
		Name:        "Jane Doe",
		CaseID:      "CASE-001",
		MatterType:  "Litigation",
		AmountCents: 123456,
	}
}

func TestSelect(t *testing.T) {
	sel, err := testRegistry().Select("venmo", staged())
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	want := types.ProviderSelection{
		Provider:      "venmo",
		DisplayName:   "Venmo",
		Memo:          "CASE-001 — Jane Doe — Litigation",
		DisplayAmount: "$1234.56",
		AmountCents:   123456,
	}
	if sel != want {
		t.Errorf("Select() = %+v, want %+v", sel, want)
	}
}

func TestSelectConfiguredDisplayName(t *testing.T) {
	sel, err := testRegistry().Select("paypal", staged())
	if err != nil {
		t.Fatal(err)
	}
	if sel.DisplayName != "PayPal" {
		t.Errorf("DisplayName = %q, want PayPal", sel.DisplayName)
	}
}

func TestSelectErrors(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		name   string
		id     string
		intent *types.PaymentIntent
		want   error
	}{
		{"no intent", "paypal", nil, apperr.ErrNoActiveIntent},
		{"no intent wins over unknown", "bitcoin", nil, apperr.ErrNoActiveIntent},
		{"unknown", "bitcoin", staged(), apperr.ErrUnknownOrDisabledProvider},
		{"disabled", "square", staged(), apperr.ErrUnknownOrDisabledProvider},
		{"case sensitive", "PayPal", staged(), apperr.ErrUnknownOrDisabledProvider},
		{"empty id", "", staged(), apperr.ErrUnknownOrDisabledProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := r.Select(tt.id, tt.intent)
			if !errors.Is(err, tt.want) {
				t.Errorf("Select() error = %v, want %v", err, tt.want)
			}
			if sel != (types.ProviderSelection{}) {
				t.Errorf("Select() produced a selection on error: %+v", sel)
			}
		})
	}
}

func TestEnabledOrder(t *testing.T) {
	got := testRegistry().Enabled()
	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	want := []string{"paypal", "venmo", "cashapp"}
	if len(ids) != len(want) {
		t.Fatalf("Enabled() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Enabled()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestUnconfiguredProviderIsDisabled(t *testing.T) {
	r := NewRegistry([]config.ProviderConfig{{ID: "paypal", Enabled: true}})
	if _, err := r.Select("venmo", staged()); !errors.Is(err, apperr.ErrUnknownOrDisabledProvider) {
		t.Errorf("Select(unconfigured) error = %v", err)
	}
	if p, ok := r.Lookup("venmo"); !ok || p.Enabled {
		t.Errorf("Lookup(venmo) = %+v, %v", p, ok)
	}
}

func TestHelpers(t *testing.T) {
	if got := DisplayName("cashapp"); got != "Cashapp" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := PlaceholderURL("square"); got != "#square-placeholder" {
		t.Errorf("PlaceholderURL() = %q", got)
	}
}
