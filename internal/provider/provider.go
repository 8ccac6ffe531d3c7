// =============================================================================
// Payments Portal - Provider Selector
// =============================================================================
//
// Maps a provider id and the staged PaymentIntent to a display-only
// confirmation. Nothing here contacts a provider: "opening" a provider only
// produces a placeholder URL the caller logs.
//
// =============================================================================

package provider

import (
	"strings"

	"github.com/dln-law/payments-portal/internal/apperr"
	"github.com/dln-law/payments-portal/internal/config"
	"github.com/dln-law/payments-portal/internal/payload"
	"github.com/dln-law/payments-portal/internal/types"
)

// MemoSeparator joins caseId, name and matterType in the memo.
const MemoSeparator = " — "

// Provider is one configured payment mechanism.
type Provider struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Enabled     bool   `json:"enabled"`

	// Account is the placeholder merchant id, handle, location or cashtag.
	Account string `json:"-"`
}

// Registry holds the fixed provider set with its configured state.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry from configuration. Known providers missing
// from cfg are present but disabled; unknown ids are ignored (config
// validation rejects them before this point).
func NewRegistry(cfg []config.ProviderConfig) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(config.KnownProviders))}

	for _, id := range config.KnownProviders {
		r.providers[id] = Provider{ID: id, DisplayName: DisplayName(id)}
	}

	for _, pc := range cfg {
		p, ok := r.providers[pc.ID]
		if !ok {
			continue
		}
		p.Enabled = pc.Enabled
		p.Account = pc.Account
		if pc.DisplayName != "" {
			p.DisplayName = pc.DisplayName
		}
		r.providers[pc.ID] = p
	}

	return r
}

// Lookup returns the provider for id.
func (r *Registry) Lookup(id string) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// Enabled lists the enabled providers in display order.
func (r *Registry) Enabled() []Provider {
	out := make([]Provider, 0, len(config.KnownProviders))
	for _, id := range config.KnownProviders {
		if p := r.providers[id]; p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

// Select builds the confirmation for provider id.
//
// PARAMETERS:
//   - id: The provider identifier from the clicked button.
//   - intent: The staged intent, or nil when nothing has been submitted.
//
// RETURNS:
//   - The ProviderSelection on success.
//   - apperr.ErrNoActiveIntent when intent is nil. This is checked first.
//   - apperr.ErrUnknownOrDisabledProvider for ids outside the fixed set or
//     marked disabled.
func (r *Registry) Select(id string, intent *types.PaymentIntent) (types.ProviderSelection, error) {
	if intent == nil {
		return types.ProviderSelection{}, apperr.ErrNoActiveIntent
	}

	p, ok := r.providers[id]
	if !ok || !p.Enabled {
		return types.ProviderSelection{}, apperr.ErrUnknownOrDisabledProvider
	}

	return types.ProviderSelection{
		Provider:      p.ID,
		DisplayName:   p.DisplayName,
		Memo:          Memo(intent),
		DisplayAmount: payload.FormatDisplayAmount(intent.AmountCents),
		AmountCents:   intent.AmountCents,
	}, nil
}

// Memo renders "caseId — name — matterType".
func Memo(intent *types.PaymentIntent) string {
	return strings.Join([]string{intent.CaseID, intent.Name, intent.MatterType}, MemoSeparator)
}

// DisplayName capitalizes the first letter of id.
func DisplayName(id string) string {
	if id == "" {
		return ""
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

// PlaceholderURL is where a real integration would send the payer.
func PlaceholderURL(id string) string {
	return "#" + id + "-placeholder"
}
