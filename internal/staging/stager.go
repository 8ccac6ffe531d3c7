// Package staging holds the one live PaymentIntent of a session and mirrors
// it into session storage.
package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dln-law/payments-portal/internal/apperr"
	"github.com/dln-law/payments-portal/internal/storage"
	"github.com/dln-law/payments-portal/internal/types"
)

// StorageKey is the session storage key holding the serialized intent.
const StorageKey = "payments:lastPayload"

// Stager is a single-writer cell for the current PaymentIntent. It is not
// safe for concurrent use; callers serialize access per session.
type Stager struct {
	store  storage.Store
	logger *slog.Logger

	current *types.PaymentIntent
}

// New creates an empty Stager writing through to store.
func New(store storage.Store, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stager{store: store, logger: logger}
}

// Stage replaces the current intent. The store is written first; if that
// fails the previous intent stays current.
func (s *Stager) Stage(ctx context.Context, intent types.PaymentIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to encode payment intent: %w", err)
	}

	if err := s.store.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to write session storage: %w", err)
	}

	staged := intent
	s.current = &staged

	s.logger.Debug("payment intent staged",
		"case_id", intent.CaseID,
		"amount_cents", intent.AmountCents,
		"ts", intent.Timestamp,
	)
	return nil
}

// Current returns a copy of the staged intent and whether one exists.
func (s *Stager) Current() (types.PaymentIntent, bool) {
	if s.current == nil {
		return types.PaymentIntent{}, false
	}
	return *s.current, true
}

// Require returns the staged intent or apperr.ErrNoActiveIntent.
func (s *Stager) Require() (*types.PaymentIntent, error) {
	if s.current == nil {
		return nil, apperr.ErrNoActiveIntent
	}
	intent := *s.current
	return &intent, nil
}

// Restore loads the intent mirrored in the store, if any. It reports whether
// an intent is current afterwards.
func (s *Stager) Restore(ctx context.Context) (bool, error) {
	data, err := s.store.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return s.current != nil, nil
	}
	if err != nil {
		return s.current != nil, fmt.Errorf("failed to read session storage: %w", err)
	}

	var intent types.PaymentIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return s.current != nil, fmt.Errorf("failed to decode staged payment intent: %w", err)
	}

	s.current = &intent
	s.logger.Debug("payment intent restored", "case_id", intent.CaseID)
	return true, nil
}

// Reset drops the intent from memory and from the store.
func (s *Stager) Reset(ctx context.Context) error {
	s.current = nil
	if err := s.store.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear session storage: %w", err)
	}
	return nil
}
