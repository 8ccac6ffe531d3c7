package staging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dln-law/payments-portal/internal/apperr"
	"github.com/dln-law/payments-portal/internal/storage"
	"github.com/dln-law/payments-portal/internal/types"
)

// failingStore wraps a Store and can be told to fail writes.
type failingStore struct {
	storage.Store
	failSet bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("quota exceeded")
	}
	return f.Store.Set(ctx, key, value)
}

func intent(caseID string, cents int64) types.PaymentIntent {
	return types.PaymentIntent{
		Name:        "Jane Doe",
		Email:       "jane@x.com",
		CaseID:      caseID,
		MatterType:  "Litigation",
		AmountCents: cents,
		Timestamp:   "2026-10-19T13:30:00.000Z",
	}
}

func TestEmptyStager(t *testing.T) {
	s := New(storage.NewMemoryStore(), nil)

	if _, ok := s.Current(); ok {
		t.Error("Current() ok = true on empty stager")
	}
	if _, err := s.Require(); !errors.Is(err, apperr.ErrNoActiveIntent) {
		t.Errorf("Require() error = %v, want ErrNoActiveIntent", err)
	}
}

func TestStageMirrorsToStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := New(store, nil)

	want := intent("CASE-001", 123456)
	if err := s.Stage(ctx, want); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	got, ok := s.Current()
	if !ok || got != want {
		t.Errorf("Current() = %+v, %v", got, ok)
	}

	raw, err := store.Get(ctx, StorageKey)
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	var stored types.PaymentIntent
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("stored value is not JSON: %v", err)
	}
	if stored != want {
		t.Errorf("stored = %+v, want %+v", stored, want)
	}
}

func TestStageOverwrites(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := New(store, nil)

	_ = s.Stage(ctx, intent("CASE-001", 100))
	_ = s.Stage(ctx, intent("CASE-002", 200))

	got, _ := s.Current()
	if got.CaseID != "CASE-002" {
		t.Errorf("Current().CaseID = %q, want CASE-002", got.CaseID)
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d keys, want 1", store.Len())
	}
}

func TestStageFailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: storage.NewMemoryStore()}
	s := New(store, nil)

	if err := s.Stage(ctx, intent("CASE-001", 100)); err != nil {
		t.Fatal(err)
	}

	store.failSet = true
	if err := s.Stage(ctx, intent("CASE-002", 200)); err == nil {
		t.Fatal("Stage() error = nil, want write failure")
	}

	got, _ := s.Current()
	if got.CaseID != "CASE-001" {
		t.Errorf("Current().CaseID = %q after failed stage, want CASE-001", got.CaseID)
	}
}

func TestRequireReturnsCopy(t *testing.T) {
	s := New(storage.NewMemoryStore(), nil)
	_ = s.Stage(context.Background(), intent("CASE-001", 100))

	p, err := s.Require()
	if err != nil {
		t.Fatal(err)
	}
	p.CaseID = "MUTATED"

	got, _ := s.Current()
	if got.CaseID != "CASE-001" {
		t.Errorf("staged intent mutated through Require(): %q", got.CaseID)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	first := New(store, nil)
	_ = first.Stage(ctx, intent("CASE-009", 4200))

	second := New(store, nil)
	ok, err := second.Restore(ctx)
	if err != nil || !ok {
		t.Fatalf("Restore() = %v, %v", ok, err)
	}
	got, _ := second.Current()
	if got.CaseID != "CASE-009" || got.AmountCents != 4200 {
		t.Errorf("restored = %+v", got)
	}

	empty := New(storage.NewMemoryStore(), nil)
	if ok, err := empty.Restore(ctx); ok || err != nil {
		t.Errorf("Restore(empty) = %v, %v", ok, err)
	}

	_ = store.Set(ctx, StorageKey, []byte("{not json"))
	if _, err := New(store, nil).Restore(ctx); err == nil {
		t.Error("Restore(corrupt) error = nil")
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := New(store, nil)
	_ = s.Stage(ctx, intent("CASE-001", 100))

	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Current(); ok {
		t.Error("Current() ok = true after Reset")
	}
	if _, err := store.Get(ctx, StorageKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("store still holds intent: %v", err)
	}
}
