package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/dln-law/payments-portal/internal/config"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("Get() = %q, want v2", got)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Remove error = %v, want ErrNotFound", err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Errorf("Remove(absent) error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	buf := []byte("abc")
	_ = m.Set(ctx, "k", buf)
	buf[0] = 'x'

	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value mutated through caller slice: %q", got)
	}
}

func TestScopedIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryStore()
	a := Scoped(shared, "session:a")
	b := Scoped(shared, "session:b")

	exerciseStore(t, a)

	_ = a.Set(ctx, "payments:lastPayload", []byte("A"))
	if _, err := b.Get(ctx, "payments:lastPayload"); !errors.Is(err, ErrNotFound) {
		t.Errorf("session b sees session a's value: err = %v", err)
	}
	raw, err := shared.Get(ctx, "session:a:payments:lastPayload")
	if err != nil || string(raw) != "A" {
		t.Errorf("shared key = %q, %v", raw, err)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	s := NewRedisStore(client, "portal", time.Minute)
	defer s.Close()

	exerciseStore(t, s)

	_ = s.Set(context.Background(), "x", []byte("1"))
	if !mr.Exists("portal:x") {
		t.Error("expected key portal:x in redis")
	}
	if ttl := mr.TTL("portal:x"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := s.Get(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry error = %v, want ErrNotFound", err)
	}
}

func TestConnectURL(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	if _, err := Connect(context.Background(), "redis://%zz"); err == nil {
		t.Error("Connect(bad url) error = nil")
	}
}

func TestFromConfig(t *testing.T) {
	ctx := context.Background()

	res, err := FromConfig(ctx, config.StorageConfig{Driver: config.StorageMemory})
	if err != nil {
		t.Fatalf("FromConfig(memory) error = %v", err)
	}
	if res.Driver != config.StorageMemory || res.Close() != nil {
		t.Errorf("FromConfig(memory) = %+v", res)
	}

	mr := miniredis.RunT(t)
	res, err = FromConfig(ctx, config.StorageConfig{Driver: config.StorageRedis, RedisURL: mr.Addr(), KeyPrefix: "p"})
	if err != nil {
		t.Fatalf("FromConfig(redis) error = %v", err)
	}
	defer res.Close()
	if res.Driver != config.StorageRedis {
		t.Errorf("Driver = %q", res.Driver)
	}

	if _, err := FromConfig(ctx, config.StorageConfig{Driver: config.StorageRedis}); err == nil {
		t.Error("FromConfig(redis without url) error = nil")
	}
	if _, err := FromConfig(ctx, config.StorageConfig{Driver: "bolt"}); err == nil {
		t.Error("FromConfig(unknown) error = nil")
	}
}

func TestExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	tests := []struct {
		name  string
		store Store
		want  bool
	}{
		{"memory", NewMemoryStore(), false},
		{"redis with ttl", NewRedisStore(client, "portal", time.Minute), true},
		{"redis without ttl", NewRedisStore(client, "portal", 0), false},
		{"scoped redis", Scoped(NewRedisStore(client, "portal", time.Minute), "session:x"), true},
		{"scoped memory", Scoped(NewMemoryStore(), "session:x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expires(tt.store); got != tt.want {
				t.Errorf("Expires() = %v, want %v", got, tt.want)
			}
		})
	}
}
