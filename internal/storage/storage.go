// Package storage provides the key-value persistence capability that backs
// session-scoped staging: an in-memory store for a single process and a
// Redis store for servers that should survive restarts.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a minimal get/set/remove key-value capability.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Expiring is implemented by stores whose values expire on their own.
type Expiring interface {
	Expires() bool
}

// Expires reports whether values written to s expire without a Remove.
func Expires(s Store) bool {
	e, ok := s.(Expiring)
	return ok && e.Expires()
}

// scoped prefixes every key, giving each session its own namespace inside a
// shared store.
type scoped struct {
	inner  Store
	prefix string
}

// Scoped returns a Store whose keys live under prefix in inner.
func Scoped(inner Store, prefix string) Store {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &scoped{inner: inner, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, s.prefix+key)
}

func (s *scoped) Expires() bool {
	return Expires(s.inner)
}
