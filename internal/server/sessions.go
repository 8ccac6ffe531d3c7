package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dln-law/payments-portal/internal/portal"
	"github.com/dln-law/payments-portal/internal/staging"
)

// pageSession is the server-side twin of one browser tab. Its mutex
// serializes event delivery so the portal session sees one event at a time.
type pageSession struct {
	mu sync.Mutex

	id       string
	portal   *portal.Session
	stager   *staging.Stager
	ui       *portal.Recorder
	events   *portal.Dispatcher
	lastSeen time.Time
}

// sessionFactory builds a page session for id, restoring any staged intent.
type sessionFactory func(ctx context.Context, id string) (*pageSession, error)

// evictFunc runs for each evicted session while its mutex is held.
type evictFunc func(ctx context.Context, ps *pageSession)

// sessionRegistry maps cookie ids to page sessions and evicts idle ones.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*pageSession

	ttl     time.Duration
	now     func() time.Time
	factory sessionFactory
	onEvict evictFunc
	logger  *slog.Logger
}

func newSessionRegistry(ttl time.Duration, factory sessionFactory, onEvict evictFunc, logger *slog.Logger) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*pageSession),
		ttl:      ttl,
		now:      time.Now,
		factory:  factory,
		onEvict:  onEvict,
		logger:   logger,
	}
}

// get returns the session for id, creating it when unknown.
func (r *sessionRegistry) get(ctx context.Context, id string) (*pageSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ps, ok := r.sessions[id]; ok {
		ps.lastSeen = r.now()
		return ps, nil
	}

	ps, err := r.factory(ctx, id)
	if err != nil {
		return nil, err
	}
	ps.lastSeen = r.now()
	r.sessions[id] = ps
	return ps, nil
}

// sweep drops sessions idle for longer than the TTL and reports how many.
// A session with a request in flight is left for the next sweep.
func (r *sessionRegistry) sweep(ctx context.Context) int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.ttl)
	var evicted []*pageSession
	for id, ps := range r.sessions {
		if !ps.lastSeen.Before(cutoff) {
			continue
		}
		if !ps.mu.TryLock() {
			continue
		}
		delete(r.sessions, id)
		evicted = append(evicted, ps)
	}
	r.mu.Unlock()

	for _, ps := range evicted {
		if r.onEvict != nil {
			r.onEvict(ctx, ps)
		}
		ps.mu.Unlock()
	}
	return len(evicted)
}

func (r *sessionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// runSweeper evicts idle sessions until ctx is done.
func (r *sessionRegistry) runSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.sweep(ctx); n > 0 {
				r.logger.Debug("idle sessions evicted", "count", n)
			}
		}
	}
}
