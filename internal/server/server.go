// =============================================================================
// Payments Portal - HTTP Intake Server
// =============================================================================
//
// Serves the payments portal API for the generated static site and, for
// every other path, the site itself.
//
// SESSIONS:
//   Each browser gets a uuid cookie. The cookie selects a page session whose
//   staged intent lives in the shared store under "session:<id>:". Events of
//   one session are handled one at a time.
//
// ROUTES:
//   GET  /health
//   GET  /api/payments/providers
//   POST /api/payments/submit
//   GET  /api/payments/intent
//   POST /api/payments/providers/:provider/select
//   POST /api/payments/open
//   POST /api/payments/close
//   GET  /api/payments/export?format=csv|xlsx
//   POST /api/payments/amount/format
//   POST /api/contact
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dln-law/payments-portal/internal/config"
	"github.com/dln-law/payments-portal/internal/payload"
	"github.com/dln-law/payments-portal/internal/portal"
	"github.com/dln-law/payments-portal/internal/provider"
	"github.com/dln-law/payments-portal/internal/staging"
	"github.com/dln-law/payments-portal/internal/storage"
	"github.com/dln-law/payments-portal/internal/validation"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Config    *config.Config
	Store     storage.Store
	Validator *validation.Validator
	Providers *provider.Registry
	Logger    *slog.Logger

	// Now is the clock for timestamps and export names. Default: time.Now
	Now func() time.Time
}

// Server is the intake HTTP server.
type Server struct {
	cfg       *config.Config
	store     storage.Store
	validator *validation.Validator
	providers *provider.Registry
	logger    *slog.Logger
	now       func() time.Time

	router   *gin.Engine
	sessions *sessionRegistry
}

// New creates a Server and registers its routes.
func New(deps Deps) *Server {
	s := &Server{
		cfg:       deps.Config,
		store:     deps.Store,
		validator: deps.Validator,
		providers: deps.Providers,
		logger:    deps.Logger,
		now:       deps.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.validator == nil {
		s.validator = validation.New(validation.Options{
			MatterTypes:    s.cfg.Form.MatterTypes,
			MinAmountCents: s.cfg.Form.MinAmountCents,
		})
	}
	if s.providers == nil {
		s.providers = provider.NewRegistry(s.cfg.Providers)
	}

	s.sessions = newSessionRegistry(s.cfg.Server.SessionTTL, s.newPageSession, s.evictPageSession, s.logger)
	s.sessions.now = s.now

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(s.logger))
	s.router = router

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		payments := api.Group("/payments")
		payments.GET("/providers", s.handleProviders)
		payments.POST("/submit", s.handleSubmit)
		payments.GET("/intent", s.handleIntent)
		payments.POST("/providers/:provider/select", s.handleSelect)
		payments.POST("/open", s.handleOpen)
		payments.POST("/close", s.handleClose)
		payments.GET("/export", s.handleExport)
		payments.POST("/amount/format", s.handleAmountFormat)

		api.POST("/contact", s.handleContact)
	}

	router.NoRoute(s.handleStatic)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.runSweeper(sweepCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("intake server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	s.logger.Info("intake server stopped")
	return nil
}

// newPageSession builds the portal session behind one browser cookie.
func (s *Server) newPageSession(ctx context.Context, id string) (*pageSession, error) {
	logger := s.logger.With("session", id)
	stager := staging.New(storage.Scoped(s.store, "session:"+id), logger)

	restored, err := stager.Restore(ctx)
	if err != nil {
		logger.Warn("could not restore staged intent", "error", err)
	} else if restored {
		logger.Debug("staged intent restored")
	}

	ui := portal.NewRecorder()
	events := portal.NewDispatcher()
	session := portal.NewSession(portal.Options{
		Validator:            s.validator,
		Builder:              payload.NewBuilder().WithClock(s.now),
		Stager:               stager,
		Providers:            s.providers,
		UI:                   ui,
		Logger:               logger,
		SuccessBannerTimeout: s.cfg.UI.SuccessBannerTimeout,
		ExportFormat:         s.cfg.Export.Format,
		Now:                  s.now,
	})
	session.Register(events)

	return &pageSession{id: id, portal: session, stager: stager, ui: ui, events: events}, nil
}

// evictPageSession clears the staged intent of an evicted session unless the
// store expires values on its own, in which case a returning cookie can still
// restore it until the store TTL runs out.
func (s *Server) evictPageSession(ctx context.Context, ps *pageSession) {
	if storage.Expires(s.store) {
		return
	}
	if err := ps.stager.Reset(ctx); err != nil {
		s.logger.Warn("could not clear evicted session", "session", ps.id, "error", err)
	}
}
