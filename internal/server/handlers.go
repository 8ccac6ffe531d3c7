package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/dln-law/payments-portal/internal/apperr"
	"github.com/dln-law/payments-portal/internal/portal"
	"github.com/dln-law/payments-portal/internal/types"
)

// Response is the body of every API reply.
type Response struct {
	OK        bool                      `json:"ok"`
	Error     *ErrorBody                `json:"error,omitempty"`
	Failures  []types.ValidationFailure `json:"failures,omitempty"`
	Signals   []portal.Signal           `json:"signals"`
	Intent    *types.PaymentIntent      `json:"intent,omitempty"`
	Selection *types.ProviderSelection  `json:"selection,omitempty"`
}

type ErrorBody struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

var errNoArtifact = errors.New("export produced no document")

type amountRequest struct {
	Value string `json:"value" form:"value"`
	Event string `json:"event" form:"event"`
}

// =============================================================================
// SESSION PLUMBING
// =============================================================================

// session resolves the caller's page session, issuing a cookie when needed.
func (s *Server) session(c *gin.Context) (*pageSession, error) {
	name := s.cfg.Server.SessionCookie

	id, err := c.Cookie(name)
	if err != nil || uuid.Validate(id) != nil {
		id = uuid.NewString()
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, id, int(s.cfg.Server.SessionTTL.Seconds()), "/", "", s.cfg.Server.SecureCookies, true)

	return s.sessions.get(c.Request.Context(), id)
}

// dispatch delivers one event to the caller's session and writes the reply.
func (s *Server) dispatch(c *gin.Context, event portal.Event, p portal.Payload) {
	ps, err := s.session(c)
	if err != nil {
		s.respondError(c, apperr.Wrap(err), nil)
		return
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	err = ps.events.Dispatch(c.Request.Context(), event, p)
	signals, _ := ps.ui.Drain()
	if err != nil {
		s.respondError(c, err, signals)
		return
	}

	c.JSON(http.StatusOK, s.snapshot(ps, signals))
}

func (s *Server) snapshot(ps *pageSession, signals []portal.Signal) Response {
	resp := Response{OK: true, Signals: nonNil(signals)}
	if intent, ok := ps.portal.Intent(); ok {
		resp.Intent = &intent
	}
	if sel, ok := ps.portal.Selection(); ok {
		resp.Selection = &sel
	}
	return resp
}

func (s *Server) respondError(c *gin.Context, err error, signals []portal.Signal) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	resp := Response{
		Error:   &ErrorBody{Kind: apperr.KindOf(err), Message: apperr.PublicMessage(err)},
		Signals: nonNil(signals),
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		resp.Failures = ve.Failures
	}
	c.JSON(status, resp)
}

func nonNil(signals []portal.Signal) []portal.Signal {
	if signals == nil {
		return []portal.Signal{}
	}
	return signals
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": s.providers.Enabled()})
}

func (s *Server) handleSubmit(c *gin.Context) {
	var in types.RawFormInput
	if c.ContentType() == binding.MIMEJSON {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "bad_request", "message": "Malformed request body."}})
			return
		}
	} else {
		in = paymentFromForm(c)
	}

	s.dispatch(c, portal.EventSubmit, portal.Payload{Form: in})
}

func (s *Server) handleIntent(c *gin.Context) {
	ps, err := s.session(c)
	if err != nil {
		s.respondError(c, apperr.Wrap(err), nil)
		return
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, ok := ps.portal.Intent(); !ok {
		s.respondError(c, apperr.ErrNoActiveIntent, nil)
		return
	}
	c.JSON(http.StatusOK, s.snapshot(ps, nil))
}

func (s *Server) handleSelect(c *gin.Context) {
	s.dispatch(c, portal.EventSelectProvider, portal.Payload{Provider: c.Param("provider")})
}

func (s *Server) handleOpen(c *gin.Context) {
	s.dispatch(c, portal.EventOpenProvider, portal.Payload{})
}

func (s *Server) handleClose(c *gin.Context) {
	s.dispatch(c, portal.EventCloseModal, portal.Payload{})
}

func (s *Server) handleAmountFormat(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "bad_request", "message": "Malformed request body."}})
		return
	}

	event := portal.EventAmountInput
	if req.Event == "blur" {
		event = portal.EventAmountBlur
	}
	s.dispatch(c, event, portal.Payload{Value: req.Value})
}

func (s *Server) handleContact(c *gin.Context) {
	var in types.ContactInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "bad_request", "message": "Malformed request body."}})
		return
	}
	s.dispatch(c, portal.EventContactSubmit, portal.Payload{Contact: in})
}

// handleExport answers with the document itself rather than the JSON
// envelope, so the browser can save it directly.
func (s *Server) handleExport(c *gin.Context) {
	ps, err := s.session(c)
	if err != nil {
		s.respondError(c, apperr.Wrap(err), nil)
		return
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	err = ps.events.Dispatch(c.Request.Context(), portal.EventDownloadExport, portal.Payload{Format: c.Query("format")})
	signals, artifacts := ps.ui.Drain()
	if err != nil {
		s.respondError(c, err, signals)
		return
	}
	if len(artifacts) == 0 {
		s.respondError(c, apperr.Wrap(errNoArtifact), signals)
		return
	}

	a := artifacts[len(artifacts)-1]
	c.Header("Content-Disposition", `attachment; filename="`+a.Name+`"`)
	c.Data(http.StatusOK, a.ContentType, a.Body)
}

// handleStatic serves the generated site for non-API paths.
func (s *Server) handleStatic(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || s.cfg.Server.SiteDir == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"kind": "not_found", "message": "Not found."}})
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusMethodNotAllowed)
		return
	}

	// Pretty URLs: /payments/ and /payments both map to payments/index.html.
	p := filepath.Join(s.cfg.Server.SiteDir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		p = filepath.Join(p, "index.html")
	}
	if _, err := os.Stat(p); err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(p)
}

// =============================================================================
// FORM DECODING
// =============================================================================

// paymentFromForm reads a urlencoded or multipart post using the page's
// element ids. Checkboxes arrive as "on" when checked.
func paymentFromForm(c *gin.Context) types.RawFormInput {
	return types.RawFormInput{
		Name:                    c.PostForm("payer-name"),
		Email:                   c.PostForm("payer-email"),
		Phone:                   c.PostForm("payer-phone"),
		CaseID:                  c.PostForm("case-id"),
		MatterType:              c.PostForm("matter-type"),
		Amount:                  c.PostForm("amount"),
		Notes:                   c.PostForm("notes"),
		AcknowledgeRelationship: checked(c.PostForm("acknowledge-relationship")),
		AcknowledgeConfidential: checked(c.PostForm("acknowledge-confidential")),
		Website:                 c.PostForm("website"),
	}
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
