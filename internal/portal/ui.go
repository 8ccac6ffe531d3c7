package portal

import (
	"time"

	"github.com/dln-law/payments-portal/internal/types"
)

// Section is a named visibility toggle on the page.
type Section string

const (
	SectionPaymentMethods    Section = "payment-methods-section"
	SectionPaymentModal      Section = "payment-modal"
	SectionValidationSummary Section = "validation-summary"
	SectionFormSuccess       Section = "form-success"
)

// Form identifiers used by ResetForm.
const (
	FormPayment = "payment-form"
	FormContact = "contact-form"
)

// UI is what the session asks of the presentation layer. Implementations
// decide how a signal is rendered.
type UI interface {
	Show(s Section)
	Hide(s Section)
	// HideAfter asks for s to be hidden once d has passed.
	HideAfter(s Section, d time.Duration)
	Alert(msg string)
	ShowFailures(failures []types.ValidationFailure)
	ClearFailures()
	ConfirmSelection(sel types.ProviderSelection)
	SetFieldValue(field, value string)
	ResetForm(form string)
	Download(name, contentType string, body []byte)
}

// SignalKind identifies a recorded UI call.
type SignalKind string

const (
	SignalShow          SignalKind = "show"
	SignalHide          SignalKind = "hide"
	SignalHideAfter     SignalKind = "hide_after"
	SignalAlert         SignalKind = "alert"
	SignalShowFailures  SignalKind = "show_failures"
	SignalClearFailures SignalKind = "clear_failures"
	SignalConfirm       SignalKind = "confirm_selection"
	SignalSetField      SignalKind = "set_field"
	SignalResetForm     SignalKind = "reset_form"
	SignalDownload      SignalKind = "download"
)

// Signal is one recorded UI call.
type Signal struct {
	Kind      SignalKind                `json:"kind"`
	Section   Section                   `json:"section,omitempty"`
	DelayMS   int64                     `json:"delayMs,omitempty"`
	Message   string                    `json:"message,omitempty"`
	Failures  []types.ValidationFailure `json:"failures,omitempty"`
	Selection *types.ProviderSelection  `json:"selection,omitempty"`
	Field     string                    `json:"field,omitempty"`
	Value     string                    `json:"value,omitempty"`
	Form      string                    `json:"form,omitempty"`
	FileName  string                    `json:"fileName,omitempty"`
}

// Artifact is a document handed to Download.
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

// Recorder is a UI that records every call. Download bodies are kept aside
// so signals stay small enough to return to a browser.
type Recorder struct {
	signals   []Signal
	artifacts []Artifact
	visible   map[Section]bool
}

func NewRecorder() *Recorder {
	return &Recorder{visible: make(map[Section]bool)}
}

func (r *Recorder) Show(s Section) {
	r.visible[s] = true
	r.add(Signal{Kind: SignalShow, Section: s})
}

func (r *Recorder) Hide(s Section) {
	r.visible[s] = false
	r.add(Signal{Kind: SignalHide, Section: s})
}

func (r *Recorder) HideAfter(s Section, d time.Duration) {
	r.add(Signal{Kind: SignalHideAfter, Section: s, DelayMS: d.Milliseconds()})
}

func (r *Recorder) Alert(msg string) {
	r.add(Signal{Kind: SignalAlert, Message: msg})
}

func (r *Recorder) ShowFailures(failures []types.ValidationFailure) {
	r.visible[SectionValidationSummary] = true
	r.add(Signal{Kind: SignalShowFailures, Section: SectionValidationSummary, Failures: failures})
}

func (r *Recorder) ClearFailures() {
	r.visible[SectionValidationSummary] = false
	r.add(Signal{Kind: SignalClearFailures, Section: SectionValidationSummary})
}

func (r *Recorder) ConfirmSelection(sel types.ProviderSelection) {
	r.add(Signal{Kind: SignalConfirm, Selection: &sel})
}

func (r *Recorder) SetFieldValue(field, value string) {
	r.add(Signal{Kind: SignalSetField, Field: field, Value: value})
}

func (r *Recorder) ResetForm(form string) {
	r.add(Signal{Kind: SignalResetForm, Form: form})
}

func (r *Recorder) Download(name, contentType string, body []byte) {
	r.artifacts = append(r.artifacts, Artifact{Name: name, ContentType: contentType, Body: body})
	r.add(Signal{Kind: SignalDownload, FileName: name})
}

func (r *Recorder) add(s Signal) {
	r.signals = append(r.signals, s)
}

// Visible reports whether s was last shown rather than hidden.
func (r *Recorder) Visible(s Section) bool {
	return r.visible[s]
}

// Signals returns everything recorded so far.
func (r *Recorder) Signals() []Signal {
	return append([]Signal(nil), r.signals...)
}

// Drain returns and clears the recorded signals and artifacts. Section
// visibility is kept.
func (r *Recorder) Drain() ([]Signal, []Artifact) {
	signals, artifacts := r.signals, r.artifacts
	r.signals, r.artifacts = nil, nil
	return signals, artifacts
}

// Kinds lists the kinds of the recorded signals, in order.
func (r *Recorder) Kinds() []SignalKind {
	kinds := make([]SignalKind, len(r.signals))
	for i, s := range r.signals {
		kinds[i] = s.Kind
	}
	return kinds
}
