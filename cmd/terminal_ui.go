package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dln-law/payments-portal/internal/portal"
	"github.com/dln-law/payments-portal/internal/types"
	"github.com/dln-law/payments-portal/internal/validation"
)

// terminalUI renders portal signals as lines of text. Downloads are kept so
// the command can deliver them.
type terminalUI struct {
	out       io.Writer
	artifacts []portal.Artifact
}

func newTerminalUI(out io.Writer) *terminalUI {
	return &terminalUI{out: out}
}

func (u *terminalUI) Show(s portal.Section) {
	switch s {
	case portal.SectionPaymentMethods:
		fmt.Fprintln(u.out, "Payment form accepted. Choose a payment method.")
	case portal.SectionFormSuccess:
		fmt.Fprintln(u.out, "Thank you! Your message has been received.")
	}
}

func (u *terminalUI) Hide(portal.Section)                     {}
func (u *terminalUI) HideAfter(portal.Section, time.Duration) {}
func (u *terminalUI) ClearFailures()                          {}
func (u *terminalUI) SetFieldValue(string, string)            {}
func (u *terminalUI) ResetForm(string)                        {}

func (u *terminalUI) Alert(msg string) {
	fmt.Fprintf(u.out, "! %s\n", msg)
}

func (u *terminalUI) ShowFailures(failures []types.ValidationFailure) {
	fmt.Fprint(u.out, validation.FormatFailures(failures))
}

func (u *terminalUI) ConfirmSelection(sel types.ProviderSelection) {
	fmt.Fprintln(u.out, "\n=== Confirm Payment ===")
	fmt.Fprintf(u.out, "Amount:   %s\n", sel.DisplayAmount)
	fmt.Fprintf(u.out, "Provider: %s\n", sel.DisplayName)
	fmt.Fprintf(u.out, "Memo:     %s\n", sel.Memo)
}

func (u *terminalUI) Download(name, contentType string, body []byte) {
	u.artifacts = append(u.artifacts, portal.Artifact{Name: name, ContentType: contentType, Body: body})
}
