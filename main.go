// =============================================================================
// Payments Portal - Main Entry Point
// =============================================================================
//
// This is the main entry point for the payments portal CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   portal serve            - Run the intake API behind the static site
//   portal intake           - Run one payment form through the whole flow
//   portal validate         - Validate payment or contact form files
//   portal inspect          - Read an exported payment document
//   portal exports          - List or prune exported documents
//   portal config init      - Write a default configuration file
//   portal version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/dln-law/payments-portal/cmd"
)

func main() {
	cmd.Execute()
}
