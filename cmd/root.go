// =============================================================================
// Payments Portal - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (portal)
//   ├── serveCmd    (portal serve)
//   ├── intakeCmd   (portal intake)
//   ├── validateCmd (portal validate)
//   ├── inspectCmd  (portal inspect)
//   ├── exportsCmd  (portal exports list|prune)
//   ├── configCmd   (portal config init)
//   └── versionCmd  (portal version)
//
// CONFIGURATION:
//   Before any command runs, the root command:
//   1. Loads .env from the working directory, if present
//   2. Loads config.yaml (or --config) with PORTAL_* overrides
//   3. Sets up the slog logger
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dln-law/payments-portal/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig is the loaded configuration, set before any command runs.
var appConfig *config.Config

// logger is the application logger, set before any command runs.
var logger = slog.Default()

// skipConfigAnnotation marks commands that must run without a valid config.
const skipConfigAnnotation = "portal/skip-config"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Payments portal - payment intake for the law office website",
	Long: `The payments portal validates and stages payment intake submissions from
the law office website, confirms the chosen payment method, and exports the
staged record for manual processing. No payment provider is ever contacted.

Example Usage:
  portal serve                          # Serve the intake API and the site
  portal intake --form payment.yaml     # Run one form through the flow
  portal validate forms/*.yaml          # Check form files
  portal inspect exports/payment_*.csv  # Read an export back`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initApp loads the environment, the configuration and the logger.
func initApp(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if cmd.Annotations[skipConfigAnnotation] == "true" {
		logger = newLogger(config.Default().Log, verbose)
		return nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger = newLogger(cfg.Log, verbose)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded", "config", cfgFile, "storage", cfg.Storage.Driver, "export", cfg.Export.Format)
	return nil
}

// newLogger builds the slog logger described by cfg.
func newLogger(cfg config.LogConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
