// =============================================================================
// Payments Portal - Exports Command
// =============================================================================
//
// Housekeeping for the local export directory.
//
// COMMAND USAGE:
//   portal exports list
//   portal exports prune --older-than 720h
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dln-law/payments-portal/pkg/utils"
)

// pruneOlderThan overrides export.retain_for.
var pruneOlderThan time.Duration

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List or prune exported payment documents",
}

var exportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exported documents, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.NewFileManager(appConfig.Export.Dir).DiscoverExports()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(files) == 0 {
			fmt.Fprintf(out, "No exports found in %s\n", appConfig.Export.Dir)
			return nil
		}
		for _, f := range files {
			fmt.Fprintf(out, "%s  %8d  %s\n", f.ModTime.Format("2006-01-02 15:04:05"), f.Size, f.Path)
		}
		fmt.Fprintf(out, "\n%d export(s)\n", len(files))
		return nil
	},
}

var exportsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove exported documents past the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		maxAge := appConfig.Export.RetainFor
		if pruneOlderThan > 0 {
			maxAge = pruneOlderThan
		}

		removed, err := utils.NewFileManager(appConfig.Export.Dir).CleanOldExports(maxAge)
		if err != nil {
			return err
		}

		logger.Info("exports pruned", "dir", appConfig.Export.Dir, "removed", removed, "older_than", maxAge)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d export(s) older than %s\n", removed, maxAge)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportsCmd)
	exportsCmd.AddCommand(exportsListCmd, exportsPruneCmd)

	exportsPruneCmd.Flags().DurationVar(
		&pruneOlderThan,
		"older-than",
		0,
		"Remove exports older than this (default export.retain_for)",
	)
}
