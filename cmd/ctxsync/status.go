// Package main provides the entry point for the ctxsync CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/BrianInAz/context-standards/internal/config"
	"github.com/BrianInAz/context-standards/internal/output"
	"github.com/BrianInAz/context-standards/internal/syncer"
)

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	var rootFlag string
	var globalFlag bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the context document installation state",
		Long: `Show the installation state under a sync root: canonical document
presence and hash, divergence backup, and per-alias validity.

Read-only; never touches the network.

Examples:
  ctxsync status            # Inspect the current directory
  ctxsync status --global   # Inspect the home-directory installation
  ctxsync status --json     # Output state as JSON for scripting`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, rootFlag, globalFlag)
		},
	}
	cmd.Flags().StringVar(&rootFlag, "root", "", "Sync root directory (default: current directory)")
	cmd.Flags().BoolVar(&globalFlag, "global", false, "Inspect the home-directory installation")
	return cmd
}

// runStatus executes the status command.
func runStatus(cmd *cobra.Command, rootFlag string, global bool) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	cfg, err := config.LoadDefault()
	if err != nil {
		printer.Error(err)
		return err
	}

	lay, err := resolveSyncLayout(rootFlag, global, cfg)
	if err != nil {
		printer.Error(err)
		return err
	}

	state := syncer.GatherState(lay)

	if printer.IsJSON() {
		return printer.WriteJSON(state)
	}

	printHumanStatus(printer, state)
	return nil
}

// printHumanStatus outputs installation state in human-readable format.
func printHumanStatus(printer *output.Printer, state *syncer.InstallState) {
	printer.Section("Installation")
	printer.KeyValue("Mode", string(state.Mode))
	printer.KeyValue("Root", state.Root)
	printer.KeyValue("Installed", formatBool(state.Installed()))

	printer.Section("Document")
	printer.KeyValue("Path", state.DocPath)
	printer.KeyValue("Present", formatBool(state.DocExists))
	if state.DocExists {
		printer.KeyValue("Hash", state.DocHash[:min(12, len(state.DocHash))])
	}
	if state.BackupPath != "" {
		printer.KeyValue("Backup", state.BackupPath)
	}

	printer.Section("Aliases")
	rows := make([][]string, 0, len(state.Aliases))
	for _, a := range state.Aliases {
		rows = append(rows, []string{a.Name, formatAliasState(a)})
	}
	printer.Table([]string{"Alias", "State"}, rows)
}

// formatAliasState renders one alias state for human output.
func formatAliasState(a syncer.AliasState) string {
	switch {
	case a.Valid:
		return "ok"
	case a.Exists:
		return "stale"
	default:
		return "missing"
	}
}

// formatBool returns a human-readable boolean string.
func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
