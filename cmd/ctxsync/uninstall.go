// Package main provides the entry point for the ctxsync CLI.
package main

import (
	"bufio"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/BrianInAz/context-standards/internal/config"
	"github.com/BrianInAz/context-standards/internal/output"
	"github.com/BrianInAz/context-standards/internal/syncer"
)

// newUninstallCmd creates the uninstall command.
func newUninstallCmd() *cobra.Command {
	var rootFlag string
	var globalFlag, dryRun, force bool
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the context document and all its aliases",
		Long: `Remove everything managed under a sync root: the canonical document, its
divergence backup, every assistant alias, and (global mode) the canonical
store directory.

Missing components are treated as already removed, so uninstall is safe to
run on a root where nothing was ever installed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUninstall(cmd, rootFlag, globalFlag, dryRun, force)
		},
	}
	cmd.Flags().StringVar(&rootFlag, "root", "", "Sync root directory (default: current directory)")
	cmd.Flags().BoolVar(&globalFlag, "global", false, "Remove the home-directory installation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed")
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")
	return cmd
}

// runUninstall executes the uninstall command.
func runUninstall(cmd *cobra.Command, rootFlag string, global, dryRun, force bool) error {
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

	if dryRun {
		return outputDryRunUninstall(printer, state)
	}

	if !force && !printer.IsJSON() && !confirmUninstall(cmd, printer, state) {
		printer.Println("Uninstall cancelled.")
		return nil
	}

	sum, runErr := syncer.Uninstall(lay, syncer.NewLinker(cfg.LinkMode))
	if runErr != nil {
		if printer.IsJSON() {
			_ = printer.WriteJSON(sum)
		}
		printer.Error(runErr)
		return runErr
	}
	return reportUninstallResult(printer, sum)
}

// outputDryRunUninstall reports what an uninstall would remove.
func outputDryRunUninstall(printer *output.Printer, state *syncer.InstallState) error {
	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"status":    "dry_run",
			"mode":      string(state.Mode),
			"root":      state.Root,
			"installed": state.Installed(),
			"state":     state,
		})
	}

	styles := uninstallStyles(printer.IsTTY())
	printer.Println(styles.warning.Render("Dry run: Would remove the following from " + state.Root + ":"))
	printer.Println()
	if !state.Installed() {
		printer.Println(styles.dim.Render("  (Nothing installed)"))
		return nil
	}
	printComponents(printer, styles, state, "  ")
	return nil
}

// printComponents lists the installed components for dry-run and confirm.
func printComponents(printer *output.Printer, styles uninstallStyleSet, state *syncer.InstallState, indent string) {
	if state.DocExists {
		printer.Println(styles.bullet.Render(indent+"• ") + "Document: " + state.DocPath)
	}
	if state.BackupPath != "" {
		printer.Println(styles.bullet.Render(indent+"• ") + "Backup: " + state.BackupPath)
	}
	if state.StoreExists {
		printer.Println(styles.bullet.Render(indent+"• ") + "Store directory: " + config.StoreDirName)
	}
	for _, a := range state.Aliases {
		if a.Exists {
			printer.Println(styles.bullet.Render(indent+"• ") + "Alias: " + a.Name)
		}
	}
}

// confirmUninstall prompts for confirmation before removal.
func confirmUninstall(cmd *cobra.Command, printer *output.Printer, state *syncer.InstallState) bool {
	styles := uninstallStyles(printer.IsTTY())
	printer.Println(styles.warning.Render("Removing context documents from " + state.Root + "..."))
	printer.Println()
	printer.Println("  Components found:")
	if !state.Installed() {
		printer.Println(styles.dim.Render("    (Nothing installed)"))
		return false
	}
	printComponents(printer, styles, state, "    ")
	printer.Println()
	printer.Print("%s", "  ? Remove all components? [y/N] ")
	reader := bufio.NewReader(cmd.InOrStdin())
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// reportUninstallResult reports a completed uninstall.
func reportUninstallResult(printer *output.Printer, sum *syncer.UninstallSummary) error {
	if printer.IsJSON() {
		return printer.WriteJSON(sum)
	}

	styles := uninstallStyles(printer.IsTTY())
	printer.Println()
	if sum.DocRemoved {
		printer.Println(styles.success.Render("  ✓ ") + "Document removed")
	}
	if sum.BackupRemoved {
		printer.Println(styles.success.Render("  ✓ ") + "Backup removed")
	}
	if sum.StoreRemoved {
		printer.Println(styles.success.Render("  ✓ ") + "Store directory removed")
	}
	for _, name := range sum.AliasesRemoved {
		printer.Println(styles.success.Render("  ✓ ") + "Alias removed: " + name)
	}
	printer.Println()
	if !sum.DocRemoved && !sum.BackupRemoved && !sum.StoreRemoved && len(sum.AliasesRemoved) == 0 {
		printer.Println(styles.dim.Render("  Nothing was installed."))
		return nil
	}
	printer.Println(styles.dim.Render("  Context documents removed. Run 'ctxsync sync' to reinstall."))
	return nil
}

type uninstallStyleSet struct{ warning, success, dim, bullet lipgloss.Style }

func uninstallStyles(isTTY bool) uninstallStyleSet {
	if !isTTY {
		return uninstallStyleSet{}
	}
	return uninstallStyleSet{
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		bullet:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}
