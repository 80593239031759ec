// Package main provides the entry point for the ctxsync CLI.
package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrianInAz/context-standards/internal/config"
	"github.com/BrianInAz/context-standards/internal/notify"
	"github.com/BrianInAz/context-standards/internal/output"
	"github.com/BrianInAz/context-standards/internal/syncer"
)

// syncFlags holds the sync command's flag values.
type syncFlags struct {
	root    string
	policy  string
	global  bool
	force   bool
	dryRun  bool
	timeout time.Duration
}

// defaultSyncFlags returns the flag values a bare invocation uses: sync the
// current directory with the configured policy.
func defaultSyncFlags() syncFlags {
	return syncFlags{timeout: 30 * time.Second}
}

// newSyncCmd creates the sync command.
func newSyncCmd() *cobra.Command {
	flags := defaultSyncFlags()
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the context document and its aliases",
		Long: `Fetch the remote template, reconcile the local AGENTS.md against it, and
recreate an alias for every configured assistant.

A diverged local document is backed up to AGENTS.md.bak before replacement
(or kept, under the preserve-if-larger policy). A global sync that finds an
existing installation stops early; pass --force to redo it.

Examples:
  ctxsync sync                      # Sync the current directory
  ctxsync sync --global             # Sync the home-directory installation
  ctxsync sync --dry-run            # Show what would change
  ctxsync sync --policy preserve-if-larger
  ctxsync sync --json               # Structured output for scripting`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.root, "root", "", "Sync root directory (default: current directory)")
	cmd.Flags().StringVar(&flags.policy, "policy", "", "Divergence policy: always-replace or preserve-if-larger")
	cmd.Flags().BoolVar(&flags.global, "global", false, "Sync the home-directory installation")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Redo a global sync even when already installed")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show what would change without writing anything")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", flags.timeout, "Overall timeout for the run")
	return cmd
}

// runSync executes the sync command.
func runSync(cmd *cobra.Command, flags syncFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), output.IsTTY(cmd.OutOrStdout())).
		WithStderr(cmd.ErrOrStderr())

	cfg, err := config.LoadDefault()
	if err != nil {
		printer.Error(err)
		return err
	}

	lay, err := resolveSyncLayout(flags.root, flags.global, cfg)
	if err != nil {
		printer.Error(err)
		return err
	}

	policyName := flags.policy
	if policyName == "" {
		policyName = cfg.Policy
	}
	policy, err := syncer.ParsePolicy(policyName)
	if err != nil {
		printer.Error(err)
		return err
	}

	if flags.dryRun {
		return outputSyncDryRun(printer, lay, policy)
	}

	ctx := cmd.Context()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	sum, runErr := syncer.Synchronize(ctx, syncer.Options{
		Layout: lay,
		Force:  flags.force,
		Policy: policy,
		Source: syncer.NewHTTPSource(cfg.Remote.Project, cfg.Remote.Global),
		Linker: syncer.NewLinker(cfg.LinkMode),
	})

	// Notification is best effort: a delivery failure never changes the
	// outcome of the run itself. It gets a fresh context so a run that died
	// to --timeout can still report its abort.
	notifier := notify.NewFromEnv(cfg.Channel)
	if notifier.Enabled() {
		nctx, ncancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := notifier.Send(nctx, sum.Message()); err != nil && !printer.IsJSON() {
			printer.Warn("notification failed: %v", err)
		}
		ncancel()
	}

	if runErr != nil {
		// A partial run still has a summary worth showing before the error.
		if sum.Status == syncer.StatusPartial {
			outputSyncSummary(printer, sum)
		}
		printer.Error(runErr)
		return runErr
	}

	return outputSyncSummary(printer, sum)
}

// resolveSyncLayout turns the root/global flags into a concrete layout.
func resolveSyncLayout(rootFlag string, global bool, cfg config.Config) (syncer.Layout, error) {
	var root string
	var err error
	switch {
	case rootFlag != "":
		root, err = filepath.Abs(rootFlag)
		if err != nil {
			return syncer.Layout{}, output.NewUserError("invalid --root: " + err.Error())
		}
	case global:
		root, err = os.UserHomeDir()
		if err != nil {
			return syncer.Layout{}, output.NewSystemErrorWithCause("resolving home directory", err)
		}
	default:
		root, err = os.Getwd()
		if err != nil {
			return syncer.Layout{}, output.NewSystemErrorWithCause("resolving working directory", err)
		}
	}

	mode := syncer.DetectMode(root)
	if global {
		mode = syncer.ModeGlobal
	}
	return syncer.NewLayout(root, mode, cfg), nil
}

// outputSyncDryRun reports what a run would touch, without fetching or
// writing anything.
func outputSyncDryRun(printer *output.Printer, lay syncer.Layout, policy syncer.Policy) error {
	state := syncer.GatherState(lay)

	if printer.IsJSON() {
		aliases := make([]map[string]any, 0, len(state.Aliases))
		for _, a := range state.Aliases {
			aliases = append(aliases, map[string]any{
				"name": a.Name, "exists": a.Exists, "valid": a.Valid,
			})
		}
		return printer.Success(map[string]any{
			"status":     "dry_run",
			"mode":       string(lay.Mode),
			"root":       lay.Root,
			"doc_path":   lay.DocPath,
			"doc_exists": state.DocExists,
			"policy":     string(policy),
			"aliases":    aliases,
		})
	}

	printer.Section("Dry Run")
	printer.KeyValue("Mode", string(lay.Mode))
	printer.KeyValue("Root", lay.Root)
	printer.KeyValue("Document", lay.DocPath)
	printer.KeyValue("Policy", string(policy))

	printer.Section("Aliases")
	for _, a := range state.Aliases {
		switch {
		case a.Valid:
			printer.Println("  " + a.Name + " (up to date)")
		case a.Exists:
			printer.Println("  " + a.Name + " (would refresh)")
		default:
			printer.Println("  " + a.Name + " (would create)")
		}
	}
	return nil
}

// outputSyncSummary reports a completed run.
func outputSyncSummary(printer *output.Printer, sum *syncer.Summary) error {
	if printer.IsJSON() {
		return printer.WriteJSON(sum)
	}

	if sum.Status == syncer.StatusAlreadyInstalled {
		printer.Println("Already installed at " + sum.Root + ". Use --force to reinstall.")
		return nil
	}

	printer.Section("Sync")
	printer.KeyValue("Mode", string(sum.Mode))
	printer.KeyValue("Root", sum.Root)
	printer.KeyValue("Document", string(sum.Doc))
	if sum.BackupPath != "" {
		printer.KeyValue("Backup", sum.BackupPath)
	}

	if len(sum.Aliases) > 0 {
		printer.Section("Aliases")
		rows := make([][]string, 0, len(sum.Aliases))
		for _, a := range sum.Aliases {
			rows = append(rows, []string{a.Name, aliasOutcome(a)})
		}
		printer.Table([]string{"Alias", "Result"}, rows)
	}
	return nil
}

// aliasOutcome renders one alias result for human output.
func aliasOutcome(a syncer.AliasResult) string {
	switch {
	case a.Error != "":
		return "failed: " + a.Error
	case a.Created:
		return "created"
	default:
		return "unchanged"
	}
}
