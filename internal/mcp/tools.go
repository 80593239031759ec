package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/BrianInAz/context-standards/internal/config"
	"github.com/BrianInAz/context-standards/internal/syncer"
)

// resolveLayout turns an optional root parameter into a concrete layout.
// An empty root means the current working directory.
func resolveLayout(root string, cfg config.Config) (syncer.Layout, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return syncer.Layout{}, fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	mode := syncer.DetectMode(root)
	return syncer.NewLayout(root, mode, cfg), nil
}

// --- context_status tool ---

// StatusInput is the input for the context_status tool.
type StatusInput struct {
	Root string `json:"root,omitempty" jsonschema:"sync root directory (default: current directory)"`
}

// AliasStatus is the per-alias state for output.
type AliasStatus struct {
	Name   string `json:"name"   jsonschema:"alias path relative to the root"`
	Exists bool   `json:"exists" jsonschema:"whether the alias is present"`
	Valid  bool   `json:"valid"  jsonschema:"whether the alias resolves to the canonical document"`
}

// StatusOutput is the output for the context_status tool.
type StatusOutput struct {
	Root      string        `json:"root"                 jsonschema:"sync root directory"`
	Mode      string        `json:"mode"                 jsonschema:"sync mode: global or project"`
	Installed bool          `json:"installed"            jsonschema:"whether anything managed is present"`
	DocPath   string        `json:"doc_path"             jsonschema:"canonical document path"`
	DocExists bool          `json:"doc_exists"           jsonschema:"whether the canonical document exists"`
	DocHash   string        `json:"doc_hash,omitempty"   jsonschema:"sha256 of the canonical document"`
	Backup    string        `json:"backup,omitempty"     jsonschema:"divergence backup path, when present"`
	Aliases   []AliasStatus `json:"aliases"              jsonschema:"per-alias state"`
}

func handleStatus(cfg config.Config) mcp.ToolHandlerFor[StatusInput, StatusOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
		lay, err := resolveLayout(input.Root, cfg)
		if err != nil {
			return nil, StatusOutput{}, err
		}

		state := syncer.GatherState(lay)

		out := StatusOutput{
			Root:      state.Root,
			Mode:      string(state.Mode),
			Installed: state.Installed(),
			DocPath:   state.DocPath,
			DocExists: state.DocExists,
			DocHash:   state.DocHash,
			Backup:    state.BackupPath,
			Aliases:   make([]AliasStatus, 0, len(state.Aliases)),
		}
		for _, a := range state.Aliases {
			out.Aliases = append(out.Aliases, AliasStatus{Name: a.Name, Exists: a.Exists, Valid: a.Valid})
		}

		return nil, out, nil
	}
}

// --- context_sync tool ---

// SyncInput is the input for the context_sync tool.
type SyncInput struct {
	Root  string `json:"root,omitempty"  jsonschema:"sync root directory (default: current directory)"`
	Force bool   `json:"force,omitempty" jsonschema:"re-run a global sync even when already installed"`
}

// SyncAlias is the per-alias outcome for output.
type SyncAlias struct {
	Name    string `json:"name"            jsonschema:"alias path relative to the root"`
	Created bool   `json:"created"         jsonschema:"whether the alias was created or refreshed"`
	Valid   bool   `json:"valid"           jsonschema:"whether the alias resolves to the canonical document"`
	Error   string `json:"error,omitempty" jsonschema:"per-alias failure, when any"`
}

// SyncOutput is the output for the context_sync tool.
type SyncOutput struct {
	Root    string      `json:"root"              jsonschema:"sync root directory"`
	Mode    string      `json:"mode"              jsonschema:"sync mode: global or project"`
	Status  string      `json:"status"            jsonschema:"run outcome: success, already-installed, partial-failure, or aborted"`
	Doc     string      `json:"doc,omitempty"     jsonschema:"document outcome: fetched, unchanged, replaced, or preserved"`
	Backup  string      `json:"backup,omitempty"  jsonschema:"backup path when the local document was replaced"`
	Aliases []SyncAlias `json:"aliases,omitempty" jsonschema:"per-alias outcomes"`
}

func handleSync(cfg config.Config, source syncer.TemplateSource) mcp.ToolHandlerFor[SyncInput, SyncOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SyncInput) (*mcp.CallToolResult, SyncOutput, error) {
		lay, err := resolveLayout(input.Root, cfg)
		if err != nil {
			return nil, SyncOutput{}, err
		}

		policy, err := syncer.ParsePolicy(cfg.Policy)
		if err != nil {
			return nil, SyncOutput{}, err
		}

		sum, runErr := syncer.Synchronize(ctx, syncer.Options{
			Layout: lay,
			Force:  input.Force,
			Policy: policy,
			Source: source,
			Linker: syncer.NewLinker(cfg.LinkMode),
		})

		// Partial failures still carry a usable summary; only a run that
		// produced nothing is a tool error.
		if runErr != nil && sum.Status == syncer.StatusAborted {
			return nil, SyncOutput{}, runErr
		}

		out := SyncOutput{
			Root:    sum.Root,
			Mode:    string(sum.Mode),
			Status:  string(sum.Status),
			Doc:     string(sum.Doc),
			Backup:  sum.BackupPath,
			Aliases: make([]SyncAlias, 0, len(sum.Aliases)),
		}
		for _, a := range sum.Aliases {
			out.Aliases = append(out.Aliases, SyncAlias{
				Name:    a.Name,
				Created: a.Created,
				Valid:   a.Valid,
				Error:   a.Error,
			})
		}

		return nil, out, nil
	}
}
