package syncer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BrianInAz/context-standards/internal/config"
	"github.com/BrianInAz/context-standards/internal/output"
)

// Mode selects which layout and remote template apply.
type Mode string

// Sync modes. Global is used when the sync root is the user's home
// directory; everything else is a project.
const (
	ModeGlobal  Mode = "global"
	ModeProject Mode = "project"
)

// DetectMode derives the mode from the root: Global if and only if root is
// the invoking user's home directory.
func DetectMode(root string) Mode {
	home, err := os.UserHomeDir()
	if err != nil {
		return ModeProject
	}
	if samePath(root, home) {
		return ModeGlobal
	}
	return ModeProject
}

// samePath compares two paths after cleaning and symlink resolution.
func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}

// Policy selects what happens when the local document diverges from the
// remote template.
type Policy string

// Divergence policies. The observed behavior differs across script
// revisions, so the choice is explicit configuration rather than a
// hard-coded rule.
const (
	// PolicyAlwaysReplace backs up the local document and installs the
	// template.
	PolicyAlwaysReplace Policy = "always-replace"
	// PolicyPreserveIfLarger keeps the local document when it is longer
	// than the template (heuristic: longer means more customized).
	PolicyPreserveIfLarger Policy = "preserve-if-larger"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAlwaysReplace, PolicyPreserveIfLarger:
		return Policy(s), nil
	default:
		return "", output.NewUserError(fmt.Sprintf("unknown policy %q (valid: %s, %s)",
			s, PolicyAlwaysReplace, PolicyPreserveIfLarger))
	}
}

// DocResult is the reconciliation outcome for the canonical document.
type DocResult string

// Document reconciliation outcomes.
const (
	DocFetched   DocResult = "fetched"   // no local document existed
	DocUnchanged DocResult = "unchanged" // local bytes identical to template
	DocReplaced  DocResult = "replaced"  // diverged; backed up and overwritten
	DocPreserved DocResult = "preserved" // diverged; local kept per policy
)

// Status is the overall outcome of a run.
type Status string

// Run outcomes.
const (
	StatusSuccess          Status = "success"
	StatusAlreadyInstalled Status = "already-installed"
	StatusPartial          Status = "partial-failure"
	StatusAborted          Status = "aborted"
)

// Mapping is one alias: a name under which some assistant expects to find
// the context document.
type Mapping struct {
	Name string // path relative to the sync root, for display
	Path string // absolute alias path
}

// Layout describes the intended filesystem state for one sync root.
type Layout struct {
	Root     string
	Mode     Mode
	DocPath  string // absolute path of the canonical document
	StoreDir string // canonical store directory; empty in project mode
	Aliases  []Mapping
}

// NewLayout builds the layout for root under the given mode using the
// configured alias sets.
func NewLayout(root string, mode Mode, cfg config.Config) Layout {
	lay := Layout{Root: root, Mode: mode}

	names := cfg.Aliases.Project
	if mode == ModeGlobal {
		names = cfg.Aliases.Global
		lay.StoreDir = filepath.Join(root, config.StoreDirName)
		lay.DocPath = filepath.Join(lay.StoreDir, config.DocumentName)
	} else {
		lay.DocPath = filepath.Join(root, config.DocumentName)
	}

	lay.Aliases = make([]Mapping, 0, len(names))
	for _, name := range names {
		lay.Aliases = append(lay.Aliases, Mapping{
			Name: name,
			Path: filepath.Join(root, name),
		})
	}
	return lay
}

// AliasResult records the creation and validation outcome for one alias.
type AliasResult struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Created bool   `json:"created"` // false when it was already correct
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
}

// Summary is the structured result of a Synchronize run.
type Summary struct {
	Mode       Mode          `json:"mode"`
	Root       string        `json:"root"`
	Status     Status        `json:"status"`
	Doc        DocResult     `json:"doc,omitempty"`
	DocPath    string        `json:"doc_path,omitempty"`
	BackupPath string        `json:"backup_path,omitempty"`
	Aliases    []AliasResult `json:"aliases,omitempty"`
}

// FailedAliases returns the names of aliases that failed creation or
// validation.
func (s *Summary) FailedAliases() []string {
	var failed []string
	for _, a := range s.Aliases {
		if a.Error != "" || !a.Valid {
			failed = append(failed, a.Name)
		}
	}
	return failed
}

// Message returns a one-line human-readable description of the run,
// suitable for the notification sink.
func (s *Summary) Message() string {
	switch s.Status {
	case StatusAlreadyInstalled:
		return fmt.Sprintf("ctxsync: %s already installed at %s (use --force to reinstall)", s.Mode, s.Root)
	case StatusAborted:
		return fmt.Sprintf("ctxsync: %s sync aborted for %s", s.Mode, s.Root)
	case StatusPartial:
		return fmt.Sprintf("ctxsync: %s sync for %s completed with failed aliases: %s",
			s.Mode, s.Root, strings.Join(s.FailedAliases(), ", "))
	default:
		return fmt.Sprintf("ctxsync: %s sync for %s complete (document %s, %d aliases)",
			s.Mode, s.Root, s.Doc, len(s.Aliases))
	}
}

// Options configures a Synchronize or Uninstall run.
type Options struct {
	Layout Layout
	Force  bool
	Policy Policy
	Source TemplateSource
	Linker Linker

	// Retry tuning for the template fetch. Zero values use the defaults
	// (3 attempts, 2s apart). Sleep is injectable for tests.
	RetryAttempts int
	RetryDelay    time.Duration
	Sleep         func(time.Duration)
}

// Synchronize makes the filesystem under the layout's root match the
// intended state: canonical document reconciled against the remote template,
// every alias resolving to it.
//
// The run is a single sequential pass: check existing state, fetch, reconcile,
// create aliases, validate. A fetch failure aborts before any filesystem
// mutation; per-alias failures are isolated and reported individually.
func Synchronize(ctx context.Context, opts Options) (*Summary, error) {
	lay := opts.Layout
	sum := &Summary{Mode: lay.Mode, Root: lay.Root, DocPath: lay.DocPath}

	// Installation state is read explicitly at the start of every run;
	// nothing is carried over between invocations.
	state := GatherState(lay)

	// Guard: a global install is destructive to redo, so an existing store
	// terminates early unless forced. Not an error.
	if lay.Mode == ModeGlobal && state.StoreExists && !opts.Force {
		sum.Status = StatusAlreadyInstalled
		return sum, nil
	}

	tmpl, err := fetchWithRetry(ctx, opts)
	if err != nil {
		sum.Status = StatusAborted
		return sum, err
	}

	docResult, backupPath, err := reconcileDocument(lay.DocPath, tmpl, opts.Policy)
	if err != nil {
		sum.Status = StatusAborted
		return sum, err
	}
	sum.Doc = docResult
	sum.BackupPath = backupPath

	// Aliases must resolve to the document as it now stands, which is the
	// local file when the policy preserved it.
	canonical, err := os.ReadFile(lay.DocPath)
	if err != nil {
		sum.Status = StatusAborted
		return sum, output.NewSystemErrorWithCause("reading canonical document", err)
	}

	sum.Aliases = ensureAliases(opts.Linker, lay, canonical)

	if failed := sum.FailedAliases(); len(failed) > 0 {
		sum.Status = StatusPartial
		return sum, output.NewPartialError(fmt.Sprintf("%d of %d aliases failed: %s",
			len(failed), len(sum.Aliases), strings.Join(failed, ", ")))
	}

	sum.Status = StatusSuccess
	return sum, nil
}

// ensureAliases creates and validates every alias in the layout. One alias
// failing never aborts the others.
func ensureAliases(linker Linker, lay Layout, canonical []byte) []AliasResult {
	results := make([]AliasResult, 0, len(lay.Aliases))
	for _, m := range lay.Aliases {
		res := AliasResult{Name: m.Name, Path: m.Path}

		// Aliases are configuration; refuse anything escaping the root.
		if !withinRoot(lay.Root, m.Path) {
			res.Error = "alias escapes sync root"
			results = append(results, res)
			continue
		}

		created, err := linker.Ensure(m.Path, lay.DocPath)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		res.Created = created

		// Post-condition: the alias must dereference to the canonical
		// bytes, not dangle.
		data, err := linker.Resolve(m.Path)
		switch {
		case err != nil:
			res.Error = "dangling alias: " + err.Error()
		case !bytes.Equal(data, canonical):
			res.Error = "alias does not resolve to canonical content"
		default:
			res.Valid = true
		}
		results = append(results, res)
	}
	return results
}

// withinRoot reports whether path stays under root after cleaning.
func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
