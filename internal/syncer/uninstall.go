package syncer

import (
	"fmt"
	"os"
	"strings"

	"github.com/BrianInAz/context-standards/internal/output"
)

// UninstallSummary records what an Uninstall run removed.
type UninstallSummary struct {
	Mode           Mode     `json:"mode"`
	Root           string   `json:"root"`
	DocRemoved     bool     `json:"doc_removed"`
	BackupRemoved  bool     `json:"backup_removed"`
	StoreRemoved   bool     `json:"store_removed"`
	AliasesRemoved []string `json:"aliases_removed"`
	Errors         []string `json:"errors,omitempty"`
}

// Uninstall removes the canonical document, its aliases, the backup, and
// (global mode) the canonical store directory. Missing targets are treated
// as already satisfied, so the operation is safe on a root where nothing
// was ever installed.
func Uninstall(lay Layout, linker Linker) (*UninstallSummary, error) {
	sum := &UninstallSummary{
		Mode:           lay.Mode,
		Root:           lay.Root,
		AliasesRemoved: []string{},
	}

	for _, m := range lay.Aliases {
		if _, err := os.Lstat(m.Path); err != nil {
			continue // already absent
		}
		if err := linker.Remove(m.Path); err != nil {
			sum.Errors = append(sum.Errors, m.Name+": "+err.Error())
			continue
		}
		sum.AliasesRemoved = append(sum.AliasesRemoved, m.Name)
	}

	if err := removeIfPresent(lay.DocPath, &sum.DocRemoved); err != nil {
		sum.Errors = append(sum.Errors, "document: "+err.Error())
	}
	if err := removeIfPresent(lay.DocPath+BackupSuffix, &sum.BackupRemoved); err != nil {
		sum.Errors = append(sum.Errors, "backup: "+err.Error())
	}

	if lay.StoreDir != "" {
		if _, err := os.Stat(lay.StoreDir); err == nil {
			if err := os.RemoveAll(lay.StoreDir); err != nil {
				sum.Errors = append(sum.Errors, "store: "+err.Error())
			} else {
				sum.StoreRemoved = true
			}
		}
	}

	if len(sum.Errors) > 0 {
		return sum, output.NewPartialError(fmt.Sprintf("uninstall completed with errors: %s",
			strings.Join(sum.Errors, "; ")))
	}
	return sum, nil
}

// removeIfPresent deletes path when it exists and records the removal.
func removeIfPresent(path string, removed *bool) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	*removed = true
	return nil
}
