package syncer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// InstallState is the observed filesystem state for a layout, read
// explicitly at the start of every invocation. It is a plain value, never
// ambient state threaded through the program.
type InstallState struct {
	Root        string       `json:"root"`
	Mode        Mode         `json:"mode"`
	DocPath     string       `json:"doc_path"`
	DocExists   bool         `json:"doc_exists"`
	DocHash     string       `json:"doc_hash,omitempty"` // sha256, hex
	DocSize     int64        `json:"doc_size,omitempty"`
	StoreExists bool         `json:"store_exists"`
	BackupPath  string       `json:"backup_path,omitempty"` // set when a backup file exists
	Aliases     []AliasState `json:"aliases"`
}

// AliasState is the observed state of one alias.
type AliasState struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	// Valid means the alias dereferences to the canonical document's
	// current bytes.
	Valid bool `json:"valid"`
}

// Installed reports whether anything managed by the layout is present.
func (s *InstallState) Installed() bool {
	if s.DocExists || s.StoreExists {
		return true
	}
	for _, a := range s.Aliases {
		if a.Exists {
			return true
		}
	}
	return false
}

// GatherState inspects the filesystem for the layout. Read-only.
func GatherState(lay Layout) *InstallState {
	state := &InstallState{
		Root:    lay.Root,
		Mode:    lay.Mode,
		DocPath: lay.DocPath,
	}

	if lay.StoreDir != "" {
		if info, err := os.Stat(lay.StoreDir); err == nil && info.IsDir() {
			state.StoreExists = true
		}
	}

	var doc []byte
	if data, err := os.ReadFile(lay.DocPath); err == nil {
		doc = data
		state.DocExists = true
		state.DocSize = int64(len(data))
		sum := sha256.Sum256(data)
		state.DocHash = hex.EncodeToString(sum[:])
	}

	if _, err := os.Lstat(lay.DocPath + BackupSuffix); err == nil {
		state.BackupPath = lay.DocPath + BackupSuffix
	}

	state.Aliases = make([]AliasState, 0, len(lay.Aliases))
	for _, m := range lay.Aliases {
		as := AliasState{Name: m.Name, Path: m.Path}
		if _, err := os.Lstat(m.Path); err == nil {
			as.Exists = true
			if data, err := os.ReadFile(m.Path); err == nil && doc != nil && bytes.Equal(data, doc) {
				as.Valid = true
			}
		}
		state.Aliases = append(state.Aliases, as)
	}

	return state
}
