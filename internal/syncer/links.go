package syncer

import (
	"bytes"
	"os"
	"path/filepath"
)

// Linker is the alias-creation capability: it materializes a name under
// which an assistant finds the canonical document. Injectable so the
// reconciliation logic is testable without real symlinks.
type Linker interface {
	// Ensure makes alias resolve to target. Idempotent: returns
	// created=false when the alias was already correct.
	Ensure(alias, target string) (created bool, err error)
	// Resolve dereferences the alias to its content.
	Resolve(alias string) ([]byte, error)
	// Remove deletes the alias. A missing alias is not an error.
	Remove(alias string) error
}

// NewLinker selects a linker by config link_mode ("symlink" or "copy").
// Unknown modes fall back to symlinks.
func NewLinker(mode string) Linker {
	if mode == "copy" {
		return CopyLinker{}
	}
	return SymlinkLinker{}
}

// SymlinkLinker materializes aliases as relative symbolic links, so a
// project directory can be moved or mounted elsewhere without breaking them.
type SymlinkLinker struct{}

// Ensure creates or refreshes the symlink. An existing file or stale link
// at the alias path is replaced.
func (SymlinkLinker) Ensure(alias, target string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(alias), 0o755); err != nil {
		return false, err
	}

	rel, err := filepath.Rel(filepath.Dir(alias), target)
	if err != nil {
		rel = target
	}

	if current, err := os.Readlink(alias); err == nil && current == rel {
		return false, nil
	}

	if err := os.Remove(alias); err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if err := os.Symlink(rel, alias); err != nil {
		return false, err
	}
	return true, nil
}

// Resolve reads through the symlink.
func (SymlinkLinker) Resolve(alias string) ([]byte, error) {
	return os.ReadFile(alias)
}

// Remove deletes the symlink if present.
func (SymlinkLinker) Remove(alias string) error {
	if err := os.Remove(alias); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CopyLinker materializes aliases as plain copies of the canonical
// document, for filesystems where symlinks are unavailable or unwanted.
type CopyLinker struct{}

// Ensure writes a copy of the target at the alias path when the existing
// content differs.
func (CopyLinker) Ensure(alias, target string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(alias), 0o755); err != nil {
		return false, err
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return false, err
	}

	if existing, err := os.ReadFile(alias); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	// A stale symlink at the alias path would make a plain write follow it;
	// clear it first.
	if info, err := os.Lstat(alias); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(alias); err != nil {
			return false, err
		}
	}

	if err := writeFileAtomic(alias, data); err != nil {
		return false, err
	}
	return true, nil
}

// Resolve reads the copied content.
func (CopyLinker) Resolve(alias string) ([]byte, error) {
	return os.ReadFile(alias)
}

// Remove deletes the copy if present.
func (CopyLinker) Remove(alias string) error {
	if err := os.Remove(alias); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
