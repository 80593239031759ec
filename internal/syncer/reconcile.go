package syncer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BrianInAz/context-standards/internal/output"
)

// BackupSuffix is appended to the document path for the divergence backup.
// Only one backup generation is retained; a newer divergence overwrites it.
const BackupSuffix = ".bak"

// reconcileDocument compares the local canonical document against the
// fetched template and resolves the difference:
//
//   - no local document: the template becomes the document
//   - byte-identical: nothing is written
//   - diverged: per policy, either the local file is backed up and replaced,
//     or the local file is preserved when it is larger than the template
//
// All writes go through a temporary file and rename, so a failure never
// leaves a half-written document.
func reconcileDocument(docPath string, tmpl []byte, policy Policy) (DocResult, string, error) {
	local, err := os.ReadFile(docPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", "", output.NewSystemErrorWithCause("reading local document", err)
		}
		if err := os.MkdirAll(filepath.Dir(docPath), 0o755); err != nil {
			return "", "", output.NewSystemErrorWithCause("creating document directory", err)
		}
		if err := writeFileAtomic(docPath, tmpl); err != nil {
			return "", "", err
		}
		return DocFetched, "", nil
	}

	if bytes.Equal(local, tmpl) {
		return DocUnchanged, "", nil
	}

	if policy == PolicyPreserveIfLarger && len(local) > len(tmpl) {
		return DocPreserved, "", nil
	}

	backupPath := docPath + BackupSuffix
	if err := writeFileAtomic(backupPath, local); err != nil {
		return "", "", err
	}
	if err := writeFileAtomic(docPath, tmpl); err != nil {
		return "", backupPath, err
	}
	return DocReplaced, backupPath, nil
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return output.NewSystemErrorWithCause(fmt.Sprintf("creating temp file for %s", path), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return output.NewSystemErrorWithCause(fmt.Sprintf("writing %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return output.NewSystemErrorWithCause(fmt.Sprintf("closing %s", path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return output.NewSystemErrorWithCause(fmt.Sprintf("setting mode on %s", path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return output.NewSystemErrorWithCause(fmt.Sprintf("renaming into %s", path), err)
	}
	return nil
}
