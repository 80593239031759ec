package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BrianInAz/context-standards/internal/config"
)

func TestGatherState_EmptyRoot(t *testing.T) {
	lay := NewLayout(t.TempDir(), ModeProject, config.DefaultConfig())
	state := GatherState(lay)

	if state.Installed() {
		t.Error("empty root should not report installed")
	}
	if state.DocExists {
		t.Error("DocExists should be false")
	}
	if len(state.Aliases) != len(lay.Aliases) {
		t.Errorf("aliases = %d, want %d", len(state.Aliases), len(lay.Aliases))
	}
	for _, a := range state.Aliases {
		if a.Exists || a.Valid {
			t.Errorf("alias %s should be absent", a.Name)
		}
	}
}

func TestGatherState_AfterSync(t *testing.T) {
	root := t.TempDir()
	opts := testOptions(t, root, []byte("RULE-A"))
	if _, err := Synchronize(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	state := GatherState(opts.Layout)
	if !state.Installed() {
		t.Error("synced root should report installed")
	}
	if !state.DocExists {
		t.Error("DocExists should be true")
	}
	if state.DocSize != int64(len("RULE-A")) {
		t.Errorf("DocSize = %d", state.DocSize)
	}
	if state.DocHash == "" {
		t.Error("DocHash should be set")
	}
	if state.BackupPath != "" {
		t.Errorf("BackupPath = %q, want none", state.BackupPath)
	}
	for _, a := range state.Aliases {
		if !a.Exists || !a.Valid {
			t.Errorf("alias %s exists=%v valid=%v, want both true", a.Name, a.Exists, a.Valid)
		}
	}
}

func TestGatherState_DetectsDriftedAlias(t *testing.T) {
	root := t.TempDir()
	opts := testOptions(t, root, []byte("RULE-A"))
	opts.Linker = CopyLinker{}
	if _, err := Synchronize(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	// Hand-edit one copied alias so it no longer matches the document.
	drifted := opts.Layout.Aliases[0].Path
	if err := os.WriteFile(drifted, []byte("edited by hand"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := GatherState(opts.Layout)
	for _, a := range state.Aliases {
		if a.Path == drifted {
			if !a.Exists || a.Valid {
				t.Errorf("drifted alias exists=%v valid=%v, want exists and not valid", a.Exists, a.Valid)
			}
		} else if !a.Valid {
			t.Errorf("alias %s should still be valid", a.Name)
		}
	}
}

func TestGatherState_ReportsBackup(t *testing.T) {
	root := t.TempDir()
	lay := NewLayout(root, ModeProject, config.DefaultConfig())
	if err := os.WriteFile(lay.DocPath, []byte("doc"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lay.DocPath+BackupSuffix, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	state := GatherState(lay)
	if state.BackupPath != lay.DocPath+BackupSuffix {
		t.Errorf("BackupPath = %q", state.BackupPath)
	}
}

func TestUninstall(t *testing.T) {
	root := t.TempDir()
	opts := testOptions(t, root, []byte("RULE-A"))
	if _, err := Synchronize(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	// Seed a backup so removal covers it too.
	if err := os.WriteFile(opts.Layout.DocPath+BackupSuffix, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum, err := Uninstall(opts.Layout, opts.Linker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.DocRemoved {
		t.Error("DocRemoved should be true")
	}
	if !sum.BackupRemoved {
		t.Error("BackupRemoved should be true")
	}
	if len(sum.AliasesRemoved) != len(opts.Layout.Aliases) {
		t.Errorf("aliases removed = %d, want %d", len(sum.AliasesRemoved), len(opts.Layout.Aliases))
	}

	if GatherState(opts.Layout).Installed() {
		t.Error("root should be clean after uninstall")
	}
}

func TestUninstall_EmptyRootIsNoop(t *testing.T) {
	lay := NewLayout(t.TempDir(), ModeProject, config.DefaultConfig())
	sum, err := Uninstall(lay, SymlinkLinker{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.DocRemoved || sum.BackupRemoved || len(sum.AliasesRemoved) != 0 {
		t.Errorf("nothing should be removed from an empty root: %+v", sum)
	}
}

func TestUninstall_GlobalRemovesStore(t *testing.T) {
	home := t.TempDir()
	cfg := config.DefaultConfig()
	lay := NewLayout(home, ModeGlobal, cfg)

	opts := Options{
		Layout: lay,
		Force:  true,
		Policy: PolicyAlwaysReplace,
		Source: &fakeSource{data: []byte("GLOBAL")},
		Linker: SymlinkLinker{},
		Sleep:  func(time.Duration) {},
	}
	if _, err := Synchronize(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	sum, err := Uninstall(lay, opts.Linker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.StoreRemoved {
		t.Error("StoreRemoved should be true in global mode")
	}
	if _, err := os.Stat(lay.StoreDir); !os.IsNotExist(err) {
		t.Error("store directory should be gone")
	}
}

func TestUninstallThenSyncMatchesPristine(t *testing.T) {
	pristine := t.TempDir()
	cycled := t.TempDir()

	pOpts := testOptions(t, pristine, []byte("RULE-A"))
	if _, err := Synchronize(context.Background(), pOpts); err != nil {
		t.Fatal(err)
	}

	cOpts := testOptions(t, cycled, []byte("RULE-A"))
	if _, err := Synchronize(context.Background(), cOpts); err != nil {
		t.Fatal(err)
	}
	if _, err := Uninstall(cOpts.Layout, cOpts.Linker); err != nil {
		t.Fatal(err)
	}
	if _, err := Synchronize(context.Background(), cOpts); err != nil {
		t.Fatal(err)
	}

	pState := GatherState(pOpts.Layout)
	cState := GatherState(cOpts.Layout)
	if pState.DocHash != cState.DocHash {
		t.Error("document after uninstall+resync should match a pristine sync")
	}
	if filepath.Base(pState.DocPath) != filepath.Base(cState.DocPath) {
		t.Error("layouts diverged")
	}
	for i := range pState.Aliases {
		if pState.Aliases[i].Valid != cState.Aliases[i].Valid {
			t.Errorf("alias %s validity differs", pState.Aliases[i].Name)
		}
	}
}
