package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSyncCommand_FetchesIntoEmptyRoot(t *testing.T) {
	srv := newTemplateServer(t, "RULE-A", "GLOBAL")
	setupTestConfig(t, srv)
	root := t.TempDir()

	out, err := runCommand(t, "sync", "--root", root, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v\nOutput: %s", err, out)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\nOutput: %s", err, out)
	}
	if result["status"] != "success" {
		t.Errorf("status = %v, want success", result["status"])
	}
	if result["doc"] != "fetched" {
		t.Errorf("doc = %v, want fetched", result["doc"])
	}

	data, err := os.ReadFile(filepath.Join(root, "AGENTS.md"))
	if err != nil {
		t.Fatalf("document missing: %v", err)
	}
	if string(data) != "RULE-A" {
		t.Errorf("document = %q, want RULE-A", data)
	}

	// Default project aliases all resolve to the document.
	for _, alias := range []string{".cursorrules", ".claude/CLAUDE.md", ".gemini/GEMINI.md", ".roo/roo.md"} {
		data, err := os.ReadFile(filepath.Join(root, alias))
		if err != nil {
			t.Errorf("alias %s missing: %v", alias, err)
			continue
		}
		if string(data) != "RULE-A" {
			t.Errorf("alias %s = %q, want RULE-A", alias, data)
		}
	}
}

func TestSyncCommand_DivergedBacksUp(t *testing.T) {
	srv := newTemplateServer(t, "RULE-B", "GLOBAL")
	setupTestConfig(t, srv)
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "AGENTS.md"), []byte("CUSTOM"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "sync", "--root", root, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v\nOutput: %s", err, out)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result["doc"] != "replaced" {
		t.Errorf("doc = %v, want replaced", result["doc"])
	}

	backup, err := os.ReadFile(filepath.Join(root, "AGENTS.md.bak"))
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != "CUSTOM" {
		t.Errorf("backup = %q, want CUSTOM", backup)
	}
}

func TestSyncCommand_PolicyFlag(t *testing.T) {
	srv := newTemplateServer(t, "RULE-B", "GLOBAL")
	setupTestConfig(t, srv)
	root := t.TempDir()
	local := "CUSTOM with plenty of local additions"
	if err := os.WriteFile(filepath.Join(root, "AGENTS.md"), []byte(local), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "sync", "--root", root, "--policy", "preserve-if-larger", "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v\nOutput: %s", err, out)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result["doc"] != "preserved" {
		t.Errorf("doc = %v, want preserved", result["doc"])
	}

	data, _ := os.ReadFile(filepath.Join(root, "AGENTS.md"))
	if string(data) != local {
		t.Errorf("document = %q, local content should be preserved", data)
	}
}

func TestSyncCommand_InvalidPolicy(t *testing.T) {
	srv := newTemplateServer(t, "RULE-A", "GLOBAL")
	setupTestConfig(t, srv)

	out, err := runCommand(t, "sync", "--root", t.TempDir(), "--policy", "keep-both")
	if err == nil {
		t.Fatalf("expected error for unknown policy\nOutput: %s", out)
	}
	if !strings.Contains(out, "unknown policy") {
		t.Errorf("output should name the bad policy: %q", out)
	}
}

func TestSyncCommand_DryRunTouchesNothing(t *testing.T) {
	srv := newTemplateServer(t, "RULE-A", "GLOBAL")
	setupTestConfig(t, srv)
	root := t.TempDir()

	out, err := runCommand(t, "sync", "--root", root, "--dry-run", "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v\nOutput: %s", err, out)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result["status"] != "dry_run" {
		t.Errorf("status = %v, want dry_run", result["status"])
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run should not write anything, found %d entries", len(entries))
	}
}

func TestSyncCommand_GlobalAlreadyInstalled(t *testing.T) {
	srv := newTemplateServer(t, "RULE-A", "GLOBAL RULES")
	setupTestConfig(t, srv)
	home := t.TempDir()
	t.Setenv("HOME", home)

	// First global sync installs the store.
	out, err := runCommand(t, "sync", "--global", "--json")
	if err != nil {
		t.Fatalf("first sync: %v\nOutput: %s", err, out)
	}

	data, err := os.ReadFile(filepath.Join(home, ".context-standards", "AGENTS.md"))
	if err != nil {
		t.Fatalf("global document missing: %v", err)
	}
	if string(data) != "GLOBAL RULES" {
		t.Errorf("global document = %q", data)
	}

	// Second run is guarded.
	out, err = runCommand(t, "sync", "--global", "--json")
	if err != nil {
		t.Fatalf("second sync: %v\nOutput: %s", err, out)
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result["status"] != "already-installed" {
		t.Errorf("status = %v, want already-installed", result["status"])
	}

	// --force pushes through the guard.
	out, err = runCommand(t, "sync", "--global", "--force", "--json")
	if err != nil {
		t.Fatalf("forced sync: %v\nOutput: %s", err, out)
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result["status"] != "success" {
		t.Errorf("forced status = %v, want success", result["status"])
	}
}

func TestSyncCommand_NotifiesAfterTimeoutAbort(t *testing.T) {
	srv := newTemplateServer(t, "RULE-A", "GLOBAL")
	setupTestConfig(t, srv)

	received := make(chan []byte, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- body
	}))
	defer hook.Close()
	t.Setenv("CTXSYNC_WEBHOOK_URL", hook.URL)

	// A timeout that expires before the fetch can start aborts the run, but
	// the abort itself must still be reported.
	out, err := runCommand(t, "sync", "--root", t.TempDir(), "--timeout", "1ns", "--json")
	if err == nil {
		t.Fatalf("expected aborted run\nOutput: %s", out)
	}

	select {
	case body := <-received:
		var msg map[string]any
		if err := json.Unmarshal(body, &msg); err != nil {
			t.Fatalf("invalid webhook payload: %v", err)
		}
		text, _ := msg["text"].(string)
		if !strings.Contains(text, "aborted") {
			t.Errorf("webhook text = %q, want abort report", text)
		}
	default:
		t.Fatal("no webhook delivery for the aborted run")
	}
}

func TestSyncCommand_HumanOutput(t *testing.T) {
	srv := newTemplateServer(t, "RULE-A", "GLOBAL")
	setupTestConfig(t, srv)
	root := t.TempDir()

	out, err := runCommand(t, "sync", "--root", root)
	if err != nil {
		t.Fatalf("Execute() error = %v\nOutput: %s", err, out)
	}

	for _, expected := range []string{"Sync", "project", "fetched", ".cursorrules", "created"} {
		if !strings.Contains(out, expected) {
			t.Errorf("output should contain %q: %q", expected, out)
		}
	}
}
