package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTestConfig points the config directory at a temp dir holding a
// config.yaml whose remote URLs target srv. Returns the config dir.
func setupTestConfig(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CTXSYNC_CONFIG_HOME", dir)
	t.Setenv("CTXSYNC_WEBHOOK_URL", "")

	content := fmt.Sprintf("remote:\n  project: %s/project\n  global: %s/global\n", srv.URL, srv.URL)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// newTemplateServer serves fixed template bodies per mode path.
func newTemplateServer(t *testing.T, project, global string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/project":
			_, _ = w.Write([]byte(project))
		case "/global":
			_, _ = w.Write([]byte(global))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// runCommand executes the CLI with args and returns combined output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_Version(t *testing.T) {
	version = "1.2.3"

	out, err := runCommand(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("--version output should contain version: %q", out)
	}
	if !strings.Contains(out, "ctxsync") {
		t.Errorf("--version output should contain 'ctxsync': %q", out)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := runCommand(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	expectations := []string{
		"ctxsync",
		"Usage:",
		"sync",
		"status",
		"uninstall",
		"--json",
	}
	for _, expected := range expectations {
		if !strings.Contains(out, expected) {
			t.Errorf("--help output should contain %q: %q", expected, out)
		}
	}
}

func TestRootCommand_BareInvocationSyncs(t *testing.T) {
	srv := newTemplateServer(t, "RULE-A", "GLOBAL")
	setupTestConfig(t, srv)
	root := t.TempDir()
	t.Chdir(root)

	out, err := runCommand(t, "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v\nOutput: %s", err, out)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Output should be valid JSON: %v\nOutput: %s", err, out)
	}
	if result["status"] != "success" {
		t.Errorf("status = %v, want success", result["status"])
	}
	if result["doc"] != "fetched" {
		t.Errorf("doc = %v, want fetched", result["doc"])
	}

	data, err := os.ReadFile(filepath.Join(root, "AGENTS.md"))
	if err != nil {
		t.Fatalf("bare invocation should install the document: %v", err)
	}
	if string(data) != "RULE-A" {
		t.Errorf("document = %q, want RULE-A", data)
	}
}

func TestRootCommand_JSONFlag_Persistence(t *testing.T) {
	cmd := newRootCmd()
	flag := cmd.PersistentFlags().Lookup("json")
	if flag == nil {
		t.Fatal("--json flag should be a persistent flag")
	}
}

func TestBuildVersion(t *testing.T) {
	version, commit, date = "1.0.0", "none", "unknown"
	if got := buildVersion(); got != "1.0.0" {
		t.Errorf("buildVersion() = %q, want bare version without build info", got)
	}

	commit, date = "abcdef1234567890", "2026-01-01"
	got := buildVersion()
	if !strings.Contains(got, "abcdef1") {
		t.Errorf("buildVersion() = %q, want short commit", got)
	}
	if strings.Contains(got, "abcdef12345") {
		t.Errorf("buildVersion() = %q, commit should be truncated to 7 chars", got)
	}
}
