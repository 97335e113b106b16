package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reqdef/internal/config"
	"reqdef/internal/diag"
	"reqdef/internal/diagfmt"
	"reqdef/internal/outline"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// execute runs a fresh copy of one subcommand under a fresh root.
func execute(t *testing.T, use string, register func(*cobra.Command), run func(*cobra.Command, []string) error, args ...string) (string, string, error) {
	t.Helper()
	root := &cobra.Command{Use: "reqdef", SilenceUsage: true, SilenceErrors: true}
	registerGlobalFlags(root)
	sub := &cobra.Command{Use: use, RunE: run}
	if register != nil {
		register(sub)
	}
	root.AddCommand(sub)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{use}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if !shouldUseTUI(uiModeOn, true) {
		t.Fatal("--ui=on must force the progress display")
	}
	if shouldUseTUI(uiModeOff, false) {
		t.Fatal("--ui=off must disable the progress display")
	}
	if shouldUseTUI(uiModeAuto, true) {
		t.Fatal("auto mode must not draw over machine-readable output")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelWarn,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := parseLevel(in)
		if err != nil || got != want {
			t.Fatalf("parseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), "[requirement]\nregexid = '^file: (\\d+)-(\\w+)-(\\d+)'\n")

	var got *settings
	capture := func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(cmd, dir)
		got = s
		return err
	}

	if _, _, err := execute(t, "probe", nil, capture); err != nil {
		t.Fatal(err)
	}
	if got.cfg.Requirement.RegexID != `^file: (\d+)-(\w+)-(\d+)` {
		t.Fatalf("config file not applied: %q", got.cfg.Requirement.RegexID)
	}

	t.Setenv("REQDEF_REGEXID", `^env: (\d+)-(\w+)-(\d+)`)
	if _, _, err := execute(t, "probe", nil, capture); err != nil {
		t.Fatal(err)
	}
	if got.cfg.Requirement.RegexID != `^env: (\d+)-(\w+)-(\d+)` {
		t.Fatalf("environment must win over the config file: %q", got.cfg.Requirement.RegexID)
	}

	if _, _, err := execute(t, "probe", nil, capture, "--regexid", `^flag: (\d+)-(\w+)-(\d+)`); err != nil {
		t.Fatal(err)
	}
	if got.cfg.Requirement.RegexID != `^flag: (\d+)-(\w+)-(\d+)` {
		t.Fatalf("flag must win over the environment: %q", got.cfg.Requirement.RegexID)
	}

	if _, _, err := execute(t, "probe", nil, capture, "--regexid", "("); err == nil {
		t.Fatal("expected error for an invalid --regexid")
	}
}

func TestSettingsExplicitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, "[requirement]\nextension_field = \"Owner\"\n")

	var got *settings
	_, _, err := execute(t, "probe", nil, func(cmd *cobra.Command, _ []string) error {
		s, err := loadSettings(cmd, t.TempDir())
		got = s
		return err
	}, "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if got.configPath != path || got.cfg.Requirement.ExtensionField != "Owner" {
		t.Fatalf("unexpected settings: %+v", got.cfg)
	}
}

const duplicated = "id: SOAR-1-Login-1\ntext\nid: SOAR-1-Login-1\n"

func TestCheckJSONReportsConflicts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), duplicated)
	writeFile(t, filepath.Join(dir, "b.md"), "id: SOAR-2-Audit-1\n")

	stdout, _, err := execute(t, "check", registerCheckFlags, runCheck, "--format", "json", "--ui", "off", dir)
	if !errors.Is(err, errConflicts) {
		t.Fatalf("expected errConflicts, got %v", err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if out.Files != 2 || out.Errors != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Requirement != "SOAR-1-Login-1" || d.Location.StartLine != 3 || d.Related == nil {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
}

func TestCheckCleanTreeSucceeds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "id: SOAR-2-Audit-1\n")

	stdout, _, err := execute(t, "check", registerCheckFlags, runCheck, "--color", "off", "--ui", "off", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "ok: checked 1 file(s), no conflicts") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestCheckTimingsGoToStderr(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), duplicated)

	stdout, stderr, err := execute(t, "check", registerCheckFlags, runCheck, "--color", "off", "--ui", "off", "--timings", dir)
	if !errors.Is(err, errConflicts) {
		t.Fatalf("expected errConflicts, got %v", err)
	}
	if !strings.Contains(stdout, "error: 1 conflict(s) in 1 file(s)") {
		t.Fatalf("missing summary:\n%s", stdout)
	}
	if !strings.Contains(stderr, "analyze") {
		t.Fatalf("missing timings:\n%s", stderr)
	}
}

func TestCheckRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"--format", "xml", dir},
		{"--path-mode", "weird", dir},
		{"--ui", "maybe", dir},
		{"--jobs=-1", dir},
	} {
		if _, _, err := execute(t, "check", registerCheckFlags, runCheck, args...); err == nil || errors.Is(err, errConflicts) {
			t.Fatalf("args %v: expected a usage error, got %v", args, err)
		}
	}
}

func TestOutlineItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.md")
	writeFile(t, path, duplicated+"id: SOAR-9-Other-1\n")

	stdout, _, err := execute(t, "outline", registerOutlineFlags, runOutline, "--format", "json", path)
	if err != nil {
		t.Fatal(err)
	}
	var items []outline.Item
	if err := json.Unmarshal([]byte(stdout), &items); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[1].Label != "SOAR-1-Login-1" || items[1].Icon != outline.IconError {
		t.Fatalf("unexpected duplicate item: %+v", items[1])
	}
	if items[2].Icon != outline.IconCheck || items[2].Command.Command != outline.CommandOpenSelection {
		t.Fatalf("unexpected item: %+v", items[2])
	}
}

func TestPrintHostFollowsOutlineContext(t *testing.T) {
	h := &printHost{}
	h.SetContext("someOtherKey", true)
	if h.enabled {
		t.Fatal("unrelated context keys must be ignored")
	}
	h.SetContext(outline.ContextKey, true)
	h.TreeChanged()
	h.Reveal("file:///a.md", diag.Range{})
	if !h.enabled {
		t.Fatal("outline context flag not recorded")
	}
}

func TestOutlinePrettyAlignsLabels(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	renderOutline(&buf, []outline.Item{
		{Label: "SOAR-1-A-1", Icon: outline.IconCheck},
		{Label: "SOAR-10-Long-12", Icon: outline.IconError},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if len(lines[0]) != len(lines[1])-len("✖")+len("✔") {
		t.Fatalf("labels not aligned:\n%s", buf.String())
	}
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.2.3"}
	if err := renderVersionJSON(&buf, info, versionOptions{showHash: true}); err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "reqdef" || payload.Version != "1.2.3" || payload.GitCommit != "unknown" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCheckTestdata(t *testing.T) {
	stdout, _, err := execute(t, "check", registerCheckFlags, runCheck,
		"--format", "json", "--ui", "off", filepath.Join("..", "..", "testdata"))
	if !errors.Is(err, errConflicts) {
		t.Fatalf("expected errConflicts, got %v", err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	conflicts := map[string]int{}
	for _, d := range out.Diagnostics {
		conflicts[d.Conflict]++
	}
	// the title clash is reported once on each record of the pair
	if out.Files != 2 || out.Errors != 3 || conflicts["duplicate-id"] != 1 || conflicts["duplicate-title"] != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
}
