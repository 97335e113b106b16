package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"reqdef/internal/analysis"
	"reqdef/internal/config"
	"reqdef/internal/document"
)

const sample = "id: SOAR-12-Login-3\n\nid: SOAR-12-Login-3\n"

func sampleReport(t *testing.T) Report {
	t.Helper()
	path := "/work/docs/spec.md"
	doc := document.New(document.PathToURI(path), "markdown", 0, sample)
	findings := analysis.Reanalyze(doc, config.Default())
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	return Report{Files: []FileReport{NewFileReport(path, doc, findings)}}
}

func TestPrettyShowsErrorsWithCaret(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleReport(t), PrettyOpts{PathMode: PathModeBasename, ShowRelated: true})
	out := buf.String()

	for _, want := range []string{
		"spec.md:3:16: ERROR requirement_id[SOAR-12-Login-3]: cannot have already defined requirement!",
		"  id: SOAR-12-Login-3\n",
		strings.Repeat(" ", 2+15) + "^~~~\n",
		"note: duplicated id at spec.md:3:16",
		"1 conflict(s) in 1 file(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "INFO") {
		t.Errorf("information findings should be hidden by default:\n%s", out)
	}
}

func TestPrettyIncludeInfo(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleReport(t), PrettyOpts{PathMode: PathModeBasename, IncludeInfo: true})
	out := buf.String()
	if !strings.Contains(out, "spec.md:1:5: INFO") {
		t.Errorf("expected information finding, got:\n%s", out)
	}
	if !strings.Contains(out, "1 requirement(s) seen") {
		t.Errorf("expected summary with sightings, got:\n%s", out)
	}
}

func TestPrettyCleanReport(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, Report{Files: []FileReport{{Path: "a.md"}}}, PrettyOpts{})
	if got := buf.String(); got != "ok: checked 1 file(s), no conflicts\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	Short(&buf, sampleReport(t), PrettyOpts{PathMode: PathModeBasename})
	want := "spec.md:3:16: ERROR SOAR-12-Login-3: cannot have already defined requirement!\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPathModes(t *testing.T) {
	tests := []struct {
		mode PathMode
		base string
		want string
	}{
		{PathModeAbsolute, "", "/home/user/project/docs/spec.md"},
		{PathModeRelative, "/home/user/project", "docs/spec.md"},
		{PathModeBasename, "", "spec.md"},
		{PathModeAuto, "", "/home/user/project/docs/spec.md"},
	}
	for _, tt := range tests {
		if got := FormatPath("/home/user/project/docs/spec.md", tt.mode, tt.base); got != tt.want {
			t.Errorf("mode %d: got %q, want %q", tt.mode, got, tt.want)
		}
	}
	long := "/very/long/absolute/path/to/some/nested/directory/spec.md"
	if got := FormatPath(long, PathModeAuto, ""); got != "spec.md" {
		t.Errorf("auto mode should shorten long paths, got %q", got)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleReport(t), JSONOpts{PathMode: PathModeBasename, IncludeInfo: true}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 || out.Errors != 1 || out.Files != 1 {
		t.Fatalf("unexpected counters: %+v", out)
	}
	dup := out.Diagnostics[1]
	if dup.Conflict != "duplicate-id" || dup.Requirement != "SOAR-12-Login-3" {
		t.Fatalf("unexpected diagnostic: %+v", dup)
	}
	if dup.Location.StartLine != 3 || dup.Location.StartCol != 16 || dup.Location.File != "spec.md" {
		t.Fatalf("unexpected location: %+v", dup.Location)
	}
	if dup.Related == nil || dup.Related.Message != "duplicated id" {
		t.Fatalf("expected related location, got %+v", dup.Related)
	}
}

func TestJSONMax(t *testing.T) {
	out := BuildDiagnosticsOutput(sampleReport(t), JSONOpts{IncludeInfo: true, Max: 1})
	if out.Count != 1 || out.Diagnostics[0].Severity != "INFO" {
		t.Fatalf("expected the first finding only, got %+v", out.Diagnostics)
	}
}

func TestYAMLOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := YAML(&buf, sampleReport(t), JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var out DiagnosticsOutput
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || out.Diagnostics[0].Conflict != "duplicate-id" {
		t.Fatalf("unexpected yaml output:\n%s", buf.String())
	}
}

func TestSarifOutput(t *testing.T) {
	var buf bytes.Buffer
	meta := SarifRunMeta{ToolName: "reqdef", ToolVersion: "test", InvocationArgs: []string{"check"}}
	if err := Sarif(&buf, sampleReport(t), meta); err != nil {
		t.Fatalf("sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log: %+v", log)
	}
	results := log.Runs[0].Results
	if len(results) != 1 || results[0].RuleID != "duplicate-id" || results[0].Level != "error" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if got := results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI; got != "file:///work/docs/spec.md" {
		t.Fatalf("unexpected artifact uri %q", got)
	}
	if len(results[0].RelatedLocations) != 1 {
		t.Fatalf("expected related location")
	}
}

func TestParseFormatAndWrite(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		if err != nil || got != f {
			t.Fatalf("ParseFormat(%q) = %q, %v", f, got, err)
		}
		var buf bytes.Buffer
		if err := Write(&buf, f, sampleReport(t), Options{}); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
		if buf.Len() == 0 {
			t.Fatalf("format %s wrote nothing", f)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
