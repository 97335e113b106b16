package diagfmt

import (
	"encoding/json"
	"io"

	"reqdef/internal/diag"
)

// LocationJSON is a file location; lines and columns are 1-based.
type LocationJSON struct {
	File      string `json:"file" yaml:"file"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	StartCol  int    `json:"start_col" yaml:"start_col"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	EndCol    int    `json:"end_col" yaml:"end_col"`
}

// RelatedJSON is the location a finding conflicts with.
type RelatedJSON struct {
	Message  string       `json:"message" yaml:"message"`
	Location LocationJSON `json:"location" yaml:"location"`
}

// DiagnosticJSON is one finding.
type DiagnosticJSON struct {
	Severity    string       `json:"severity" yaml:"severity"`
	Code        string       `json:"code" yaml:"code"`
	Requirement string       `json:"requirement" yaml:"requirement"`
	Conflict    string       `json:"conflict" yaml:"conflict"`
	Message     string       `json:"message" yaml:"message"`
	Location    LocationJSON `json:"location" yaml:"location"`
	Related     *RelatedJSON `json:"related,omitempty" yaml:"related,omitempty"`
}

// DiagnosticsOutput is the root of JSON and YAML output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics" yaml:"diagnostics"`
	Count       int              `json:"count" yaml:"count"`
	Errors      int              `json:"errors" yaml:"errors"`
	Files       int              `json:"files" yaml:"files"`
}

func makeLocation(path string, rng diag.Range, opts JSONOpts) LocationJSON {
	return LocationJSON{
		File:      FormatPath(path, opts.PathMode, opts.BaseDir),
		StartLine: rng.Start.Line + 1,
		StartCol:  rng.Start.Character + 1,
		EndLine:   rng.End.Line + 1,
		EndCol:    rng.End.Character + 1,
	}
}

// BuildDiagnosticsOutput assembles the output structure without encoding it.
func BuildDiagnosticsOutput(report Report, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{
		Diagnostics: []DiagnosticJSON{},
		Errors:      report.Count(diag.SevError),
		Files:       len(report.Files),
	}
	for _, file := range report.Files {
		for _, d := range file.Findings {
			if !visible(d, opts.IncludeInfo) {
				continue
			}
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				break
			}
			item := DiagnosticJSON{
				Severity:    d.Severity.String(),
				Code:        d.Code,
				Requirement: d.Source,
				Conflict:    d.Conflict.String(),
				Message:     d.Message,
				Location:    makeLocation(file.Path, d.Range, opts),
			}
			if d.Related != nil {
				item.Related = &RelatedJSON{
					Message:  d.Related.Message,
					Location: makeLocation(relatedPath(file, d.Related.Location), d.Related.Location.Range, opts),
				}
			}
			out.Diagnostics = append(out.Diagnostics, item)
		}
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the findings of report as indented JSON.
func JSON(w io.Writer, report Report, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(report, opts))
}
