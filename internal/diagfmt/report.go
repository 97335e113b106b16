package diagfmt

import (
	"sort"

	"reqdef/internal/diag"
	"reqdef/internal/document"
)

// FileReport is the analysis result of one file.
type FileReport struct {
	Path     string
	URI      string
	Lines    []string
	Findings []diag.Finding
}

// Report is the result of checking a set of files, ordered by path.
type Report struct {
	Files []FileReport
}

// NewFileReport captures the lines of doc alongside its findings.
func NewFileReport(path string, doc *document.Document, findings []diag.Finding) FileReport {
	return FileReport{
		Path:     path,
		URI:      doc.URI(),
		Lines:    doc.Lines(),
		Findings: findings,
	}
}

// Sort orders files by path. Findings keep analysis order.
func (r *Report) Sort() {
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
}

// Count returns the number of findings with severity sev.
func (r Report) Count(sev diag.Severity) int {
	n := 0
	for _, f := range r.Files {
		for _, d := range f.Findings {
			if d.Severity == sev {
				n++
			}
		}
	}
	return n
}

// HasErrors reports whether any file has an error finding.
func (r Report) HasErrors() bool {
	return r.Count(diag.SevError) > 0
}

func (f FileReport) line(i int) string {
	if i < 0 || i >= len(f.Lines) {
		return ""
	}
	return f.Lines[i]
}

func visible(d diag.Finding, includeInfo bool) bool {
	return includeInfo || d.Severity == diag.SevError
}

// relatedPath resolves the path of a related location. Related locations
// always point into the same file.
func relatedPath(f FileReport, loc diag.Location) string {
	if loc.URI == "" || loc.URI == f.URI {
		return f.Path
	}
	if p := document.URIToPath(loc.URI); p != "" {
		return p
	}
	return loc.URI
}
