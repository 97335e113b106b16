package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"reqdef/internal/diag"
	"reqdef/internal/requirement"
)

type palette struct {
	err, info, path, code, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:   color.New(color.FgRed, color.Bold),
		info:  color.New(color.FgCyan, color.Bold),
		path:  color.New(color.Bold),
		code:  color.New(color.Faint),
		caret: color.New(color.FgGreen, color.Bold),
		note:  color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.info, p.path, p.code, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	if sev == diag.SevError {
		return p.err
	}
	return p.info
}

// Pretty renders findings for humans:
//
//	<path>:<line>:<col>: <SEV> <code>[<id>]: <message>
//	  <line text>
//	  ^~~~
//
// followed by the related location when ShowRelated is set.
func Pretty(w io.Writer, report Report, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, file := range report.Files {
		path := FormatPath(file.Path, opts.PathMode, opts.BaseDir)
		for _, d := range file.Findings {
			if !visible(d, opts.IncludeInfo) {
				continue
			}
			fmt.Fprintf(w, "%s: %s %s: %s\n",
				p.path.Sprintf("%s:%d:%d", path, d.Range.Start.Line+1, d.Range.Start.Character+1),
				p.severity(d.Severity).Sprint(d.Severity.String()),
				p.code.Sprintf("%s[%s]", d.Code, d.Source),
				d.Message,
			)
			writeSnippet(w, p, file.line(d.Range.Start.Line), d.Range)
			if opts.ShowRelated && d.Related != nil {
				rel := d.Related.Location
				relPath := FormatPath(relatedPath(file, rel), opts.PathMode, opts.BaseDir)
				fmt.Fprintf(w, "  %s %s at %s:%d:%d\n",
					p.note.Sprint("note:"),
					d.Related.Message,
					relPath, rel.Range.Start.Line+1, rel.Range.Start.Character+1,
				)
			}
		}
	}
	writeSummary(w, p, report, opts.IncludeInfo)
}

func writeSnippet(w io.Writer, p palette, line string, rng diag.Range) {
	if line == "" {
		return
	}
	end := rng.End.Character
	if rng.End.Line != rng.Start.Line {
		end = requirement.UTF16Len(line)
	}
	end = max(end, rng.Start.Character)
	before := utf16Prefix(line, rng.Start.Character)
	marked := utf16Prefix(line, end)[len(before):]
	pad := runewidth.StringWidth(before)
	width := max(runewidth.StringWidth(marked), 1)
	fmt.Fprintf(w, "  %s\n", line)
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), p.caret.Sprint("^"+strings.Repeat("~", width-1)))
}

func writeSummary(w io.Writer, p palette, report Report, includeInfo bool) {
	errs := report.Count(diag.SevError)
	files := len(report.Files)
	if errs == 0 {
		fmt.Fprintf(w, "%s checked %d file(s), no conflicts\n", p.info.Sprint("ok:"), files)
		return
	}
	summary := fmt.Sprintf("%d conflict(s) in %d file(s)", errs, files)
	if includeInfo {
		summary += fmt.Sprintf(", %d requirement(s) seen", report.Count(diag.SevInfo))
	}
	fmt.Fprintf(w, "%s %s\n", p.err.Sprint("error:"), summary)
}

// utf16Prefix returns the longest prefix of s spanning at most units UTF-16
// code units.
func utf16Prefix(s string, units int) string {
	n := 0
	for i, r := range s {
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if n+need > units {
			return s[:i]
		}
		n += need
	}
	return s
}
