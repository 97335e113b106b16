package diagfmt

import (
	"fmt"
	"io"
)

// Short renders one line per finding:
//
//	<path>:<line>:<col>: <SEV> <id>: <message>
func Short(w io.Writer, report Report, opts PrettyOpts) {
	for _, file := range report.Files {
		path := FormatPath(file.Path, opts.PathMode, opts.BaseDir)
		for _, d := range file.Findings {
			if !visible(d, opts.IncludeInfo) {
				continue
			}
			fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
				path, d.Range.Start.Line+1, d.Range.Start.Character+1,
				d.Severity, d.Source, d.Message)
		}
	}
}
