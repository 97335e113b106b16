package diagfmt

import (
	"fmt"
	"io"
)

// Format names an output renderer.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatShort  Format = "short"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSARIF  Format = "sarif"
)

// Formats lists every accepted --format value.
var Formats = []Format{FormatPretty, FormatShort, FormatJSON, FormatYAML, FormatSARIF}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want pretty, short, json, yaml or sarif)", s)
}

// Options bundles the settings of every renderer.
type Options struct {
	Pretty PrettyOpts
	JSON   JSONOpts
	Sarif  SarifRunMeta
}

// Write renders report in format f.
func Write(w io.Writer, f Format, report Report, opts Options) error {
	switch f {
	case FormatPretty:
		Pretty(w, report, opts.Pretty)
		return nil
	case FormatShort:
		Short(w, report, opts.Pretty)
		return nil
	case FormatJSON:
		return JSON(w, report, opts.JSON)
	case FormatYAML:
		return YAML(w, report, opts.JSON)
	case FormatSARIF:
		return Sarif(w, report, opts.Sarif)
	}
	return fmt.Errorf("unknown format %q", f)
}
