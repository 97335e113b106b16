package diagfmt

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAML writes the same structure as JSON, encoded as YAML.
func YAML(w io.Writer, report Report, opts JSONOpts) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(BuildDiagnosticsOutput(report, opts)); err != nil {
		return err
	}
	return encoder.Close()
}
