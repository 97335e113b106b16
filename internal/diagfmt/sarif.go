package diagfmt

import (
	"encoding/json"
	"io"

	"reqdef/internal/analysis"
	"reqdef/internal/diag"
	"reqdef/internal/document"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifLocation struct {
	ID               int                   `json:"id,omitempty"`
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

var sarifRules = []sarifRule{
	{ID: diag.DuplicateID.String(), ShortDescription: sarifMessage{Text: analysis.MsgDuplicateID}},
	{ID: diag.DuplicateTitle.String(), ShortDescription: sarifMessage{Text: "requirement title shared with another requirement"}},
}

// Sarif writes the error findings of report as a SARIF v2.1.0 log.
// Information findings are not results and are left out.
func Sarif(w io.Writer, report Report, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
			Rules:   sarifRules,
		}},
		Invocations: []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: true,
		}},
		Results: []sarifResult{},
	}
	for _, file := range report.Files {
		uri := file.URI
		if uri == "" {
			uri = document.PathToURI(file.Path)
		}
		for _, d := range file.Findings {
			if d.Severity != diag.SevError {
				continue
			}
			res := sarifResult{
				RuleID:    d.Conflict.String(),
				Level:     "error",
				Message:   sarifMessage{Text: d.Source + ": " + d.Message},
				Locations: []sarifLocation{sarifLoc(uri, d.Range)},
			}
			if d.Related != nil {
				relURI := d.Related.Location.URI
				if relURI == "" {
					relURI = uri
				}
				rel := sarifLoc(relURI, d.Related.Location.Range)
				rel.ID = 1
				rel.Message = &sarifMessage{Text: d.Related.Message}
				res.RelatedLocations = []sarifLocation{rel}
			}
			run.Results = append(run.Results, res)
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}

func sarifLoc(uri string, rng diag.Range) sarifLocation {
	return sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifact{URI: uri},
			Region: sarifRegion{
				StartLine:   rng.Start.Line + 1,
				StartColumn: rng.Start.Character + 1,
				EndLine:     rng.End.Line + 1,
				EndColumn:   rng.End.Character + 1,
			},
		},
	}
}
