package fuzztests

import (
	"testing"

	"reqdef/internal/analysis"
	"reqdef/internal/config"
	"reqdef/internal/diag"
	"reqdef/internal/document"
)

func FuzzReanalyze(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		doc := document.New("file:///fuzz.md", "markdown", 1, clampInput(input))
		findings := analysis.Reanalyze(doc, config.Default())

		infos := make(map[string]int)
		for _, d := range findings {
			r := d.Range
			if r.Start.Character < 0 || r.End.Character < r.Start.Character && r.End.Line == r.Start.Line {
				t.Fatalf("bad range %+v", r)
			}
			if r.Start.Line < 0 {
				t.Fatalf("negative range line %d", r.Start.Line)
			}
			switch d.Conflict {
			case diag.NoMismatch:
				if d.Severity != diag.SevInfo {
					t.Fatalf("first sighting must be information: %+v", d)
				}
				infos[d.Source]++
			case diag.DuplicateID, diag.DuplicateTitle:
				if d.Severity != diag.SevError || d.Related == nil {
					t.Fatalf("conflict must be an error with related info: %+v", d)
				}
			}
		}
		for id, n := range infos {
			if n != 1 {
				t.Fatalf("id %q has %d first sightings", id, n)
			}
		}
	})
}

func FuzzDocumentApply(f *testing.F) {
	f.Add([]byte("id: SOAR-1-A-1\nnext\n"), uint8(0), uint8(2), "x")
	f.Add([]byte("😀\r\n"), uint8(0), uint8(1), "\n")
	f.Fuzz(func(t *testing.T, input []byte, line, char uint8, text string) {
		doc := document.New("file:///fuzz.md", "markdown", 1, clampInput(input))
		pos := diag.Position{Line: int(line), Character: int(char)}
		off := doc.OffsetAt(pos)
		if off < 0 || off > len(doc.Text()) {
			t.Fatalf("offset %d outside text of length %d", off, len(doc.Text()))
		}
		rng := diag.Range{Start: pos, End: pos}
		doc.Apply([]document.Change{{Range: &rng, Text: text}})
		_ = analysis.Reanalyze(doc, config.Default())
	})
}
