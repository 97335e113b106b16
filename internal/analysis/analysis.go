// Package analysis turns the requirements of one document into findings.
//
// Two passes run over every document and their findings are concatenated:
// the duplicate-ID pass over ID occurrences in line order, then the
// duplicate-title pass over parsed records. Both are pure; a pass never
// fails, malformed input only produces fewer findings.
package analysis

import (
	"regexp"

	"reqdef/internal/config"
	"reqdef/internal/diag"
	"reqdef/internal/requirement"
)

const (
	// MsgDuplicateID is reported on every repeated requirement ID.
	MsgDuplicateID = "cannot have already defined requirement!"
	// MsgDuplicateTitlePrefix precedes the ID of the record a title clashes with.
	MsgDuplicateTitlePrefix = "Duplicate title with "

	// RelatedDuplicateID labels the related location of a DuplicateID finding.
	RelatedDuplicateID = "duplicated id"
	// RelatedDuplicateTitle labels the related location of a DuplicateTitle finding.
	RelatedDuplicateTitle = "duplicated title"

	idLabelWidth     = 4 // "id: "
	flagZoneWidth    = 4
	recordLabelWidth = 6 // "- id: "
)

// Source is the read-only view of a document the analysis needs.
type Source interface {
	URI() string
	Text() string
	LineCount() int
	Line(i int) string
}

// Options holds the extraction settings of one pass.
type Options struct {
	IDPattern *regexp.Regexp
	Records   requirement.RecordOptions
}

// OptionsFromConfig resolves cfg into pass options. When the identifier
// override does not compile the default pattern is used and the compile
// error is returned alongside usable options.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	re, err := cfg.IDPattern()
	return Options{IDPattern: re, Records: cfg.RecordOptions()}, err
}

// Reanalyze runs the whole pipeline on doc with the settings of cfg. An
// invalid identifier override silently falls back to the default pattern;
// callers that want to report it resolve Options themselves.
func Reanalyze(doc Source, cfg config.Config) []diag.Finding {
	opts, _ := OptionsFromConfig(cfg)
	return ReanalyzeWith(doc, opts)
}

// ReanalyzeWith extracts the requirements of doc and returns its full finding set.
func ReanalyzeWith(doc Source, opts Options) []diag.Finding {
	lines := make([]string, doc.LineCount())
	for i := range lines {
		lines[i] = doc.Line(i)
	}
	occurrences := requirement.ExtractOccurrences(lines, opts.IDPattern)
	records := requirement.ExtractRecords(doc.Text(), opts.Records)
	return Analyze(doc, occurrences, records)
}

// Analyze cross-references occurrences and records. Duplicate-ID findings
// come first, in line order, followed by duplicate-title findings in the
// order their pairs are discovered.
func Analyze(doc Source, occurrences []requirement.Occurrence, records []requirement.Record) []diag.Finding {
	bag := diag.NewBag(0)
	reporter := diag.BagReporter{Bag: bag}
	checkDuplicateIDs(reporter, bag, doc.URI(), occurrences)
	checkDuplicateTitles(reporter, doc, records)
	return bag.Items()
}

// checkDuplicateIDs flags every occurrence whose ID was already reported in
// this pass. The first sighting of an ID is informational.
func checkDuplicateIDs(r diag.Reporter, seen *diag.Bag, uri string, occurrences []requirement.Occurrence) {
	for _, occ := range occurrences {
		if _, dup := seen.Find(occ.RawID); dup {
			zone := lineSpan(occ.Line, occ.LineLength-flagZoneWidth, occ.LineLength)
			// The related location is the flag zone itself, not the first sighting.
			diag.ReportConflict(r, diag.DuplicateID, zone, occ.RawID, MsgDuplicateID).
				WithRelated(diag.Location{URI: uri, Range: zone}, RelatedDuplicateID).
				Emit()
			continue
		}
		diag.ReportInfo(r, lineSpan(occ.Line, idLabelWidth, occ.LineLength), occ.RawID, occ.RawID).Emit()
	}
}

// checkDuplicateTitles visits every ordered pair of records, so a clash
// between two records yields one finding anchored at each of them.
func checkDuplicateTitles(r diag.Reporter, doc Source, records []requirement.Record) {
	for _, first := range records {
		for _, second := range records {
			if first.Line == second.Line || first.ID == second.ID || first.Title != second.Title {
				continue
			}
			rng := lineSpan(second.Line, recordLabelWidth, lineLength(doc, second.Line))
			related := lineSpan(first.Line, recordLabelWidth, requirement.UTF16Len(first.Title))
			diag.ReportConflict(r, diag.DuplicateTitle, rng, second.ID, MsgDuplicateTitlePrefix+first.ID).
				WithRelated(diag.Location{URI: doc.URI(), Range: related}, RelatedDuplicateTitle).
				Emit()
		}
	}
}

// lineSpan clamps both columns to be non-negative and end >= start.
func lineSpan(line, start, end int) diag.Range {
	start = max(start, 0)
	end = max(end, start)
	return diag.LineRange(line, start, end)
}

func lineLength(doc Source, line int) int {
	if line < 0 || line >= doc.LineCount() {
		return 0
	}
	return requirement.UTF16Len(doc.Line(line))
}
