package diag

import "fmt"

// Position is a zero-based line and UTF-16 character offset.
type Position struct {
	Line      int `json:"line" yaml:"line"`
	Character int `json:"character" yaml:"character"`
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// LineRange builds a range on a single line.
func LineRange(line, startCol, endCol int) Range {
	return Range{
		Start: Position{Line: line, Character: startCol},
		End:   Position{Line: line, Character: endCol},
	}
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
}

// Location is a range inside a document.
type Location struct {
	URI   string
	Range Range
}

// Related points at the occurrence a finding conflicts with.
type Related struct {
	Location Location
	Message  string
}

// Finding is one reported problem or sighting in a document.
type Finding struct {
	Range    Range
	Severity Severity
	Code     string
	Message  string
	// Source is the requirement ID the finding is about.
	Source   string
	Conflict Conflict
	Related  *Related
}

// IsError reports whether the finding is an error.
func (f Finding) IsError() bool {
	return f.Severity == SevError
}
