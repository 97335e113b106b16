package diag

// Conflict classifies why a finding is an error.
type Conflict uint8

const (
	// NoMismatch is an informational sighting.
	NoMismatch Conflict = iota
	// DuplicateID is a requirement ID seen on an earlier line.
	DuplicateID
	// DuplicateTitle is a title shared by records with different IDs.
	DuplicateTitle
)

// RequirementMention tags every finding produced by the analyzer. Code
// actions only trigger on findings that carry it.
const RequirementMention = "requirement_id"

func (c Conflict) String() string {
	switch c {
	case NoMismatch:
		return "none"
	case DuplicateID:
		return "duplicate-id"
	case DuplicateTitle:
		return "duplicate-title"
	}
	return "unknown"
}

// Severity returns the severity implied by the conflict kind.
func (c Conflict) Severity() Severity {
	if c == NoMismatch {
		return SevInfo
	}
	return SevError
}
