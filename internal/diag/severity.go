package diag

// Severity defines the importance of a finding.
type Severity uint8

const (
	// SevInfo marks a requirement that was seen without conflict.
	SevInfo Severity = iota
	// SevError marks a conflicting requirement.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
