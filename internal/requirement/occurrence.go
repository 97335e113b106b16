package requirement

import (
	"regexp"
	"strings"
)

// Occurrence is one line whose text matches the identifier pattern.
// Columns are counted in UTF-16 code units, like editor positions.
type Occurrence struct {
	Line        int
	RawID       string
	ColumnStart int
	ColumnEnd   int
	LineLength  int
}

// ExtractOccurrences tests every line against pattern, in order.
// Lines that do not match, or match with fewer than three groups, are skipped.
func ExtractOccurrences(lines []string, pattern *regexp.Regexp) []Occurrence {
	if pattern == nil {
		pattern = DefaultIDPattern
	}
	var out []Occurrence
	for i, line := range lines {
		loc := pattern.FindStringSubmatchIndex(line)
		if loc == nil || len(loc) < 8 {
			continue
		}
		groups := make([]string, 3)
		complete := true
		for g := 1; g <= 3; g++ {
			start, end := loc[2*g], loc[2*g+1]
			if start < 0 {
				complete = false
				break
			}
			groups[g-1] = line[start:end]
		}
		if !complete {
			continue
		}
		idStart := loc[2]
		if p := strings.LastIndex(line[:idStart], IDPrefix); p >= 0 {
			idStart = p
		}
		out = append(out, Occurrence{
			Line:        i,
			RawID:       FormatID(groups[0], groups[1], groups[2]),
			ColumnStart: UTF16Len(line[:idStart]),
			ColumnEnd:   UTF16Len(line[:loc[7]]),
			LineLength:  UTF16Len(line),
		})
	}
	return out
}

// SplitLines splits text on "\n" and drops a trailing "\r" from each line.
// A text with n newlines always yields n+1 lines.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// UTF16Len counts s in UTF-16 code units, the column unit of editor positions.
func UTF16Len(s string) int {
	units := 0
	for _, r := range s {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return units
}
