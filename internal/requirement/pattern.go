package requirement

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultIDExpr matches an `id: SOAR-<n>-<text>-<n>` line.
const DefaultIDExpr = `^id: SOAR-(\d+)-(.*)-(\d+)`

// IDPrefix is prepended to the captured groups when an ID is rebuilt.
const IDPrefix = "SOAR-"

// DefaultExtensionField is the label of the sixth record field.
const DefaultExtensionField = "MyFX"

// DefaultFenceLanguage is the info string of fenced blocks holding records.
const DefaultFenceLanguage = "yaml"

// DefaultIDPattern is the compiled DefaultIDExpr.
var DefaultIDPattern = regexp.MustCompile(DefaultIDExpr)

// CompileIDPattern compiles a user supplied identifier pattern.
// An empty expression yields DefaultIDPattern.
func CompileIDPattern(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return DefaultIDPattern, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier pattern %q: %w", expr, err)
	}
	return re, nil
}

// FormatID rebuilds a requirement ID from the three captured segments.
func FormatID(major, text, minor string) string {
	return IDPrefix + major + "-" + text + "-" + minor
}

// fencePattern finds ```<lang> blocks. The body is lazy so a match never runs
// into the next fence.
func fencePattern(lang string) *regexp.Regexp {
	return regexp.MustCompile("(?m)```" + regexp.QuoteMeta(lang) + `\s([\s\S]*?)\s*(?P<req>[^\r\n]*)` + "```")
}

// recordPattern captures the six labelled fields of a requirement block. The
// title is greedy and may span several lines up to the next label.
func recordPattern(extField string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)id:\s(?P<id>[^\r\n]*)[\s\S]*?` +
		`title:\s(?P<title>[\w|\W|\s]*)[\s\S]*?` +
		`applicability:\s(?P<appli>[^\r\n]*)[\s\S]*?` +
		`version:\s(?P<ver>[^\r\n]*)[\s\S]*?` +
		`regulation:\s(?P<reg>[^\r\n]*)[\s\S]*?` +
		regexp.QuoteMeta(extField) + `:\s(?P<fx>[^\r\n]*)`)
}
