package requirement

import (
	"sort"
	"strings"
)

// Record is a requirement parsed from a fenced block.
type Record struct {
	ID            string
	Title         string
	Applicability string
	Version       string
	Regulation    string
	Extension     string
	// Line is the line right after the fence that opens the block.
	Line int
}

// RecordOptions selects the fence language and the sixth field label.
type RecordOptions struct {
	FenceLanguage  string
	ExtensionField string
}

func (o RecordOptions) withDefaults() RecordOptions {
	if strings.TrimSpace(o.FenceLanguage) == "" {
		o.FenceLanguage = DefaultFenceLanguage
	}
	if strings.TrimSpace(o.ExtensionField) == "" {
		o.ExtensionField = DefaultExtensionField
	}
	return o
}

// ExtractRecords parses every fenced requirement block of text.
// The result is ordered by Line; a later block declared on the same line
// replaces an earlier one. Blocks without an id are skipped.
func ExtractRecords(text string, opts RecordOptions) []Record {
	opts = opts.withDefaults()
	fence := fencePattern(opts.FenceLanguage)
	fields := recordPattern(opts.ExtensionField)

	byLine := make(map[int]Record)
	for _, loc := range fence.FindAllStringSubmatchIndex(text, -1) {
		if loc[2] < 0 {
			continue
		}
		body := strings.TrimSpace(text[loc[2]:loc[3]])
		m := fields.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		id := m[fields.SubexpIndex("id")]
		if id == "" {
			continue
		}
		line := strings.Count(text[:loc[0]], "\n") + 1
		byLine[line] = Record{
			ID:            id,
			Title:         NormalizeTitle(m[fields.SubexpIndex("title")]),
			Applicability: m[fields.SubexpIndex("appli")],
			Version:       m[fields.SubexpIndex("ver")],
			Regulation:    m[fields.SubexpIndex("reg")],
			Extension:     m[fields.SubexpIndex("fx")],
			Line:          line,
		}
	}

	out := make([]Record, 0, len(byLine))
	for _, rec := range byLine {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// NormalizeTitle makes titles comparable across line wraps. A block scalar
// title ("|" or "|-" plus line break) loses its first four characters; then
// every line break followed by a space is removed and the result trimmed.
func NormalizeTitle(raw string) string {
	if strings.HasPrefix(raw, "|") {
		raw = dropChars(raw, 4)
	}
	for strings.Contains(raw, "\n ") {
		raw = strings.ReplaceAll(raw, "\r\n ", "")
		raw = strings.ReplaceAll(raw, "\n ", "")
	}
	return strings.TrimSpace(raw)
}

func dropChars(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}
