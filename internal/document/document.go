package document

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"reqdef/internal/diag"
	"reqdef/internal/requirement"
)

const maxUint32 = ^uint32(0)

// Document is an in-memory text document. Line breaks are kept as written;
// lines returned by Line never include the trailing "\r\n" or "\n".
type Document struct {
	uri        string
	languageID string
	version    int
	text       string
	lineIdx    []uint32 // byte offsets of every '\n'
}

// New creates a document from its full text.
func New(uri, languageID string, version int, text string) *Document {
	d := &Document{
		uri:        uri,
		languageID: languageID,
		version:    version,
	}
	d.setText(text)
	return d
}

func (d *Document) URI() string        { return d.uri }
func (d *Document) LanguageID() string { return d.languageID }
func (d *Document) Version() int       { return d.version }
func (d *Document) Text() string       { return d.text }

// SetVersion records the version reported by the editor.
func (d *Document) SetVersion(v int) { d.version = v }

// LineCount is the number of '\n' plus one.
func (d *Document) LineCount() int {
	return len(d.lineIdx) + 1
}

// Line returns line i without its line break, or "" when out of range.
func (d *Document) Line(i int) string {
	if i < 0 || i >= d.LineCount() {
		return ""
	}
	start, end := d.lineBounds(i)
	return strings.TrimSuffix(d.text[start:end], "\r")
}

// Lines returns every line of the document.
func (d *Document) Lines() []string {
	out := make([]string, d.LineCount())
	for i := range out {
		out[i] = d.Line(i)
	}
	return out
}

// LineLength is the length of line i in UTF-16 code units.
func (d *Document) LineLength(i int) int {
	return requirement.UTF16Len(d.Line(i))
}

// PositionAt maps a byte offset to a line and UTF-16 character.
func (d *Document) PositionAt(offset int) diag.Position {
	off := safeUint32(offset)
	contentLen := safeUint32(len(d.text))
	if off > contentLen {
		off = contentLen
	}
	line := sort.Search(len(d.lineIdx), func(i int) bool { return d.lineIdx[i] >= off })
	var lineStart uint32
	if line > 0 {
		lineStart = d.lineIdx[line-1] + 1
	}
	return diag.Position{Line: line, Character: requirement.UTF16Len(d.text[lineStart:off])}
}

// OffsetAt maps a position back to a byte offset. Positions past the end of
// a line clamp to the line end; lines past the end clamp to the text end.
func (d *Document) OffsetAt(pos diag.Position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	if pos.Line >= d.LineCount() {
		return len(d.text)
	}
	start, end := d.lineBounds(pos.Line)
	units := 0
	i := start
	for i < end {
		r, size := utf8.DecodeRuneInString(d.text[i:end])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		i += size
	}
	return i
}

// Change is one edit sent by an editor. A nil Range replaces the whole text.
type Change struct {
	Range *diag.Range
	Text  string
}

// Apply performs the edits in order.
func (d *Document) Apply(changes []Change) {
	if len(changes) == 0 {
		return
	}
	text := d.text
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			d.setText(text)
			continue
		}
		start := d.OffsetAt(change.Range.Start)
		end := d.OffsetAt(change.Range.End)
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
		d.setText(text)
	}
}

func (d *Document) String() string {
	return fmt.Sprintf("%s@%d", d.uri, d.version)
}

func (d *Document) setText(text string) {
	d.text = text
	d.lineIdx = buildLineIndex(text)
}

func (d *Document) lineBounds(i int) (start, end int) {
	if i > 0 {
		start = int(d.lineIdx[i-1]) + 1
	}
	end = len(d.text)
	if i < len(d.lineIdx) {
		end = int(d.lineIdx[i])
	}
	return start, end
}

func buildLineIndex(text string) []uint32 {
	out := make([]uint32, 0, strings.Count(text, "\n"))
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out = append(out, safeUint32(i))
		}
	}
	return out
}

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}
