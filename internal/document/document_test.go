package document

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqdef/internal/diag"
)

func TestLinesKeepCRLFOutOfLineText(t *testing.T) {
	doc := New("file:///a.md", "markdown", 1, "one\r\ntwo\nthree")
	require.Equal(t, 3, doc.LineCount())
	assert.Equal(t, "one", doc.Line(0))
	assert.Equal(t, "two", doc.Line(1))
	assert.Equal(t, "three", doc.Line(2))
	assert.Equal(t, "", doc.Line(3))
	assert.Equal(t, []string{"one", "two", "three"}, doc.Lines())
	assert.Equal(t, "one\r\ntwo\nthree", doc.Text())
}

func TestTrailingNewlineAddsEmptyLine(t *testing.T) {
	doc := New("file:///a.md", "markdown", 1, "a\n")
	assert.Equal(t, 2, doc.LineCount())
	assert.Equal(t, "", doc.Line(1))
}

func TestPositionAtCountsUTF16(t *testing.T) {
	text := "ab\n😀x\n"
	doc := New("file:///a.md", "markdown", 1, text)

	assert.Equal(t, diag.Position{Line: 0, Character: 0}, doc.PositionAt(0))
	assert.Equal(t, diag.Position{Line: 0, Character: 2}, doc.PositionAt(2))
	assert.Equal(t, diag.Position{Line: 1, Character: 0}, doc.PositionAt(3))
	// the emoji is four bytes and two UTF-16 units
	assert.Equal(t, diag.Position{Line: 1, Character: 2}, doc.PositionAt(7))
	assert.Equal(t, diag.Position{Line: 2, Character: 0}, doc.PositionAt(len(text)+10))
	assert.Equal(t, 3, doc.LineLength(1))
}

func TestOffsetAtRoundTrip(t *testing.T) {
	text := "id: SOAR-1-é-2\nnext"
	doc := New("file:///a.md", "markdown", 1, text)
	for off := range text {
		pos := doc.PositionAt(off)
		assert.Equal(t, off, doc.OffsetAt(pos), "offset %d", off)
	}
	assert.Equal(t, len("id: SOAR-1-é-2"), doc.OffsetAt(diag.Position{Line: 0, Character: 99}))
	assert.Equal(t, len(text), doc.OffsetAt(diag.Position{Line: 9}))
}

func TestApplyIncrementalAndFullChanges(t *testing.T) {
	doc := New("file:///a.md", "markdown", 1, "one\ntwo\n")
	rng := diag.LineRange(0, 0, 0)
	doc.Apply([]Change{{Range: &rng, Text: "// "}})
	assert.Equal(t, "// one\ntwo\n", doc.Text())

	replace := diag.Range{
		Start: diag.Position{Line: 1, Character: 0},
		End:   diag.Position{Line: 2, Character: 0},
	}
	doc.Apply([]Change{{Range: &replace, Text: "id: SOAR-1-A-1\n"}})
	assert.Equal(t, "id: SOAR-1-A-1", doc.Line(1))

	doc.Apply([]Change{{Text: "fresh"}})
	assert.Equal(t, "fresh", doc.Text())
	assert.Equal(t, 1, doc.LineCount())
}

func TestURIHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec file.md")
	uri := PathToURI(path)
	assert.Equal(t, "file", Scheme(uri))
	assert.Equal(t, path, URIToPath(uri))
	assert.Equal(t, uri, CanonicalURI(uri))

	assert.Equal(t, "", URIToPath("untitled:Untitled-1"))
	assert.Equal(t, "untitled:Untitled-1", CanonicalURI("untitled:Untitled-1"))
	assert.Equal(t, "", CanonicalURI(""))
}
