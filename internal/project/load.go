package project

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"reqdef/internal/document"
)

// ReadDocument loads a markdown file as a document. A UTF-8 or UTF-16 byte
// order mark selects the decoding and is dropped; line breaks are preserved.
func ReadDocument(path string) (*document.Document, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer f.Close()

	text, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return document.New(document.PathToURI(path), "markdown", 0, text), nil
}

func decode(r io.Reader) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
