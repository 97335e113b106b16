package document

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Scheme returns the lower-cased scheme of uri, or "" when it has none.
func Scheme(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Scheme)
}

// URIToPath converts a file URI to a local path. Non-file URIs yield "".
func URIToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

// PathToURI converts a local path to a file URI.
func PathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// CanonicalURI rewrites file URIs into one spelling so documents can be
// keyed by URI. Other schemes are returned unchanged.
func CanonicalURI(uri string) string {
	if uri == "" {
		return ""
	}
	switch Scheme(uri) {
	case "file":
		if path := URIToPath(uri); path != "" {
			return PathToURI(filepath.Clean(path))
		}
		return uri
	default:
		return uri
	}
}
