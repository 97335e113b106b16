package project

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ListMarkdownFiles expands targets into a sorted, de-duplicated list of
// files. Files named explicitly are always kept; directories are walked and
// filtered through the include and exclude globs (slash paths relative to
// the walked directory, with ** support).
func ListMarkdownFiles(targets, include, exclude []string) ([]string, error) {
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", target, err)
		}
		if !info.IsDir() {
			add(target)
			continue
		}
		err = filepath.WalkDir(target, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(target, p)
			if relErr != nil || rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if ExcludedDir(exclude, rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if Included(include, exclude, rel) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %q: %w", target, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Included reports whether the slash path rel passes the include and
// exclude globs.
func Included(include, exclude []string, rel string) bool {
	return matchAny(include, rel) && !matchAny(exclude, rel)
}

// ExcludedDir reports whether every file under the directory rel is
// excluded. A child path is probed so that "dir/**" patterns match.
func ExcludedDir(exclude []string, rel string) bool {
	return matchAny(exclude, path.Join(rel, "_"))
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
