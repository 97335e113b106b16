// Package fuzztests holds fuzz harnesses for requirement extraction and
// duplicate analysis. They guard against panics and check the invariants
// of the finding set on arbitrary markdown.
package fuzztests
