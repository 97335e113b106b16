package diag

import (
	"sort"
	"sync"
)

// Collection holds the current findings of every document, keyed by URI.
// Each Set replaces the previous list wholesale.
type Collection struct {
	mu    sync.RWMutex
	name  string
	byURI map[string][]Finding
}

// NewCollection creates an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{
		name:  name,
		byURI: make(map[string][]Finding),
	}
}

// Name returns the label the collection was created with.
func (c *Collection) Name() string {
	return c.name
}

// Set replaces the findings of uri.
func (c *Collection) Set(uri string, findings []Finding) {
	cp := make([]Finding, len(findings))
	copy(cp, findings)
	c.mu.Lock()
	c.byURI[uri] = cp
	c.mu.Unlock()
}

// Get returns a copy of the findings of uri.
func (c *Collection) Get(uri string) ([]Finding, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list, ok := c.byURI[uri]
	if !ok {
		return nil, false
	}
	cp := make([]Finding, len(list))
	copy(cp, list)
	return cp, true
}

// Has reports whether uri has an entry.
func (c *Collection) Has(uri string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byURI[uri]
	return ok
}

// Delete drops every finding of uri.
func (c *Collection) Delete(uri string) {
	c.mu.Lock()
	delete(c.byURI, uri)
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *Collection) Clear() {
	c.mu.Lock()
	c.byURI = make(map[string][]Finding)
	c.mu.Unlock()
}

// URIs returns the documents with an entry, sorted.
func (c *Collection) URIs() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.byURI))
	for uri := range c.byURI {
		out = append(out, uri)
	}
	c.mu.RUnlock()
	sort.Strings(out)
	return out
}
