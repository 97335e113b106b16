package diag

// Bag collects findings in emission order.
type Bag struct {
	items []Finding
	max   int
}

// NewBag returns a bag holding at most max findings; max <= 0 means no limit.
func NewBag(max int) *Bag {
	capacity := max
	if capacity <= 0 {
		capacity = 8
	}
	return &Bag{
		items: make([]Finding, 0, capacity),
		max:   max,
	}
}

// Add appends f unless the bag is full. It reports whether f was kept.
func (b *Bag) Add(f Finding) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, f)
	return true
}

// HasErrors reports whether any finding is an error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Count returns the number of findings with the given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice. Callers must not modify it.
func (b *Bag) Items() []Finding {
	return b.items
}

// Find returns the first finding whose Source equals source.
func (b *Bag) Find(source string) (Finding, bool) {
	for i := range b.items {
		if b.items[i].Source == source {
			return b.items[i], true
		}
	}
	return Finding{}, false
}

// Merge appends the findings of other, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.max > 0 && len(b.items)+len(other.items) > b.max {
		b.max = len(b.items) + len(other.items)
	}
	b.items = append(b.items, other.items...)
}
