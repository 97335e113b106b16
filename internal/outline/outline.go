// Package outline projects the findings of the active markdown document
// into a flat tree, one node per finding.
package outline

import (
	"sync"

	"reqdef/internal/diag"
	"reqdef/internal/document"
)

const (
	// ContextKey is the host context flag that toggles the outline view.
	ContextKey = "reqidOutlineEnabled"
	// CommandRefresh re-emits the tree of the associated document.
	CommandRefresh = "reqdef.refreshOutline"
	// CommandOpenSelection reveals a range in the associated document.
	CommandOpenSelection = "reqdef.openSelection"

	markdownLanguage = "markdown"
	placeholderLabel = "*"
)

// Icon is the glyph shown next to a tree item.
type Icon string

const (
	IconError Icon = "error"
	IconCheck Icon = "check"
)

// FindingSource gives read access to the stored findings of a document.
type FindingSource interface {
	Get(uri string) ([]diag.Finding, bool)
}

// Host is the editor surface the projector drives.
type Host interface {
	SetContext(key string, value bool)
	TreeChanged()
	Reveal(uri string, r diag.Range)
}

// Editor identifies the document shown in the active editor.
type Editor struct {
	URI        string
	LanguageID string
}

// Node is one finding of the associated document.
type Node struct {
	Finding diag.Finding
}

// Command is attached to a tree item and runs when it is picked.
type Command struct {
	Title     string       `json:"title"`
	Command   string       `json:"command"`
	Arguments []diag.Range `json:"arguments"`
}

// Item is the presentation of a Node.
type Item struct {
	Label    string        `json:"label"`
	Severity diag.Severity `json:"-"`
	Icon     Icon          `json:"icon"`
	Command  Command       `json:"command"`
}

// Projector tracks the associated document and renders its findings.
type Projector struct {
	store FindingSource
	host  Host

	mu      sync.Mutex
	editor  Editor
	hasEdit bool
	enabled bool
}

func NewProjector(store FindingSource, host Host) *Projector {
	return &Projector{store: store, host: host}
}

// OnActiveEditorChanged follows the active editor. A nil editor disables the
// view. Non-file documents are ignored; a non-markdown file disables the view
// but keeps the previous association.
func (p *Projector) OnActiveEditorChanged(ed *Editor) {
	if ed == nil {
		p.setEnabled(false)
		return
	}
	if document.Scheme(ed.URI) != "file" {
		return
	}
	markdown := ed.LanguageID == markdownLanguage
	p.setEnabled(markdown)
	if !markdown {
		return
	}
	p.mu.Lock()
	p.editor = *ed
	p.hasEdit = true
	p.mu.Unlock()
	p.Refresh()
}

// OnDocumentTextChanged refreshes the tree when uri is the associated document.
func (p *Projector) OnDocumentTextChanged(uri string) {
	ed, ok := p.Current()
	if !ok || ed.URI != uri {
		return
	}
	p.Refresh()
}

func (p *Projector) Refresh() {
	p.host.TreeChanged()
}

// Select reveals r in the associated document.
func (p *Projector) Select(r diag.Range) {
	ed, ok := p.Current()
	if !ok {
		return
	}
	p.host.Reveal(ed.URI, r)
}

// Children returns the roots for a nil parent. Nodes have no children.
func (p *Projector) Children(parent *Node) []Node {
	if parent != nil {
		return nil
	}
	ed, ok := p.Current()
	if !ok {
		return nil
	}
	findings, _ := p.store.Get(ed.URI)
	nodes := make([]Node, 0, len(findings))
	for _, f := range findings {
		nodes = append(nodes, Node{Finding: f})
	}
	return nodes
}

func (p *Projector) TreeItem(n Node) Item {
	label := n.Finding.Source
	if label == "" {
		label = placeholderLabel
	}
	icon := IconCheck
	if n.Finding.Severity == diag.SevError {
		icon = IconError
	}
	return Item{
		Label:    label,
		Severity: n.Finding.Severity,
		Icon:     icon,
		Command: Command{
			Command:   CommandOpenSelection,
			Arguments: []diag.Range{n.Finding.Range},
		},
	}
}

// Items renders all roots of the associated document.
func (p *Projector) Items() []Item {
	nodes := p.Children(nil)
	items := make([]Item, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, p.TreeItem(n))
	}
	return items
}

// Current returns the associated editor, if any.
func (p *Projector) Current() (Editor, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editor, p.hasEdit
}

// Enabled reports the last value sent for ContextKey.
func (p *Projector) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *Projector) setEnabled(v bool) {
	p.mu.Lock()
	p.enabled = v
	p.mu.Unlock()
	p.host.SetContext(ContextKey, v)
}
