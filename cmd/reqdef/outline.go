package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"reqdef/internal/analysis"
	"reqdef/internal/diag"
	"reqdef/internal/document"
	"reqdef/internal/outline"
	"reqdef/internal/project"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <file.md>",
	Short: "Print the requirement outline of one markdown file",
	Args:  cobra.ExactArgs(1),
	RunE:  runOutline,
}

func init() {
	registerOutlineFlags(outlineCmd)
}

func registerOutlineFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

// printHost only tracks the outline context flag; a one-shot render has no
// tree to refresh and no editor to reveal in.
type printHost struct {
	enabled bool
}

func (h *printHost) SetContext(key string, value bool) {
	if key == outline.ContextKey {
		h.enabled = value
	}
}

func (h *printHost) TreeChanged() {}

func (h *printHost) Reveal(string, diag.Range) {}

func runOutline(cmd *cobra.Command, args []string) error {
	path := args[0]
	s, err := loadSettings(cmd, filepath.Dir(path))
	if err != nil {
		return err
	}
	format := strings.ToLower(s.v.GetString("format"))
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	doc, err := project.ReadDocument(path)
	if err != nil {
		return err
	}
	items, err := buildOutline(doc, s)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	color.NoColor = !s.useColor()
	renderOutline(cmd.OutOrStdout(), items)
	return nil
}

func buildOutline(doc *document.Document, s *settings) ([]outline.Item, error) {
	findings := analysis.Reanalyze(doc, s.cfg)
	store := diag.NewCollection("reqdef")
	store.Set(doc.URI(), findings)

	host := &printHost{}
	projector := outline.NewProjector(store, host)
	projector.OnActiveEditorChanged(&outline.Editor{URI: doc.URI(), LanguageID: doc.LanguageID()})
	if !host.enabled {
		return nil, fmt.Errorf("%s is not a markdown document", doc.URI())
	}
	return projector.Items(), nil
}

var (
	errorIcon = color.New(color.FgRed, color.Bold)
	checkIcon = color.New(color.FgGreen)
	dimText   = color.New(color.Faint)
)

func renderOutline(out io.Writer, items []outline.Item) {
	width := 0
	for _, it := range items {
		width = max(width, runewidth.StringWidth(it.Label))
	}
	for _, it := range items {
		icon := checkIcon.Sprint("✔")
		if it.Icon == outline.IconError {
			icon = errorIcon.Sprint("✖")
		}
		loc := ""
		if len(it.Command.Arguments) > 0 {
			start := it.Command.Arguments[0].Start
			loc = fmt.Sprintf("%d:%d", start.Line+1, start.Character+1)
		}
		fmt.Fprintf(out, "%s %s  %s\n", icon, runewidth.FillRight(it.Label, width), dimText.Sprint(loc))
	}
}
