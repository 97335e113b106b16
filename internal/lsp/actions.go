package lsp

import (
	"encoding/json"

	"reqdef/internal/diag"
	"reqdef/internal/document"
)

const (
	codeActionKindQuickFix = "quickfix"
	learnMoreTitle         = "Learn more..."

	symbolKindKey = 20
)

// handleCodeAction offers one "Learn more..." quick fix per requirement
// error in the request context.
func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	actions := []codeAction{}
	for _, d := range params.Context.Diagnostics {
		if d.Code != diag.RequirementMention || d.Severity != lspSeverityError {
			continue
		}
		actions = append(actions, codeAction{
			Title:       learnMoreTitle,
			Kind:        codeActionKindQuickFix,
			Diagnostics: []lspDiagnostic{d},
			IsPreferred: true,
		})
	}
	return s.sendResponse(msg.ID, actions)
}

func (s *Server) handleDocumentSymbol(msg *rpcMessage) error {
	var params documentSymbolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	uri := document.CanonicalURI(params.TextDocument.URI)
	findings, _ := s.findings.Get(uri)
	symbols := make([]documentSymbol, 0, len(findings))
	for _, f := range findings {
		name := f.Source
		if name == "" {
			name = "*"
		}
		symbols = append(symbols, documentSymbol{
			Name:           name,
			Detail:         f.Message,
			Kind:           symbolKindKey,
			Range:          f.Range,
			SelectionRange: f.Range,
		})
	}
	return s.sendResponse(msg.ID, symbols)
}
