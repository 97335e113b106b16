package lsp

import (
	"reqdef/internal/analysis"
	"reqdef/internal/diag"
)

const (
	lspSeverityError       = 1
	lspSeverityInformation = 3
)

// analyzeAndPublish runs a full pass over the open document uri, replaces
// its stored findings and publishes them.
func (s *Server) analyzeAndPublish(uri string) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		s.mu.Unlock()
		return
	}
	findings := analysis.ReanalyzeWith(doc, s.opts)
	version := doc.Version()
	trace := s.traceLSP
	s.mu.Unlock()

	s.findings.Set(uri, findings)
	if trace {
		s.logger.Debug("analyzed", "uri", uri, "version", version, "findings", len(findings))
	}
	if err := s.sendPublish(uri, &version, s.toLSPDiagnostics(findings)); err != nil {
		s.logger.Error("failed to publish diagnostics", "uri", uri, "err", err)
	}
}

// reanalyzeOpenDocuments refreshes every open document, in URI order.
func (s *Server) reanalyzeOpenDocuments() {
	for _, uri := range s.openURIs() {
		s.analyzeAndPublish(uri)
	}
	if ed, ok := s.projector.Current(); ok {
		s.projector.OnDocumentTextChanged(ed.URI)
	}
}

func (s *Server) clearPublishedDiagnostics() {
	for _, uri := range s.findings.URIs() {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logger.Error("failed to clear diagnostics", "uri", uri, "err", err)
		}
	}
	s.findings.Clear()
}

func (s *Server) sendPublish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.sendNotification("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: list,
	})
}

func (s *Server) toLSPDiagnostics(findings []diag.Finding) []lspDiagnostic {
	limit := s.currentMaxDiagnostics()
	if limit > 0 && len(findings) > limit {
		findings = findings[:limit]
	}
	out := make([]lspDiagnostic, 0, len(findings))
	for _, f := range findings {
		out = append(out, toLSPDiagnostic(f))
	}
	return out
}

func toLSPDiagnostic(f diag.Finding) lspDiagnostic {
	d := lspDiagnostic{
		Range:    f.Range,
		Severity: lspSeverity(f.Severity),
		Code:     f.Code,
		Source:   f.Source,
		Message:  f.Message,
		Data:     &diagnosticData{Conflict: f.Conflict.String()},
	}
	if f.Related != nil {
		d.RelatedInformation = []relatedInformation{{
			Location: location{URI: f.Related.Location.URI, Range: f.Related.Location.Range},
			Message:  f.Related.Message,
		}}
	}
	return d
}

func lspSeverity(sev diag.Severity) int {
	if sev == diag.SevError {
		return lspSeverityError
	}
	return lspSeverityInformation
}
