package lsp

import (
	"encoding/json"

	"reqdef/internal/document"
)

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := document.CanonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	item := params.TextDocument
	s.mu.Lock()
	s.docs[uri] = document.New(uri, item.LanguageID, item.Version, item.Text)
	trace := s.traceLSP
	s.mu.Unlock()
	if trace {
		s.logger.Debug("didOpen", "uri", uri, "version", item.Version, "languageId", item.LanguageID)
	}
	s.analyzeAndPublish(uri)
	s.projector.OnDocumentTextChanged(uri)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := document.CanonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	changes := make([]document.Change, 0, len(params.ContentChanges))
	for _, c := range params.ContentChanges {
		changes = append(changes, document.Change{Range: c.Range, Text: c.Text})
	}
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok {
		doc.Apply(changes)
		doc.SetVersion(params.TextDocument.Version)
	}
	trace := s.traceLSP
	s.mu.Unlock()
	if !ok {
		s.logger.Warn("didChange for unopened document", "uri", uri)
		return nil
	}
	if trace {
		s.logger.Debug("didChange", "uri", uri, "version", params.TextDocument.Version, "changes", len(changes))
	}
	s.analyzeAndPublish(uri)
	s.projector.OnDocumentTextChanged(uri)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := document.CanonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok && params.Text != nil {
		doc.Apply([]document.Change{{Text: *params.Text}})
	}
	trace := s.traceLSP
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if trace {
		s.logger.Debug("didSave", "uri", uri, "withText", params.Text != nil)
	}
	s.analyzeAndPublish(uri)
	s.projector.OnDocumentTextChanged(uri)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := document.CanonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.docs, uri)
	trace := s.traceLSP
	s.mu.Unlock()
	if trace {
		s.logger.Debug("didClose", "uri", uri)
	}
	hadFindings := s.findings.Has(uri)
	s.findings.Delete(uri)
	if hadFindings {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logger.Error("failed to clear diagnostics", "uri", uri, "err", err)
		}
	}
	s.projector.OnDocumentTextChanged(uri)
	return nil
}
