package lsp

import (
	"encoding/json"

	"reqdef/internal/diag"
	"reqdef/internal/document"
	"reqdef/internal/outline"
)

// clientHost forwards projector events to the client.
type clientHost struct {
	s *Server
}

func (h clientHost) SetContext(key string, value bool) {
	if err := h.s.sendNotification(methodSetContext, setContextParams{Key: key, Value: value}); err != nil {
		h.s.logger.Error("failed to send context", "key", key, "err", err)
	}
}

func (h clientHost) TreeChanged() {
	uri := ""
	if ed, ok := h.s.projector.Current(); ok {
		uri = ed.URI
	}
	if err := h.s.sendNotification(methodOutlineChanged, outlineChangedParams{URI: uri}); err != nil {
		h.s.logger.Error("failed to send outline change", "uri", uri, "err", err)
	}
}

func (h clientHost) Reveal(uri string, r diag.Range) {
	params := showDocumentParams{URI: uri, TakeFocus: true, Selection: &r}
	if err := h.s.sendRequest("window/showDocument", params); err != nil {
		h.s.logger.Error("failed to reveal range", "uri", uri, "range", r.String(), "err", err)
	}
}

func (s *Server) handleDidChangeActiveEditor(msg *rpcMessage) error {
	var params didChangeActiveEditorParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.logger.Warn("invalid active editor payload", "err", err)
			return nil
		}
	}
	if params.TextDocument == nil {
		s.projector.OnActiveEditorChanged(nil)
		return nil
	}
	uri := document.CanonicalURI(params.TextDocument.URI)
	if _, open := s.openDocument(uri); open {
		s.analyzeAndPublish(uri)
	}
	s.projector.OnActiveEditorChanged(&outline.Editor{URI: uri, LanguageID: params.TextDocument.LanguageID})
	return nil
}

func (s *Server) handleOutline(msg *rpcMessage) error {
	result := outlineResult{Items: s.projector.Items()}
	if ed, ok := s.projector.Current(); ok {
		result.URI = ed.URI
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	switch params.Command {
	case outline.CommandRefresh:
		s.projector.Refresh()
	case outline.CommandOpenSelection:
		if len(params.Arguments) == 0 {
			return s.sendError(msg.ID, codeInvalidParams, "missing range argument")
		}
		var r diag.Range
		if err := json.Unmarshal(params.Arguments[0], &r); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid range argument")
		}
		s.projector.Select(r)
	default:
		return s.sendError(msg.ID, codeInvalidParams, "unknown command "+params.Command)
	}
	return s.sendResponse(msg.ID, nil)
}
