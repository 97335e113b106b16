package lsp

import (
	"encoding/json"

	"reqdef/internal/analysis"
	"reqdef/internal/config"
)

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Warn("invalid configuration payload", "err", err)
		return nil
	}
	if s.applySettings(params.Settings) {
		s.reanalyzeOpenDocuments()
	}
	return nil
}

// applySettings merges client settings over the current configuration and
// reports whether analysis inputs changed.
func (s *Server) applySettings(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logger.Warn("invalid settings", "err", err)
		return false
	}
	req := settings.Requirement
	s.mu.Lock()
	if req.Trace != nil {
		s.traceLSP = *req.Trace
	}
	cfg := s.cfg
	s.mu.Unlock()

	changed := false
	if req.RegexID != nil && *req.RegexID != cfg.Requirement.RegexID {
		cfg = cfg.WithRegexID(*req.RegexID)
		changed = true
	}
	if req.ExtensionField != nil && *req.ExtensionField != cfg.Requirement.ExtensionField {
		cfg.Requirement.ExtensionField = *req.ExtensionField
		changed = true
	}
	if changed {
		s.setConfig(cfg, "")
	}
	return changed
}

// setConfig installs cfg as the configuration of every following pass. An
// identifier pattern that does not compile is logged and replaced by the
// default.
func (s *Server) setConfig(cfg config.Config, path string) {
	opts, err := analysis.OptionsFromConfig(cfg)
	if err != nil {
		s.logger.Warn("invalid requirement.regexid, using default pattern", "regexid", cfg.Requirement.RegexID, "err", err)
	}
	s.mu.Lock()
	s.cfg = cfg
	s.opts = opts
	if path != "" {
		s.configPath = path
	}
	s.mu.Unlock()
}
