package lsp

import (
	"path/filepath"

	"reqdef/internal/document"
	"reqdef/internal/project"
)

func workspaceRootFromParams(params initializeParams) string {
	root := ""
	if params.RootURI != "" {
		root = document.URIToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = document.URIToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return root
}

// loadWorkspaceConfig applies the reqdef.toml governing root, if any. A
// broken file is logged and the current configuration kept.
func (s *Server) loadWorkspaceConfig(root string) {
	if root == "" {
		return
	}
	cfg, path, err := project.LoadConfig(root)
	if err != nil {
		s.logger.Warn("failed to load workspace config", "root", root, "err", err)
		return
	}
	if path == "" {
		return
	}
	s.logger.Info("loaded workspace config", "path", path)
	s.setConfig(cfg, path)
}
