package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"reqdef/internal/analysis"
	"reqdef/internal/config"
	"reqdef/internal/diag"
	"reqdef/internal/document"
	"reqdef/internal/outline"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// Custom protocol extensions used by the reqdef editor client.
const (
	methodDidChangeActiveEditor = "reqdef/didChangeActiveEditor"
	methodOutline               = "reqdef/outline"
	methodSetContext            = "reqdef/setContext"
	methodOutlineChanged        = "reqdef/outlineChanged"
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Config is the starting configuration. A reqdef.toml found under the
	// workspace root at initialize replaces it.
	Config config.Config
	// Logger receives server logs. Nil discards them.
	Logger *slog.Logger
	// Trace logs every document event at debug level.
	Trace bool
	// MaxDiagnostics caps a single publish. Zero means no cap.
	MaxDiagnostics int
	// Version is reported in serverInfo.
	Version string
}

// Server handles stdio JSON-RPC for the reqdef language server.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	mu     sync.Mutex

	docs      map[string]*document.Document
	findings  *diag.Collection
	projector *outline.Projector

	cfg               config.Config
	opts              analysis.Options
	configPath        string
	workspaceRoot     string
	shutdownRequested bool
	traceLSP          bool
	maxDiagnostics    int
	version           string
	nextRequestID     atomic.Int64
	logger            *slog.Logger
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		in:             bufio.NewReader(in),
		out:            bufio.NewWriter(out),
		docs:           make(map[string]*document.Document),
		findings:       diag.NewCollection("reqdef"),
		traceLSP:       opts.Trace,
		maxDiagnostics: max(opts.MaxDiagnostics, 0),
		version:        opts.Version,
		logger:         logger.With("component", "lsp"),
	}
	s.projector = outline.NewProjector(s.findings, clientHost{s: s})
	s.setConfig(opts.Config, "")
	return s
}

// Run serves LSP requests until exit or EOF.
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Warn("failed to parse message", "err", err)
			continue
		}
		// responses to server-initiated requests carry no method
		if msg.Method == "" {
			if msg.Error != nil {
				s.logger.Warn("client returned error", "code", msg.Error.Code, "message", msg.Error.Message)
			}
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdownRequested() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(msg)
	case methodDidChangeActiveEditor:
		return s.handleDidChangeActiveEditor(msg)
	case methodOutline:
		return s.handleOutline(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := workspaceRootFromParams(params)
	s.mu.Lock()
	s.workspaceRoot = root
	if params.Trace == "verbose" {
		s.traceLSP = true
	}
	s.mu.Unlock()
	s.loadWorkspaceConfig(root)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			CodeActionProvider: &codeActionOptions{
				CodeActionKinds: []string{codeActionKindQuickFix},
			},
			DocumentSymbolProvider: true,
			ExecuteCommandProvider: &executeCommandOptions{
				Commands: []string{outline.CommandRefresh, outline.CommandOpenSelection},
			},
		},
		ServerInfo: &serverInfo{Name: "reqdef", Version: s.version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendNotification(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

// sendRequest issues a server-to-client request. The response is read by
// Run and dropped.
func (s *Server) sendRequest(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      s.nextRequestID.Add(1),
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
