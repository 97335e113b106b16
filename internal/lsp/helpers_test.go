package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"reqdef/internal/config"
)

func newTestServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	server := NewServer(bytes.NewReader(nil), &out, ServerOptions{Config: config.Default()})
	return server, &out
}

func call(t *testing.T, s *Server, method string, params any) {
	t.Helper()
	call := &rpcMessage{JSONRPC: "2.0", Method: method}
	if params != nil {
		payload, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal %s: %v", method, err)
		}
		call.Params = payload
	}
	if err := s.handleMessage(call); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func request(t *testing.T, s *Server, method string, params any) {
	t.Helper()
	payload, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal %s: %v", method, err)
	}
	msg := &rpcMessage{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: method, Params: payload}
	if err := s.handleMessage(msg); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

// drain decodes every message written so far and resets out.
func drain(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	out.Reset()
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		if err != nil {
			t.Fatalf("read message: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

func filterMethod(msgs []rpcMessage, method string) []rpcMessage {
	var out []rpcMessage
	for _, m := range msgs {
		if m.Method == method {
			out = append(out, m)
		}
	}
	return out
}

func lastPublish(t *testing.T, msgs []rpcMessage) publishDiagnosticsParams {
	t.Helper()
	pubs := filterMethod(msgs, "textDocument/publishDiagnostics")
	if len(pubs) == 0 {
		t.Fatal("expected publishDiagnostics")
	}
	var params publishDiagnosticsParams
	if err := json.Unmarshal(pubs[len(pubs)-1].Params, &params); err != nil {
		t.Fatalf("decode publish: %v", err)
	}
	return params
}

func responseResult(t *testing.T, msgs []rpcMessage, v any) {
	t.Helper()
	for _, m := range msgs {
		if m.Method == "" && len(m.ID) > 0 {
			if m.Error != nil {
				t.Fatalf("unexpected error response: %+v", m.Error)
			}
			if err := json.Unmarshal(m.Result, v); err != nil {
				t.Fatalf("decode result: %v", err)
			}
			return
		}
	}
	t.Fatal("expected response")
}
