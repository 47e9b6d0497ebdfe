// Copyright 2026 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package androidtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// CodeObjectNotFound is the JSON-RPC error code of UiObjectNotFoundException.
const CodeObjectNotFound = -32002

// WindowHierarchy is returned by the default dumpWindowHierarchy handler.
const WindowHierarchy = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?><hierarchy rotation="0"/>`

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Call is a JSON-RPC request received by UIServer.
type Call struct {
	Method string
	Params []json.RawMessage
}

// Handler serves one JSON-RPC method.
type Handler func(params []json.RawMessage) (interface{}, *RPCError)

// Returns is a Handler always returning v.
func Returns(v interface{}) Handler {
	return func([]json.RawMessage) (interface{}, *RPCError) { return v, nil }
}

// UIServer emulates the JSON-RPC endpoint of android-uiautomator-server.
// By default every view exists and every action succeeds.
type UIServer struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	handlers map[string]Handler
}

// NewUIServer starts a UIServer that is closed when the test finishes.
func NewUIServer(t *testing.T) *UIServer {
	t.Helper()
	s := &UIServer{handlers: map[string]Handler{
		"ping":                     Returns("pong"),
		"pressKey":                 Returns(true),
		"waitForExists":            Returns(true),
		"clickAndWaitForNewWindow": Returns(true),
		"dumpWindowHierarchy":      Returns(WindowHierarchy),
	}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle replaces the handler of method.
func (s *UIServer) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Addr returns the "host:port" the server listens on.
func (s *UIServer) Addr() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// Calls returns the requests received so far.
func (s *UIServer) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Methods returns the method names of the requests received so far.
func (s *UIServer) Methods() []string {
	var ms []string
	for _, c := range s.Calls() {
		ms = append(ms, c.Method)
	}
	return ms
}

// LastCall returns the latest request for method, or a zero Call.
func (s *UIServer) LastCall(method string) Call {
	calls := s.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method {
			return calls[i]
		}
	}
	return Call{}
}

func (s *UIServer) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/jsonrpc/0" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Method string            `json:"method"`
		ID     int64             `json:"id"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: req.Method, Params: req.Params})
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	res := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		res["error"] = &RPCError{Code: -32601, Message: "Method not found"}
	} else if result, rpcErr := h(req.Params); rpcErr != nil {
		res["error"] = rpcErr
	} else {
		res["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
