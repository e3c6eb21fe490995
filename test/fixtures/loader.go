// Package fixtures serves canned JSON-RPC responses to tests.
package fixtures

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// LoadRPCResponse loads a fixture file mapping JSON-RPC methods to results.
// An eth_call entry may itself be a map keyed by the 4-byte selector.
func LoadRPCResponse(t *testing.T, filename string) map[string]interface{} {
	t.Helper()
	path := filepath.Join(fixturesDir(), "rpc", filename)
	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to load fixture RPC response: %s", filename)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

// NewRPCServer starts an HTTP server that answers JSON-RPC requests from
// responses. Unknown methods and selectors get a JSON-RPC error.
func NewRPCServer(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		reply := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if result, ok := lookup(responses, req); ok {
			reply["result"] = result
		} else {
			reply["error"] = map[string]interface{}{"code": -32601, "message": "method not found: " + req.Method}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func lookup(responses map[string]interface{}, req rpcRequest) (interface{}, bool) {
	result, ok := responses[req.Method]
	if !ok {
		return nil, false
	}
	bySelector, ok := result.(map[string]interface{})
	if req.Method != "eth_call" || !ok {
		return result, true
	}
	if len(req.Params) == 0 {
		return nil, false
	}
	var msg struct {
		Data  string `json:"data"`
		Input string `json:"input"`
	}
	if err := json.Unmarshal(req.Params[0], &msg); err != nil {
		return nil, false
	}
	data := msg.Input
	if data == "" {
		data = msg.Data
	}
	if len(data) < 10 {
		return nil, false
	}
	result, ok = bySelector[strings.ToLower(data[:10])]
	return result, ok
}
