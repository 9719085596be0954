package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mobile-next/qrscan/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"12100", "http://localhost:12100/rpc"},
		{":12100", "http://localhost:12100/rpc"},
		{"localhost:12100", "http://localhost:12100/rpc"},
		{"0.0.0.0:13000", "http://0.0.0.0:13000/rpc"},
		{"http://127.0.0.1:5000/", "http://127.0.0.1:5000/rpc"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, rpcURL(tt.addr))
		})
	}
}

func TestKillServer_SendsShutdown(t *testing.T) {
	var got server.JSONRPCRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rpc", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(server.JSONRPCResponse{JSONRPC: "2.0", Result: map[string]string{"status": "ok"}, ID: got.ID})
	}))
	defer ts.Close()

	require.NoError(t, KillServer(ts.URL))
	assert.Equal(t, "server.shutdown", got.Method)
	assert.Equal(t, "2.0", got.JSONRPC)
}

func TestKillServer_RPCError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(server.JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   map[string]interface{}{"code": server.ErrCodeMethodNotFound, "message": "Method not found"},
			ID:      1,
		})
	}))
	defer ts.Close()

	assert.ErrorContains(t, KillServer(ts.URL), "server refused shutdown")
}

func TestKillServer_NotRunning(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	assert.ErrorContains(t, KillServer(addr), "server is not running")
}

func TestIsChild(t *testing.T) {
	t.Setenv(DaemonEnvVar, "")
	assert.False(t, IsChild())

	t.Setenv(DaemonEnvVar, "1")
	assert.True(t, IsChild())
}
