package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mobile-next/qrscan/server"
	"github.com/sevlyar/go-daemon"
)

const (
	// DaemonEnvVar is the environment variable that marks a daemon child process
	DaemonEnvVar = "QRSCAN_DAEMON_CHILD"

	// shutdownRequestID is the JSON-RPC request ID for shutdown commands
	shutdownRequestID = 1

	killTimeout = 10 * time.Second
)

// Daemonize detaches the process and returns the child process handle
// If the returned process is nil, this is the child process
// If the returned process is non-nil, this is the parent process
func Daemonize() (*os.Process, error) {
	// the server logs to stderr itself, no pid or log file
	ctx := &daemon.Context{
		WorkDir: "/",
		Umask:   027,
		Args:    os.Args,
		Env:     append(os.Environ(), fmt.Sprintf("%s=1", DaemonEnvVar)),
	}

	child, err := ctx.Reborn()
	if err != nil {
		return nil, fmt.Errorf("failed to daemonize: %w", err)
	}

	return child, nil
}

// IsChild returns true if this is the daemon child process
func IsChild() bool {
	return os.Getenv(DaemonEnvVar) == "1"
}

// rpcURL turns a listen address into the URL of its /rpc endpoint.
func rpcURL(addr string) string {
	// a bare port number
	if !strings.Contains(addr, ":") {
		if _, err := strconv.Atoi(addr); err == nil {
			addr = ":" + addr
		}
	}

	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}

	return strings.TrimSuffix(addr, "/") + "/rpc"
}

// KillServer connects to the server and sends a shutdown command via JSON-RPC
func KillServer(addr string) error {
	url := rpcURL(addr)

	reqBody := server.JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "server.shutdown",
		ID:      shutdownRequestID,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	client := &http.Client{Timeout: killTimeout}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			return fmt.Errorf("server is not running on %s", addr)
		}
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned error: %s", resp.Status)
	}

	var rpcResp server.JSONRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to read shutdown response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("server refused shutdown: %v", rpcResp.Error)
	}

	return nil
}
