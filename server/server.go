package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mobile-next/qrscan/commands"
	"github.com/mobile-next/qrscan/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

const (
	errTitleParseError    = "Parse error"
	errTitleInvalidReq    = "Invalid Request"
	errTitleMethodNotFnd  = "Method not found"
	errTitleInvalidParams = "Invalid params"
	errTitleServer        = "Server error"

	errMsgParseError     = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC = "'jsonrpc' must be '2.0'"
	errMsgIDRequired     = "'id' field is required"
	errMsgMethodRequired = "'method' is required"
	errMsgTextOnly       = "only text messages accepted for requests"
)

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

type rpcError struct {
	code    int
	message string
	data    string
}

// errInvalidParams marks handler errors caused by malformed params.
var errInvalidParams = errors.New("invalid parameters")

// Server exposes the command service over JSON-RPC on /rpc and /ws and
// pushes workflow events to WebSocket clients.
type Server struct {
	service    *commands.Service
	hub        *Hub
	enableCORS bool

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// New creates a server. hub must be the notifier the service was built with
// so WebSocket clients receive its events.
func New(service *commands.Service, hub *Hub, enableCORS bool) *Server {
	if hub == nil {
		hub = NewHub(0, 0)
	}
	return &Server{
		service:    service,
		hub:        hub,
		enableCORS: enableCORS,
		shutdown:   make(chan struct{}),
	}
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler serving the banner, /rpc and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", sendBanner)
	mux.HandleFunc("/rpc", s.handleJSONRPC)
	mux.HandleFunc("/ws", s.handleWebSocket)

	if s.enableCORS {
		return corsMiddleware(mux)
	}
	return mux
}

// NormalizeAddr turns a bare port into a listen address.
func NormalizeAddr(addr string) (string, error) {
	// if host is missing, default to all interfaces on that port
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		addr = fmt.Sprintf(":%d", port)
	}
	return addr, nil
}

// ListenAndServe serves until ctx ends or a client calls server.shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	addr, err := NormalizeAddr(addr)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Info("Starting server on http://%s...", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		utils.Info("Shutting down server: %v", ctx.Err())
	case <-s.shutdown:
		utils.Info("Shutdown requested by client")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		utils.Error("Server did not drain within %s: %v", ShutdownTimeout, err)
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
	})
}

func validateJSONRPCRequest(req JSONRPCRequest) *rpcError {
	if req.JSONRPC != "2.0" {
		return &rpcError{code: ErrCodeInvalidRequest, message: errTitleInvalidReq, data: errMsgInvalidJSONRPC}
	}

	if req.ID == nil {
		return &rpcError{code: ErrCodeInvalidRequest, message: errTitleInvalidReq, data: errMsgIDRequired}
	}

	if req.Method == "" {
		return &rpcError{code: ErrCodeInvalidRequest, message: errTitleInvalidReq, data: errMsgMethodRequired}
	}

	return nil
}

// call runs a validated request and maps failures to JSON-RPC errors.
func (s *Server) call(ctx context.Context, req JSONRPCRequest) (interface{}, *rpcError) {
	handler, exists := s.GetMethodRegistry()[req.Method]
	if !exists {
		return nil, &rpcError{code: ErrCodeMethodNotFound, message: errTitleMethodNotFnd, data: fmt.Sprintf("Method '%s' not found", req.Method)}
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		utils.Warn("Error executing method %s: %v", req.Method, err)
		if errors.Is(err, errInvalidParams) {
			return nil, &rpcError{code: ErrCodeInvalidParams, message: errTitleInvalidParams, data: err.Error()}
		}
		return nil, &rpcError{code: ErrCodeServerError, message: errTitleServer, data: err.Error()}
	}

	return result, nil
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if rpcErr := validateJSONRPCRequest(req); rpcErr != nil {
		sendJSONRPCError(w, req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	utils.Info("Request ID: %v, Method: %s", req.ID, req.Method)
	utils.Verbose("Request ID: %v, Params: %s", req.ID, string(req.Params))

	result, rpcErr := s.call(r.Context(), req)
	if rpcErr != nil {
		sendJSONRPCError(w, req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	sendJSONRPCResponse(w, req.ID, result)
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}
