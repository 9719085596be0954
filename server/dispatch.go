package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mobile-next/qrscan/commands"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// GetMethodRegistry returns a map of method names to handler functions
// This is used by both the HTTP and WebSocket transports
func (s *Server) GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"displays":           s.handleDisplays,
		"capture_all":        s.handleCaptureAll,
		"capture_region":     s.handleCaptureRegion,
		"selection_begin":    s.handleSelectionBegin,
		"selection_preview":  s.handleSelectionPreview,
		"selection_complete": s.handleSelectionComplete,
		"selection_cancel":   s.handleSelectionCancel,
		"decode":             s.handleDecode,
		"scan_full":          s.handleScanFull,
		"scan_region":        s.handleScanRegion,
		"server.shutdown":    s.handleShutdown,
	}
}

// Execute dispatches a method call using the registry
// This is the main entry point for embedded clients
func (s *Server) Execute(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	handler, exists := s.GetMethodRegistry()[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(ctx, params)
}

// unmarshalParams decodes optional params into v. Missing params leave v untouched.
func unmarshalParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

func unwrap(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

func (s *Server) handleDisplays(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(s.service.DisplaysCommand())
}

func (s *Server) handleCaptureAll(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.CaptureRequest
	if err := unmarshalParams(params, &req); err != nil {
		return nil, err
	}

	// frames are always returned inline over RPC
	req.OutputPath = ""
	return unwrap(s.service.CaptureAllCommand(ctx, req))
}

func (s *Server) handleCaptureRegion(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.CaptureRegionRequest
	if err := unmarshalParams(params, &req); err != nil {
		return nil, err
	}

	req.OutputPath = ""
	return unwrap(s.service.CaptureRegionCommand(ctx, req))
}

func (s *Server) handleSelectionBegin(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.BeginSelectionRequest
	if err := unmarshalParams(params, &req); err != nil {
		return nil, err
	}
	return unwrap(s.service.BeginSelectionCommand(ctx, req))
}

func (s *Server) handleSelectionPreview(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(s.service.SelectionPreviewCommand())
}

func (s *Server) handleSelectionComplete(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.CompleteSelectionRequest
	if err := unmarshalParams(params, &req); err != nil {
		return nil, err
	}
	return unwrap(s.service.CompleteSelectionCommand(ctx, req))
}

func (s *Server) handleSelectionCancel(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(s.service.CancelSelectionCommand())
}

func (s *Server) handleDecode(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.DecodeRequest
	if err := unmarshalParams(params, &req); err != nil {
		return nil, err
	}
	if req.Image == "" {
		return nil, fmt.Errorf("%w: 'image' is required", errInvalidParams)
	}
	return unwrap(s.service.DecodeCommand(ctx, req))
}

func (s *Server) handleScanFull(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return unwrap(s.service.ScanFullCommand(ctx))
}

func (s *Server) handleScanRegion(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.ScanRegionRequest
	if err := unmarshalParams(params, &req); err != nil {
		return nil, err
	}
	return unwrap(s.service.ScanRegionCommand(ctx, req))
}

func (s *Server) handleShutdown(ctx context.Context, params json.RawMessage) (interface{}, error) {
	// the listener drains in-flight requests, so this response is still written
	s.requestShutdown()
	return okResponse, nil
}
