package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mobile-next/qrscan/utils"
)

type wsConnection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

// handleWebSocket serves JSON-RPC over WebSocket and subscribes the
// connection to the server's event hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := newUpgrader(s.enableCORS).Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	wsConn := &wsConnection{conn: conn}
	unsubscribe := s.hub.Subscribe(wsConn)
	defer unsubscribe()

	// requests outlive the upgrade request's context, so they get their own
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// connection closed or error
			utils.Verbose("WebSocket connection closed: %v", err)
			break
		}

		if messageType != websocket.TextMessage {
			_ = wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgTextOnly)
			continue
		}

		s.handleWSMessage(ctx, wsConn, message)
	}
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

func (s *Server) handleWSMessage(ctx context.Context, wsConn *wsConnection, message []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		_ = wsConn.sendError(nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if rpcErr := validateJSONRPCRequest(req); rpcErr != nil {
		_ = wsConn.sendError(req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	utils.Info("WebSocket Request ID: %v, Method: %s", req.ID, req.Method)
	utils.Verbose("WebSocket Request ID: %v, Params: %s", req.ID, string(req.Params))

	result, rpcErr := s.call(ctx, req)
	if rpcErr != nil {
		_ = wsConn.sendError(req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	_ = wsConn.sendResponse(req.ID, result)
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendError(id interface{}, code int, message string, data interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()
	_ = wsc.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return wsc.conn.WriteJSON(v)
}

func (wsc *wsConnection) close() error {
	return wsc.conn.Close()
}
