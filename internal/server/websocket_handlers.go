package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tallyocr/tally/internal/bill"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketExtractRequest is a single extraction request sent by the
// client. Either a document URL or a token list, mirroring the two
// HTTP endpoints.
type WebSocketExtractRequest struct {
	Type     string       `json:"type"` // "document" or "tokens"
	Document string       `json:"document,omitempty"`
	Tokens   []bill.Token `json:"tokens,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketExtractResponse is the server's reply for one request.
type WebSocketExtractResponse struct {
	Type      string         `json:"type"`
	Status    string         `json:"status"` // "processing", "completed", "error"
	Result    *bill.Response `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorType string         `json:"error_type,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// extractWebSocketHandler handles WebSocket connections so a client can
// stream a batch of pages through the extraction pipeline over one
// connection.
func (s *Server) extractWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	// Set read deadline to prevent hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Send ping messages to keep connection alive
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
		}
	}
}

// handleWebSocketMessage processes a single extraction request.
func (s *Server) handleWebSocketMessage(conn *websocket.Conn, data []byte) {
	var req WebSocketExtractRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err), "")
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	s.sendWebSocketResponse(conn, WebSocketExtractResponse{
		Type:      "extract_response",
		Status:    "processing",
		RequestID: requestID,
	})

	switch req.Type {
	case "document":
		s.processWebSocketDocument(conn, req, requestID)
	case "tokens":
		s.processWebSocketTokens(conn, req.Tokens, requestID)
	default:
		s.sendWebSocketError(conn, "invalid_request", "Unsupported request type: "+req.Type, requestID)
	}
}

// processWebSocketDocument downloads and OCRs a document, then extracts.
func (s *Server) processWebSocketDocument(conn *websocket.Conn, req WebSocketExtractRequest, requestID string) {
	if req.Document == "" {
		s.sendWebSocketError(conn, "invalid_request", "No document URL provided", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	data, filename, err := s.fetcher.Fetch(ctx, req.Document)
	if err != nil {
		extractRequestsTotal.WithLabelValues("ws", "error").Inc()
		s.sendWebSocketError(conn, "download_error", fmt.Sprintf("download failed: %v", err), requestID)
		return
	}

	tokens, err := s.ocr.ParseImage(ctx, data, filename)
	if err != nil {
		extractRequestsTotal.WithLabelValues("ws", "error").Inc()
		s.sendWebSocketError(conn, "ocr_error", fmt.Sprintf("OCR provider error: %v", err), requestID)
		return
	}

	s.processWebSocketTokens(conn, tokens, requestID)
}

// processWebSocketTokens runs the pipeline over tokens and replies.
func (s *Server) processWebSocketTokens(conn *websocket.Conn, tokens []bill.Token, requestID string) {
	start := time.Now()
	result := s.extractor.Extract(tokens)

	extractRequestsTotal.WithLabelValues("ws", "success").Inc()
	extractDuration.WithLabelValues("ws").Observe(time.Since(start).Seconds())
	billItemsExtracted.WithLabelValues("ws").Observe(float64(result.TotalItemCount))

	resp := bill.NewResponse(result)
	if s.includeTokens {
		resp.Data.OCRTokens = tokens
	}

	s.sendWebSocketResponse(conn, WebSocketExtractResponse{
		Type:      "extract_response",
		Status:    "completed",
		Result:    &resp,
		RequestID: requestID,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketExtractResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message, requestID string) {
	s.sendWebSocketResponse(conn, WebSocketExtractResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
		RequestID: requestID,
	})
}
