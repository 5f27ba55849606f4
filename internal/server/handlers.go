package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tallyocr/tally/internal/bill"
	"github.com/tallyocr/tally/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// extractBillHandler downloads a document, runs it through the OCR
// provider and returns the structured line items. is_success is false
// only when a collaborator (download, OCR) fails; an empty page is a
// successful result with zero items.
func (s *Server) extractBillHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "bill", fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Document == "" {
		s.writeFailure(w, http.StatusBadRequest, "bill", "document URL is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	data, filename, err := s.fetcher.Fetch(ctx, req.Document)
	if err != nil {
		slog.Error("Document download failed", "url", req.Document, "error", err)
		s.writeFailure(w, http.StatusBadRequest, "bill", fmt.Sprintf("download failed: %v", err))
		return
	}

	tokens, err := s.ocr.ParseImage(ctx, data, filename)
	if err != nil {
		slog.Error("OCR call failed", "filename", filename, "error", err)
		s.writeFailure(w, http.StatusBadGateway, "bill", fmt.Sprintf("OCR provider error: %v", err))
		return
	}

	s.writeExtraction(w, "bill", tokens)
}

// extractTokensHandler runs the extraction pipeline over a token list
// supplied by the caller, skipping the download and OCR collaborators.
func (s *Server) extractTokensHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, http.StatusBadRequest, "tokens", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	s.writeExtraction(w, "tokens", req.Tokens)
}

// writeExtraction runs the core pipeline and writes the envelope.
func (s *Server) writeExtraction(w http.ResponseWriter, source string, tokens []bill.Token) {
	start := time.Now()
	result := s.extractor.Extract(tokens)

	extractRequestsTotal.WithLabelValues(source, "success").Inc()
	extractDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	billItemsExtracted.WithLabelValues(source).Observe(float64(result.TotalItemCount))

	resp := bill.NewResponse(result)
	if s.includeTokens {
		resp.Data.OCRTokens = tokens
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode extraction response", "error", err)
	}
}

// writeFailure writes the failure envelope for collaborator errors.
func (s *Server) writeFailure(w http.ResponseWriter, statusCode int, source, message string) {
	extractRequestsTotal.WithLabelValues(source, "error").Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := ErrorResponse{
		Response: bill.FailureResponse(),
		Error:    message,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
