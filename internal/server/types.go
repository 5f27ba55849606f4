package server

import (
	"context"
	"net/http"
	"time"

	"github.com/tallyocr/tally/internal/bill"
	"github.com/tallyocr/tally/internal/config"
	"github.com/tallyocr/tally/internal/fetch"
	"github.com/tallyocr/tally/internal/ocrspace"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ocrClient is the slice of the OCR provider the server needs.
type ocrClient interface {
	ParseImage(ctx context.Context, data []byte, filename string) ([]bill.Token, error)
}

// downloader is the slice of the document fetcher the server needs.
type downloader interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	extractor     *bill.Extractor
	ocr           ocrClient
	fetcher       downloader
	corsOrigin    string
	timeoutSec    int
	includeTokens bool
	rateLimiter   *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host          string
	Port          int
	CORSOrigin    string
	TimeoutSec    int
	IncludeTokens bool
	Extraction    bill.Config
	OCR           ocrspace.Config
	FetchTimeout  time.Duration
	MaxDownloadMB int64
	RateLimit     config.RateLimitConfig
}

// ExtractRequest is the body of POST /extract-bill-data.
type ExtractRequest struct {
	Document string `json:"document"`
}

// TokensRequest is the body of POST /extract/tokens.
type TokensRequest struct {
	Tokens []bill.Token `json:"tokens"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse augments the envelope with an error message for
// collaborator failures.
type ErrorResponse struct {
	bill.Response
	Error string `json:"error"`
}

// NewServer creates a new extraction server instance.
func NewServer(cfg Config) *Server {
	s := &Server{
		extractor:     bill.NewExtractor(cfg.Extraction),
		ocr:           ocrspace.New(cfg.OCR),
		fetcher:       fetch.NewDownloader(cfg.FetchTimeout, cfg.MaxDownloadMB),
		corsOrigin:    cfg.CORSOrigin,
		timeoutSec:    cfg.TimeoutSec,
		includeTokens: cfg.IncludeTokens,
	}
	if cfg.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMinute,
			cfg.RateLimit.RequestsPerHour,
			cfg.RateLimit.RequestsPerDay,
		)
	}
	return s
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/extract-bill-data", s.corsMiddleware(s.rateLimitMiddleware(s.extractBillHandler)))
	mux.HandleFunc("/extract/tokens", s.corsMiddleware(s.rateLimitMiddleware(s.extractTokensHandler)))
	mux.HandleFunc("/extract/ws", s.extractWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
