package support

import (
	"net/http"
	"net/http/httptest"

	"github.com/tallyocr/tally/internal/bill"
	"github.com/tallyocr/tally/internal/server"
)

// TestContext holds the state for one scenario.
type TestContext struct {
	// Pipeline state
	Extractor *bill.Extractor
	Tokens    []bill.Token
	Result    bill.ExtractionResult

	// Server state
	HTTPServer     *httptest.Server
	LastStatusCode int
	LastBody       []byte
	LastResponse   bill.Response
}

// NewTestContext creates a fresh context with default pipeline settings.
func NewTestContext() *TestContext {
	return &TestContext{
		Extractor: bill.NewExtractor(bill.DefaultConfig()),
	}
}

// StartServer spins up an in-process extraction server.
func (testCtx *TestContext) StartServer() {
	if testCtx.HTTPServer != nil {
		return
	}

	srv := server.NewServer(server.Config{
		CORSOrigin: "*",
		TimeoutSec: 30,
		Extraction: bill.DefaultConfig(),
	})
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	testCtx.HTTPServer = httptest.NewServer(mux)
}

// Cleanup releases scenario resources.
func (testCtx *TestContext) Cleanup() {
	if testCtx.HTTPServer != nil {
		testCtx.HTTPServer.Close()
		testCtx.HTTPServer = nil
	}
}
