package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cucumber/godog"

	"github.com/tallyocr/tally/internal/bill"
)

// RegisterServerSteps wires the HTTP server step definitions.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the extraction server is running$`, testCtx.theExtractionServerIsRunning)
	sc.Step(`^I POST the tokens to "([^"]*)"$`, testCtx.iPOSTTheTokensTo)
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^the response status is (\d+)$`, testCtx.theResponseStatusIs)
	sc.Step(`^the response envelope is successful$`, testCtx.theResponseEnvelopeIsSuccessful)
	sc.Step(`^the response envelope reports (\d+) total items?$`, testCtx.theResponseEnvelopeReportsTotalItems)
	sc.Step(`^the response body contains "([^"]*)"$`, testCtx.theResponseBodyContains)
}

func (testCtx *TestContext) theExtractionServerIsRunning() error {
	testCtx.StartServer()
	return nil
}

func (testCtx *TestContext) iPOSTTheTokensTo(path string) error {
	if testCtx.HTTPServer == nil {
		return fmt.Errorf("server is not running")
	}

	payload, err := json.Marshal(map[string]any{"tokens": testCtx.Tokens})
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	resp, err := http.Post(testCtx.HTTPServer.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("POST %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return testCtx.recordResponse(resp)
}

func (testCtx *TestContext) iGET(path string) error {
	if testCtx.HTTPServer == nil {
		return fmt.Errorf("server is not running")
	}

	resp, err := http.Get(testCtx.HTTPServer.URL + path)
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return testCtx.recordResponse(resp)
}

func (testCtx *TestContext) recordResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	testCtx.LastStatusCode = resp.StatusCode
	testCtx.LastBody = body
	testCtx.LastResponse = bill.Response{}
	_ = json.Unmarshal(body, &testCtx.LastResponse)
	return nil
}

func (testCtx *TestContext) theResponseStatusIs(status int) error {
	if testCtx.LastStatusCode != status {
		return fmt.Errorf("expected status %d, got %d (body: %s)", status, testCtx.LastStatusCode, testCtx.LastBody)
	}
	return nil
}

func (testCtx *TestContext) theResponseEnvelopeIsSuccessful() error {
	if !testCtx.LastResponse.IsSuccess {
		return fmt.Errorf("expected is_success true, got false (body: %s)", testCtx.LastBody)
	}
	return nil
}

func (testCtx *TestContext) theResponseEnvelopeReportsTotalItems(count int) error {
	if testCtx.LastResponse.Data.TotalItemCount != count {
		return fmt.Errorf("expected %d total items, got %d", count, testCtx.LastResponse.Data.TotalItemCount)
	}
	return nil
}

func (testCtx *TestContext) theResponseBodyContains(substr string) error {
	if !bytes.Contains(testCtx.LastBody, []byte(substr)) {
		return fmt.Errorf("response body does not contain %q: %s", substr, testCtx.LastBody)
	}
	return nil
}
