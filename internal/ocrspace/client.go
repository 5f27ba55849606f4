// Package ocrspace is a minimal client for the OCR.Space parse API.
// It uploads a document image and flattens the word overlay into the
// token list the extraction pipeline consumes.
package ocrspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tallyocr/tally/internal/bill"
)

// DefaultEndpoint is the public OCR.Space parse endpoint.
const DefaultEndpoint = "https://api.ocr.space/parse/image"

// Config holds client settings.
type Config struct {
	Endpoint string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// Client calls the OCR.Space API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	language   string
}

// New creates a client, applying defaults for unset fields.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
	}
}

// Response structures for the subset of the OCR.Space payload we read.
type parseResponse struct {
	ParsedResults         []parsedResult `json:"ParsedResults"`
	OCRExitCode           int            `json:"OCRExitCode"`
	IsErroredOnProcessing bool           `json:"IsErroredOnProcessing"`
	ErrorMessage          errorMessage   `json:"ErrorMessage"`
}

type parsedResult struct {
	TextOverlay overlay `json:"TextOverlay"`
	ParsedText  string  `json:"ParsedText"`
}

type overlay struct {
	Lines []overlayLine `json:"Lines"`
}

type overlayLine struct {
	Words []overlayWord `json:"Words"`
}

type overlayWord struct {
	WordText string  `json:"WordText"`
	Left     float64 `json:"Left"`
	Top      float64 `json:"Top"`
	Width    float64 `json:"Width"`
	Height   float64 `json:"Height"`
}

// errorMessage absorbs the API's habit of returning either a string or
// a list of strings.
type errorMessage []string

func (m *errorMessage) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*m = errorMessage{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*m = many
	return nil
}

// ParseImage uploads the document bytes and returns the recognized word
// tokens for the first parsed page. The overlay is requested so word
// bounding boxes are available.
func (c *Client) ParseImage(ctx context.Context, data []byte, filename string) ([]bill.Token, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	fields := map[string]string{
		"apikey":            c.apiKey,
		"language":          c.language,
		"isOverlayRequired": "True",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("building upload form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OCR provider: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCR provider returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading OCR response: %w", err)
	}

	var parsed parseResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding OCR response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return nil, fmt.Errorf("OCR processing failed: %s", strings.Join(parsed.ErrorMessage, "; "))
	}
	if len(parsed.ParsedResults) == 0 {
		return nil, fmt.Errorf("OCR provider returned no parsed results (exit code %d)", parsed.OCRExitCode)
	}

	return flattenOverlay(parsed.ParsedResults[0].TextOverlay), nil
}

// flattenOverlay converts the overlay's line/word tree into the flat
// token list of the pipeline's input contract.
func flattenOverlay(ov overlay) []bill.Token {
	var tokens []bill.Token
	for _, line := range ov.Lines {
		for _, w := range line.Words {
			tokens = append(tokens, bill.Token{
				Text:   w.WordText,
				X:      w.Left,
				Y:      w.Top,
				Width:  w.Width,
				Height: w.Height,
			})
		}
	}
	return tokens
}
