package bill

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Default page identifiers for single-page extraction.
const (
	DefaultPageNo   = "1"
	DefaultPageType = "Bill Detail"
)

// BillItem is one structured bill row.
type BillItem struct {
	ItemName     string  `json:"item_name"`
	ItemAmount   float64 `json:"item_amount"`
	ItemRate     float64 `json:"item_rate"`
	ItemQuantity float64 `json:"item_quantity"`

	lowConfidence bool
}

// LowConfidence reports whether the row failed the quantity*rate==amount
// consistency check. Not serialized; reserved for future schema use.
func (b BillItem) LowConfidence() bool {
	return b.lowConfidence
}

// ExtractionResult is the structured output for one page.
// TotalItemCount always equals len(BillItems).
type ExtractionResult struct {
	PageNo         string     `json:"page_no"`
	PageType       string     `json:"page_type"`
	BillItems      []BillItem `json:"bill_items"`
	TotalItemCount int        `json:"total_item_count"`
}

// TokenUsage mirrors the schema of the larger API contract this service
// plugs into. No language model runs here, so all fields stay zero.
type TokenUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// PageLineItems is one page entry in the response envelope.
type PageLineItems struct {
	PageNo    string     `json:"page_no"`
	PageType  string     `json:"page_type"`
	BillItems []BillItem `json:"bill_items"`
}

// ResponseData is the payload of the response envelope.
type ResponseData struct {
	PagewiseLineItems []PageLineItems `json:"pagewise_line_items"`
	TotalItemCount    int             `json:"total_item_count"`
	// OCRTokens echoes the input tokens for debugging when enabled.
	OCRTokens []Token `json:"ocr_tokens,omitempty"`
}

// Response is the JSON envelope of the serving layer. IsSuccess is false
// only for collaborator-level failures (download, OCR); an empty page is
// a successful extraction with zero items.
type Response struct {
	IsSuccess  bool         `json:"is_success"`
	TokenUsage TokenUsage   `json:"token_usage"`
	Data       ResponseData `json:"data"`
}

// NewResponse wraps per-page extraction results into the envelope.
func NewResponse(results ...ExtractionResult) Response {
	pages := make([]PageLineItems, 0, len(results))
	total := 0
	for _, r := range results {
		pages = append(pages, PageLineItems{
			PageNo:    r.PageNo,
			PageType:  r.PageType,
			BillItems: r.BillItems,
		})
		total += r.TotalItemCount
	}
	return Response{
		IsSuccess: true,
		Data: ResponseData{
			PagewiseLineItems: pages,
			TotalItemCount:    total,
		},
	}
}

// FailureResponse is the envelope for collaborator failures.
func FailureResponse() Response {
	return Response{
		IsSuccess: false,
		Data: ResponseData{
			PagewiseLineItems: []PageLineItems{},
		},
	}
}

// ToJSON serializes an extraction result to pretty JSON.
func ToJSON(res *ExtractionResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToCSV exports bill items as CSV with a header row.
func ToCSV(res *ExtractionResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"item_name", "item_quantity", "item_rate", "item_amount"})
	for _, item := range res.BillItems {
		_ = w.Write([]string{
			item.ItemName,
			formatValue(item.ItemQuantity),
			formatValue(item.ItemRate),
			formatValue(item.ItemAmount),
		})
	}
	w.Flush()
	return buf.String(), nil
}

// ToPlainText renders a human-readable summary of the result.
func ToPlainText(res *ExtractionResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var out strings.Builder
	out.WriteString(fmt.Sprintf("Page %s (%s): %d item(s)\n", res.PageNo, res.PageType, res.TotalItemCount))
	for i, item := range res.BillItems {
		out.WriteString(fmt.Sprintf("  #%d %s qty=%s rate=%s amount=%s\n",
			i+1, item.ItemName,
			formatValue(item.ItemQuantity),
			formatValue(item.ItemRate),
			formatValue(item.ItemAmount)))
	}
	return out.String(), nil
}

// formatValue prints amounts with two decimals and quantities without
// trailing zeros where possible.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
