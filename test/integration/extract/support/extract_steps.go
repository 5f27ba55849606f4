package support

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/tallyocr/tally/internal/bill"
)

// RegisterExtractSteps wires the pipeline step definitions.
func (testCtx *TestContext) RegisterExtractSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the OCR tokens:$`, testCtx.theOCRTokens)
	sc.Step(`^no OCR tokens$`, testCtx.noOCRTokens)
	sc.Step(`^I run the extraction pipeline$`, testCtx.iRunTheExtractionPipeline)
	sc.Step(`^the result has (\d+) line items?$`, testCtx.theResultHasLineItems)
	sc.Step(`^item (\d+) is "([^"]*)" with quantity ([\d.]+), rate ([\d.]+) and amount ([\d.]+)$`,
		testCtx.itemIs)
	sc.Step(`^the page type is "([^"]*)"$`, testCtx.thePageTypeIs)
}

// theOCRTokens loads tokens from a scenario table with a header row of
// text, x, y, width, height.
func (testCtx *TestContext) theOCRTokens(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("token table needs a header row and at least one token")
	}

	tokens := make([]bill.Token, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		if len(row.Cells) != 5 {
			return fmt.Errorf("token row needs 5 cells, got %d", len(row.Cells))
		}

		values := make([]float64, 4)
		for i := range 4 {
			v, err := strconv.ParseFloat(row.Cells[i+1].Value, 64)
			if err != nil {
				return fmt.Errorf("bad numeric cell %q: %w", row.Cells[i+1].Value, err)
			}
			values[i] = v
		}

		tokens = append(tokens, bill.Token{
			Text:   row.Cells[0].Value,
			X:      values[0],
			Y:      values[1],
			Width:  values[2],
			Height: values[3],
		})
	}

	testCtx.Tokens = tokens
	return nil
}

func (testCtx *TestContext) noOCRTokens() error {
	testCtx.Tokens = nil
	return nil
}

func (testCtx *TestContext) iRunTheExtractionPipeline() error {
	testCtx.Result = testCtx.Extractor.Extract(testCtx.Tokens)
	return nil
}

func (testCtx *TestContext) theResultHasLineItems(count int) error {
	if testCtx.Result.TotalItemCount != count {
		return fmt.Errorf("expected %d line items, got %d", count, testCtx.Result.TotalItemCount)
	}
	if len(testCtx.Result.BillItems) != count {
		return fmt.Errorf("total_item_count %d does not match %d bill items",
			testCtx.Result.TotalItemCount, len(testCtx.Result.BillItems))
	}
	return nil
}

func (testCtx *TestContext) itemIs(index int, name, qtyStr, rateStr, amountStr string) error {
	if index < 1 || index > len(testCtx.Result.BillItems) {
		return fmt.Errorf("item index %d out of range (%d items)", index, len(testCtx.Result.BillItems))
	}
	item := testCtx.Result.BillItems[index-1]

	if item.ItemName != name {
		return fmt.Errorf("expected item name %q, got %q", name, item.ItemName)
	}

	checks := []struct {
		label    string
		expected string
		actual   float64
	}{
		{"quantity", qtyStr, item.ItemQuantity},
		{"rate", rateStr, item.ItemRate},
		{"amount", amountStr, item.ItemAmount},
	}
	for _, c := range checks {
		expected, err := strconv.ParseFloat(c.expected, 64)
		if err != nil {
			return fmt.Errorf("bad expected %s %q: %w", c.label, c.expected, err)
		}
		if math.Abs(expected-c.actual) > 1e-9 {
			return fmt.Errorf("expected %s %v, got %v", c.label, expected, c.actual)
		}
	}
	return nil
}

func (testCtx *TestContext) thePageTypeIs(pageType string) error {
	if testCtx.Result.PageType != pageType {
		return fmt.Errorf("expected page type %q, got %q", pageType, testCtx.Result.PageType)
	}
	return nil
}
