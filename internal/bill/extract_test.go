package bill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// billTokens lays out a small pharmacy bill: header, two item rows and a
// total line, with realistic column positions.
func billTokens() []Token {
	rows := []struct {
		y     float64
		words []string
	}{
		{20, []string{"Item", "Qty", "Rate", "Amount"}},
		{60, []string{"Livi", "300mg", "Tab", "14", "32.00", "448.00"}},
		{100, []string{"Paracetamol", "500mg", "120.00"}},
		{140, []string{"TOTAL", "568.00"}},
	}

	var tokens []Token
	for _, row := range rows {
		x := 0.0
		for _, w := range row.words {
			tokens = append(tokens, makeToken(w, x, row.y))
			x += float64(9*len(w) + 12)
		}
	}
	return tokens
}

func TestExtractPharmacyBill(t *testing.T) {
	res := NewExtractor(DefaultConfig()).Extract(billTokens())

	assert.Equal(t, DefaultPageNo, res.PageNo)
	assert.Equal(t, DefaultPageType, res.PageType)
	require.Len(t, res.BillItems, 2)
	assert.Equal(t, 2, res.TotalItemCount)

	first := res.BillItems[0]
	assert.Equal(t, "Livi 300mg Tab", first.ItemName)
	assert.InDelta(t, 14.0, first.ItemQuantity, 1e-9)
	assert.InDelta(t, 32.0, first.ItemRate, 1e-9)
	assert.InDelta(t, 448.0, first.ItemAmount, 1e-9)
	assert.False(t, first.LowConfidence())

	second := res.BillItems[1]
	assert.Equal(t, "Paracetamol 500mg", second.ItemName)
	assert.InDelta(t, 1.0, second.ItemQuantity, 1e-9)
	assert.InDelta(t, 120.0, second.ItemRate, 1e-9)
	assert.InDelta(t, 120.0, second.ItemAmount, 1e-9)
}

func TestExtractSkipsTotalLines(t *testing.T) {
	res := NewExtractor(DefaultConfig()).Extract(billTokens())
	for _, item := range res.BillItems {
		assert.NotContains(t, item.ItemName, "TOTAL")
	}
	assert.Equal(t, 2, res.TotalItemCount)
}

func TestExtractEmptyInput(t *testing.T) {
	res := NewExtractor(DefaultConfig()).Extract(nil)
	assert.Equal(t, []BillItem{}, res.BillItems)
	assert.Equal(t, 0, res.TotalItemCount)
	assert.Equal(t, DefaultPageNo, res.PageNo)
}

func TestExtractNoItemCandidates(t *testing.T) {
	tokens := []Token{
		makeToken("Pharmacy", 0, 10),
		makeToken("Receipt", 100, 10),
		makeToken("thank", 0, 50),
		makeToken("you", 60, 50),
	}
	res := NewExtractor(DefaultConfig()).Extract(tokens)
	assert.Empty(t, res.BillItems)
	assert.Equal(t, 0, res.TotalItemCount)
}

func TestExtractIdempotent(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	tokens := billTokens()
	first := e.Extract(tokens)
	second := e.Extract(tokens)
	assert.Equal(t, first, second)
}

func TestExtractOrderPreserved(t *testing.T) {
	rows := []string{"Alpha", "Bravo", "Charlie", "Delta"}
	var tokens []Token
	// Append bottom-up to prove output order follows page position, not
	// input order.
	for i := len(rows) - 1; i >= 0; i-- {
		y := float64(20 + 40*i)
		tokens = append(tokens,
			makeToken(rows[i], 0, y),
			makeToken("10.00", 200, y),
		)
	}

	res := NewExtractor(DefaultConfig()).Extract(tokens)
	require.Len(t, res.BillItems, len(rows))
	for i, name := range rows {
		assert.Equal(t, name, res.BillItems[i].ItemName)
	}
}

func TestExtractCountInvariant(t *testing.T) {
	inputs := [][]Token{
		nil,
		billTokens(),
		{makeToken("448.00", 0, 10)},
	}
	e := NewExtractor(DefaultConfig())
	for _, tokens := range inputs {
		res := e.Extract(tokens)
		assert.Equal(t, len(res.BillItems), res.TotalItemCount)
	}
}

func TestExtractDropsMalformedTokens(t *testing.T) {
	tokens := append(billTokens(),
		Token{Text: "", X: 10, Y: 60, Width: 20, Height: 12},
		Token{Text: "ghost", X: 10, Y: 60, Width: 0, Height: 0},
	)
	res := NewExtractor(DefaultConfig()).Extract(tokens)
	assert.Equal(t, 2, res.TotalItemCount)
}

func TestNewExtractorFillsDefaults(t *testing.T) {
	e := NewExtractor(Config{})
	cfg := e.Config()
	assert.InDelta(t, 0.5, cfg.LineTolerance, 1e-9)
	assert.InDelta(t, 0.05, cfg.ConsistencyTolerance, 1e-9)
	assert.NotEmpty(t, cfg.Vocabulary.Header)
	assert.NotEmpty(t, cfg.Vocabulary.Summary)
}

func TestExtractConcurrentUse(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	tokens := billTokens()
	want := e.Extract(tokens)

	done := make(chan ExtractionResult, 8)
	for range 8 {
		go func() { done <- e.Extract(tokens) }()
	}
	for range 8 {
		assert.Equal(t, want, <-done)
	}
}
