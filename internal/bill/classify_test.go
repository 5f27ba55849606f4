package bill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// lineOf builds a single line from left-to-right word texts.
func lineOf(words ...string) Line {
	l := Line{}
	x := 0.0
	for _, w := range words {
		l.Tokens = append(l.Tokens, makeToken(w, x, 100))
		x += float64(9*len(w) + 10)
	}
	return l
}

func TestClassify(t *testing.T) {
	vocab := DefaultVocabulary()

	tests := []struct {
		name  string
		line  Line
		want  Label
	}{
		{"column header", lineOf("Item", "Description", "Qty", "Rate", "Amount"), LabelHeader},
		{"header with sl#", lineOf("Sl#", "Particulars", "HSN"), LabelHeader},
		{"header with one numeric", lineOf("Qty", "Rate", "1"), LabelHeader},
		{"total line", lineOf("TOTAL", "448.00"), LabelSummary},
		{"grand total line", lineOf("Grand", "Total", "1,234.00"), LabelSummary},
		{"net amount line", lineOf("Net", "Amount", "448.00", "448.00"), LabelSummary},
		{"balance due", lineOf("Balance", "Due", "120.00"), LabelSummary},
		{"item row", lineOf("Livi", "300mg", "Tab", "14", "32.00", "448.00"), LabelItemCandidate},
		{"single amount item", lineOf("Paracetamol", "500mg", "120.00"), LabelItemCandidate},
		{"no numerics", lineOf("thank", "you", "visit", "again"), LabelDiscard},
		{"bare number", lineOf("448.00"), LabelDiscard},
		{"leading number only", lineOf("12", "448.00"), LabelDiscard},
		{"blank separator", lineOf("|"), LabelDiscard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line, vocab))
		})
	}
}

func TestClassifyHeaderVocabDoesNotMatchSubstrings(t *testing.T) {
	// "rate" must not fire inside a drug name.
	line := lineOf("Pyrazinamide", "750mg", "10", "8.00", "80.00")
	assert.Equal(t, LabelItemCandidate, Classify(line, DefaultVocabulary()))
}

func TestClassifyHeaderWithManyNumericsIsNotHeader(t *testing.T) {
	// A row containing a header word but several numbers is a real item:
	// "Rate" alone cannot veto "Flat Rate Fee 2 50.00 100.00".
	line := lineOf("Flat", "Rate", "Fee", "2", "50.00", "100.00")
	assert.Equal(t, LabelItemCandidate, Classify(line, DefaultVocabulary()))
}

func TestClassifyCustomVocabulary(t *testing.T) {
	vocab := Vocabulary{
		Header:  []string{"artikel"},
		Summary: []string{"summe"},
	}
	assert.Equal(t, LabelHeader, Classify(lineOf("Artikel", "Menge"), vocab))
	assert.Equal(t, LabelSummary, Classify(lineOf("Summe", "448.00"), vocab))
	// Default English terms are inert under the override.
	assert.Equal(t, LabelItemCandidate, Classify(lineOf("Total", "448.00"), vocab))
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "header", LabelHeader.String())
	assert.Equal(t, "summary", LabelSummary.String())
	assert.Equal(t, "item-candidate", LabelItemCandidate.String())
	assert.Equal(t, "discard", LabelDiscard.String())
}
