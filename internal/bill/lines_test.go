package bill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupLinesEmpty(t *testing.T) {
	assert.Nil(t, GroupLines(nil, 0.5))
	assert.Nil(t, GroupLines([]Token{}, 0.5))
}

func TestGroupLinesSingleRow(t *testing.T) {
	// Tokens handed over out of reading order.
	tokens := []Token{
		makeToken("448.00", 430, 101),
		makeToken("Livi", 0, 100),
		makeToken("Tab", 110, 99),
		makeToken("300mg", 50, 100),
	}

	lines := GroupLines(tokens, 0.5)
	require.Len(t, lines, 1)
	assert.Equal(t, "Livi 300mg Tab 448.00", lines[0].Text())
}

func TestGroupLinesMultipleRows(t *testing.T) {
	tokens := []Token{
		makeToken("Item", 0, 10),
		makeToken("Amount", 200, 11),
		makeToken("Paracetamol", 0, 40),
		makeToken("120.00", 200, 41),
		makeToken("TOTAL", 0, 80),
		makeToken("120.00", 200, 80),
	}

	lines := GroupLines(tokens, 0.5)
	require.Len(t, lines, 3)
	assert.Equal(t, "Item Amount", lines[0].Text())
	assert.Equal(t, "Paracetamol 120.00", lines[1].Text())
	assert.Equal(t, "TOTAL 120.00", lines[2].Text())
}

func TestGroupLinesOrderedTopToBottom(t *testing.T) {
	tokens := []Token{
		makeToken("third", 0, 90),
		makeToken("first", 0, 10),
		makeToken("second", 0, 50),
	}

	lines := GroupLines(tokens, 0.5)
	require.Len(t, lines, 3)
	assert.Equal(t, "first", lines[0].Text())
	assert.Equal(t, "second", lines[1].Text())
	assert.Equal(t, "third", lines[2].Text())
}

func TestGroupLinesAdaptiveTolerance(t *testing.T) {
	// A small-print token 8px below a small-print row must not be pulled
	// into it, while a large-print token with the same offset is.
	small := Token{Text: "fine", X: 0, Y: 100, Width: 30, Height: 8}
	smallBelow := Token{Text: "print", X: 40, Y: 108, Width: 30, Height: 8}
	large := Token{Text: "BIG", X: 0, Y: 200, Width: 60, Height: 24}
	largeJitter := Token{Text: "ROW", X: 70, Y: 208, Width: 60, Height: 24}

	lines := GroupLines([]Token{small, smallBelow, large, largeJitter}, 0.5)
	require.Len(t, lines, 3)
	assert.Equal(t, "fine", lines[0].Text())
	assert.Equal(t, "print", lines[1].Text())
	assert.Equal(t, "BIG ROW", lines[2].Text())
}

func TestGroupLinesStrayTokenKeptAsLine(t *testing.T) {
	tokens := []Token{
		makeToken("Paracetamol", 0, 40),
		makeToken("120.00", 200, 40),
		makeToken("|", 300, 400),
	}

	lines := GroupLines(tokens, 0.5)
	require.Len(t, lines, 2)
	assert.Equal(t, "|", lines[1].Text())
}

func TestGroupLinesTokensSortedByX(t *testing.T) {
	tokens := []Token{
		makeToken("32.00", 360, 100),
		makeToken("Livi", 0, 100),
		makeToken("14", 300, 100),
	}

	lines := GroupLines(tokens, 0.5)
	require.Len(t, lines, 1)
	xs := lines[0].Tokens
	for i := 1; i < len(xs); i++ {
		assert.LessOrEqual(t, xs[i-1].X, xs[i].X)
	}
}
