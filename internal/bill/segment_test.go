package bill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValues(run []NumericToken) []float64 {
	out := make([]float64, len(run))
	for i, nt := range run {
		out[i] = nt.Value
	}
	return out
}

func TestSplitColumnsTrailingRun(t *testing.T) {
	seg, ok := SplitColumns(lineOf("Livi", "300mg", "Tab", "14", "32.00", "448.00"))
	require.True(t, ok)
	assert.Equal(t, "Livi 300mg Tab", seg.ItemName())
	assert.Equal(t, []float64{14, 32, 448}, runValues(seg.NumericRun))
}

func TestSplitColumnsSingleTrailingNumber(t *testing.T) {
	seg, ok := SplitColumns(lineOf("Paracetamol", "500mg", "120.00"))
	require.True(t, ok)
	assert.Equal(t, "Paracetamol 500mg", seg.ItemName())
	assert.Equal(t, []float64{120}, runValues(seg.NumericRun))
}

func TestSplitColumnsInterleavedNumericsStayInName(t *testing.T) {
	// A product code mid-line is part of the name, not a column; only the
	// trailing contiguous block is the numeric run.
	seg, ok := SplitColumns(lineOf("Gauze", "10", "x", "10", "cm", "2", "15.00", "30.00"))
	require.True(t, ok)
	assert.Equal(t, "Gauze 10 x 10 cm", seg.ItemName())
	assert.Equal(t, []float64{2, 15, 30}, runValues(seg.NumericRun))
}

func TestSplitColumnsAbsorbsCurrencyMarkers(t *testing.T) {
	seg, ok := SplitColumns(lineOf("Syrup", "200ml", "₹", "120.00"))
	require.True(t, ok)
	assert.Equal(t, "Syrup 200ml", seg.ItemName())
	assert.Equal(t, []float64{120}, runValues(seg.NumericRun))
}

func TestSplitColumnsCurrencyBetweenValues(t *testing.T) {
	seg, ok := SplitColumns(lineOf("Syrup", "2", "Rs.", "60.00", "Rs.", "120.00"))
	require.True(t, ok)
	assert.Equal(t, "Syrup", seg.ItemName())
	assert.Equal(t, []float64{2, 60, 120}, runValues(seg.NumericRun))
}

func TestSplitColumnsNoNumericRun(t *testing.T) {
	_, ok := SplitColumns(lineOf("thank", "you"))
	assert.False(t, ok)

	// Numeric present but not trailing: nothing to segment.
	_, ok = SplitColumns(lineOf("Code", "123", "pending"))
	assert.False(t, ok)
}

func TestSplitColumnsEmptyNameDiscarded(t *testing.T) {
	_, ok := SplitColumns(lineOf("448.00"))
	assert.False(t, ok)

	_, ok = SplitColumns(lineOf("₹", "448.00"))
	assert.False(t, ok)
}
