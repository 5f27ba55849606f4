package bill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"448.00", 448.0, true},
		{"14", 14, true},
		{"1,234.50", 1234.5, true},
		{"12,34,567", 1234567, true},
		{"₹448.00", 448.0, true},
		{"$12.99", 12.99, true},
		{"448.00€", 448.0, true},
		{"+12", 12, true},
		{"-5.5", -5.5, true},
		{"", 0, false},
		{"Tab", 0, false},
		{"300mg", 0, false},
		{"12.34.56", 0, false},
		{"ABC123", 0, false},
		{"12-34", 0, false},
		{"₹", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseAmount(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestIsCurrencyToken(t *testing.T) {
	assert.True(t, isCurrencyToken("₹"))
	assert.True(t, isCurrencyToken("$"))
	assert.True(t, isCurrencyToken("Rs."))
	assert.True(t, isCurrencyToken("INR"))
	assert.False(t, isCurrencyToken("448.00"))
	assert.False(t, isCurrencyToken("Tab"))
	assert.False(t, isCurrencyToken(""))
}
