package bill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// makeToken builds a test token with plausible word geometry.
func makeToken(text string, x, y float64) Token {
	return Token{Text: text, X: x, Y: y, Width: float64(9 * len(text)), Height: 12}
}

func TestTokenCenterY(t *testing.T) {
	tok := Token{Y: 100, Height: 12}
	assert.InDelta(t, 106.0, tok.CenterY(), 1e-9)
}

func TestSanitizeTokens(t *testing.T) {
	tests := []struct {
		name  string
		in    []Token
		want  []string
	}{
		{
			name: "valid tokens pass through",
			in:   []Token{makeToken("Tab", 0, 0), makeToken("448.00", 50, 0)},
			want: []string{"Tab", "448.00"},
		},
		{
			name: "empty text dropped",
			in:   []Token{makeToken("Tab", 0, 0), {Text: "   ", X: 10, Y: 0, Width: 5, Height: 12}},
			want: []string{"Tab"},
		},
		{
			name: "missing geometry dropped",
			in:   []Token{{Text: "Tab", Width: 0, Height: 12}, {Text: "Cap", Width: 20, Height: 0}},
			want: []string{},
		},
		{
			name: "fullwidth digits folded to ascii",
			in:   []Token{makeToken("４４８", 0, 0)},
			want: []string{"448"},
		},
		{
			name: "control and zero width characters removed",
			in:   []Token{makeToken("Ta\u200bb\u0007", 0, 0)},
			want: []string{"Tab"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SanitizeTokens(tt.in)
			texts := make([]string, 0, len(out))
			for _, tok := range out {
				texts = append(texts, tok.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestSanitizeTokensEmptyInput(t *testing.T) {
	assert.Empty(t, SanitizeTokens(nil))
	assert.Empty(t, SanitizeTokens([]Token{}))
}
