package bill

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Token is one recognized word from the OCR collaborator, with its
// bounding box in page coordinates.
type Token struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterY returns the vertical center of the token's bounding box.
func (t Token) CenterY() float64 {
	return t.Y + t.Height/2
}

// Valid reports whether the token carries usable text and geometry.
func (t Token) Valid() bool {
	return strings.TrimSpace(t.Text) != "" && t.Width > 0 && t.Height > 0
}

// SanitizeTokens normalizes token text and drops malformed tokens.
// OCR noise is expected; dropping, not aborting, is the policy.
func SanitizeTokens(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		t.Text = cleanText(t.Text)
		if !t.Valid() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// cleanText applies NFKC normalization (folding full-width digits and
// compatibility forms OCR engines occasionally emit), strips control and
// zero-width characters, and trims surrounding whitespace.
func cleanText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) || isZeroWidth(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff':
		return true
	}
	return false
}
