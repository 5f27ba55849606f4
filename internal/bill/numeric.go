package bill

import (
	"regexp"
	"strconv"
	"strings"
)

// NumericToken is a token whose text parses as a number, together with
// the parsed value.
type NumericToken struct {
	Token
	Value float64
}

var numberPattern = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?$`)

// currencyRunes are symbols stripped from numeric token text. A token
// consisting only of these is treated as a detached currency marker.
const currencyRunes = "$€£₹¥₩"

// ParseAmount converts OCR token text to a numeric value. It tolerates
// thousands separators and leading/trailing currency symbols. The second
// return value is false when the text is not numeric; callers treat such
// tokens as plain text.
func ParseAmount(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	s = strings.Trim(s, currencyRunes)
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if !numberPattern.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Matched the pattern but overflows or otherwise fails to parse;
		// defer to the text/numeric boundary logic downstream.
		return 0, false
	}
	return v, true
}

// isCurrencyToken reports whether the token is a standalone currency
// marker ("₹", "$", "Rs.") that a numeric column may absorb.
func isCurrencyToken(text string) bool {
	s := strings.TrimSpace(text)
	if s == "" {
		return false
	}
	if strings.Trim(s, currencyRunes) == "" {
		return true
	}
	switch strings.ToLower(strings.TrimSuffix(s, ".")) {
	case "rs", "inr", "usd", "eur":
		return true
	}
	return false
}
