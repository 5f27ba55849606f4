package bill

import "strings"

// Segments is the result of splitting an item-candidate line into its
// descriptive text run and trailing numeric column run.
type Segments struct {
	TextRun    []Token
	NumericRun []NumericToken
}

// ItemName joins the text run into the item name.
func (s Segments) ItemName() string {
	parts := make([]string, len(s.TextRun))
	for i, t := range s.TextRun {
		parts[i] = t.Text
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// SplitColumns separates the maximal trailing run of numeric tokens from
// the leading text. Standalone currency markers inside the trailing run
// are absorbed (they annotate the neighboring value, they are not a
// column). Numeric tokens interleaved earlier in the line stay in the
// text run verbatim; real invoices carry product codes with digits.
//
// The second return value is false when the line has no trailing numeric
// run or no item name; such lines are reclassified as discard. The
// classifier should already guarantee a numeric token exists, but the
// segmenter re-validates to stay independently testable.
func SplitColumns(line Line) (Segments, bool) {
	boundary := len(line.Tokens)
	var reversed []NumericToken
	for i := len(line.Tokens) - 1; i >= 0; i-- {
		tok := line.Tokens[i]
		if v, ok := ParseAmount(tok.Text); ok {
			reversed = append(reversed, NumericToken{Token: tok, Value: v})
			boundary = i
			continue
		}
		if isCurrencyToken(tok.Text) {
			boundary = i
			continue
		}
		break
	}
	if len(reversed) == 0 {
		return Segments{}, false
	}

	run := make([]NumericToken, len(reversed))
	for i, nt := range reversed {
		run[len(reversed)-1-i] = nt
	}

	seg := Segments{
		TextRun:    line.Tokens[:boundary],
		NumericRun: run,
	}
	if seg.ItemName() == "" {
		return Segments{}, false
	}
	return seg, true
}
