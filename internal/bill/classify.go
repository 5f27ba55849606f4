package bill

import "strings"

// Label is the classification of a grouped line.
type Label int

const (
	// LabelDiscard marks blank lines, stray tokens and separators.
	LabelDiscard Label = iota
	// LabelHeader marks column header rows ("Item  Qty  Rate  Amount").
	LabelHeader
	// LabelSummary marks subtotal/total rows, which never become items.
	LabelSummary
	// LabelItemCandidate marks lines shaped like purchasable line items.
	LabelItemCandidate
)

func (l Label) String() string {
	switch l {
	case LabelHeader:
		return "header"
	case LabelSummary:
		return "summary"
	case LabelItemCandidate:
		return "item-candidate"
	default:
		return "discard"
	}
}

// Classify labels a line. Rules apply in order, first match wins:
// header vocabulary with at most one numeric token, then summary
// vocabulary regardless of numeric content, then the minimum item shape
// (a numeric token preceded by at least one text token), else discard.
func Classify(line Line, vocab Vocabulary) Label {
	text := strings.ToLower(line.Text())
	numeric := countNumericTokens(line)

	if matchesVocabulary(text, vocab.Header) && numeric <= 1 {
		return LabelHeader
	}
	if matchesVocabulary(text, vocab.Summary) {
		return LabelSummary
	}
	if numeric >= 1 && hasTextBeforeFirstNumeric(line) {
		return LabelItemCandidate
	}
	return LabelDiscard
}

func countNumericTokens(line Line) int {
	n := 0
	for _, t := range line.Tokens {
		if _, ok := ParseAmount(t.Text); ok {
			n++
		}
	}
	return n
}

// hasTextBeforeFirstNumeric enforces the minimum item shape: a line
// opening with a bare number (an isolated value, a page number) is page
// furniture, not a bill row.
func hasTextBeforeFirstNumeric(line Line) bool {
	for i, t := range line.Tokens {
		if _, ok := ParseAmount(t.Text); ok {
			return i > 0
		}
	}
	return false
}

// matchesVocabulary reports whether any vocabulary term occurs in the
// lowercased line text. Multi-word terms match as substrings; single
// words match whole fields only, so "rate" does not fire on "Pyrazinamide".
func matchesVocabulary(text string, terms []string) bool {
	var fields []string
	for _, term := range terms {
		if term == "" {
			continue
		}
		term = strings.ToLower(term)
		if strings.ContainsRune(term, ' ') {
			if strings.Contains(text, term) {
				return true
			}
			continue
		}
		if fields == nil {
			fields = splitFields(text)
		}
		for _, f := range fields {
			if f == term {
				return true
			}
		}
	}
	return false
}

// splitFields breaks line text into comparison units, trimming the
// punctuation OCR tends to glue onto header words ("Qty.", "Rate:").
func splitFields(text string) []string {
	raw := strings.Fields(text)
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.Trim(f, ".,:;()[]|")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
