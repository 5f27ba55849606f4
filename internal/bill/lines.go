package bill

import (
	"sort"
	"strings"
)

// Line is an ordered run of tokens sharing one visual text row.
// Tokens are sorted left-to-right by X.
type Line struct {
	Tokens []Token
}

// Text joins the line's token texts with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Tokens))
	for i, t := range l.Tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// openLine tracks a line under construction together with its running
// vertical center.
type openLine struct {
	tokens    []Token
	centerSum float64
}

func (ol *openLine) center() float64 {
	return ol.centerSum / float64(len(ol.tokens))
}

func (ol *openLine) add(t Token) {
	ol.tokens = append(ol.tokens, t)
	ol.centerSum += t.CenterY()
}

// GroupLines clusters tokens into horizontal text lines, ordered
// top-to-bottom. A token joins an open line when its vertical center lies
// within tolerance*height of the line's running center; the per-token
// height keeps the band adaptive to font size variation, so small
// footer text does not merge into adjacent large rows. A stray single
// token still yields a one-token line; the classifier filters it later.
func GroupLines(tokens []Token, tolerance float64) []Line {
	if len(tokens) == 0 {
		return nil
	}

	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CenterY() == sorted[j].CenterY() {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].CenterY() < sorted[j].CenterY()
	})

	var open []*openLine
	for _, tok := range sorted {
		band := tolerance * tok.Height
		placed := false
		for _, ol := range open {
			if abs(tok.CenterY()-ol.center()) <= band {
				ol.add(tok)
				placed = true
				break
			}
		}
		if !placed {
			nl := &openLine{}
			nl.add(tok)
			open = append(open, nl)
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].center() < open[j].center()
	})

	lines := make([]Line, len(open))
	for i, ol := range open {
		sort.SliceStable(ol.tokens, func(a, b int) bool {
			return ol.tokens[a].X < ol.tokens[b].X
		})
		lines[i] = Line{Tokens: ol.tokens}
	}
	return lines
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
