package bill

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the keyword lists driving line classification.
// Keeping these as data rather than code allows tuning and localization
// without touching the classifier.
type Vocabulary struct {
	// Header terms mark column header rows.
	Header []string `yaml:"header" json:"header"`
	// Summary terms mark subtotal/total rows.
	Summary []string `yaml:"summary" json:"summary"`
}

// DefaultVocabulary returns the built-in English bill vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Header: []string{
			"sl#", "sr", "sno", "item", "items", "description",
			"particulars", "qty", "quantity", "rate", "mrp",
			"price", "amount", "hsn", "unit",
		},
		Summary: []string{
			"total", "subtotal", "sub total", "grand total",
			"gross amount", "net amount", "balance due", "amount due",
			"category total", "discount", "round off",
		},
	}
}

// LoadVocabulary reads a vocabulary override from a YAML file. Empty
// categories fall back to the built-in defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("reading vocabulary file: %w", err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parsing vocabulary file %s: %w", path, err)
	}
	def := DefaultVocabulary()
	if len(v.Header) == 0 {
		v.Header = def.Header
	}
	if len(v.Summary) == 0 {
		v.Summary = def.Summary
	}
	return v, nil
}
