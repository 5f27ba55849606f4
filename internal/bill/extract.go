// Package bill converts unstructured OCR word tokens from a single-page
// bill image into structured line items. The pipeline is a pure,
// synchronous pass with no I/O or shared state, so an Extractor is safe
// to use from concurrent requests.
package bill

// Config holds the extraction tunables.
type Config struct {
	// LineTolerance is the vertical grouping band as a fraction of each
	// token's height. Half a token height keeps adjacent rows of
	// different font sizes apart.
	LineTolerance float64

	// ConsistencyTolerance is the relative tolerance for the soft
	// quantity*rate==amount check.
	ConsistencyTolerance float64

	// Vocabulary drives header/summary classification.
	Vocabulary Vocabulary
}

// DefaultConfig returns the documented default tunables.
func DefaultConfig() Config {
	return Config{
		LineTolerance:        0.5,
		ConsistencyTolerance: 0.05,
		Vocabulary:           DefaultVocabulary(),
	}
}

// Extractor runs the token-to-line-items pipeline.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor, filling zero-valued tunables with
// the defaults.
func NewExtractor(cfg Config) *Extractor {
	def := DefaultConfig()
	if cfg.LineTolerance <= 0 {
		cfg.LineTolerance = def.LineTolerance
	}
	if cfg.ConsistencyTolerance <= 0 {
		cfg.ConsistencyTolerance = def.ConsistencyTolerance
	}
	if len(cfg.Vocabulary.Header) == 0 && len(cfg.Vocabulary.Summary) == 0 {
		cfg.Vocabulary = def.Vocabulary
	}
	return &Extractor{cfg: cfg}
}

// Config returns the effective tunables.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Extract converts a flat token list into the ordered list of bill
// items for one page. It never fails: malformed tokens are dropped,
// non-item lines are skipped, and an empty page is a valid result with
// zero items.
func (e *Extractor) Extract(tokens []Token) ExtractionResult {
	result := ExtractionResult{
		PageNo:    DefaultPageNo,
		PageType:  DefaultPageType,
		BillItems: []BillItem{},
	}

	lines := GroupLines(SanitizeTokens(tokens), e.cfg.LineTolerance)
	for _, line := range lines {
		if Classify(line, e.cfg.Vocabulary) != LabelItemCandidate {
			continue
		}
		seg, ok := SplitColumns(line)
		if !ok {
			continue
		}
		assigned, ok := AssignValues(seg.NumericRun, e.cfg.ConsistencyTolerance)
		if !ok {
			continue
		}
		result.BillItems = append(result.BillItems, BillItem{
			ItemName:      seg.ItemName(),
			ItemQuantity:  assigned.Quantity,
			ItemRate:      assigned.Rate,
			ItemAmount:    assigned.Amount,
			lowConfidence: assigned.LowConfidence,
		})
	}

	result.TotalItemCount = len(result.BillItems)
	return result
}
