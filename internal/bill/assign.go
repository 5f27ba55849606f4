package bill

// Assignment maps a numeric run onto the quantity/rate/amount columns.
type Assignment struct {
	Quantity float64
	Rate     float64
	Amount   float64

	// LowConfidence is set when quantity*rate disagrees with amount
	// beyond the relative tolerance. The row is still emitted; OCR noise
	// is expected. The flag is not part of the output schema yet.
	LowConfidence bool
}

// AssignValues applies the rightmost-anchored heuristic: bill layouts
// reliably place the line total as the rightmost number, and when
// quantity and rate are present they precede it in that order.
//
//	[c]       -> quantity 1, rate c, amount c
//	[b, c]    -> quantity 1, rate b, amount c
//	[a, b, c] -> quantity a, rate b, amount c (extra leading values ignored)
//
// relTolerance bounds the soft quantity*rate==amount consistency check.
func AssignValues(run []NumericToken, relTolerance float64) (Assignment, bool) {
	if len(run) == 0 {
		return Assignment{}, false
	}

	var a Assignment
	switch len(run) {
	case 1:
		a.Amount = run[0].Value
		a.Quantity = 1
		a.Rate = a.Amount
	case 2:
		a.Rate = run[0].Value
		a.Amount = run[1].Value
		a.Quantity = 1
	default:
		last := run[len(run)-3:]
		a.Quantity = last[0].Value
		a.Rate = last[1].Value
		a.Amount = last[2].Value
	}

	a.LowConfidence = !consistent(a.Quantity, a.Rate, a.Amount, relTolerance)
	return a, true
}

func consistent(quantity, rate, amount, relTolerance float64) bool {
	expected := quantity * rate
	diff := abs(expected - amount)
	scale := abs(amount)
	if scale == 0 {
		return diff == 0
	}
	return diff/scale <= relTolerance
}
