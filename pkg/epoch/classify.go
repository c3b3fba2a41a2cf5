package epoch

// Widths of the two recognized digit runs.
const (
	SecondDigits      = 10
	MillisecondDigits = 13
)

// Precision is the outcome of classifying a digit run by its width.
type Precision int

const (
	NotATimestamp Precision = iota
	SecondPrecision
	MillisecondPrecision
)

func (p Precision) String() string {
	switch p {
	case SecondPrecision:
		return "second"
	case MillisecondPrecision:
		return "millisecond"
	default:
		return "none"
	}
}

// Classify maps the width of a digit run to a precision. Width is the only criterion:
// 11 or 12 digits are text, not malformed timestamps.
func Classify(width int) Precision {
	switch width {
	case SecondDigits:
		return SecondPrecision
	case MillisecondDigits:
		return MillisecondPrecision
	default:
		return NotATimestamp
	}
}
