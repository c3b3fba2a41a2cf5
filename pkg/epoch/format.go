package epoch

import (
	"fmt"
	"time"
)

const (
	secondLayout      = "[2006-01-02 15:04:05 UTC]"
	millisecondLayout = "[2006-01-02 15:04:05.000 UTC]"

	nanosPerMillisecond = int64(time.Millisecond)
)

// Format renders m as a bracketed UTC date-time. See AppendFormat.
func Format(m int64, p Precision) string {
	return string(AppendFormat(nil, m, p))
}

// AppendFormat appends the bracketed UTC rendering of m to dst.
//
// For SecondPrecision m is whole seconds since the epoch. For MillisecondPrecision m is
// milliseconds; the fraction is always printed with three digits. Any other precision
// panics: only classified runs may be formatted.
func AppendFormat(dst []byte, m int64, p Precision) []byte {
	switch p {
	case SecondPrecision:
		return time.Unix(m, 0).UTC().AppendFormat(dst, secondLayout)
	case MillisecondPrecision:
		return time.Unix(m/1000, (m%1000)*nanosPerMillisecond).UTC().AppendFormat(dst, millisecondLayout)
	default:
		panic(fmt.Sprintf("epoch: cannot format precision %q", p))
	}
}
