package filetype

// Type is the detected kind of an input file
type Type string

const (
	TypeEmpty  Type = "empty"
	TypeBinary Type = "binary"
	TypeText   Type = "text"
)

// SniffSize is how many leading bytes Detect needs to make a decision
const SniffSize = 8192

// binaryThreshold is the share of non-printable characters above which data is binary
const binaryThreshold = 0.3

// Detect classifies the leading bytes of a file and returns the reason for the decision
func Detect(sample []byte) (Type, string) {
	if len(sample) > SniffSize {
		sample = sample[:SniffSize]
	}
	if len(sample) == 0 {
		return TypeEmpty, "no data"
	}

	nonPrintable := 0
	for _, r := range string(sample) {
		// Null bytes are a definitive indicator of binary data
		if r == 0 {
			return TypeBinary, "null byte detected"
		}
		// ESC is excluded, it starts ANSI color sequences in log files
		if r < 32 && r != '\t' && r != '\n' && r != '\r' && r != 0x1B {
			nonPrintable++
		} else if r > 126 && r < 160 {
			nonPrintable++
		}
	}

	if float64(nonPrintable) > float64(len(sample))*binaryThreshold {
		return TypeBinary, "high proportion of non-printable characters"
	}
	return TypeText, "no binary markers"
}
