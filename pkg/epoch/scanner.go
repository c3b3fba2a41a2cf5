package epoch

// Result is the outcome of one Replace call.
type Result struct {
	// Data is the rewritten chunk. It never aliases the input.
	Data []byte

	// Leftover is the number of trailing input bytes that belong to a digit run which
	// may continue in the next chunk. They are not part of Data.
	Leftover int

	// Seconds and Milliseconds count the runs replaced at each precision.
	Seconds      int
	Milliseconds int
}

type scanState int

const (
	stateIdle scanState = iota
	stateDigits
)

// scanner walks a single chunk. runStart is the offset of the open digit run and is only
// meaningful in stateDigits.
type scanner struct {
	input    []byte
	state    scanState
	runStart int
	res      Result
}

// Replace rewrites every 10 or 13 digit run of input that is known to be complete.
//
// A run is complete when a non-digit byte follows it, or when endOfInput is true and it
// ends the input. A trailing run with endOfInput false is held back and reported as
// Result.Leftover, even when it already has 10 or 13 digits: more digits may follow.
//
// Replace keeps no state between calls; continuity comes from the caller prepending the
// leftover bytes to the next chunk.
func Replace(input []byte, endOfInput bool) Result {
	s := scanner{
		input: input,
		res:   Result{Data: make([]byte, 0, len(input)+len(input)/4)},
	}
	for i, b := range input {
		s.step(i, b)
	}
	s.finish(endOfInput)
	return s.res
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (s *scanner) step(i int, b byte) {
	switch s.state {
	case stateIdle:
		if isDigit(b) {
			s.state = stateDigits
			s.runStart = i
			return
		}
		s.res.Data = append(s.res.Data, b)
	case stateDigits:
		if isDigit(b) {
			return
		}
		s.resolve(i)
		s.res.Data = append(s.res.Data, b)
	}
}

func (s *scanner) finish(endOfInput bool) {
	if s.state != stateDigits {
		return
	}
	if endOfInput {
		s.resolve(len(s.input))
		return
	}
	s.res.Leftover = len(s.input) - s.runStart
	s.state = stateIdle
}

// resolve decides the fate of the run input[runStart:end] and returns to stateIdle.
func (s *scanner) resolve(end int) {
	run := s.input[s.runStart:end]
	s.state = stateIdle

	p := Classify(len(run))
	if p == NotATimestamp {
		s.res.Data = append(s.res.Data, run...)
		return
	}

	// 13 decimal digits always fit in an int64.
	var m int64
	for _, d := range run {
		m = m*10 + int64(d-'0')
	}
	s.res.Data = AppendFormat(s.res.Data, m, p)
	if p == SecondPrecision {
		s.res.Seconds++
	} else {
		s.res.Milliseconds++
	}
}
