package epoch

import "io"

// maxCarry is the longest digit run a Writer holds back. A run of more than
// MillisecondDigits digits is text whatever follows, so only its last maxCarry digits
// need to be kept to preserve that classification.
const maxCarry = MillisecondDigits + 1

// Stats summarizes what a Writer has processed so far.
type Stats struct {
	Chunks       int
	BytesIn      int64
	BytesOut     int64
	Seconds      int
	Milliseconds int
}

// Replaced returns the total number of rewritten timestamps.
func (s Stats) Replaced() int { return s.Seconds + s.Milliseconds }

// Writer rewrites timestamps in everything written to it and forwards the result to
// the underlying writer. Digits at the end of a Write are carried into the next one.
// Close must be called to flush the carry; it does not close the underlying writer.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	w     io.Writer
	carry []byte
	buf   []byte
	stats Stats
	err   error
}

var _ io.WriteCloser = &Writer{}

// NewWriter returns a Writer forwarding to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write treats p as the next chunk of the stream.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	w.stats.Chunks++
	w.stats.BytesIn += int64(len(p))

	w.buf = append(append(w.buf[:0], w.carry...), p...)
	res := Replace(w.buf, false)
	if err := w.emit(res); err != nil {
		return 0, err
	}

	tail := w.buf[len(w.buf)-res.Leftover:]
	if len(tail) > maxCarry {
		if err := w.forward(tail[:len(tail)-maxCarry]); err != nil {
			return 0, err
		}
		tail = tail[len(tail)-maxCarry:]
	}
	w.carry = append(w.carry[:0], tail...)
	return len(p), nil
}

// Close resolves the carried digits as the end of the stream.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if len(w.carry) == 0 {
		return nil
	}
	res := Replace(w.carry, true)
	w.carry = w.carry[:0]
	return w.emit(res)
}

// Stats returns the counters accumulated so far.
func (w *Writer) Stats() Stats { return w.stats }

func (w *Writer) emit(res Result) error {
	w.stats.Seconds += res.Seconds
	w.stats.Milliseconds += res.Milliseconds
	return w.forward(res.Data)
}

func (w *Writer) forward(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	n, err := w.w.Write(p)
	w.stats.BytesOut += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = err
	}
	return err
}
