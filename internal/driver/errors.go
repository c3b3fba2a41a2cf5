package driver

import "fmt"

// StreamError reports an I/O failure on one stream. The conversion of that stream is
// abandoned; other streams are not affected.
type StreamError struct {
	Op   string // "open", "create", "read", "write" or "close"
	Path string
	Err  error
}

func (e *StreamError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
