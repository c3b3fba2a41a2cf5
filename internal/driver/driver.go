// Package driver feeds byte streams through the epoch scanner chunk by chunk and owns
// all file handling: opening sources, creating sibling destinations and converting many
// files in parallel.
package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"depoch/internal/filetype"
	"depoch/internal/logger"
	"depoch/pkg/epoch"

	"golang.org/x/sync/errgroup"
)

// Options control file conversion
type Options struct {
	ChunkSize  int    // bytes per read, must be >= 1
	Suffix     string // appended to the source path to name the destination
	Overwrite  bool   // replace an existing destination
	SkipBinary bool   // leave files that look binary untouched
	Jobs       int    // files converted in parallel
	FailFast   bool   // stop all conversions after the first error
	Logger     *logger.Logger
}

func (o Options) log() *logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.Named("driver")
}

// Stats describes one converted stream
type Stats struct {
	Chunks       int
	BytesIn      int64
	BytesOut     int64
	Seconds      int
	Milliseconds int
	Skipped      bool
	Reason       string // why the stream was skipped
	Elapsed      time.Duration
}

// Replaced returns the total number of rewritten timestamps
func (s Stats) Replaced() int { return s.Seconds + s.Milliseconds }

// Transform copies r to w, rewriting timestamps. It reads at most chunkSize bytes at a
// time until r is exhausted; digits at the end of a chunk are carried into the next one
// and resolved as end of input once r returns io.EOF.
func Transform(ctx context.Context, r io.Reader, w io.Writer, chunkSize int) (Stats, error) {
	if chunkSize < 1 {
		return Stats{}, fmt.Errorf("invalid chunk size %d", chunkSize)
	}
	start := time.Now()
	ew := epoch.NewWriter(w)
	buf := make([]byte, chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return statsOf(ew, start), err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, err := ew.Write(buf[:n]); err != nil {
				return statsOf(ew, start), &StreamError{Op: "write", Err: err}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return statsOf(ew, start), &StreamError{Op: "read", Err: rerr}
		}
	}

	if err := ew.Close(); err != nil {
		return statsOf(ew, start), &StreamError{Op: "write", Err: err}
	}
	return statsOf(ew, start), nil
}

func statsOf(ew *epoch.Writer, start time.Time) Stats {
	s := ew.Stats()
	return Stats{
		Chunks:       s.Chunks,
		BytesIn:      s.BytesIn,
		BytesOut:     s.BytesOut,
		Seconds:      s.Seconds,
		Milliseconds: s.Milliseconds,
		Elapsed:      time.Since(start),
	}
}

// Destination returns the output path for src
func Destination(src string, opts Options) string {
	return src + opts.Suffix
}

// ConvertFile writes a copy of path with rewritten timestamps next to it. A partially
// written destination is removed when the conversion fails.
func ConvertFile(ctx context.Context, path string, opts Options) (stats Stats, err error) {
	if opts.Suffix == "" {
		return Stats{}, errors.New("empty destination suffix would overwrite the source")
	}

	in, err := os.Open(path)
	if err != nil {
		return Stats{}, &StreamError{Op: "open", Path: path, Err: err}
	}
	defer func() { _ = in.Close() }()

	src := bufio.NewReaderSize(in, max(opts.ChunkSize, filetype.SniffSize))
	if opts.SkipBinary {
		// Peek returns io.EOF for files shorter than SniffSize, that is not an error here
		sample, perr := src.Peek(filetype.SniffSize)
		if perr != nil && perr != io.EOF && !errors.Is(perr, bufio.ErrBufferFull) {
			return Stats{}, &StreamError{Op: "read", Path: path, Err: perr}
		}
		if typ, reason := filetype.Detect(sample); typ == filetype.TypeBinary {
			return Stats{Skipped: true, Reason: reason}, nil
		}
	}

	dst := Destination(path, opts)
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.Overwrite {
		flags |= os.O_EXCL
	}
	out, err := os.OpenFile(dst, flags, 0o644)
	if err != nil {
		return Stats{}, &StreamError{Op: "create", Path: dst, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &StreamError{Op: "close", Path: dst, Err: cerr}
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	bw := bufio.NewWriter(out)
	stats, err = Transform(ctx, src, bw, opts.ChunkSize)
	if err != nil {
		var se *StreamError
		if errors.As(err, &se) {
			se.Path = path
			if se.Op == "write" {
				se.Path = dst
			}
		}
		return stats, err
	}
	if err := bw.Flush(); err != nil {
		return stats, &StreamError{Op: "write", Path: dst, Err: err}
	}
	return stats, nil
}

// FileResult is the outcome of converting one file
type FileResult struct {
	Path  string
	Dest  string
	Stats Stats
	Err   error
}

// ConvertFiles converts paths with up to opts.Jobs files in flight. Chunks of a single
// file are always processed in order. Without FailFast every file is attempted and all
// errors are joined; with FailFast the first error cancels the conversions still
// running. Results are returned in the order of paths.
func ConvertFiles(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	log := opts.log()
	results := make([]FileResult, len(paths))

	var g *errgroup.Group
	if opts.FailFast {
		g, ctx = errgroup.WithContext(ctx)
	} else {
		g = &errgroup.Group{}
	}
	g.SetLimit(max(opts.Jobs, 1))

	for i, path := range paths {
		i, path := i, path // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			stats, err := ConvertFile(ctx, path, opts)
			results[i] = FileResult{Path: path, Dest: Destination(path, opts), Stats: stats, Err: err}

			switch {
			case err != nil:
				log.Error().Err(err).Str("path", path).Msg("conversion failed")
			case stats.Skipped:
				log.Warn().Str("path", path).Str("reason", stats.Reason).Msg("skipped binary file")
			default:
				log.Info().
					Str("path", path).
					Str("dest", results[i].Dest).
					Int64("bytes_in", stats.BytesIn).
					Int64("bytes_out", stats.BytesOut).
					Int("seconds", stats.Seconds).
					Int("milliseconds", stats.Milliseconds).
					Dur("elapsed", stats.Elapsed).
					Msg("converted")
			}

			if opts.FailFast {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}
