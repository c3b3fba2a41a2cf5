package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"depoch/internal/config"
	"depoch/internal/driver"
	"depoch/internal/logger"
	"depoch/internal/sysmon"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

var (
	chunkSize  int
	suffix     string
	jobs       int
	noClobber  bool
	skipBinary bool
	failFast   bool
	showStats  bool
	logLevel   string

	allowTTY bool
)

var rootCmd = &cobra.Command{
	Use:     "depoch",
	Short:   "depoch - Rewrite Unix epoch timestamps as readable UTC dates",
	Long:    `depoch replaces every run of exactly 10 digits (epoch seconds) or 13 digits (epoch milliseconds) with a bracketed UTC date-time such as [2018-06-28 20:01:10.317 UTC]. All other bytes are copied unchanged.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			logger.SetLevel(logLevel)
		}
	},
}

// resolveChunkSize applies --chunk-size over the environment default
func resolveChunkSize(def int) (int, error) {
	size := def
	if chunkSize != 0 {
		size = chunkSize
	}
	if size < 1 {
		return size, fmt.Errorf("--chunk-size must be at least 1, got %d", size)
	}
	return size, nil
}

// resolveOptions merges flags over the environment settings. Zero-valued flags were
// not given and fall back to the settings.
func resolveOptions(s config.Settings) (driver.Options, error) {
	size, err := resolveChunkSize(s.ChunkSize)
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{
		ChunkSize:  size,
		Suffix:     s.Suffix,
		Jobs:       s.Jobs,
		Overwrite:  s.Overwrite && !noClobber,
		SkipBinary: s.SkipBinary || skipBinary,
		FailFast:   failFast,
		Logger:     logger.Named("driver"),
	}
	if suffix != "" {
		opts.Suffix = suffix
	}
	if jobs != 0 {
		opts.Jobs = jobs
	}
	if opts.Jobs < 1 {
		return opts, fmt.Errorf("--jobs must be at least 1, got %d", opts.Jobs)
	}
	return opts, nil
}

// checkStdinTerminal returns an error if stdin is an interactive terminal and allowTTY is false
func checkStdinTerminal(stdin *os.File, allowTTY bool) error {
	if term.IsTerminal(int(stdin.Fd())) && !allowTTY {
		return fmt.Errorf("refusing to read from a terminal. Pipe data into depoch or use --allow-tty")
	}
	return nil
}

func logUsage() {
	u, err := sysmon.Self()
	if err != nil {
		logger.Get().Warn().Err(err).Msg("resource usage unavailable")
		return
	}
	logger.Get().Info().Object("usage", u).Msg("resource usage")
}

var convertCmd = &cobra.Command{
	Use:   "convert FILE...",
	Short: "Convert files into sibling files with readable timestamps",
	Long: `Convert each FILE into FILE.depoch (see --suffix) with all epoch timestamps rewritten.

Files are read in chunks of --chunk-size bytes. Timestamps that straddle two chunks are
handled correctly. Several files are converted in parallel (see --jobs). A failing file
does not stop the others unless --fail-fast is given.

Environment:
  DEPOCH_CHUNK_SIZE, DEPOCH_SUFFIX, DEPOCH_JOBS, DEPOCH_OVERWRITE, DEPOCH_SKIP_BINARY
  LOG_LEVEL, LOG_FORMAT`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions(config.Load())
		if err != nil {
			return err
		}

		results, err := driver.ConvertFiles(cmd.Context(), args, opts)
		if showStats {
			var total driver.Stats
			for _, r := range results {
				total.BytesIn += r.Stats.BytesIn
				total.BytesOut += r.Stats.BytesOut
				total.Seconds += r.Stats.Seconds
				total.Milliseconds += r.Stats.Milliseconds
			}
			logger.Get().Info().
				Int("files", len(results)).
				Int64("bytes_in", total.BytesIn).
				Int64("bytes_out", total.BytesOut).
				Int("replaced", total.Replaced()).
				Msg("totals")
			logUsage()
		}
		if err != nil {
			return fmt.Errorf("convert failed: %w", err)
		}
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Rewrite timestamps from stdin to stdout",
	Long: `Read stdin until it is exhausted and write it to stdout with all epoch timestamps rewritten.

Example:
  tail -f app.log | depoch filter`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkStdinTerminal(os.Stdin, allowTTY); err != nil {
			return err
		}
		size, err := resolveChunkSize(config.ChunkSize())
		if err != nil {
			return err
		}
		return filter(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), size)
	},
}

func filter(ctx context.Context, r io.Reader, w io.Writer, size int) error {
	stats, err := driver.Transform(ctx, r, w, size)
	if err != nil {
		return fmt.Errorf("filter failed: %w", err)
	}
	if showStats {
		logger.Get().Info().
			Int64("bytes_in", stats.BytesIn).
			Int64("bytes_out", stats.BytesOut).
			Int("replaced", stats.Replaced()).
			Dur("elapsed", stats.Elapsed).
			Msg("totals")
		logUsage()
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{convertCmd, filterCmd} {
		c.Flags().IntVar(&chunkSize, "chunk-size", 0, "Bytes read per chunk (default: $DEPOCH_CHUNK_SIZE or 1024)")
		c.Flags().BoolVar(&showStats, "stats", false, "Log totals and resource usage when done")
	}

	convertCmd.Flags().StringVar(&suffix, "suffix", "", "Suffix appended to each FILE to name its output (default: $DEPOCH_SUFFIX or .depoch)")
	convertCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Files converted in parallel (default: $DEPOCH_JOBS or number of CPUs)")
	convertCmd.Flags().BoolVar(&noClobber, "no-clobber", false, "Fail instead of overwriting an existing output file")
	convertCmd.Flags().BoolVar(&skipBinary, "skip-binary", false, "Skip files that look binary")
	convertCmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop all conversions after the first error")

	filterCmd.Flags().BoolVar(&allowTTY, "allow-tty", false, "Allow reading from an interactive terminal")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, off (default: $LOG_LEVEL or info)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(filterCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
