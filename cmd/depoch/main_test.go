package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"depoch/internal/config"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		chunkSize, suffix, jobs = 0, "", 0
		noClobber, skipBinary, failFast, showStats, allowTTY = false, false, false, false, false
	})
	t.Setenv("LOG_LEVEL", "off")
}

func TestCheckStdinTerminal_Pty(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	defer func() { _ = ptmx.Close() }()
	defer func() { _ = tty.Close() }()

	require.Error(t, checkStdinTerminal(tty, false))
	require.NoError(t, checkStdinTerminal(tty, true))
}

func TestCheckStdinTerminal_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	defer func() { _ = w.Close() }()

	require.NoError(t, checkStdinTerminal(r, false))
}

func TestResolveOptions(t *testing.T) {
	resetFlags(t)
	s := config.Settings{ChunkSize: 1024, Suffix: ".depoch", Jobs: 4, Overwrite: true}

	opts, err := resolveOptions(s)
	require.NoError(t, err)
	require.Equal(t, 1024, opts.ChunkSize)
	require.Equal(t, ".depoch", opts.Suffix)
	require.Equal(t, 4, opts.Jobs)
	require.True(t, opts.Overwrite)

	chunkSize, suffix, jobs, noClobber, skipBinary = 3, ".utc", 1, true, true
	opts, err = resolveOptions(s)
	require.NoError(t, err)
	require.Equal(t, 3, opts.ChunkSize)
	require.Equal(t, ".utc", opts.Suffix)
	require.Equal(t, 1, opts.Jobs)
	require.False(t, opts.Overwrite)
	require.True(t, opts.SkipBinary)

	chunkSize = -1
	_, err = resolveOptions(s)
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	resetFlags(t)
	var out bytes.Buffer
	in := strings.NewReader("start=1530216070 end=1530216070317\n")
	require.NoError(t, filter(context.Background(), in, &out, 3))
	require.Equal(t, "start=[2018-06-28 20:01:10 UTC] end=[2018-06-28 20:01:10.317 UTC]\n", out.String())
}

func TestConvertCommand(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.log")
	b := filepath.Join(dir, "b.log")
	require.NoError(t, os.WriteFile(a, []byte("a 1530216070\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b 1530216070317\n"), 0o644))

	rootCmd.SetArgs([]string{"convert", "--chunk-size", "2", "--suffix", ".out", "--stats", a, b})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(a + ".out")
	require.NoError(t, err)
	require.Equal(t, "a [2018-06-28 20:01:10 UTC]\n", string(data))

	data, err = os.ReadFile(b + ".out")
	require.NoError(t, err)
	require.Equal(t, "b [2018-06-28 20:01:10.317 UTC]\n", string(data))
}

func TestConvertCommand_MissingFile(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	rootCmd.SetArgs([]string{"convert", filepath.Join(dir, "missing.log")})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "convert failed")
}

func TestResolveChunkSize(t *testing.T) {
	resetFlags(t)

	size, err := resolveChunkSize(1024)
	require.NoError(t, err)
	require.Equal(t, 1024, size)

	chunkSize = 5
	size, err = resolveChunkSize(1024)
	require.NoError(t, err)
	require.Equal(t, 5, size)

	chunkSize = -2
	_, err = resolveChunkSize(1024)
	require.Error(t, err)
}

func TestFilterCommand_IgnoresConvertSettings(t *testing.T) {
	resetFlags(t)
	t.Setenv("DEPOCH_CHUNK_SIZE", "4")
	t.Setenv("DEPOCH_JOBS", "0")
	t.Setenv("DEPOCH_SUFFIX", "")

	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("at 1530216070\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	defer func() { _ = r.Close() }()

	stdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = stdin }()

	var out bytes.Buffer
	rootCmd.SetIn(r)
	rootCmd.SetOut(&out)
	defer rootCmd.SetIn(nil)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"filter"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	require.Equal(t, "at [2018-06-28 20:01:10 UTC]\n", out.String())
}
