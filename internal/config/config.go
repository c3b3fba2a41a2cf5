// Package config reads depoch settings from the environment
package config

import (
	"runtime"
	"strconv"

	"depoch/internal/config/raw"
	"depoch/internal/logger"
)

// Defaults used when the environment does not set a value
const (
	DefaultChunkSize = 1024
	DefaultSuffix    = ".depoch"
)

// Conf is a namespaced view over environment variables that logs invalid values
type Conf struct{ raw raw.Conf }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{raw: raw.New()} }

// Prefix creates a child Conf with an additional prefix, e.g. cfg.Prefix("DEPOCH_")
func (c Conf) Prefix(p string) Conf { return Conf{raw: c.raw.Prefix(p)} }

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	return c.raw.Get(key, def)
}

// MayInt returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt(key string, def int) int {
	s := c.raw.Get(key, "")
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.raw.Key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayPositiveInt is MayInt restricted to values >= 1
func (c Conf) MayPositiveInt(key string, def int) int {
	v := c.MayInt(key, def)
	if v < 1 {
		logger.Get().Warn().Str("key", c.raw.Key(key)).Int("value", v).Int("default", def).Msg("value must be positive; using default")
		return def
	}
	return v
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	s := c.raw.Get(key, "")
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.raw.Key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}

// Settings are the driver defaults. CLI flags override them.
type Settings struct {
	ChunkSize  int
	Suffix     string
	Jobs       int
	Overwrite  bool
	SkipBinary bool
}

// ChunkSize reads DEPOCH_CHUNK_SIZE only
func ChunkSize() int {
	return New().Prefix("DEPOCH_").MayPositiveInt("CHUNK_SIZE", DefaultChunkSize)
}

// Load reads DEPOCH_CHUNK_SIZE, DEPOCH_SUFFIX, DEPOCH_JOBS, DEPOCH_OVERWRITE and
// DEPOCH_SKIP_BINARY.
func Load() Settings {
	c := New().Prefix("DEPOCH_")
	return Settings{
		ChunkSize:  ChunkSize(),
		Suffix:     c.MayString("SUFFIX", DefaultSuffix),
		Jobs:       c.MayPositiveInt("JOBS", runtime.NumCPU()),
		Overwrite:  c.MayBool("OVERWRITE", true),
		SkipBinary: c.MayBool("SKIP_BINARY", false),
	}
}
