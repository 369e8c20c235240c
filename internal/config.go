package internal

import (
	"strings"
	"time"
)

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	ConfigFile      string        `env:"SUBPUB_CONFIG,default=~/.subpub.yaml"`
	TickInterval    time.Duration `env:"TICK_INTERVAL,default=1s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	Colours         bool          `env:"COLOURS,default=true"`
}

var levels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// Verbosity shifts the configured log level by the -v and -q counts,
// clamped to the known levels. An unknown level counts as INFO.
func (c Config) Verbosity(verbose, quiet int) string {
	index := 1
	for i, level := range levels {
		if strings.EqualFold(level, c.LogLevel) {
			index = i
		}
	}
	index = min(max(index-verbose+quiet, 0), len(levels)-1)
	return levels[index]
}
