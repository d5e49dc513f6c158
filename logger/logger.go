// Package logger holds the zerolog logger shared by every openschema package.
// It is disabled until the host installs one with Set.
package logger

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	current.Store(&nop)
}

// New creates a stdout logger at level. If pretty is true, output is
// formatted for human readability. Unknown levels fall back to info.
func New(level string, pretty bool) *zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w, level)
}

// NewWithWriter is New with a caller-supplied writer.
func NewWithWriter(w io.Writer, level string) *zerolog.Logger {
	zLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zLevel = zerolog.InfoLevel
	}
	l := zerolog.New(w).With().Timestamp().Str("lib", "openschema").Logger().Level(zLevel)
	return &l
}

// Set installs l as the shared logger. A nil l disables logging.
func Set(l *zerolog.Logger) {
	if l == nil {
		nop := zerolog.Nop()
		l = &nop
	}
	current.Store(l)
}

// L returns the shared logger.
func L() *zerolog.Logger { return current.Load() }
