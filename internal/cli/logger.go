package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates the diagnostics logger. Diagnostics go to w (stderr
// in production) so they never interleave with the dialogue on stdout.
func NewLogger(verbose bool, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(output).
		With().
		Timestamp().
		Logger().
		Level(level)
}
