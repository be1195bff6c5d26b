package clipboard

import (
	"context"
	"time"

	atotto "github.com/atotto/clipboard"
	"github.com/rs/zerolog"
)

// DefaultPollInterval is how often the clipboard is read
const DefaultPollInterval = 500 * time.Millisecond

// Listener polls the clipboard and yields text that changed since the
// last poll. Whatever is on the clipboard when the listener is created
// is ignored.
type Listener struct {
	read     func() (string, error)
	interval time.Duration
	last     string
	failing  bool
	logger   zerolog.Logger
}

// NewListener creates a listener on the system clipboard
func NewListener(interval time.Duration, logger zerolog.Logger) *Listener {
	return newListener(atotto.ReadAll, interval, logger)
}

func newListener(read func() (string, error), interval time.Duration, logger zerolog.Logger) *Listener {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	l := &Listener{
		read:     read,
		interval: interval,
		logger:   logger.With().Str("component", "clipboard").Logger(),
	}
	l.last = l.poll()
	return l
}

// poll reads the clipboard, treating read failures as empty content
func (l *Listener) poll() string {
	text, err := l.read()
	if err != nil {
		if !l.failing {
			l.logger.Warn().Err(err).Msg("clipboard not readable")
			l.failing = true
		}
		return ""
	}
	l.failing = false
	return text
}

// Next implements Source
func (l *Listener) Next(ctx context.Context) (Capture, error) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Capture{}, ctx.Err()
		case <-ticker.C:
		}

		current := l.poll()
		if current == "" || current == l.last {
			continue
		}
		l.last = current

		capture, ok := ParseCapture(current)
		if !ok {
			continue
		}
		return capture, nil
	}
}
