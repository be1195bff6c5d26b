package batch

import (
	"context"
	"io"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/clipboard"
)

// Source replays batch entries as captures
type Source struct {
	entries []SentenceEntry
	next    int
}

// NewSource creates a source over entries
func NewSource(entries []SentenceEntry) *Source {
	return &Source{entries: entries}
}

// Remaining returns the number of entries not yet handed out
func (s *Source) Remaining() int {
	return len(s.entries) - s.next
}

// Next implements clipboard.Source. It returns io.EOF after the last entry.
func (s *Source) Next(ctx context.Context) (clipboard.Capture, error) {
	if err := ctx.Err(); err != nil {
		return clipboard.Capture{}, err
	}
	if s.next >= len(s.entries) {
		return clipboard.Capture{}, io.EOF
	}

	e := s.entries[s.next]
	s.next++
	return clipboard.Capture{Sentence: e.Sentence, Translation: e.Translation}, nil
}
