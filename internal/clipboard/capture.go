// Package clipboard watches the system clipboard for copied sentences.
package clipboard

import (
	"context"
	"strings"
)

// Capture is a sentence taken from the clipboard. Translation is empty
// when the copied text had only one line.
type Capture struct {
	Sentence    string
	Translation string
}

// Source produces captures one at a time. Next blocks until a capture is
// available, the source is exhausted (io.EOF) or ctx is done.
type Source interface {
	Next(ctx context.Context) (Capture, error)
}

// ParseCapture splits copied text into sentence and translation. Blank
// lines are ignored; the first remaining line is the sentence and the
// second, if any, its translation. It reports false when the text holds
// nothing but whitespace.
func ParseCapture(text string) (Capture, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return Capture{}, false
	}

	c := Capture{Sentence: lines[0]}
	if len(lines) >= 2 {
		c.Translation = lines[1]
	}
	return c, true
}
