// Package batch reads sentences from a text file so a prepared list can
// be worked through without the clipboard.
package batch

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// SentenceEntry is one line of a batch file
type SentenceEntry struct {
	Sentence    string
	Translation string
}

// ReadBatchFile reads sentences from a file.
// Supported line formats:
// - sentence only: "猫が好きです"
// - with translation: "猫が好きです = I like cats."
// Blank lines, lines starting with '#' and lines without a sentence
// ("= I like cats.") are skipped.
func ReadBatchFile(filename string) ([]SentenceEntry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var entries []SentenceEntry
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if entry, ok := parseLine(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}

func parseLine(line string) (SentenceEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return SentenceEntry{}, false
	}

	sentence, translation, _ := strings.Cut(line, "=")
	entry := SentenceEntry{
		Sentence:    strings.TrimSpace(sentence),
		Translation: strings.TrimSpace(translation),
	}
	return entry, entry.Sentence != ""
}
