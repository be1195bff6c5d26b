package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/anki"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/chat"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/media"
)

// ScriptedInput replays fixed lines and reports io.EOF once they run out
type ScriptedInput struct {
	Lines   []string
	Prompts []string
}

// NewScriptedInput creates an input that yields lines in order
func NewScriptedInput(lines ...string) *ScriptedInput {
	return &ScriptedInput{Lines: lines}
}

// ReadLine returns the next scripted line
func (s *ScriptedInput) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Lines) == 0 {
		return "", io.EOF
	}
	line := s.Lines[0]
	s.Lines = s.Lines[1:]
	return line, nil
}

// Reply is one scripted answer of a MockCompleter
type Reply struct {
	Text string
	Err  error
}

// MockCompleter mocks a language model backend
type MockCompleter struct {
	Replies []Reply
	Calls   [][]chat.Turn
}

// Complete records the dialogue and returns the next scripted reply
func (m *MockCompleter) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	m.Calls = append(m.Calls, append([]chat.Turn(nil), turns...))

	if len(m.Replies) == 0 {
		return "mock reply", nil
	}
	r := m.Replies[0]
	m.Replies = m.Replies[1:]
	return r.Text, r.Err
}

// Name returns the mock name
func (m *MockCompleter) Name() string {
	return "mock"
}

// MockSink mocks the AnkiConnect sink. Identical notes submitted with
// duplicates disallowed are rejected like AnkiConnect does.
type MockSink struct {
	mu         sync.Mutex
	Media      map[string][]byte
	Notes      []anki.Note
	MediaErr   error
	NoteErr    error
	Calls      []string
	seen       map[string]bool
	nextNoteID int64
}

// NewMockSink creates an empty mock sink
func NewMockSink() *MockSink {
	return &MockSink{
		Media:      make(map[string][]byte),
		seen:       make(map[string]bool),
		nextNoteID: 1700000000000,
	}
}

// StoreMediaFile records an upload
func (m *MockSink) StoreMediaFile(ctx context.Context, filename string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, "storeMediaFile "+filename)
	if m.MediaErr != nil {
		return m.MediaErr
	}
	m.Media[filename] = data
	return nil
}

// AddNote records a note submission
func (m *MockSink) AddNote(ctx context.Context, note anki.Note) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, "addNote "+note.DeckName)
	if m.NoteErr != nil {
		return 0, m.NoteErr
	}

	key := noteKey(note)
	if !note.Options.AllowDuplicate && m.seen[key] {
		return 0, &anki.ConnectError{Action: "addNote", Message: "cannot create note because it is a duplicate"}
	}
	m.seen[key] = true
	m.Notes = append(m.Notes, note)
	m.nextNoteID++
	return m.nextNoteID, nil
}

// CallCount returns how many calls of the given action were made
func (m *MockSink) CallCount(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if strings.HasPrefix(c, action+" ") {
			n++
		}
	}
	return n
}

func noteKey(note anki.Note) string {
	keys := make([]string, 0, len(note.Fields))
	for k := range note.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s", note.DeckName, note.ModelName)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, note.Fields[k])
	}
	return b.String()
}

// StubImageFetcher returns a fixed asset or error
type StubImageFetcher struct {
	Asset media.Asset
	Err   error
	Calls []string
}

// Fetch records the idea and returns the stubbed result
func (s *StubImageFetcher) Fetch(ctx context.Context, idea, sentence string) (media.Asset, error) {
	s.Calls = append(s.Calls, idea)
	return s.Asset, s.Err
}

// StubSynthesizer returns a fixed audio asset or error
type StubSynthesizer struct {
	Asset media.Asset
	Err   error
	Calls []string
}

// Synthesize records the sentence and returns the stubbed result
func (s *StubSynthesizer) Synthesize(ctx context.Context, sentence string) (media.Asset, error) {
	s.Calls = append(s.Calls, sentence)
	return s.Asset, s.Err
}

// TestDataGenerator generates test data
type TestDataGenerator struct{}

// GenerateSentence returns a short Japanese sentence with its translation
func (g *TestDataGenerator) GenerateSentence() (string, string) {
	return "猫が好きです", "I like cats."
}

// GenerateAudioData generates mock audio data
func (g *TestDataGenerator) GenerateAudioData() []byte {
	// Simple mock MP3 header
	return []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}
}
