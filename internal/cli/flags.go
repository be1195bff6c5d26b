package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile      string
	MediaDir     string
	BatchFile    string
	APKGPath     string
	PollInterval time.Duration
	Timeout      time.Duration
	SkipAudio    bool
	SkipImages   bool
	Verbose      bool
	ListModels   bool
	Archive      bool

	// Anki flags
	DeckName       string
	ModelName      string
	AnkiConnectURL string
	Tags           string

	// Provider flags
	ChatModel     string
	TTSModel      string
	TTSVoices     string
	ImageProvider string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		MediaDir:       "media",
		PollInterval:   500 * time.Millisecond,
		Timeout:        20 * time.Second,
		DeckName:       "Test Script Wk deck",
		ModelName:      "Basic+",
		AnkiConnectURL: "http://localhost:8765",
		Tags:           "wanikani,auto",
		ChatModel:      "gpt-4o",
		TTSModel:       "gpt-4o-mini-tts",
		TTSVoices:      "alloy,verse,lyric",
		ImageProvider:  "google",
	}
}
