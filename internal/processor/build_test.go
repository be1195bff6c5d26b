package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/anki"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/audio"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/conversation"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/image"
)

func newAnkiServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string `json:"action"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		switch req.Action {
		case "version":
			w.Write([]byte(`{"result": 6, "error": null}`))
		default:
			w.Write([]byte(`{"result": null, "error": "unsupported action"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBuild_WithoutCredentials(t *testing.T) {
	server := newAnkiServer(t)
	cfg := testConfig()
	cfg.AnkiConnectURL = server.URL

	proc, err := Build(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop())
	require.NoError(t, err)

	engine, ok := proc.deps.Conversation.(*conversation.Engine)
	require.True(t, ok)
	assert.True(t, engine.Offline())
	assert.Nil(t, proc.deps.Audio, "audio needs an OpenAI key")
	assert.Nil(t, proc.deps.Images, "image search needs Google credentials")
	assert.IsType(t, &anki.Connect{}, proc.deps.Sink)
	assert.Nil(t, proc.deps.Exporter)
}

func TestBuild_WithCredentials(t *testing.T) {
	server := newAnkiServer(t)
	cfg := testConfig()
	cfg.AnkiConnectURL = server.URL
	cfg.OpenAIKey = "sk-test"
	cfg.PixabayAPIKey = "px-test"
	cfg.ImageProvider = "pixabay"
	cfg.MediaDir = t.TempDir()
	cfg.APKGPath = filepath.Join(t.TempDir(), "cards.apkg")

	proc, err := Build(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop())
	require.NoError(t, err)

	engine := proc.deps.Conversation.(*conversation.Engine)
	assert.False(t, engine.Offline())
	assert.IsType(t, &audio.Synthesizer{}, proc.deps.Audio)
	assert.IsType(t, &image.Fetcher{}, proc.deps.Images)
	require.NotNil(t, proc.deps.Exporter)
	assert.Equal(t, cfg.APKGPath, proc.deps.Exporter.Path())
}

func TestBuild_SkipFlagsDisableProviders(t *testing.T) {
	cfg := testConfig()
	cfg.AnkiConnectURL = ""
	cfg.APKGPath = filepath.Join(t.TempDir(), "cards.apkg")
	cfg.OpenAIKey = "sk-test"
	cfg.GoogleAPIKey = "g-test"
	cfg.GoogleCX = "cx-test"
	cfg.SkipAudio = true
	cfg.SkipImages = true

	proc, err := Build(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop())
	require.NoError(t, err)

	assert.Nil(t, proc.deps.Audio)
	assert.Nil(t, proc.deps.Images)
	assert.Nil(t, proc.deps.Sink)
	assert.NotNil(t, proc.deps.Exporter)
}

func TestBuild_UnreachableAnkiIsNotFatal(t *testing.T) {
	server := newAnkiServer(t)
	url := server.URL
	server.Close()

	cfg := testConfig()
	cfg.AnkiConnectURL = url

	proc, err := Build(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, proc.deps.Sink)
}

func TestBuild_CancelledDuringStartup(t *testing.T) {
	server := newAnkiServer(t)
	cfg := testConfig()
	cfg.AnkiConnectURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc, err := Build(ctx, cfg, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, proc)
}

// ttsProvider is an audio.Provider whose availability is fixed
type ttsProvider struct {
	availErr error
}

func (p ttsProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	return nil
}

func (p ttsProvider) Name() string { return "test-tts" }

func (p ttsProvider) IsAvailable() error { return p.availErr }

func TestNewSynthesizer_Availability(t *testing.T) {
	dir := t.TempDir()

	assert.NotNil(t, newSynthesizer(ttsProvider{}, dir, zerolog.Nop()))
	assert.Nil(t, newSynthesizer(ttsProvider{availErr: errors.New("OpenAI API key not configured")}, dir, zerolog.Nop()))
}
