package audio

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider interface for OpenAI TTS
type OpenAIProvider struct {
	client *openai.Client
	config *Config
	voices []string
	pick   func(n int) int
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
	}

	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIURL != "" {
		clientConfig.BaseURL = config.OpenAIURL
	}

	voices := config.Voices
	if len(voices) == 0 {
		voices = DefaultVoices
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		voices: voices,
		pick:   rand.IntN,
	}, nil
}

// supportsInstructions reports whether the model accepts voice instructions
func (p *OpenAIProvider) supportsInstructions() bool {
	return p.config.OpenAIModel == "gpt-4o-mini-tts" || p.config.OpenAIModel == "gpt-4o-mini-audio-preview"
}

// voice returns a random voice from the configured list
func (p *OpenAIProvider) voice() string {
	return p.voices[p.pick(len(p.voices))]
}

// GenerateAudio generates audio using OpenAI TTS. The file is written
// under a temporary name first so that an interrupted download never
// leaves a truncated file at outputFile.
func (p *OpenAIProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	if err := ValidateJapaneseText(text); err != nil {
		return err
	}

	req := openai.CreateSpeechRequest{
		Model: openai.SpeechModel(p.config.OpenAIModel),
		Input: strings.TrimSpace(text),
		Voice: openai.SpeechVoice(p.voice()),
		Speed: p.config.OpenAISpeed,
	}

	if p.config.OpenAIInstruction != "" && p.supportsInstructions() {
		req.Instructions = p.config.OpenAIInstruction
	}

	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".wav":
		req.ResponseFormat = openai.SpeechResponseFormatWav
	case ".opus":
		req.ResponseFormat = openai.SpeechResponseFormatOpus
	case ".aac":
		req.ResponseFormat = openai.SpeechResponseFormatAac
	case ".flac":
		req.ResponseFormat = openai.SpeechResponseFormatFlac
	default:
		req.ResponseFormat = openai.SpeechResponseFormatMp3
	}

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "does not have access to model") && p.supportsInstructions() {
			return fmt.Errorf("OpenAI TTS API error: %w\nNote: The %s model requires access. Try OPENAI_TTS_MODEL=tts-1 instead", err, p.config.OpenAIModel)
		}
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	if dir := filepath.Dir(outputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	partial := outputFile + ".part"
	out, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	written, err := io.Copy(out, response)
	out.Close()
	if err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	if written == 0 {
		os.Remove(partial)
		return fmt.Errorf("no audio data received from OpenAI")
	}

	return os.Rename(partial, outputFile)
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai/" + p.config.OpenAIModel
}

// IsAvailable checks if the OpenAI API is accessible
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	// A test call would spend credits, a key is good enough
	return nil
}
