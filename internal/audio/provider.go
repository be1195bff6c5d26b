// Package audio turns Japanese sentences into spoken audio files for the
// cards' example slot.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned when no TTS credentials are available
var ErrNotConfigured = errors.New("audio: not configured")

// DefaultVoices is used when no voice list is configured
var DefaultVoices = []string{"alloy", "verse", "lyric"}

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio generates audio from text and saves it to the specified file
	GenerateAudio(ctx context.Context, text string, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds the settings of the OpenAI TTS provider
type Config struct {
	OpenAIKey         string
	OpenAIURL         string   // Optional API base URL
	OpenAIModel       string   // "gpt-4o-mini-tts", "tts-1" or "tts-1-hd"
	Voices            []string // One is picked at random per sentence
	OpenAISpeed       float64  // 0.25 to 4.0
	OpenAIInstruction string   // Voice instructions for gpt-4o-mini-tts
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		OpenAIModel:       "gpt-4o-mini-tts",
		Voices:            DefaultVoices,
		OpenAISpeed:       1.0,
		OpenAIInstruction: "Read the Japanese sentence in natural standard Japanese (標準語) at a calm pace for language learners.",
	}
}

// ParseVoices splits a comma separated voice list, falling back to
// DefaultVoices when nothing usable is left
func ParseVoices(raw string) []string {
	var voices []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			voices = append(voices, v)
		}
	}
	if len(voices) == 0 {
		return DefaultVoices
	}
	return voices
}

// NewProvider creates the TTS provider. When the configured model is
// not tts-1 a tts-1 provider is chained as fallback, since access to the
// newer models is not granted to every account.
func NewProvider(config *Config, logger zerolog.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
	}

	primary, err := NewOpenAIProvider(config)
	if err != nil {
		return nil, err
	}
	if config.OpenAIModel == "tts-1" {
		return primary, nil
	}

	fallbackConfig := *config
	fallbackConfig.OpenAIModel = "tts-1"
	fallback, err := NewOpenAIProvider(&fallbackConfig)
	if err != nil {
		return nil, err
	}

	return NewProviderWithFallback(primary, fallback, logger), nil
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	logger   zerolog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger zerolog.Logger) *ProviderWithFallback {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, outputFile)
	if err == nil || ctx.Err() != nil {
		return err
	}

	p.logger.Warn().Err(err).
		Str("primary", p.primary.Name()).
		Str("fallback", p.fallback.Name()).
		Msg("TTS provider failed, falling back")

	return p.fallback.GenerateAudio(ctx, text, outputFile)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
