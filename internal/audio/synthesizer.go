package audio

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/media"
)

// Synthesizer produces one audio file per sentence in the media
// directory. Files are keyed by sentence content and reused when present.
type Synthesizer struct {
	provider Provider
	dir      string
	logger   zerolog.Logger
}

// NewSynthesizer creates a synthesizer. A nil provider only serves files
// that already exist.
func NewSynthesizer(provider Provider, dir string, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		dir:      dir,
		logger:   logger.With().Str("component", "audio").Logger(),
	}
}

// Filename returns the media filename used for sentence
func Filename(sentence string) string {
	return fmt.Sprintf("audio_%s.mp3", internal.ContentID(sentence))
}

// Synthesize returns the audio asset for sentence, generating it when
// no file exists yet
func (s *Synthesizer) Synthesize(ctx context.Context, sentence string) (media.Asset, error) {
	if err := ValidateJapaneseText(sentence); err != nil {
		return media.Asset{}, err
	}

	asset := media.NewAsset(s.dir, Filename(sentence))
	if asset.Exists() {
		s.logger.Debug().Str("file", asset.Filename).Msg("reusing existing audio")
		return asset, nil
	}

	if s.provider == nil {
		return media.Asset{}, ErrNotConfigured
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return media.Asset{}, fmt.Errorf("failed to create media directory: %w", err)
	}

	if err := s.provider.GenerateAudio(ctx, sentence, asset.Path); err != nil {
		return media.Asset{}, fmt.Errorf("%s: %w", s.provider.Name(), err)
	}

	if !asset.Exists() {
		return media.Asset{}, fmt.Errorf("%s produced no audio for %s", s.provider.Name(), asset.Filename)
	}

	s.logger.Debug().Str("file", asset.Filename).Str("provider", s.provider.Name()).Msg("audio generated")
	return asset, nil
}
