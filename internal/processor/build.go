package processor

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/anki"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/audio"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/chat"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/cli"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/conversation"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/image"
)

// Build wires the production collaborators for cfg. Subsystems whose
// credentials are missing are disabled for the whole run and reported
// once here. A ctx cancelled during startup is returned as ctx.Err().
func Build(ctx context.Context, cfg *cli.Config, in io.Reader, out io.Writer, logger zerolog.Logger) (*Processor, error) {
	input := conversation.NewLineReader(in, out)

	var completer chat.Completer
	c, err := chat.New(ctx, cfg.ChatConfig())
	switch {
	case errors.Is(err, chat.ErrNotConfigured):
		logger.Warn().Err(err).Msg("language model disabled, conversations run offline")
	case err != nil:
		return nil, err
	default:
		completer = c
		logger.Info().Str("model", c.Name()).Msg("language model ready")
	}

	deps := Deps{
		Conversation: conversation.NewEngine(completer, input, out, logger),
		Input:        input,
		Out:          out,
		Logger:       logger,
	}

	if !cfg.SkipAudio {
		synth, err := buildSynthesizer(cfg, logger)
		if err != nil {
			return nil, err
		}
		if synth != nil {
			deps.Audio = synth
		}
	}

	if !cfg.SkipImages {
		fetcher, err := buildFetcher(cfg, logger)
		if err != nil {
			return nil, err
		}
		if fetcher != nil {
			deps.Images = fetcher
		}
	}

	if cfg.AnkiConnectURL != "" {
		connect := anki.NewConnect(cfg.AnkiConnectURL, cfg.Timeout)
		if v, err := connect.Version(ctx); err != nil {
			logger.Warn().Err(err).Str("url", cfg.AnkiConnectURL).Msg("AnkiConnect not reachable, card submissions will fail until Anki is running")
		} else {
			logger.Debug().Int("version", v).Msg("AnkiConnect reachable")
		}
		deps.Sink = connect
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.APKGPath != "" {
		deps.Exporter = anki.NewAPKGWriter(cfg.APKGPath, cfg.DeckName, cfg.ModelName)
		logger.Info().Str("path", cfg.APKGPath).Msg("exporting cards to package")
	}

	return New(cfg, deps), nil
}

func buildSynthesizer(cfg *cli.Config, logger zerolog.Logger) (*audio.Synthesizer, error) {
	provider, err := audio.NewProvider(cfg.AudioConfig(), logger)
	if errors.Is(err, audio.ErrNotConfigured) {
		logger.Warn().Err(err).Msg("audio disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return newSynthesizer(provider, cfg.MediaDir, logger), nil
}

// newSynthesizer returns nil when provider reports itself unavailable
func newSynthesizer(provider audio.Provider, mediaDir string, logger zerolog.Logger) *audio.Synthesizer {
	if err := provider.IsAvailable(); err != nil {
		logger.Warn().Err(err).Str("provider", provider.Name()).Msg("audio disabled")
		return nil
	}
	logger.Info().Str("provider", provider.Name()).Msg("audio ready")
	return audio.NewSynthesizer(provider, mediaDir, logger)
}

func buildFetcher(cfg *cli.Config, logger zerolog.Logger) (*image.Fetcher, error) {
	var searcher image.ImageSearcher
	var err error

	switch cfg.ImageProvider {
	case "pixabay":
		searcher, err = image.NewPixabayClient(cfg.PixabayAPIKey, cfg.Timeout)
	default:
		searcher, err = image.NewGoogleClient(cfg.GoogleAPIKey, cfg.GoogleCX, cfg.Timeout)
	}
	if errors.Is(err, image.ErrNotConfigured) {
		logger.Warn().Err(err).Str("provider", cfg.ImageProvider).Msg("image search disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	breaker := image.NewBreakerSearcher(searcher, logger)
	return image.NewFetcher(breaker, cfg.FetchOptions(), logger), nil
}
