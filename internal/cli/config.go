package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/audio"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/chat"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/image"
)

// Config is the resolved run configuration. It is built once at startup
// and passed to every component.
type Config struct {
	DeckName       string
	ModelName      string
	AnkiConnectURL string
	Tags           []string

	MediaDir     string
	BatchFile    string
	APKGPath     string
	PollInterval time.Duration
	Timeout      time.Duration
	SkipAudio    bool
	SkipImages   bool
	Verbose      bool

	ChatModel     string
	TTSModel      string
	TTSVoices     []string
	ImageProvider string

	OpenAIKey     string
	GeminiKey     string
	GoogleAPIKey  string
	GoogleCX      string
	PixabayAPIKey string
}

// LoadConfig resolves the configuration from flags, environment, config
// file and defaults, in that order
func LoadConfig(flags *Flags) (*Config, error) {
	cfg := &Config{
		DeckName:       stringOr("anki.deck", flags.DeckName),
		ModelName:      stringOr("anki.model", flags.ModelName),
		AnkiConnectURL: stringOr("anki.url", flags.AnkiConnectURL),
		Tags:           splitList(stringOr("anki.tags", flags.Tags)),
		MediaDir:       stringOr("media.dir", flags.MediaDir),
		BatchFile:      flags.BatchFile,
		APKGPath:       stringOr("export.apkg", flags.APKGPath),
		PollInterval:   durationOr("clipboard.poll_interval", flags.PollInterval),
		Timeout:        durationOr("network.timeout", flags.Timeout),
		SkipAudio:      flags.SkipAudio,
		SkipImages:     flags.SkipImages,
		Verbose:        flags.Verbose,
		ChatModel:      stringOr("chat.model", flags.ChatModel),
		TTSModel:       stringOr("tts.model", flags.TTSModel),
		TTSVoices:      audio.ParseVoices(stringOr("tts.voices", flags.TTSVoices)),
		ImageProvider:  strings.ToLower(stringOr("image.provider", flags.ImageProvider)),
		OpenAIKey:      viper.GetString("openai.api_key"),
		GeminiKey:      viper.GetString("gemini.api_key"),
		GoogleAPIKey:   viper.GetString("google.api_key"),
		GoogleCX:       viper.GetString("google.cx"),
		PixabayAPIKey:  viper.GetString("pixabay.api_key"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values no component can recover from
func (c *Config) Validate() error {
	var errs []error
	if c.DeckName == "" {
		errs = append(errs, errors.New("deck name must not be empty"))
	}
	if c.ModelName == "" {
		errs = append(errs, errors.New("note type must not be empty"))
	}
	if c.AnkiConnectURL == "" && c.APKGPath == "" {
		errs = append(errs, errors.New("either an AnkiConnect URL or an --apkg path is required"))
	}
	if c.MediaDir == "" {
		errs = append(errs, errors.New("media directory must not be empty"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	switch c.ImageProvider {
	case "google", "pixabay":
	default:
		errs = append(errs, fmt.Errorf("unknown image provider %q (use google or pixabay)", c.ImageProvider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ChatConfig returns the settings of the language model backend
func (c *Config) ChatConfig() *chat.Config {
	config := chat.DefaultConfig()
	config.Model = c.ChatModel
	config.OpenAIKey = c.OpenAIKey
	config.GeminiKey = c.GeminiKey
	config.Timeout = c.Timeout
	return config
}

// AudioConfig returns the settings of the TTS provider
func (c *Config) AudioConfig() *audio.Config {
	config := audio.DefaultProviderConfig()
	config.OpenAIKey = c.OpenAIKey
	config.OpenAIModel = c.TTSModel
	config.Voices = c.TTSVoices
	return config
}

// FetchOptions returns the settings of the image fetcher
func (c *Config) FetchOptions() *image.FetchOptions {
	options := image.DefaultFetchOptions()
	options.OutputDir = c.MediaDir
	return options
}

// stringOr returns the viper value of key, or fallback when unset
func stringOr(key, fallback string) string {
	if v := strings.TrimSpace(viper.GetString(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if !viper.IsSet(key) {
		return fallback
	}
	if d := viper.GetDuration(key); d != 0 {
		return d
	}
	return fallback
}

func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
