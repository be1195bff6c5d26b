package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal"
)

// EnvPrefix prefixes environment variables read through viper
const EnvPrefix = "WKSENTENCE"

// legacyEnv maps viper keys to the environment variable names the tool
// has always honoured
var legacyEnv = map[string]string{
	"anki.deck":       "WK_DECK_NAME",
	"anki.model":      "SVENSKA_MODEL_NAME",
	"anki.url":        "ANKI_CONNECT_URL",
	"chat.model":      "OPENAI_CHAT_MODEL",
	"tts.model":       "OPENAI_TTS_MODEL",
	"tts.voices":      "OPENAI_TTS_VOICES",
	"openai.api_key":  "OPENAI_API_KEY",
	"gemini.api_key":  "GEMINI_API_KEY",
	"google.api_key":  "GOOGLE_API_KEY",
	"google.cx":       "GOOGLE_CX",
	"pixabay.api_key": "PIXABAY_API_KEY",
}

// flagKeys maps flag names to viper keys
var flagKeys = map[string]string{
	"deck":           "anki.deck",
	"note-type":      "anki.model",
	"anki-url":       "anki.url",
	"tags":           "anki.tags",
	"media-dir":      "media.dir",
	"poll-interval":  "clipboard.poll_interval",
	"timeout":        "network.timeout",
	"chat-model":     "chat.model",
	"tts-model":      "tts.model",
	"tts-voices":     "tts.voices",
	"image-provider": "image.provider",
	"apkg":           "export.apkg",
}

// flagAliases maps alternative spellings to flag names
var flagAliases = map[string]string{
	"deck-name":  "deck",
	"model-name": "note-type",
	"model":      "note-type",
}

// normalizeFlagName accepts underscores and the aliases above, so
// --deck_name, --deck-name and --deck all set the same flag
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if alias, ok := flagAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(name)
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wksentence",
		Short: "WaniKani sentence to Anki card assistant",
		Long: `wksentence watches the clipboard for Japanese sentences, discusses
each one with a language model and turns it into an Anki card with an
image and spoken audio, delivered through AnkiConnect.

Copy a sentence (optionally followed by its English translation on the
next line), then use /anki, /image or /skip at the prompt.

Examples:
  wksentence                          # Watch the clipboard
  wksentence --batch sentences.txt    # Read "日本語 = English" lines from a file
  wksentence --apkg wanikani.apkg     # Also export every card to a package
  wksentence --list-models            # List chat and TTS models`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().SetNormalizeFunc(normalizeFlagName)

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wksentence.yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	// Local flags
	cmd.Flags().StringVar(&flags.MediaDir, "media-dir", flags.MediaDir, "Directory for downloaded images and generated audio")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Read sentences from file instead of the clipboard (one per line, optional '= translation')")
	cmd.Flags().StringVar(&flags.APKGPath, "apkg", "", "Also export every created card to this .apkg file")
	cmd.Flags().DurationVar(&flags.PollInterval, "poll-interval", flags.PollInterval, "Clipboard polling interval")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Timeout for every network call")
	cmd.Flags().BoolVar(&flags.SkipAudio, "skip-audio", false, "Skip audio generation")
	cmd.Flags().BoolVar(&flags.SkipImages, "skip-images", false, "Skip image download")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available chat and TTS models for the current API key")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the media directory aside into a timestamped archive and exit")

	// Anki flags
	cmd.Flags().StringVar(&flags.DeckName, "deck", flags.DeckName, "Target Anki deck (env WK_DECK_NAME)")
	cmd.Flags().StringVar(&flags.ModelName, "note-type", flags.ModelName, "Anki note type (env SVENSKA_MODEL_NAME)")
	cmd.Flags().StringVar(&flags.AnkiConnectURL, "anki-url", flags.AnkiConnectURL, "AnkiConnect endpoint (env ANKI_CONNECT_URL)")
	cmd.Flags().StringVar(&flags.Tags, "tags", flags.Tags, "Comma separated note tags")

	// Provider flags
	cmd.Flags().StringVar(&flags.ChatModel, "chat-model", flags.ChatModel, "Chat model; gemini-* models use Gemini (env OPENAI_CHAT_MODEL)")
	cmd.Flags().StringVar(&flags.TTSModel, "tts-model", flags.TTSModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts (env OPENAI_TTS_MODEL)")
	cmd.Flags().StringVar(&flags.TTSVoices, "tts-voices", flags.TTSVoices, "Comma separated voices, one is picked per sentence (env OPENAI_TTS_VOICES)")
	cmd.Flags().StringVar(&flags.ImageProvider, "image-provider", flags.ImageProvider, "Image search provider: google or pixabay")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	for name, key := range flagKeys {
		viper.BindPFlag(key, cmd.Flags().Lookup(name))
	}
	bindEnv()
}

// bindEnv binds every key to its prefixed variable and, where one exists,
// its legacy name. The prefixed name wins when both are set.
func bindEnv() {
	keys := make(map[string]bool, len(flagKeys)+len(legacyEnv))
	for _, key := range flagKeys {
		keys[key] = true
	}
	for key := range legacyEnv {
		keys[key] = true
	}

	for key := range keys {
		names := []string{key, envName(key)}
		if legacy, ok := legacyEnv[key]; ok {
			names = append(names, legacy)
		}
		viper.BindEnv(names...)
	}
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	loadDotEnv(".env")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wksentence")
	}

	// Environment variables
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadDotEnv loads path into the environment without overriding
// variables that are already set
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", path, err)
	}
}
