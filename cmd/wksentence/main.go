package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/archive"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/batch"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/cli"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/clipboard"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/models"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	ctx := cmd.Context()

	cfg, err := cli.LoadConfig(flags)
	if err != nil {
		return err
	}
	logger := cli.NewLogger(cfg.Verbose, os.Stderr)

	// Handle --archive flag
	if flags.Archive {
		return runArchive(cfg)
	}

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cfg.OpenAIKey, "")
		return lister.ListAvailableModels(ctx, os.Stdout, cfg.ChatModel, cfg.TTSModel)
	}

	source, err := newSource(cfg, logger)
	if err != nil {
		return err
	}

	proc, err := processor.Build(ctx, cfg, os.Stdin, os.Stdout, logger)
	if err != nil {
		return endOnCancel(ctx, err, os.Stdout)
	}

	fmt.Printf("Starting WaniKani sentence assistant (deck %q). Ctrl+C to quit.\n\n", cfg.DeckName)
	return proc.Run(ctx, source)
}

// endOnCancel turns an interrupt during startup into a normal exit
func endOnCancel(ctx context.Context, err error, w io.Writer) error {
	if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", processor.Farewell)
	return nil
}

func newSource(cfg *cli.Config, logger zerolog.Logger) (clipboard.Source, error) {
	if cfg.BatchFile == "" {
		return clipboard.NewListener(cfg.PollInterval, logger), nil
	}

	entries, err := batch.ReadBatchFile(cfg.BatchFile)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("file", cfg.BatchFile).Int("sentences", len(entries)).Msg("reading sentences from batch file")
	return batch.NewSource(entries), nil
}

func runArchive(cfg *cli.Config) error {
	result, err := archive.ArchiveMedia(cfg.MediaDir, time.Now())
	if errors.Is(err, archive.ErrNothingToArchive) {
		fmt.Println("Nothing to archive:", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to archive media: %w", err)
	}

	fmt.Printf("Archived %d media files to: %s\n", result.Files, result.Path)
	return nil
}
