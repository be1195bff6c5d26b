package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/anki"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/cli"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/clipboard"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/conversation"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/media"
)

// Farewell is printed when the session ends
const Farewell = "Exiting. おつかれさまでした！"

const listening = "Listening for copied Japanese sentences..."

// Conversation runs the dialogue about one sentence
type Conversation interface {
	Start(ctx context.Context, sentence, translation string) (conversation.Outcome, error)
}

// ImageFetcher finds and stores an image for an idea
type ImageFetcher interface {
	Fetch(ctx context.Context, idea, sentence string) (media.Asset, error)
}

// AudioSynthesizer produces the spoken sentence
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, sentence string) (media.Asset, error)
}

// Exporter collects cards into an offline package
type Exporter interface {
	Add(fields anki.Fields, tags []string, assets ...media.Asset) error
	Path() string
}

// Deps are the collaborators of a Processor. Nil Images, Audio, Sink or
// Exporter disable that step.
type Deps struct {
	Conversation Conversation
	Input        conversation.Input
	Images       ImageFetcher
	Audio        AudioSynthesizer
	Sink         anki.Sink
	Exporter     Exporter
	Out          io.Writer
	Logger       zerolog.Logger
}

// Result describes what happened to one capture
type Result struct {
	Outcome   conversation.OutcomeKind
	Fields    anki.Fields
	Image     media.Asset
	Audio     media.Asset
	NoteID    int64
	SubmitErr error
	Exported  bool
}

// Created reports whether Anki accepted the note
func (r Result) Created() bool {
	return r.NoteID != 0
}

// Stats counts the captures of a session
type Stats struct {
	Sentences int
	Created   int
	Skipped   int
	Failed    int
}

// Processor handles captured sentences one at a time
type Processor struct {
	cfg    *cli.Config
	deps   Deps
	out    io.Writer
	logger zerolog.Logger
	stats  Stats
}

// New creates a processor
func New(cfg *cli.Config, deps Deps) *Processor {
	out := deps.Out
	if out == nil {
		out = io.Discard
	}
	return &Processor{
		cfg:    cfg,
		deps:   deps,
		out:    out,
		logger: deps.Logger.With().Str("component", "processor").Logger(),
	}
}

// Stats returns the counters of the session so far
func (p *Processor) Stats() Stats {
	return p.stats
}

// Run processes captures from source until it is exhausted or ctx is
// cancelled. Both count as a normal end of session.
func (p *Processor) Run(ctx context.Context, source clipboard.Source) error {
	fmt.Fprintf(p.out, "%s\n", listening)

	for {
		capture, err := source.Next(ctx)
		if err != nil {
			if isEndOfSession(ctx, err) {
				p.finish()
				return nil
			}
			return fmt.Errorf("failed to read next sentence: %w", err)
		}

		if _, err := p.ProcessCapture(ctx, capture); err != nil {
			if isEndOfSession(ctx, err) {
				p.finish()
				return nil
			}
			return err
		}

		fmt.Fprintf(p.out, "\n%s\n\n", listening)
	}
}

func isEndOfSession(ctx context.Context, err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || ctx.Err() != nil
}

func (p *Processor) finish() {
	if p.stats.Sentences > 0 {
		fmt.Fprintf(p.out, "\n=== Session Summary ===\n")
		fmt.Fprintf(p.out, "Sentences: %d\n", p.stats.Sentences)
		fmt.Fprintf(p.out, "Cards created: %d\n", p.stats.Created)
		fmt.Fprintf(p.out, "Skipped: %d\n", p.stats.Skipped)
		if p.stats.Failed > 0 {
			fmt.Fprintf(p.out, "Failed: %d\n", p.stats.Failed)
		}
		fmt.Fprintf(p.out, "=======================\n")
	}
	fmt.Fprintf(p.out, "\n%s\n", Farewell)
}

// ProcessCapture runs one sentence through conversation, field
// collection, media, assembly and submission. Provider and sink
// failures are reported and absorbed; the returned error is non-nil only
// when input is exhausted or ctx is cancelled.
func (p *Processor) ProcessCapture(ctx context.Context, capture clipboard.Capture) (Result, error) {
	logger := p.logger.With().Str("capture_id", uuid.NewString()).Logger()
	p.stats.Sentences++

	fmt.Fprintf(p.out, "\n=== New sentence detected ===\n")
	fmt.Fprintf(p.out, "JP: %s\n", capture.Sentence)
	if capture.Translation != "" {
		fmt.Fprintf(p.out, "EN: %s\n", capture.Translation)
	}

	outcome, err := p.deps.Conversation.Start(ctx, capture.Sentence, capture.Translation)
	if err != nil {
		return Result{}, err
	}
	logger.Debug().Stringer("outcome", outcome.Kind).Int("turns", len(outcome.History)).Msg("conversation finished")

	result := Result{Outcome: outcome.Kind}
	if !outcome.WantsCard() {
		fmt.Fprintf(p.out, "No card created.\n")
		p.stats.Skipped++
		return result, nil
	}

	answers, err := p.collect(ctx, capture, outcome.Kind)
	if err != nil {
		return result, err
	}

	result.Image = p.fetchImage(ctx, logger, answers.imageIdea, capture.Sentence)
	result.Audio = p.synthesize(ctx, logger, capture.Sentence)

	fields := anki.AssembleFields(capture.Sentence, answers.targetWord, answers.englishWord, answers.translation, "", "")
	fields = p.upload(ctx, logger, fields, result.Image, result.Audio)
	result.Fields = fields

	p.submit(ctx, logger, &result)
	p.export(logger, &result)

	return result, nil
}

// answers are the operator's card metadata
type answers struct {
	targetWord  string
	englishWord string
	imageIdea   string
	translation string
}

func (p *Processor) collect(ctx context.Context, capture clipboard.Capture, kind conversation.OutcomeKind) (answers, error) {
	var a answers
	var err error

	if kind == conversation.OutcomeImagePrompt {
		idea, err := p.deps.Input.ReadLine(ctx, "Enter image idea (or /skip): ")
		if err != nil {
			return a, err
		}
		a.imageIdea = imageIdea(idea)
		a.translation = capture.Translation
		return a, nil
	}

	fmt.Fprint(p.out, conversation.CardMetadataPrompt(capture.Sentence, capture.Translation))

	if a.targetWord, err = p.readTrimmed(ctx, "1) Target Japanese word (exact substring from sentence): "); err != nil {
		return a, err
	}
	if a.englishWord, err = p.readTrimmed(ctx, "2) English meaning of that word: "); err != nil {
		return a, err
	}
	idea, err := p.readTrimmed(ctx, "3) Image idea (or /skip): ")
	if err != nil {
		return a, err
	}
	a.imageIdea = imageIdea(idea)

	if capture.Translation != "" {
		fmt.Fprintf(p.out, "Auto-detected English translation: %s\n", capture.Translation)
		a.translation = capture.Translation
	} else if a.translation, err = p.readTrimmed(ctx, "4) English translation of the entire sentence: "); err != nil {
		return a, err
	}

	if a.targetWord != "" && !strings.Contains(capture.Sentence, a.targetWord) {
		fmt.Fprintf(p.out, "Note: %q does not appear in the sentence; nothing will be highlighted.\n", a.targetWord)
	}
	return a, nil
}

func (p *Processor) readTrimmed(ctx context.Context, prompt string) (string, error) {
	line, err := p.deps.Input.ReadLine(ctx, prompt)
	return strings.TrimSpace(line), err
}

// imageIdea maps "/skip" and blank answers to no idea
func imageIdea(answer string) string {
	answer = strings.TrimSpace(answer)
	if conversation.ParseCommand(answer) == conversation.CommandSkip {
		return ""
	}
	return answer
}

func (p *Processor) fetchImage(ctx context.Context, logger zerolog.Logger, idea, sentence string) media.Asset {
	if idea == "" {
		return media.Asset{}
	}
	if p.cfg.SkipImages {
		logger.Debug().Msg("image step skipped by flag")
		return media.Asset{}
	}
	if p.deps.Images == nil {
		fmt.Fprintf(p.out, "Image idea provided but image search is unavailable.\n")
		return media.Asset{}
	}

	fmt.Fprintf(p.out, "Searching for image for: %s\n", idea)
	asset, err := p.deps.Images.Fetch(ctx, idea, sentence)
	if err != nil {
		logger.Warn().Err(err).Str("idea", idea).Msg("image fetch failed")
		fmt.Fprintf(p.out, "No image found.\n")
		return media.Asset{}
	}
	fmt.Fprintf(p.out, "Downloaded image: %s\n", asset.Filename)
	return asset
}

func (p *Processor) synthesize(ctx context.Context, logger zerolog.Logger, sentence string) media.Asset {
	if p.cfg.SkipAudio || p.deps.Audio == nil {
		return media.Asset{}
	}

	fmt.Fprintf(p.out, "Generating sentence audio...\n")
	asset, err := p.deps.Audio.Synthesize(ctx, sentence)
	if err != nil {
		logger.Warn().Err(err).Msg("audio synthesis failed")
		fmt.Fprintf(p.out, "TTS failed: %v\n", err)
		return media.Asset{}
	}
	return asset
}

// upload sends the produced media to the sink and references each file
// only once its upload succeeded
func (p *Processor) upload(ctx context.Context, logger zerolog.Logger, fields anki.Fields, image, audio media.Asset) anki.Fields {
	if p.deps.Sink == nil {
		return fields
	}
	if p.storeMedia(ctx, logger, image) {
		fields.Image = anki.ImageTag(image.Filename)
	}
	if p.storeMedia(ctx, logger, audio) {
		fields.AudioExample = anki.SoundTag(audio.Filename)
	}
	return fields
}

func (p *Processor) storeMedia(ctx context.Context, logger zerolog.Logger, asset media.Asset) bool {
	if asset.IsZero() {
		return false
	}

	data, err := asset.Read()
	if err != nil {
		logger.Warn().Err(err).Str("file", asset.Path).Msg("media file not readable")
		return false
	}
	if err := p.deps.Sink.StoreMediaFile(ctx, asset.Filename, data); err != nil {
		logger.Warn().Err(err).Str("file", asset.Filename).Msg("media upload failed")
		return false
	}
	logger.Debug().Str("file", asset.Filename).Int("bytes", len(data)).Msg("media uploaded")
	return true
}

func (p *Processor) submit(ctx context.Context, logger zerolog.Logger, result *Result) {
	if p.deps.Sink == nil {
		return
	}

	fmt.Fprintf(p.out, "Adding card to Anki deck: %s\n", p.cfg.DeckName)
	note := anki.NewNote(p.cfg.DeckName, p.cfg.ModelName, result.Fields, p.cfg.Tags)
	id, err := p.deps.Sink.AddNote(ctx, note)
	if err == nil && id == 0 {
		err = errors.New("anki returned no note id")
	}
	if err != nil {
		result.SubmitErr = err
		p.stats.Failed++
		logger.Error().Err(err).Bool("duplicate", anki.IsDuplicate(err)).Msg("addNote failed")
		fmt.Fprintf(p.out, "✗ Failed to create card: %v\n", err)
		return
	}

	result.NoteID = id
	p.stats.Created++
	logger.Info().Int64("note_id", id).Msg("card created")
	fmt.Fprintf(p.out, "✓ Card created! Note ID: %d\n", id)
}

// export adds the card to the offline package. The package carries its
// own copy of the media, so every produced asset is referenced.
func (p *Processor) export(logger zerolog.Logger, result *Result) {
	if p.deps.Exporter == nil {
		return
	}

	fields := result.Fields
	if !result.Image.IsZero() {
		fields.Image = anki.ImageTag(result.Image.Filename)
	}
	if !result.Audio.IsZero() {
		fields.AudioExample = anki.SoundTag(result.Audio.Filename)
	}

	if err := p.deps.Exporter.Add(fields, p.cfg.Tags, result.Image, result.Audio); err != nil {
		logger.Error().Err(err).Str("path", p.deps.Exporter.Path()).Msg("apkg export failed")
		fmt.Fprintf(p.out, "✗ Failed to export card: %v\n", err)
		return
	}

	result.Exported = true
	if p.deps.Sink == nil {
		p.stats.Created++
	}
	fmt.Fprintf(p.out, "Card exported to %s\n", p.deps.Exporter.Path())
}
