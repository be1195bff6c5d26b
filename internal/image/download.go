package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal"
	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/media"
)

// FetchOptions configures image downloads
type FetchOptions struct {
	OutputDir    string // Media directory
	MaxSizeBytes int64  // Maximum image size to download (0 = no limit)
}

// DefaultFetchOptions returns sensible defaults for image downloads
func DefaultFetchOptions() *FetchOptions {
	return &FetchOptions{
		OutputDir:    "media",
		MaxSizeBytes: 10 * 1024 * 1024, // 10MB
	}
}

// Fetcher turns an image idea into a PNG in the media directory
type Fetcher struct {
	searcher ImageSearcher
	options  *FetchOptions
	logger   zerolog.Logger

	mu    sync.Mutex
	ideas map[string]media.Asset // ContentID(idea) -> stored image
}

// NewFetcher creates a fetcher on top of searcher
func NewFetcher(searcher ImageSearcher, options *FetchOptions, logger zerolog.Logger) *Fetcher {
	if options == nil {
		options = DefaultFetchOptions()
	}
	return &Fetcher{
		searcher: searcher,
		options:  options,
		logger:   logger.With().Str("component", "image").Str("provider", searcher.Name()).Logger(),
		ideas:    make(map[string]media.Asset),
	}
}

// Filename returns the media filename for an image URL
func Filename(url string) string {
	return fmt.Sprintf("img_%s.png", internal.ContentID(url))
}

// Fetch searches for idea and stores the first usable candidate. The
// sentence only gives log context; the search query is the idea alone.
// An idea already fetched this run is answered without a search while
// its file still exists.
func (f *Fetcher) Fetch(ctx context.Context, idea, sentence string) (media.Asset, error) {
	query := strings.TrimSpace(idea)
	if query == "" {
		return media.Asset{}, fmt.Errorf("empty image idea")
	}

	key := internal.ContentID(query)
	if asset, ok := f.lookup(key); ok {
		f.logger.Debug().Str("file", asset.Filename).Str("idea", query).Msg("reusing image for idea")
		return asset, nil
	}

	asset, err := f.fetch(ctx, query, sentence)
	if err != nil {
		return media.Asset{}, err
	}
	f.remember(key, asset)
	return asset, nil
}

func (f *Fetcher) lookup(key string) (media.Asset, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	asset, ok := f.ideas[key]
	if ok && !asset.Exists() {
		delete(f.ideas, key)
		return media.Asset{}, false
	}
	return asset, ok
}

func (f *Fetcher) remember(key string, asset media.Asset) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ideas[key] = asset
}

func (f *Fetcher) fetch(ctx context.Context, query, sentence string) (media.Asset, error) {
	results, err := f.searcher.Search(ctx, DefaultSearchOptions(query))
	if err != nil {
		return media.Asset{}, fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return media.Asset{}, fmt.Errorf("no images found for query: %s", query)
	}

	for i, result := range results {
		asset := media.NewAsset(f.options.OutputDir, Filename(result.URL))
		if asset.Exists() {
			f.logger.Debug().Str("file", asset.Filename).Msg("reusing existing image")
			return asset, nil
		}

		if err := f.store(ctx, &result, asset); err != nil {
			if ctx.Err() != nil {
				return media.Asset{}, ctx.Err()
			}
			f.logger.Warn().Err(err).Int("candidate", i+1).Str("url", result.URL).Msg("skipping image candidate")
			continue
		}

		if attribution := f.searcher.GetAttribution(&result); attribution != "" {
			f.logger.Info().Str("file", asset.Filename).Str("attribution", attribution).Str("sentence", sentence).Msg("image stored")
		}
		return asset, nil
	}

	return media.Asset{}, fmt.Errorf("failed to download any images for query: %s", query)
}

// store downloads a candidate, checks that it really is an image and
// writes it re-encoded as PNG
func (f *Fetcher) store(ctx context.Context, result *SearchResult, asset media.Asset) error {
	reader, err := f.searcher.Download(ctx, result.URL)
	if err != nil {
		return err
	}
	defer reader.Close()

	data, err := readLimited(reader, f.options.MaxSizeBytes)
	if err != nil {
		return err
	}

	img, err := decode(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.options.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	partial := asset.Path + ".part"
	file, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		os.Remove(partial)
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(partial)
		return err
	}

	return os.Rename(partial, asset.Path)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image exceeds maximum size of %d bytes", limit)
	}
	return data, nil
}

// decode sniffs the payload before decoding so HTML error pages and
// other non-image bodies are rejected with a clear message
func decode(data []byte) (stdimage.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image body")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("not an image: %s", mtype.String())
	}

	img, _, err := stdimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", mtype.String(), err)
	}
	return img, nil
}
