package image

import (
	"bytes"
	"context"
	stdimage "image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/testutil"
)

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := stdimage.NewPaletted(stdimage.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func newTestFetcher(t *testing.T, searcher *mockSearcher) (*Fetcher, string) {
	dir := filepath.Join(t.TempDir(), "media")
	return NewFetcher(searcher, &FetchOptions{OutputDir: dir, MaxSizeBytes: 1 << 20}, zerolog.Nop()), dir
}

func TestFilename(t *testing.T) {
	name := Filename("https://example.com/cat.jpg")
	assert.True(t, strings.HasPrefix(name, "img_"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, name, len("img_")+12+len(".png"))
	assert.Equal(t, name, Filename("https://example.com/cat.jpg"))
	assert.NotEqual(t, name, Filename("https://example.com/dog.jpg"))
}

func TestFetch_FirstValidCandidate(t *testing.T) {
	searcher := &mockSearcher{
		name: "mock",
		searchResults: []SearchResult{
			{URL: "https://a.example/missing.jpg"},
			{URL: "https://b.example/page.html"},
			{URL: "https://c.example/cat.jpg", Attribution: "c.example"},
			{URL: "https://d.example/never.png"},
		},
		bodies: map[string][]byte{
			"https://b.example/page.html": []byte("<!DOCTYPE html><html><body>not found</body></html>"),
			"https://c.example/cat.jpg":   jpegBytes(t),
			"https://d.example/never.png": testutil.PNGBytes(t),
		},
	}
	fetcher, dir := newTestFetcher(t, searcher)

	asset, err := fetcher.Fetch(context.Background(), "cat", "猫が好きです")
	require.NoError(t, err)

	assert.Equal(t, Filename("https://c.example/cat.jpg"), asset.Filename)
	assert.Equal(t, filepath.Join(dir, asset.Filename), asset.Path)
	assert.Equal(t, []string{
		"https://a.example/missing.jpg",
		"https://b.example/page.html",
		"https://c.example/cat.jpg",
	}, searcher.downloads)

	testutil.AssertFileExists(t, asset.Path)
	testutil.AssertFileNotExists(t, asset.Path+".part")

	data, err := os.ReadFile(asset.Path)
	require.NoError(t, err)
	_, format, err := stdimage.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestFetch_GIFIsReencoded(t *testing.T) {
	searcher := &mockSearcher{
		name:          "mock",
		searchResults: []SearchResult{{URL: "https://x.example/a.gif"}},
		bodies:        map[string][]byte{"https://x.example/a.gif": gifBytes(t)},
	}
	fetcher, _ := newTestFetcher(t, searcher)

	asset, err := fetcher.Fetch(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.True(t, asset.Exists())
}

func TestFetch_ReusesExistingFile(t *testing.T) {
	url := "https://c.example/cat.jpg"
	searcher := &mockSearcher{name: "mock", searchResults: []SearchResult{{URL: url}}}
	fetcher, dir := newTestFetcher(t, searcher)

	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, Filename(url)), testutil.PNGBytes(t), 0644))

	asset, err := fetcher.Fetch(context.Background(), "cat", "")
	require.NoError(t, err)
	assert.Equal(t, Filename(url), asset.Filename)
	assert.Empty(t, searcher.downloads)
}

func TestFetch_RepeatedIdeaSkipsSearch(t *testing.T) {
	url := "https://c.example/cat.jpg"
	searcher := &mockSearcher{
		name:          "mock",
		searchResults: []SearchResult{{URL: url}},
		bodies:        map[string][]byte{url: jpegBytes(t)},
	}
	fetcher, _ := newTestFetcher(t, searcher)

	first, err := fetcher.Fetch(context.Background(), "cat", "猫が好きです")
	require.NoError(t, err)
	second, err := fetcher.Fetch(context.Background(), "  cat ", "猫がいます")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, searcher.searchCalls)
	assert.Len(t, searcher.downloads, 1)

	// A removed file is fetched again
	require.NoError(t, os.Remove(first.Path))
	third, err := fetcher.Fetch(context.Background(), "cat", "")
	require.NoError(t, err)
	assert.Equal(t, first.Filename, third.Filename)
	assert.Equal(t, 2, searcher.searchCalls)

	_, err = fetcher.Fetch(context.Background(), "dog", "")
	require.NoError(t, err)
	assert.Equal(t, 3, searcher.searchCalls)
}

func TestFetch_Failures(t *testing.T) {
	t.Run("empty idea", func(t *testing.T) {
		searcher := &mockSearcher{name: "mock"}
		fetcher, _ := newTestFetcher(t, searcher)
		_, err := fetcher.Fetch(context.Background(), "   ", "")
		assert.Error(t, err)
		assert.Zero(t, searcher.searchCalls)
	})

	t.Run("search error", func(t *testing.T) {
		searcher := &mockSearcher{name: "mock", searchErr: &SearchError{Provider: "mock", Message: "quota"}}
		fetcher, _ := newTestFetcher(t, searcher)
		_, err := fetcher.Fetch(context.Background(), "cat", "")
		assert.ErrorContains(t, err, "quota")
	})

	t.Run("no results", func(t *testing.T) {
		fetcher, _ := newTestFetcher(t, &mockSearcher{name: "mock"})
		_, err := fetcher.Fetch(context.Background(), "cat", "")
		assert.ErrorContains(t, err, "no images found")
	})

	t.Run("no usable candidate", func(t *testing.T) {
		searcher := &mockSearcher{
			name:          "mock",
			searchResults: []SearchResult{{URL: "https://x.example/a"}},
			bodies:        map[string][]byte{"https://x.example/a": []byte("plain text")},
		}
		fetcher, dir := newTestFetcher(t, searcher)
		asset, err := fetcher.Fetch(context.Background(), "cat", "")
		assert.ErrorContains(t, err, "failed to download any images")
		assert.True(t, asset.IsZero())
		entries, _ := os.ReadDir(dir)
		assert.Empty(t, entries)
	})

	t.Run("too large", func(t *testing.T) {
		url := "https://x.example/big.jpg"
		searcher := &mockSearcher{
			name:          "mock",
			searchResults: []SearchResult{{URL: url}},
			bodies:        map[string][]byte{url: jpegBytes(t)},
		}
		dir := t.TempDir()
		fetcher := NewFetcher(searcher, &FetchOptions{OutputDir: dir, MaxSizeBytes: 10}, zerolog.Nop())
		_, err := fetcher.Fetch(context.Background(), "cat", "")
		assert.Error(t, err)
	})
}

func TestDecode(t *testing.T) {
	_, err := decode(nil)
	assert.Error(t, err)

	_, err = decode([]byte("%PDF-1.4 not an image"))
	assert.ErrorContains(t, err, "not an image")

	img, err := decode(testutil.PNGBytes(t))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}
