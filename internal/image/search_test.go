package image

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// mockSearcher implements ImageSearcher for testing. Download serves
// bodies by URL; unknown URLs fail.
type mockSearcher struct {
	name          string
	searchResults []SearchResult
	searchErr     error
	bodies        map[string][]byte
	searchCalls   int
	downloads     []string
}

func (m *mockSearcher) Search(ctx context.Context, opts *SearchOptions) ([]SearchResult, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults, nil
}

func (m *mockSearcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	m.downloads = append(m.downloads, url)
	body, ok := m.bodies[url]
	if !ok {
		return nil, errors.New("download failed with status 404")
	}
	return io.NopCloser(strings.NewReader(string(body))), nil
}

func (m *mockSearcher) GetAttribution(result *SearchResult) string {
	return result.Attribution
}

func (m *mockSearcher) Name() string {
	return m.name
}

func TestDefaultSearchOptions(t *testing.T) {
	opts := DefaultSearchOptions("cat on a sofa")

	if opts.Query != "cat on a sofa" {
		t.Errorf("Expected query 'cat on a sofa', got '%s'", opts.Query)
	}

	if opts.Language != "en" {
		t.Errorf("Expected language 'en', got '%s'", opts.Language)
	}

	if !opts.SafeSearch {
		t.Error("Expected SafeSearch to be true")
	}

	if opts.PerPage != 5 {
		t.Errorf("Expected PerPage 5, got %d", opts.PerPage)
	}

	if opts.Page != 1 {
		t.Errorf("Expected Page 1, got %d", opts.Page)
	}
}

func TestSearchError(t *testing.T) {
	err := &SearchError{
		Provider: "test",
		Code:     "404",
		Message:  "Not found",
	}

	expected := "test: Not found"
	if err.Error() != expected {
		t.Errorf("Expected error '%s', got '%s'", expected, err.Error())
	}
}

func TestRateLimitError(t *testing.T) {
	err := &RateLimitError{
		Provider:   "test",
		RetryAfter: 60,
	}

	expected := "test: rate limit exceeded"
	if err.Error() != expected {
		t.Errorf("Expected error '%s', got '%s'", expected, err.Error())
	}
}
