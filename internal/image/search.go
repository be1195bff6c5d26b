// Package image finds an illustration for a card: it searches an image
// provider for the operator's idea, downloads the candidates and stores
// the first one that decodes as a PNG in the media directory.
package image

import (
	"context"
	"errors"
	"io"
)

// ErrNotConfigured is returned when the image provider lacks credentials
var ErrNotConfigured = errors.New("image: not configured")

// SearchResult represents a single image search result
type SearchResult struct {
	ID           string // Unique identifier
	URL          string // Direct URL to the image
	ThumbnailURL string // URL to thumbnail version
	Width        int    // Image width in pixels
	Height       int    // Image height in pixels
	Description  string // Image description or tags
	Attribution  string // Attribution text if required
	Source       string // Source provider (e.g., "google", "pixabay")
}

// SearchOptions configures the image search
type SearchOptions struct {
	Query      string // Free-form image idea
	Language   string // Language code (default: "en")
	SafeSearch bool   // Enable safe search filtering
	PerPage    int    // Number of results per page
	Page       int    // Page number (1-based)
	ImageType  string // Type: "photo", "illustration", "vector", "all"
}

// DefaultSearchOptions returns the options used for card images
func DefaultSearchOptions(query string) *SearchOptions {
	return &SearchOptions{
		Query:      query,
		Language:   "en",
		SafeSearch: true,
		PerPage:    5,
		Page:       1,
		ImageType:  "photo",
	}
}

// ImageSearcher defines the interface for image search providers
type ImageSearcher interface {
	// Search performs an image search with the given options
	Search(ctx context.Context, opts *SearchOptions) ([]SearchResult, error)

	// Download downloads an image from the given URL
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// GetAttribution returns the required attribution text for an image
	GetAttribution(result *SearchResult) string

	// Name returns the name of the search provider
	Name() string
}

// SearchError represents an error from an image search provider
type SearchError struct {
	Provider string
	Code     string
	Message  string
}

func (e *SearchError) Error() string {
	return e.Provider + ": " + e.Message
}

// RateLimitError indicates that the API rate limit has been exceeded
type RateLimitError struct {
	Provider   string
	RetryAfter int // Seconds to wait before retry
}

func (e *RateLimitError) Error() string {
	return e.Provider + ": rate limit exceeded"
}
