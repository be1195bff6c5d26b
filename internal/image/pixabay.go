package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const pixabayAPIURL = "https://pixabay.com/api/"

// PixabayClient implements ImageSearcher for Pixabay API
type PixabayClient struct {
	apiKey    string
	baseURL   string
	client    *resty.Client
	rateLimit *rateLimiter
}

// pixabayResponse represents the API response structure
type pixabayResponse struct {
	Total     int            `json:"total"`
	TotalHits int            `json:"totalHits"`
	Hits      []pixabayImage `json:"hits"`
}

// pixabayImage represents a single image in the response
type pixabayImage struct {
	ID              int    `json:"id"`
	PageURL         string `json:"pageURL"`
	Tags            string `json:"tags"`
	PreviewURL      string `json:"previewURL"`
	WebformatURL    string `json:"webformatURL"`
	WebformatWidth  int    `json:"webformatWidth"`
	WebformatHeight int    `json:"webformatHeight"`
	User            string `json:"user"`
}

// rateLimiter keeps requests under a per-minute budget
type rateLimiter struct {
	mu                sync.Mutex
	requestsPerMinute int
	requests          []time.Time
}

func newRateLimiter(rpm int) *rateLimiter {
	return &rateLimiter{
		requestsPerMinute: rpm,
		requests:          make([]time.Time, 0, rpm),
	}
}

func (rl *rateLimiter) wait(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	// Drop requests older than 1 minute
	cutoff := now.Add(-1 * time.Minute)
	i := 0
	for i < len(rl.requests) && rl.requests[i].Before(cutoff) {
		i++
	}
	rl.requests = rl.requests[i:]

	if len(rl.requests) >= rl.requestsPerMinute {
		waitDuration := rl.requests[0].Add(1 * time.Minute).Sub(now)
		if waitDuration > 0 {
			timer := time.NewTimer(waitDuration)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
		now = time.Now()
	}

	rl.requests = append(rl.requests, now)
	return nil
}

// NewPixabayClient creates a new Pixabay API client
func NewPixabayClient(apiKey string, timeout time.Duration) (*PixabayClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: PIXABAY_API_KEY is required", ErrNotConfigured)
	}
	return &PixabayClient{
		apiKey:    apiKey,
		baseURL:   pixabayAPIURL,
		client:    newRestClient(timeout),
		rateLimit: newRateLimiter(100), // 100 requests per minute
	}, nil
}

// Search performs an image search on Pixabay
func (p *PixabayClient) Search(ctx context.Context, opts *SearchOptions) ([]SearchResult, error) {
	if err := p.rateLimit.wait(ctx); err != nil {
		return nil, err
	}

	// Pixabay rejects per_page below 3
	perPage := opts.PerPage
	if perPage < 3 {
		perPage = 3
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	imageType := opts.ImageType
	if imageType == "" {
		imageType = "all"
	}
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}

	var out pixabayResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":        p.apiKey,
			"q":          opts.Query,
			"lang":       lang,
			"image_type": imageType,
			"safesearch": strconv.FormatBool(opts.SafeSearch),
			"per_page":   strconv.Itoa(perPage),
			"page":       strconv.Itoa(page),
		}).
		SetResult(&out).
		Get(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, &RateLimitError{Provider: p.Name(), RetryAfter: 60}
	}
	if resp.IsError() {
		return nil, &SearchError{
			Provider: p.Name(),
			Code:     strconv.Itoa(resp.StatusCode()),
			Message:  resp.String(),
		}
	}

	results := make([]SearchResult, 0, len(out.Hits))
	for _, hit := range out.Hits {
		results = append(results, SearchResult{
			ID:           strconv.Itoa(hit.ID),
			URL:          hit.WebformatURL,
			ThumbnailURL: hit.PreviewURL,
			Width:        hit.WebformatWidth,
			Height:       hit.WebformatHeight,
			Description:  hit.Tags,
			Attribution:  fmt.Sprintf("Image by %s from Pixabay", hit.User),
			Source:       p.Name(),
		})
	}

	return results, nil
}

// Download downloads an image from the given URL
func (p *PixabayClient) Download(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	return download(ctx, p.client, imageURL)
}

// GetAttribution returns the required attribution text for an image
func (p *PixabayClient) GetAttribution(result *SearchResult) string {
	return result.Attribution
}

// Name returns the name of the search provider
func (p *PixabayClient) Name() string {
	return "pixabay"
}
