package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const googleSearchURL = "https://www.googleapis.com/customsearch/v1"

// GoogleClient implements ImageSearcher for the Google Custom Search JSON API
type GoogleClient struct {
	apiKey  string
	cx      string
	baseURL string
	client  *resty.Client
}

type googleResponse struct {
	Items []googleItem `json:"items"`
}

type googleItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
	Mime        string `json:"mime"`
	Image       struct {
		ContextLink   string `json:"contextLink"`
		Width         int    `json:"width"`
		Height        int    `json:"height"`
		ThumbnailLink string `json:"thumbnailLink"`
	} `json:"image"`
}

type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewGoogleClient creates a Custom Search client. Both the API key and
// the search engine id (cx) are required.
func NewGoogleClient(apiKey, cx string, timeout time.Duration) (*GoogleClient, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY and GOOGLE_CX are required", ErrNotConfigured)
	}
	return &GoogleClient{
		apiKey:  apiKey,
		cx:      cx,
		baseURL: googleSearchURL,
		client:  newRestClient(timeout),
	}, nil
}

// Search performs an image search
func (g *GoogleClient) Search(ctx context.Context, opts *SearchOptions) ([]SearchResult, error) {
	num := opts.PerPage
	if num <= 0 || num > 10 {
		num = 5
	}
	safe := "off"
	if opts.SafeSearch {
		safe = "high"
	}

	params := map[string]string{
		"key":        g.apiKey,
		"cx":         g.cx,
		"q":          opts.Query,
		"searchType": "image",
		"num":        strconv.Itoa(num),
		"safe":       safe,
	}
	if opts.Page > 1 {
		params["start"] = strconv.Itoa((opts.Page-1)*num + 1)
	}

	var out googleResponse
	var apiErr googleError
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		SetError(&apiErr).
		Get(g.baseURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, &RateLimitError{Provider: g.Name(), RetryAfter: 60}
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return nil, &SearchError{
			Provider: g.Name(),
			Code:     strconv.Itoa(resp.StatusCode()),
			Message:  msg,
		}
	}

	results := make([]SearchResult, 0, len(out.Items))
	for i, item := range out.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, SearchResult{
			ID:           strconv.Itoa(i),
			URL:          item.Link,
			ThumbnailURL: item.Image.ThumbnailLink,
			Width:        item.Image.Width,
			Height:       item.Image.Height,
			Description:  item.Title,
			Attribution:  item.DisplayLink,
			Source:       g.Name(),
		})
	}

	return results, nil
}

// Download downloads an image from the given URL
func (g *GoogleClient) Download(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	return download(ctx, g.client, imageURL)
}

// GetAttribution returns the site the image was found on
func (g *GoogleClient) GetAttribution(result *SearchResult) string {
	return result.Attribution
}

// Name returns the name of the search provider
func (g *GoogleClient) Name() string {
	return "google"
}
