package image

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "wksentence/1.0"

func newRestClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout).
		SetRetryCount(0)
}

// download streams the body of url. The caller closes the reader.
func download(ctx context.Context, client *resty.Client, url string) (io.ReadCloser, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Accept", "image/*").
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	body := resp.RawBody()
	if resp.IsError() {
		if body != nil {
			body.Close()
		}
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode())
	}
	if body == nil {
		return nil, fmt.Errorf("download failed: empty response body")
	}

	return body, nil
}
