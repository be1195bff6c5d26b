package image

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPixabayClient_RequiresKey(t *testing.T) {
	_, err := NewPixabayClient("", time.Second)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestPixabayClient_Search(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total":1,"totalHits":1,"hits":[
			{"id":42,"tags":"cat, pet","previewURL":"https://p.example/t.jpg",
			 "webformatURL":"https://p.example/cat.jpg","webformatWidth":640,"webformatHeight":427,"user":"alice"}
		]}`))
	}))
	defer server.Close()

	client, err := NewPixabayClient("pix-key", 5*time.Second)
	require.NoError(t, err)
	client.baseURL = server.URL

	results, err := client.Search(context.Background(), DefaultSearchOptions("cat"))
	require.NoError(t, err)

	assert.Equal(t, "pix-key", query.Get("key"))
	assert.Equal(t, "cat", query.Get("q"))
	assert.Equal(t, "true", query.Get("safesearch"))
	assert.Equal(t, "5", query.Get("per_page"))
	assert.Equal(t, "photo", query.Get("image_type"))

	require.Len(t, results, 1)
	assert.Equal(t, "42", results[0].ID)
	assert.Equal(t, "https://p.example/cat.jpg", results[0].URL)
	assert.Equal(t, "Image by alice from Pixabay", client.GetAttribution(&results[0]))
	assert.Equal(t, "pixabay", client.Name())
}

func TestPixabayClient_SearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("[ERROR 400] Invalid or missing API key"))
	}))
	defer server.Close()

	client, _ := NewPixabayClient("bad", 5*time.Second)
	client.baseURL = server.URL

	_, err := client.Search(context.Background(), DefaultSearchOptions("cat"))
	var searchErr *SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.Contains(t, searchErr.Message, "Invalid or missing API key")
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2)
	ctx := context.Background()

	require.NoError(t, rl.wait(ctx))
	require.NoError(t, rl.wait(ctx))

	// third request would have to wait a minute
	cancelled, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.wait(cancelled), context.DeadlineExceeded)
	assert.Len(t, rl.requests, 2)
}
