package image

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const (
	breakerFailures = 3
	breakerCooldown = 60 * time.Second
)

// BreakerSearcher stops calling a failing search provider for a while.
// After three consecutive failures searches fail fast until the
// cool-down has passed.
type BreakerSearcher struct {
	inner ImageSearcher
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerSearcher wraps inner with a circuit breaker
func NewBreakerSearcher(inner ImageSearcher, logger zerolog.Logger) *BreakerSearcher {
	settings := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("image search circuit changed state")
		},
	}

	return &BreakerSearcher{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Search runs the inner search through the breaker
func (b *BreakerSearcher) Search(ctx context.Context, opts *SearchOptions) ([]SearchResult, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Search(ctx, opts)
	})
	if err != nil {
		return nil, err
	}
	return out.([]SearchResult), nil
}

// Download is passed through; image hosts are unrelated to the search API
func (b *BreakerSearcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	return b.inner.Download(ctx, url)
}

// GetAttribution returns the inner provider's attribution
func (b *BreakerSearcher) GetAttribution(result *SearchResult) string {
	return b.inner.GetAttribution(result)
}

// Name returns the inner provider name
func (b *BreakerSearcher) Name() string {
	return b.inner.Name()
}

// State returns the breaker state
func (b *BreakerSearcher) State() gobreaker.State {
	return b.cb.State()
}
