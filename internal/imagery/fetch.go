package imagery

import (
	"context"
	"strings"
)

// Fetcher downloads the raw bytes behind a candidate URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// CollyFetcher downloads images with the shared colly client.
type CollyFetcher struct {
	client *client
}

// NewCollyFetcher creates a fetcher with a browser user agent and a
// per-request timeout.
func NewCollyFetcher(cfg ClientConfig) *CollyFetcher {
	return &CollyFetcher{client: newClient(cfg)}
}

func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return f.client.get(ctx, StripQuery(rawURL), nil)
}

// StripQuery drops everything from the first '?'. Search results often
// carry resizing parameters that shrink the image.
func StripQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
