package imagery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// DefaultSearchBaseURL is the public DuckDuckGo endpoint.
const DefaultSearchBaseURL = "https://duckduckgo.com"

var ErrNoSearchToken = errors.New("search token not found")

var vqdPattern = regexp.MustCompile(`vqd=["']?([0-9-]+)`)

// Searcher finds candidate image URLs for a query, best first.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// DuckDuckGo searches images through DuckDuckGo's unauthenticated JSON
// endpoint. It first loads the results page for the vqd token the image
// endpoint requires.
type DuckDuckGo struct {
	baseURL string
	client  *client
}

// NewDuckDuckGo creates a searcher rooted at baseURL. An empty base uses the
// public endpoint.
func NewDuckDuckGo(baseURL string, cfg ClientConfig) *DuckDuckGo {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultSearchBaseURL
	}
	return &DuckDuckGo{baseURL: baseURL, client: newClient(cfg)}
}

type imageResults struct {
	Results []struct {
		Image string `json:"image"`
	} `json:"results"`
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]string, error) {
	token, err := d.token(ctx, query)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"l":   {"us-en"},
		"o":   {"json"},
		"q":   {query},
		"vqd": {token},
		"f":   {",,,,,"},
		"p":   {"1"},
	}
	headers := http.Header{"Referer": {d.baseURL + "/"}}

	body, err := d.client.get(ctx, d.baseURL+"/i.js?"+params.Encode(), headers)
	if err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}

	var results imageResults
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode image results: %w", err)
	}

	urls := make([]string, 0, limit)
	for _, r := range results.Results {
		if r.Image == "" {
			continue
		}
		urls = append(urls, r.Image)
		if limit > 0 && len(urls) == limit {
			break
		}
	}
	return urls, nil
}

func (d *DuckDuckGo) token(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"q":   {query},
		"iax": {"images"},
		"ia":  {"images"},
	}

	page, err := d.client.get(ctx, d.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to load search page: %w", err)
	}

	m := vqdPattern.FindSubmatch(page)
	if m == nil {
		return "", ErrNoSearchToken
	}
	return string(m[1]), nil
}
