package imagery

import (
	"context"
	"fmt"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "images", r.URL.Query().Get("iax"))
		if token == "" {
			fmt.Fprint(w, "<html><body>no token here</body></html>")
			return
		}
		fmt.Fprintf(w, `<html><script>nrj('/d.js?q=x&vqd="%s"&p=1')</script></html>`, token)
	})
	mux.HandleFunc("/i.js", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("vqd") != token {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		assert.Equal(t, "Barolo 2016 wine bottle", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[
			{"image":"https://a.example/1.jpg?w=200"},
			{"image":""},
			{"image":"https://b.example/2.png"},
			{"image":"https://c.example/3.webp"}
		]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDuckDuckGo_Search(t *testing.T) {
	srv := newSearchServer(t, "4-1234567890")
	searcher := NewDuckDuckGo(srv.URL+"/", ClientConfig{Timeout: 2 * time.Second})

	urls, err := searcher.Search(context.Background(), "Barolo 2016 wine bottle", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/1.jpg?w=200", "https://b.example/2.png"}, urls)

	urls, err = searcher.Search(context.Background(), "Barolo 2016 wine bottle", 5)
	require.NoError(t, err)
	assert.Len(t, urls, 3)
}

func TestDuckDuckGo_MissingToken(t *testing.T) {
	srv := newSearchServer(t, "")
	searcher := NewDuckDuckGo(srv.URL, ClientConfig{Timeout: 2 * time.Second})

	_, err := searcher.Search(context.Background(), "Barolo 2016 wine bottle", 5)
	assert.ErrorIs(t, err, ErrNoSearchToken)
}

func TestCollyFetcher_StripsQueryAndSendsUserAgent(t *testing.T) {
	body := pngBytes(t, 5, 5, color.Black)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			http.Error(w, "query not stripped", http.StatusBadRequest)
			return
		}
		if r.UserAgent() != DefaultUserAgent {
			http.Error(w, "bad agent", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(ClientConfig{Timeout: 2 * time.Second})

	got, err := fetcher.Fetch(context.Background(), srv.URL+"/bottle.png?width=120&fmt=webp")
	require.NoError(t, err)
	assert.Equal(t, body, got)

	// Same URL twice must not be rejected as already visited.
	_, err = fetcher.Fetch(context.Background(), srv.URL+"/bottle.png")
	require.NoError(t, err)
}

func TestCollyFetcher_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewCollyFetcher(ClientConfig{Timeout: 2 * time.Second}).Fetch(context.Background(), srv.URL+"/gone.jpg")
	assert.Error(t, err)
}

func TestCollyFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	fetcher := NewCollyFetcher(ClientConfig{Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/slow.jpg")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStripQuery(t *testing.T) {
	assert.Equal(t, "https://x.example/a.jpg", StripQuery("https://x.example/a.jpg?w=1?z"))
	assert.Equal(t, "https://x.example/a.jpg", StripQuery("https://x.example/a.jpg"))
}
