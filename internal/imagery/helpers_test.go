package imagery

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("status 404")

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h, c)))
	return buf.Bytes()
}

type fakeSearcher struct {
	mu    sync.Mutex
	urls  []string
	err   error
	calls int
	query string
}

func (s *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.query = query
	if s.err != nil {
		return nil, s.err
	}
	return s.urls[:min(limit, len(s.urls))], nil
}

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	calls     []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	body, ok := f.responses[rawURL]
	if !ok {
		return nil, errNotFound
	}
	return body, nil
}

type fakeStore struct {
	mu    sync.Mutex
	paths map[int64]string
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{paths: make(map[int64]string)}
}

func (s *fakeStore) UpdateImagePath(ctx context.Context, id int64, imagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.paths[id] = imagePath
	return nil
}

func (s *fakeStore) path(id int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.paths[id]
	return p, ok
}
