package transport

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.openly.dev/pointy"
	"go.uber.org/zap"
)

var errBackendDown = errors.New("backend down")

type fakeCatalog struct {
	wines      map[int64]*domain.Wine
	err        error
	lastFilter domain.WineFilter
	lastPage   int
}

func newFakeCatalog(wines ...*domain.Wine) *fakeCatalog {
	c := &fakeCatalog{wines: make(map[int64]*domain.Wine)}
	for _, w := range wines {
		c.wines[w.ID] = w
	}
	return c
}

func (c *fakeCatalog) sorted() []*domain.Wine {
	out := make([]*domain.Wine, 0, len(c.wines))
	for _, w := range c.wines {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *fakeCatalog) Browse(ctx context.Context, filter domain.WineFilter, page int) (*domain.Page, error) {
	c.lastFilter = filter
	c.lastPage = page
	if c.err != nil {
		return nil, c.err
	}
	var matched []*domain.Wine
	for _, w := range c.sorted() {
		if filter.Search == "" || strings.Contains(strings.ToLower(w.Name), strings.ToLower(filter.Search)) {
			matched = append(matched, w)
		}
	}
	return &domain.Page{Wines: matched, Page: page, PageSize: 12, Total: len(matched), TotalPages: 1}, nil
}

func (c *fakeCatalog) Recommend(ctx context.Context, filter domain.WineFilter) ([]*domain.Wine, error) {
	c.lastFilter = filter
	if c.err != nil {
		return nil, c.err
	}
	var out []*domain.Wine
	for _, w := range c.sorted() {
		if filter.Type != "" && (w.Type == nil || *w.Type != filter.Type) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (c *fakeCatalog) GetWine(ctx context.Context, id int64) (*domain.Wine, error) {
	if c.err != nil {
		return nil, c.err
	}
	w, ok := c.wines[id]
	if !ok {
		return nil, repository.ErrWineNotFound
	}
	return w, nil
}

func (c *fakeCatalog) Options(ctx context.Context) (*domain.FilterOptions, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &domain.FilterOptions{Types: []string{"Red", "White"}, Countries: []string{"Chile", "France"}}, nil
}

type fakeDashboard struct {
	data        *domain.DashboardData
	mapData     *domain.MapData
	err         error
	lastCountry string
	lastRating  float64
}

func (d *fakeDashboard) Dashboard(ctx context.Context, country string, minRating float64) (*domain.DashboardData, error) {
	d.lastCountry = country
	d.lastRating = minRating
	if d.err != nil {
		return nil, d.err
	}
	return d.data, nil
}

func (d *fakeDashboard) WineMap(ctx context.Context) (*domain.MapData, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.mapData, nil
}

type fakeComments struct {
	mu       sync.Mutex
	catalog  *fakeCatalog
	comments map[int64][]*domain.Comment
	err      error
	nextID   int64
}

func newFakeComments(catalog *fakeCatalog) *fakeComments {
	return &fakeComments{catalog: catalog, comments: make(map[int64][]*domain.Comment)}
}

func (c *fakeComments) Add(ctx context.Context, wineID int64, text string) (*domain.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if _, ok := c.catalog.wines[wineID]; !ok {
		return nil, repository.ErrWineNotFound
	}
	c.nextID++
	comment := &domain.Comment{ID: c.nextID, WineID: wineID, Text: strings.TrimSpace(text), CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c.comments[wineID] = append([]*domain.Comment{comment}, c.comments[wineID]...)
	return comment, nil
}

func (c *fakeComments) List(ctx context.Context, wineID int64) ([]*domain.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.comments[wineID], nil
}

type fakeWineService struct {
	catalog *fakeCatalog
	err     error
	queued  bool
	created []*domain.Wine
}

func (s *fakeWineService) Create(ctx context.Context, wine *domain.Wine) error {
	if s.err != nil {
		return s.err
	}
	wine.ID = int64(len(s.created) + 100)
	s.created = append(s.created, wine)
	return nil
}

func (s *fakeWineService) RequestImage(ctx context.Context, id int64) (*domain.Wine, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	w, ok := s.catalog.wines[id]
	if !ok {
		return nil, false, repository.ErrWineNotFound
	}
	return w, s.queued, nil
}

func noLimit(next http.Handler) http.Handler { return next }

func sampleWines() []*domain.Wine {
	return []*domain.Wine{
		{
			ID:             1,
			Rank:           pointy.Int(1),
			Name:           "Almaviva",
			Country:        pointy.String("Chile"),
			Region:         pointy.String("Puente Alto"),
			GrapeVarieties: []string{"Cabernet Sauvignon", "Carmenere"},
			Vintage:        pointy.Int(2018),
			Type:           pointy.String("Red"),
			AverageRating:  pointy.Float64(4.6),
			ReviewsCount:   pointy.Int(1200),
			ImagePath:      pointy.String("almaviva_2018.jpg"),
		},
		{
			ID:            2,
			Rank:          pointy.Int(2),
			Name:          "Chablis Premier Cru",
			Country:       pointy.String("France"),
			Type:          pointy.String("White"),
			AverageRating: pointy.Float64(4.1),
		},
	}
}

type testHandlers struct {
	catalog   *fakeCatalog
	dashboard *fakeDashboard
	comments  *fakeComments
	wines     *fakeWineService
	router    chi.Router
}

func newTestRouter() *testHandlers {
	catalog := newFakeCatalog(sampleWines()...)
	h := &testHandlers{
		catalog:   catalog,
		dashboard: &fakeDashboard{},
		comments:  newFakeComments(catalog),
		wines:     &fakeWineService{catalog: catalog, queued: true},
	}

	logger := zap.NewNop()
	pages, err := NewPageHandler(h.catalog, h.comments, logger)
	if err != nil {
		panic(err)
	}

	r := chi.NewRouter()
	pages.RegisterRoutes(r, noLimit)
	r.Route("/api", func(r chi.Router) {
		NewAPIHandler(h.catalog, h.dashboard, h.comments, logger).RegisterRoutes(r, noLimit)
		NewAdminHandler(h.wines, logger).RegisterRoutes(r, noLimit, noLimit)
	})
	h.router = r
	return h
}
