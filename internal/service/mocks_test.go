package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/repository"
)

var errStoreDown = errors.New("store down")

// Mock repositories for testing
type mockWineRepository struct {
	mu       sync.Mutex
	wines    map[int64]*domain.Wine
	nextID   int64
	err      error
	lastPage int
	lastSize int
	lastLim  int
}

func newMockWineRepository(wines ...*domain.Wine) *mockWineRepository {
	m := &mockWineRepository{wines: make(map[int64]*domain.Wine)}
	for _, w := range wines {
		m.nextID++
		if w.ID == 0 {
			w.ID = m.nextID
		}
		m.wines[w.ID] = w
	}
	return m
}

func (m *mockWineRepository) sorted() []*domain.Wine {
	out := make([]*domain.Wine, 0, len(m.wines))
	for _, w := range m.wines {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockWineRepository) Create(ctx context.Context, wine *domain.Wine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	wine.ID = m.nextID
	m.wines[wine.ID] = wine
	return nil
}

func (m *mockWineRepository) BulkInsert(ctx context.Context, wines []*domain.Wine) error {
	for _, w := range wines {
		if err := m.Create(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockWineRepository) FindByID(ctx context.Context, id int64) (*domain.Wine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	w, ok := m.wines[id]
	if !ok {
		return nil, repository.ErrWineNotFound
	}
	return w, nil
}

func (m *mockWineRepository) List(ctx context.Context, filter domain.WineFilter, page, pageSize int) ([]*domain.Wine, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPage, m.lastSize = page, pageSize
	if m.err != nil {
		return nil, 0, m.err
	}

	var matched []*domain.Wine
	for _, w := range m.sorted() {
		if filter.Search != "" && !strings.Contains(strings.ToLower(w.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, w)
	}

	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []*domain.Wine{}, len(matched), nil
	}
	end := min(start+pageSize, len(matched))
	return matched[start:end], len(matched), nil
}

func (m *mockWineRepository) Recommend(ctx context.Context, filter domain.WineFilter, limit int) ([]*domain.Wine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLim = limit
	if m.err != nil {
		return nil, m.err
	}
	all := m.sorted()
	return all[:min(limit, len(all))], nil
}

func (m *mockWineRepository) UpdateImagePath(ctx context.Context, id int64, imagePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wines[id]
	if !ok {
		return repository.ErrWineNotFound
	}
	w.ImagePath = &imagePath
	return nil
}

func (m *mockWineRepository) ListMissingImages(ctx context.Context) ([]*domain.Wine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Wine
	for _, w := range m.sorted() {
		if w.ImagePath == nil {
			out = append(out, w)
		}
	}
	return out, nil
}

type mockCommentRepository struct {
	comments []*domain.Comment
	err      error
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if m.err != nil {
		return m.err
	}
	comment.ID = int64(len(m.comments) + 1)
	m.comments = append(m.comments, comment)
	return nil
}

func (m *mockCommentRepository) ListByWine(ctx context.Context, wineID int64) ([]*domain.Comment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Comment
	for i := len(m.comments) - 1; i >= 0; i-- {
		if m.comments[i].WineID == wineID {
			out = append(out, m.comments[i])
		}
	}
	return out, nil
}

type mockStatsRepository struct {
	typeCounts    []domain.TypeCount
	totals        domain.Totals
	countryCounts []domain.CountryCount
	options       *domain.FilterOptions
	err           error
	lastFilter    domain.WineFilter
}

func (m *mockStatsRepository) TypeCounts(ctx context.Context, filter domain.WineFilter) ([]domain.TypeCount, error) {
	m.lastFilter = filter
	return m.typeCounts, m.err
}

func (m *mockStatsRepository) Totals(ctx context.Context, filter domain.WineFilter) (domain.Totals, error) {
	return m.totals, m.err
}

func (m *mockStatsRepository) CountryCounts(ctx context.Context) ([]domain.CountryCount, error) {
	return m.countryCounts, m.err
}

func (m *mockStatsRepository) Options(ctx context.Context) (*domain.FilterOptions, error) {
	return m.options, m.err
}

type recordingEnqueuer struct {
	mu     sync.Mutex
	wines  []*domain.Wine
	accept bool
}

func (r *recordingEnqueuer) Enqueue(wine *domain.Wine) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wines = append(r.wines, wine)
	return r.accept
}
