package service

import (
	"context"
	"fmt"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/repository"
)

const (
	// CatalogPageSize is the number of wines on one catalog page
	CatalogPageSize = 12

	// RecommendLimit caps the recommendation list
	RecommendLimit = 20
)

// CatalogService defines the read side of the wine catalog
type CatalogService interface {
	Browse(ctx context.Context, filter domain.WineFilter, page int) (*domain.Page, error)
	Recommend(ctx context.Context, filter domain.WineFilter) ([]*domain.Wine, error)
	GetWine(ctx context.Context, id int64) (*domain.Wine, error)
	Options(ctx context.Context) (*domain.FilterOptions, error)
}

type catalogService struct {
	wineRepo  repository.WineRepository
	statsRepo repository.StatsRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(wineRepo repository.WineRepository, statsRepo repository.StatsRepository) CatalogService {
	return &catalogService{
		wineRepo:  wineRepo,
		statsRepo: statsRepo,
	}
}

// Browse returns one rank-ordered page of the catalog. Pages below 1 are
// treated as the first page; pages past the end come back empty with the
// real total.
func (s *catalogService) Browse(ctx context.Context, filter domain.WineFilter, page int) (*domain.Page, error) {
	if page < 1 {
		page = 1
	}

	wines, total, err := s.wineRepo.List(ctx, filter, page, CatalogPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to browse catalog: %w", err)
	}

	return &domain.Page{
		Wines:      wines,
		Page:       page,
		PageSize:   CatalogPageSize,
		Total:      total,
		TotalPages: totalPages(total, CatalogPageSize),
	}, nil
}

func (s *catalogService) Recommend(ctx context.Context, filter domain.WineFilter) ([]*domain.Wine, error) {
	wines, err := s.wineRepo.Recommend(ctx, filter, RecommendLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to recommend wines: %w", err)
	}
	return wines, nil
}

func (s *catalogService) GetWine(ctx context.Context, id int64) (*domain.Wine, error) {
	return s.wineRepo.FindByID(ctx, id)
}

func (s *catalogService) Options(ctx context.Context) (*domain.FilterOptions, error) {
	opts, err := s.statsRepo.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load filter options: %w", err)
	}
	return opts, nil
}

func totalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
