package service

import (
	"context"
	"fmt"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/repository"
)

const (
	// MapLevels is the number of density buckets on the wine map
	MapLevels = 5

	// NoDominantType is shown when the filtered set has no typed wines
	NoDominantType = "-"
)

// DashboardService builds the aggregates behind the dashboard page
type DashboardService interface {
	Dashboard(ctx context.Context, country string, minRating float64) (*domain.DashboardData, error)
	WineMap(ctx context.Context) (*domain.MapData, error)
}

type dashboardService struct {
	statsRepo repository.StatsRepository
}

// NewDashboardService creates a new instance of DashboardService
func NewDashboardService(statsRepo repository.StatsRepository) DashboardService {
	return &dashboardService{statsRepo: statsRepo}
}

// Dashboard computes the KPI cards and the type distribution for wines
// matching the optional country and minimum rating.
func (s *dashboardService) Dashboard(ctx context.Context, country string, minRating float64) (*domain.DashboardData, error) {
	filter := domain.WineFilter{Country: country, MinRating: minRating}

	typeCounts, err := s.statsRepo.TypeCounts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load type distribution: %w", err)
	}

	totals, err := s.statsRepo.Totals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load totals: %w", err)
	}

	return buildDashboard(country, typeCounts, totals), nil
}

func buildDashboard(country string, typeCounts []domain.TypeCount, totals domain.Totals) *domain.DashboardData {
	chart := domain.TypeChart{
		Labels: make([]string, 0, len(typeCounts)),
		Data:   make([]int, 0, len(typeCounts)),
	}
	for _, tc := range typeCounts {
		chart.Labels = append(chart.Labels, tc.Type)
		chart.Data = append(chart.Data, tc.Count)
	}

	dominant := NoDominantType
	if len(typeCounts) > 0 {
		// Counts arrive ordered by count desc, type asc.
		dominant = typeCounts[0].Type
	}

	countries := totals.Countries
	if country != "" {
		countries = 0
		if totals.Wines > 0 {
			countries = 1
		}
	}

	return &domain.DashboardData{
		KPIs: domain.KPIs{
			TotalWines:     totals.Wines,
			TotalCountries: countries,
			DominantType:   dominant,
		},
		TypeChart: chart,
	}
}

// WineMap returns per-country wine density keyed by ISO3 code.
func (s *dashboardService) WineMap(ctx context.Context) (*domain.MapData, error) {
	counts, err := s.statsRepo.CountryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load country counts: %w", err)
	}

	byCode := make(map[string]int, len(counts))
	for _, cc := range counts {
		code, ok := ISO3(cc.Country)
		if !ok {
			continue
		}
		byCode[code] += cc.Count
	}

	return BucketCountries(byCode), nil
}

// BucketCountries assigns every country one of MapLevels density levels
// relative to the busiest country.
func BucketCountries(counts map[string]int) *domain.MapData {
	maxCount := 0
	for _, n := range counts {
		maxCount = max(maxCount, n)
	}

	divisor := max(1, maxCount/MapLevels)
	data := make(map[string]domain.CountryDensity, len(counts))
	for code, n := range counts {
		level := min(MapLevels, n/divisor+1)
		data[code] = domain.CountryDensity{
			FillKey:       fmt.Sprintf("wine_count_%d", level),
			NumberOfWines: n,
		}
	}

	return &domain.MapData{CountryData: data, MaxCount: maxCount}
}
