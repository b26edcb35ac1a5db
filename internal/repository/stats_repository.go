package repository

import (
	"context"
	"fmt"

	"wine-cellar/internal/domain"
)

// StatsRepository runs the grouped reads behind the dashboard and the map
type StatsRepository interface {
	TypeCounts(ctx context.Context, filter domain.WineFilter) ([]domain.TypeCount, error)
	Totals(ctx context.Context, filter domain.WineFilter) (domain.Totals, error)
	CountryCounts(ctx context.Context) ([]domain.CountryCount, error)
	Options(ctx context.Context) (*domain.FilterOptions, error)
}

type statsRepository struct {
	db DBTX
}

// NewStatsRepository creates a new instance of StatsRepository
func NewStatsRepository(db DBTX) StatsRepository {
	return &statsRepository{db: db}
}

// TypeCounts counts wines per non-null type, largest group first and ties
// in alphabetical order.
func (r *statsRepository) TypeCounts(ctx context.Context, filter domain.WineFilter) ([]domain.TypeCount, error) {
	where := buildWineFilter(filter)
	where.addRaw("w.type IS NOT NULL")

	query := fmt.Sprintf(`
		SELECT w.type, COUNT(*)
		FROM wines w
		%s
		GROUP BY w.type
		ORDER BY COUNT(*) DESC, w.type ASC
	`, where.sql())

	rows, err := r.db.Query(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count wines by type: %w", err)
	}
	defer rows.Close()

	counts := []domain.TypeCount{}
	for rows.Next() {
		var tc domain.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		counts = append(counts, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating type counts: %w", err)
	}

	return counts, nil
}

// Totals counts the filtered wines and their distinct non-null countries
func (r *statsRepository) Totals(ctx context.Context, filter domain.WineFilter) (domain.Totals, error) {
	where := buildWineFilter(filter)

	query := fmt.Sprintf(`SELECT COUNT(*), COUNT(DISTINCT w.country) FROM wines w %s`, where.sql())

	var totals domain.Totals
	if err := r.db.QueryRow(ctx, query, where.args...).Scan(&totals.Wines, &totals.Countries); err != nil {
		return domain.Totals{}, fmt.Errorf("failed to count wines: %w", err)
	}
	return totals, nil
}

// CountryCounts counts every wine per non-null country, without filters
func (r *statsRepository) CountryCounts(ctx context.Context) ([]domain.CountryCount, error) {
	query := `
		SELECT country, COUNT(*)
		FROM wines
		WHERE country IS NOT NULL
		GROUP BY country
		ORDER BY country ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count wines by country: %w", err)
	}
	defer rows.Close()

	counts := []domain.CountryCount{}
	for rows.Next() {
		var cc domain.CountryCount
		if err := rows.Scan(&cc.Country, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan country count: %w", err)
		}
		counts = append(counts, cc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country counts: %w", err)
	}

	return counts, nil
}

// Options lists the distinct types and countries present in the catalog
func (r *statsRepository) Options(ctx context.Context) (*domain.FilterOptions, error) {
	opts := &domain.FilterOptions{}

	var err error
	opts.Types, err = r.distinct(ctx, `SELECT DISTINCT type FROM wines WHERE type IS NOT NULL ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list wine types: %w", err)
	}
	opts.Countries, err = r.distinct(ctx, `SELECT DISTINCT country FROM wines WHERE country IS NOT NULL ORDER BY country`)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	return opts, nil
}

func (r *statsRepository) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
