package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"wine-cellar/internal/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository_TypeCountsWithFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStatsRepository(mock)

	mock.ExpectQuery(`(?s)WHERE w.average_rating >= \$1 AND w.country = \$2 AND w.type IS NOT NULL\s+GROUP BY w.type\s+ORDER BY COUNT\(\*\) DESC, w.type ASC`).
		WithArgs(4.0, "Chile").
		WillReturnRows(pgxmock.NewRows([]string{"type", "count"}).
			AddRow("Red", 8).
			AddRow("White", 3))

	counts, err := repo.TypeCounts(context.Background(), domain.WineFilter{Country: "Chile", MinRating: 4.0})
	require.NoError(t, err)
	assert.Equal(t, []domain.TypeCount{{Type: "Red", Count: 8}, {Type: "White", Count: 3}}, counts)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepository_Totals(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStatsRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), COUNT(DISTINCT w.country) FROM wines w")).
		WillReturnRows(pgxmock.NewRows([]string{"count", "countries"}).AddRow(42, 6))

	totals, err := repo.Totals(context.Background(), domain.WineFilter{})
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{Wines: 42, Countries: 6}, totals)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepository_CountryCountsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStatsRepository(mock)

	mock.ExpectQuery("GROUP BY country").WillReturnError(errors.New("connection reset"))

	_, err = repo.CountryCounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count wines by country")
}

func TestStatsRepository_Options(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewStatsRepository(mock)

	mock.ExpectQuery("SELECT DISTINCT type").
		WillReturnRows(pgxmock.NewRows([]string{"type"}).AddRow("Red").AddRow("Rosé"))
	mock.ExpectQuery("SELECT DISTINCT country").
		WillReturnRows(pgxmock.NewRows([]string{"country"}).AddRow("Italy"))

	opts, err := repo.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Red", "Rosé"}, opts.Types)
	assert.Equal(t, []string{"Italy"}, opts.Countries)
}
