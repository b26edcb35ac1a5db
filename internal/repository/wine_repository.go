package repository

import (
	"context"
	"errors"
	"fmt"

	"wine-cellar/internal/domain"

	"github.com/jackc/pgx/v5"
)

var (
	ErrWineNotFound = errors.New("wine not found")
)

const wineColumns = `
		w.id, w.rank, w.name, w.country, w.region, w.vintage, w.type,
		w.alcohol_abv, w.volume_ml, w.description, w.average_rating,
		w.reviews_count, w.image_path, w.created_at,
		COALESCE((SELECT array_agg(g.grape ORDER BY g.position) FROM wine_grapes g WHERE g.wine_id = w.id), '{}') AS grapes`

// WineRepository defines the interface for wine data access
type WineRepository interface {
	Create(ctx context.Context, wine *domain.Wine) error
	BulkInsert(ctx context.Context, wines []*domain.Wine) error
	FindByID(ctx context.Context, id int64) (*domain.Wine, error)
	List(ctx context.Context, filter domain.WineFilter, page, pageSize int) ([]*domain.Wine, int, error)
	Recommend(ctx context.Context, filter domain.WineFilter, limit int) ([]*domain.Wine, error)
	UpdateImagePath(ctx context.Context, id int64, imagePath string) error
	ListMissingImages(ctx context.Context) ([]*domain.Wine, error)
}

type wineRepository struct {
	db DBTX
}

// NewWineRepository creates a new instance of WineRepository
func NewWineRepository(db DBTX) WineRepository {
	return &wineRepository{db: db}
}

// Create inserts a wine and its grapes in one transaction and fills in the
// generated id and timestamp.
func (r *wineRepository) Create(ctx context.Context, wine *domain.Wine) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := insertWine(ctx, tx, wine); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit wine: %w", err)
	}
	return nil
}

// BulkInsert inserts every wine inside a single transaction.
func (r *wineRepository) BulkInsert(ctx context.Context, wines []*domain.Wine) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, wine := range wines {
		if err := insertWine(ctx, tx, wine); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit bulk insert: %w", err)
	}
	return nil
}

func insertWine(ctx context.Context, tx pgx.Tx, wine *domain.Wine) error {
	query := `
		INSERT INTO wines (rank, name, country, region, vintage, type, alcohol_abv, volume_ml,
		                   description, average_rating, reviews_count, image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx,
		query,
		wine.Rank,
		wine.Name,
		wine.Country,
		wine.Region,
		wine.Vintage,
		wine.Type,
		wine.AlcoholABV,
		wine.VolumeML,
		wine.Description,
		wine.AverageRating,
		wine.ReviewsCount,
		wine.ImagePath,
	).Scan(&wine.ID, &wine.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wine %q: %w", wine.Name, err)
	}

	for i, grape := range wine.GrapeVarieties {
		_, err := tx.Exec(ctx,
			`INSERT INTO wine_grapes (wine_id, position, grape) VALUES ($1, $2, $3)`,
			wine.ID, i, grape,
		)
		if err != nil {
			return fmt.Errorf("failed to add grape %q to wine %d: %w", grape, wine.ID, err)
		}
	}

	return nil
}

// FindByID retrieves a wine by ID using parameterized queries
func (r *wineRepository) FindByID(ctx context.Context, id int64) (*domain.Wine, error) {
	query := `SELECT ` + wineColumns + ` FROM wines w WHERE w.id = $1`

	wine, err := scanWine(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWineNotFound
		}
		return nil, fmt.Errorf("failed to find wine by ID: %w", err)
	}

	return wine, nil
}

// List returns one page of wines in ascending rank order together with the
// number of wines matching the filter.
func (r *wineRepository) List(ctx context.Context, filter domain.WineFilter, page, pageSize int) ([]*domain.Wine, int, error) {
	where := buildWineFilter(filter)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM wines w %s", where.sql())
	var total int
	if err := r.db.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count wines: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	// Pages past the end skip the query; this also keeps the offset from
	// overflowing for huge page numbers.
	if page-1 >= (total+pageSize-1)/pageSize {
		return []*domain.Wine{}, total, nil
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM wines w
		%s
		ORDER BY w.rank ASC NULLS LAST, w.id ASC
		LIMIT $%d OFFSET $%d
	`, wineColumns, where.sql(), len(where.args)+1, len(where.args)+2)

	args := append(where.args, pageSize, offset)

	wines, err := r.queryWines(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wines: %w", err)
	}

	return wines, total, nil
}

// Recommend returns the best rated wines matching the filter.
func (r *wineRepository) Recommend(ctx context.Context, filter domain.WineFilter, limit int) ([]*domain.Wine, error) {
	where := buildWineFilter(filter)

	query := fmt.Sprintf(`
		SELECT %s
		FROM wines w
		%s
		ORDER BY w.average_rating DESC NULLS LAST, w.rank ASC NULLS LAST, w.id ASC
		LIMIT $%d
	`, wineColumns, where.sql(), len(where.args)+1)

	args := append(where.args, limit)

	wines, err := r.queryWines(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to recommend wines: %w", err)
	}
	return wines, nil
}

// UpdateImagePath records the stored bottle image for a wine
func (r *wineRepository) UpdateImagePath(ctx context.Context, id int64, imagePath string) error {
	result, err := r.db.Exec(ctx, `UPDATE wines SET image_path = $2 WHERE id = $1`, id, imagePath)
	if err != nil {
		return fmt.Errorf("failed to update image path: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrWineNotFound
	}

	return nil
}

// ListMissingImages returns every wine without a stored image, in rank order
func (r *wineRepository) ListMissingImages(ctx context.Context) ([]*domain.Wine, error) {
	query := `SELECT ` + wineColumns + `
		FROM wines w
		WHERE w.image_path IS NULL OR w.image_path = ''
		ORDER BY w.rank ASC NULLS LAST, w.id ASC`

	wines, err := r.queryWines(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list wines without image: %w", err)
	}
	return wines, nil
}

func (r *wineRepository) queryWines(ctx context.Context, query string, args ...any) ([]*domain.Wine, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wines := []*domain.Wine{}
	for rows.Next() {
		wine, err := scanWine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wine: %w", err)
		}
		wines = append(wines, wine)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wines: %w", err)
	}

	return wines, nil
}

func scanWine(row pgx.Row) (*domain.Wine, error) {
	wine := &domain.Wine{}
	err := row.Scan(
		&wine.ID,
		&wine.Rank,
		&wine.Name,
		&wine.Country,
		&wine.Region,
		&wine.Vintage,
		&wine.Type,
		&wine.AlcoholABV,
		&wine.VolumeML,
		&wine.Description,
		&wine.AverageRating,
		&wine.ReviewsCount,
		&wine.ImagePath,
		&wine.CreatedAt,
		&wine.GrapeVarieties,
	)
	if err != nil {
		return nil, err
	}
	return wine, nil
}
