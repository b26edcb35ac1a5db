package repository

import (
	"context"
	"errors"
	"fmt"

	"wine-cellar/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByWine(ctx context.Context, wineID int64) ([]*domain.Comment, error)
}

type commentRepository struct {
	db DBTX
}

// NewCommentRepository creates a new instance of CommentRepository
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment; the id and timestamp come back from the database
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (text, wine_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, comment.Text, comment.WineID).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrWineNotFound
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListByWine returns a wine's comments, newest first
func (r *commentRepository) ListByWine(ctx context.Context, wineID int64) ([]*domain.Comment, error) {
	query := `
		SELECT id, wine_id, text, created_at
		FROM comments
		WHERE wine_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, wineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		comment := &domain.Comment{}
		if err := rows.Scan(&comment.ID, &comment.WineID, &comment.Text, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}
