package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/repository"
)

var ErrEmptyComment = errors.New("comment text is required")

// CommentService defines the interface for wine comments
type CommentService interface {
	Add(ctx context.Context, wineID int64, text string) (*domain.Comment, error)
	List(ctx context.Context, wineID int64) ([]*domain.Comment, error)
}

type commentService struct {
	wineRepo    repository.WineRepository
	commentRepo repository.CommentRepository
}

// NewCommentService creates a new instance of CommentService
func NewCommentService(wineRepo repository.WineRepository, commentRepo repository.CommentRepository) CommentService {
	return &commentService{
		wineRepo:    wineRepo,
		commentRepo: commentRepo,
	}
}

// Add stores a trimmed comment on an existing wine
func (s *commentService) Add(ctx context.Context, wineID int64, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	if _, err := s.wineRepo.FindByID(ctx, wineID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{WineID: wineID, Text: text}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrWineNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return comment, nil
}

// List returns a wine's comments, newest first
func (s *commentService) List(ctx context.Context, wineID int64) ([]*domain.Comment, error) {
	comments, err := s.commentRepo.ListByWine(ctx, wineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
