package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/repository"
)

var ErrWineNameRequired = errors.New("wine name is required")

// ImageEnqueuer hands a wine to the background image pipeline. Enqueue must
// not block; it reports false when the wine was dropped.
type ImageEnqueuer interface {
	Enqueue(wine *domain.Wine) bool
}

// WineService defines catalog writes
type WineService interface {
	Create(ctx context.Context, wine *domain.Wine) error
	RequestImage(ctx context.Context, id int64) (*domain.Wine, bool, error)
}

type wineService struct {
	wineRepo repository.WineRepository
	images   ImageEnqueuer
}

// NewWineService creates a new instance of WineService
func NewWineService(wineRepo repository.WineRepository, images ImageEnqueuer) WineService {
	return &wineService{
		wineRepo: wineRepo,
		images:   images,
	}
}

// Create inserts a wine and, once the insert has committed, queues it for
// image acquisition.
func (s *wineService) Create(ctx context.Context, wine *domain.Wine) error {
	wine.Name = strings.TrimSpace(wine.Name)
	if wine.Name == "" {
		return ErrWineNameRequired
	}

	if err := s.wineRepo.Create(ctx, wine); err != nil {
		return fmt.Errorf("failed to create wine: %w", err)
	}

	if s.images != nil {
		s.images.Enqueue(wine)
	}
	return nil
}

// RequestImage queues an existing wine for image acquisition and reports
// whether the queue accepted it.
func (s *wineService) RequestImage(ctx context.Context, id int64) (*domain.Wine, bool, error) {
	wine, err := s.wineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if s.images == nil {
		return wine, false, nil
	}
	return wine, s.images.Enqueue(wine), nil
}
