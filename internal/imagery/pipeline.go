// Package imagery finds, normalizes and stores bottle images for wines.
package imagery

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/metrics"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome describes how a pipeline run ended.
type Outcome string

const (
	OutcomeCached       Outcome = "cached"
	OutcomeStored       Outcome = "stored"
	OutcomeNoCandidates Outcome = "no_candidates"
	OutcomeExhausted    Outcome = "exhausted"
)

const (
	DefaultMaxCandidates = 5
	DefaultFetchTimeout  = 10 * time.Second

	// LockDir holds the per-image lock files inside the image directory.
	LockDir = ".locks"

	lockRetryDelay = 50 * time.Millisecond
)

// ImageStore records where a wine's image lives.
type ImageStore interface {
	UpdateImagePath(ctx context.Context, id int64, imagePath string) error
}

// Options configures a Pipeline.
type Options struct {
	Dir           string
	Size          int
	MaxCandidates int
	FetchTimeout  time.Duration
}

// Pipeline acquires one image per wine. Runs for the same file name are
// serialized through a lock file in the image directory, so the HTTP worker
// and the CLI can run side by side.
type Pipeline struct {
	dir           string
	size          int
	maxCandidates int
	fetchTimeout  time.Duration
	searcher      Searcher
	fetcher       Fetcher
	store         ImageStore
	logger        *zap.Logger
}

// NewPipeline creates the image directory if needed and returns a Pipeline.
func NewPipeline(opts Options, searcher Searcher, fetcher Fetcher, store ImageStore, logger *zap.Logger) (*Pipeline, error) {
	if opts.Dir == "" {
		return nil, errors.New("image directory is required")
	}
	if err := os.MkdirAll(filepath.Join(opts.Dir, LockDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultMaxCandidates
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}

	return &Pipeline{
		dir:           opts.Dir,
		size:          opts.Size,
		maxCandidates: opts.MaxCandidates,
		fetchTimeout:  opts.FetchTimeout,
		searcher:      searcher,
		fetcher:       fetcher,
		store:         store,
		logger:        logger,
	}, nil
}

// Dir returns the directory images are stored in.
func (p *Pipeline) Dir() string {
	return p.dir
}

// Process makes sure the wine has an image on disk and records its path.
// Search and download failures are logged and reflected in the outcome;
// only a failure to record the path is returned as an error.
func (p *Pipeline) Process(ctx context.Context, wine *domain.Wine) (Outcome, error) {
	name := FileName(wine.Name, wine.Vintage)
	target := filepath.Join(p.dir, name)
	logger := p.logger.With(
		zap.Int64("wine_id", wine.ID),
		zap.String("file", name),
	)

	unlock, err := p.lock(ctx, name)
	if err != nil {
		return "", err
	}
	defer unlock()

	if _, err := os.Stat(target); err == nil {
		logger.Debug("Image already on disk")
		return p.finish(ctx, logger, wine, name, OutcomeCached)
	}

	query := Query(wine)
	urls, err := p.searcher.Search(ctx, query, p.maxCandidates)
	if err != nil {
		logger.Warn("Image search failed", zap.String("query", query), zap.Error(err))
	}
	if len(urls) == 0 {
		logger.Info("No image candidates found", zap.String("query", query))
		metrics.ObservePipeline(string(OutcomeNoCandidates))
		return OutcomeNoCandidates, nil
	}

	for i, candidate := range urls {
		img, err := p.download(ctx, candidate)
		if err != nil {
			metrics.ObserveDownload("failed")
			logger.Warn("Candidate download failed",
				zap.Int("attempt", i+1),
				zap.String("url", candidate),
				zap.Error(err),
			)
			continue
		}

		if err := p.save(target, Letterbox(img, p.size)); err != nil {
			metrics.ObserveDownload("failed")
			logger.Warn("Failed to store image", zap.String("url", candidate), zap.Error(err))
			continue
		}

		metrics.ObserveDownload("ok")
		logger.Info("Image stored", zap.String("url", candidate), zap.Int("attempt", i+1))
		return p.finish(ctx, logger, wine, name, OutcomeStored)
	}

	logger.Warn("All image candidates failed", zap.Int("candidates", len(urls)))
	metrics.ObservePipeline(string(OutcomeExhausted))
	return OutcomeExhausted, nil
}

func (p *Pipeline) finish(ctx context.Context, logger *zap.Logger, wine *domain.Wine, name string, outcome Outcome) (Outcome, error) {
	metrics.ObservePipeline(string(outcome))

	if err := p.store.UpdateImagePath(ctx, wine.ID, name); err != nil {
		logger.Error("Failed to record image path", zap.Error(err))
		return outcome, fmt.Errorf("failed to record image path: %w", err)
	}
	wine.ImagePath = &name
	return outcome, nil
}

func (p *Pipeline) download(ctx context.Context, rawURL string) (image.Image, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	data, err := p.fetcher.Fetch(attemptCtx, rawURL)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Renormalize re-letterboxes a stored image in place.
func (p *Pipeline) Renormalize(ctx context.Context, name string) error {
	unlock, err := p.lock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	target := filepath.Join(p.dir, name)
	data, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	img, err := Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return p.save(target, Letterbox(img, p.size))
}

// StoredImages lists the image files in the image directory.
func (p *Pipeline) StoredImages() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(p.dir, "*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	names := make([]string, 0, len(paths))
	for _, path := range paths {
		names = append(names, filepath.Base(path))
	}
	return names, nil
}

// save writes img next to target and renames it into place so readers
// never see a partial file.
func (p *Pipeline) save(target string, img image.Image) (err error) {
	tmp := filepath.Join(p.dir, "."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = EncodeJPEG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to move image into place: %w", err)
	}
	return nil
}

func (p *Pipeline) lock(ctx context.Context, name string) (func(), error) {
	fl := flock.New(filepath.Join(p.dir, LockDir, name+".lock"))

	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", name, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock %s", name)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			p.logger.Warn("Failed to release image lock", zap.String("file", name), zap.Error(err))
		}
	}, nil
}
