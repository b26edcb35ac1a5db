package imagery

import (
	"context"
	"fmt"
	"time"

	"wine-cellar/internal/domain"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBatchPace is the pause between two wines in a batch run.
const DefaultBatchPace = time.Second

// MissingImageLister returns wines that have no image recorded.
type MissingImageLister interface {
	ListMissingImages(ctx context.Context) ([]*domain.Wine, error)
}

// Report summarizes a batch run.
type Report struct {
	Renormalized int
	Outcomes     map[Outcome]int
	Failed       []string
}

// Total is the number of wines the batch attempted.
func (r *Report) Total() int {
	n := len(r.Failed)
	for _, count := range r.Outcomes {
		n += count
	}
	return n
}

// Batch walks the catalog and fills in missing images, pacing requests to
// the search provider.
type Batch struct {
	pipeline *Pipeline
	wines    MissingImageLister
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewBatch creates a batch runner waiting pace between wines.
func NewBatch(pipeline *Pipeline, wines MissingImageLister, pace time.Duration, logger *zap.Logger) *Batch {
	if pace <= 0 {
		pace = DefaultBatchPace
	}
	return &Batch{
		pipeline: pipeline,
		wines:    wines,
		limiter:  rate.NewLimiter(rate.Every(pace), 1),
		logger:   logger,
	}
}

// Run optionally re-letterboxes every stored image, then processes every
// wine without an image. Per-item failures are collected and returned
// together; the run continues past them.
func (b *Batch) Run(ctx context.Context, renormalize bool) (*Report, error) {
	report := &Report{Outcomes: make(map[Outcome]int)}
	var errs error

	if renormalize {
		n, err := b.Renormalize(ctx)
		report.Renormalized = n
		errs = multierr.Append(errs, err)
	}

	wines, err := b.wines.ListMissingImages(ctx)
	if err != nil {
		return report, multierr.Append(errs, fmt.Errorf("failed to list wines without images: %w", err))
	}

	b.logger.Info("Fetching missing images", zap.Int("wines", len(wines)))

	for _, wine := range wines {
		if err := b.limiter.Wait(ctx); err != nil {
			return report, multierr.Append(errs, err)
		}

		outcome, err := b.pipeline.Process(ctx, wine)
		if err != nil {
			report.Failed = append(report.Failed, wine.Name)
			errs = multierr.Append(errs, fmt.Errorf("wine %d: %w", wine.ID, err))
			continue
		}
		report.Outcomes[outcome]++
	}

	return report, errs
}

// Renormalize re-letterboxes every stored image in place and returns how
// many were rewritten.
func (b *Batch) Renormalize(ctx context.Context) (int, error) {
	names, err := b.pipeline.StoredImages()
	if err != nil {
		return 0, err
	}

	var (
		errs error
		done int
	)
	for _, name := range names {
		if ctx.Err() != nil {
			return done, multierr.Append(errs, ctx.Err())
		}
		if err := b.pipeline.Renormalize(ctx, name); err != nil {
			b.logger.Warn("Failed to renormalize image", zap.String("file", name), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		done++
	}

	b.logger.Info("Renormalized stored images", zap.Int("count", done), zap.Int("found", len(names)))
	return done, errs
}
