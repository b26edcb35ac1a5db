package loader

import (
	"context"
	"fmt"

	"wine-cellar/internal/domain"

	"go.uber.org/zap"
)

// Migrator rebuilds the schema from scratch.
type Migrator interface {
	Reset(ctx context.Context) error
}

// MigratorFunc adapts a function to Migrator.
type MigratorFunc func(ctx context.Context) error

func (f MigratorFunc) Reset(ctx context.Context) error { return f(ctx) }

// WineInserter writes wines in a single transaction.
type WineInserter interface {
	BulkInsert(ctx context.Context, wines []*domain.Wine) error
}

// Skipped identifies a record that could not be imported.
type Skipped struct {
	Index  int
	Reason string
}

// Result summarizes a load.
type Result struct {
	Inserted []*domain.Wine
	Skipped  []Skipped
}

// Loader replaces the catalog with the contents of a snapshot.
type Loader struct {
	migrator Migrator
	wines    WineInserter
	logger   *zap.Logger
}

// New creates a Loader.
func New(migrator Migrator, wines WineInserter, logger *zap.Logger) *Loader {
	return &Loader{migrator: migrator, wines: wines, logger: logger}
}

// Load drops and recreates the schema, then inserts every named record in
// one transaction. Existing wines and comments are lost.
func (l *Loader) Load(ctx context.Context, snapshot *Snapshot) (*Result, error) {
	result := &Result{Inserted: make([]*domain.Wine, 0, len(snapshot.Wines))}
	for i, record := range snapshot.Wines {
		wine, ok := record.Wine()
		if !ok {
			result.Skipped = append(result.Skipped, Skipped{Index: i, Reason: "missing name"})
			continue
		}
		result.Inserted = append(result.Inserted, wine)
	}

	if err := l.migrator.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset schema: %w", err)
	}

	if err := l.wines.BulkInsert(ctx, result.Inserted); err != nil {
		return nil, fmt.Errorf("failed to insert wines: %w", err)
	}

	for _, s := range result.Skipped {
		l.logger.Warn("Skipped snapshot record", zap.Int("index", s.Index), zap.String("reason", s.Reason))
	}
	l.logger.Info("Catalog loaded",
		zap.Int("inserted", len(result.Inserted)),
		zap.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}
