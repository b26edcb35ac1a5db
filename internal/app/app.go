// Package app assembles the long-lived dependencies shared by the HTTP
// server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"net"

	"wine-cellar/internal/config"
	"wine-cellar/internal/database"
	"wine-cellar/internal/imagery"
	"wine-cellar/internal/loader"
	"wine-cellar/internal/metrics"
	"wine-cellar/internal/repository"
	"wine-cellar/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App owns the store connection, the repositories, the services and the
// image pipeline. It replaces package-level globals.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *database.Service

	Wines    repository.WineRepository
	Comments repository.CommentRepository
	Stats    repository.StatsRepository

	Catalog      service.CatalogService
	Dashboard    service.DashboardService
	CommentsSvc  service.CommentService
	WinesSvc     service.WineService
	Tokens       *service.TokenService
	Pipeline     *imagery.Pipeline
	Batch        *imagery.Batch
	Dispatcher   *imagery.Dispatcher
	Loader       *loader.Loader
	redisClient  *redis.Client
	workerCancel context.CancelFunc
}

// New connects to the store and builds every component. The image worker
// is not started; call StartImageWorker for that.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	metrics.Init()

	db, err := database.New(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	a, err := newWithStore(cfg, logger, db, repository.NewWineRepository(db.Pool()),
		repository.NewCommentRepository(db.Pool()), repository.NewStatsRepository(db.Pool()))
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func newWithStore(
	cfg *config.Config,
	logger *zap.Logger,
	db *database.Service,
	wines repository.WineRepository,
	comments repository.CommentRepository,
	stats repository.StatsRepository,
) (*App, error) {
	clientCfg := imagery.ClientConfig{
		UserAgent: cfg.Images.UserAgent,
		Timeout:   cfg.Images.FetchTimeout,
	}

	pipeline, err := imagery.NewPipeline(imagery.Options{
		Dir:           cfg.Images.Dir,
		Size:          cfg.Images.Size,
		MaxCandidates: cfg.Images.MaxCandidates,
		FetchTimeout:  cfg.Images.FetchTimeout,
	},
		imagery.NewDuckDuckGo(cfg.Images.SearchBaseURL, clientCfg),
		imagery.NewCollyFetcher(clientCfg),
		wines,
		logger.Named("imagery"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up image pipeline: %w", err)
	}

	dispatcher := imagery.NewDispatcher(pipeline, cfg.Images.QueueSize, logger.Named("imagery"))

	a := &App{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Wines:       wines,
		Comments:    comments,
		Stats:       stats,
		Catalog:     service.NewCatalogService(wines, stats),
		Dashboard:   service.NewDashboardService(stats),
		CommentsSvc: service.NewCommentService(wines, comments),
		WinesSvc:    service.NewWineService(wines, dispatcher),
		Tokens:      service.NewTokenService(cfg.JWT.Secret),
		Pipeline:    pipeline,
		Batch:       imagery.NewBatch(pipeline, wines, cfg.Images.BatchPace, logger.Named("batch")),
		Dispatcher:  dispatcher,
	}

	if db != nil {
		a.Loader = loader.New(loader.MigratorFunc(func(ctx context.Context) error {
			return database.ResetSchema(ctx, db.DB(), logger)
		}), wines, logger.Named("loader"))
	}

	return a, nil
}

// Redis returns the client used by the rate limiter, creating it on first
// use.
func (a *App) Redis() *redis.Client {
	if a.redisClient == nil {
		a.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(a.Config.Redis.Host, a.Config.Redis.Port),
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})
	}
	return a.redisClient
}

// Migrate applies pending migrations.
func (a *App) Migrate(ctx context.Context) error {
	return database.RunMigrations(ctx, a.DB.DB(), a.Logger)
}

// StartImageWorker starts the background image worker. Its runs are not
// tied to request contexts and continue until Close drains the queue.
func (a *App) StartImageWorker() {
	ctx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	a.Dispatcher.Start(ctx)
}

// Close drains the image queue and releases connections. Draining is
// bounded as described on imagery.Dispatcher.Stop.
func (a *App) Close() {
	a.Dispatcher.Stop()
	if a.workerCancel != nil {
		a.workerCancel()
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.Logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
