package imagery

import (
	"context"
	"sync"

	"wine-cellar/internal/domain"
	"wine-cellar/internal/metrics"

	"go.uber.org/zap"
)

// DefaultQueueSize bounds the number of wines waiting for the worker. It
// also bounds shutdown; see Stop.
const DefaultQueueSize = 8

// Processor runs the pipeline for one wine.
type Processor interface {
	Process(ctx context.Context, wine *domain.Wine) (Outcome, error)
}

// Dispatcher feeds wines to a single background worker so image
// acquisition never runs on a request goroutine.
type Dispatcher struct {
	processor Processor
	queue     chan *domain.Wine
	logger    *zap.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher with a queue of the given size.
func NewDispatcher(processor Processor, size int, logger *zap.Logger) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		processor: processor,
		queue:     make(chan *domain.Wine, size),
		logger:    logger,
	}
}

// Start launches the worker. Runs use ctx; it should outlive Stop so that
// queued wines can drain.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for wine := range d.queue {
			metrics.SetQueueDepth(len(d.queue))
			d.run(ctx, wine)
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, wine *domain.Wine) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Image pipeline panicked", zap.Int64("wine_id", wine.ID), zap.Any("panic", r))
		}
	}()

	outcome, err := d.processor.Process(ctx, wine)
	if err != nil {
		d.logger.Error("Image pipeline failed", zap.Int64("wine_id", wine.ID), zap.Error(err))
		return
	}
	d.logger.Debug("Image pipeline finished",
		zap.Int64("wine_id", wine.ID),
		zap.String("outcome", string(outcome)),
	)
}

// Enqueue hands a copy of the wine to the worker without blocking, so the
// caller keeps sole ownership of wine. It returns false when the queue is
// full or the dispatcher is stopped.
func (d *Dispatcher) Enqueue(wine *domain.Wine) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	queued := *wine
	select {
	case d.queue <- &queued:
		metrics.SetQueueDepth(len(d.queue))
		return true
	default:
		metrics.ObserveQueueDrop()
		d.logger.Warn("Image queue full, dropping wine",
			zap.Int64("wine_id", wine.ID),
			zap.String("name", wine.Name),
		)
		return false
	}
}

// Stop refuses new wines, waits for queued wines to finish and returns.
// Runs are not cancelled, so Stop can block for up to (queue size + 1)
// runs, each at most two search requests plus MaxCandidates downloads,
// every request capped by the fetch timeout. With the defaults that is
// 9 × 7 × 10s.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
