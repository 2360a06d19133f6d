package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/webpot/internal/domain/model"
)

// NotificationFacade exposes the subset of application functionality required by the worker.
type NotificationFacade interface {
	ClaimApprovalNotices(ctx context.Context, limit int) ([]model.Order, error)
	SendApprovalNotice(ctx context.Context, order model.Order) error
	ReleaseApprovalNotice(ctx context.Context, orderID int64) error
}

// NotificationDispatcher polls approved orders and delivers approval notices concurrently.
type NotificationDispatcher struct {
	facade       NotificationFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewNotificationDispatcher constructs dispatcher worker pool.
func NewNotificationDispatcher(facade NotificationFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &NotificationDispatcher{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
	}
}

// Start launches background processing. Each run gets a fresh job queue, so
// the dispatcher may be restarted after Stop. Start on a running dispatcher is a no-op.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	jobs := make(chan model.Order, d.batchSize*d.workers)
	d.jobs = jobs

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx, jobs)
	}

	d.wg.Add(1)
	go d.dispatch(runCtx, jobs)
}

// Stop waits for all workers to finish. Orders claimed but not yet sent are released.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	cancel, jobs := d.cancel, d.jobs
	if cancel == nil {
		return
	}
	d.cancel, d.jobs = nil, nil

	cancel()
	d.wg.Wait()

	for order := range jobs {
		d.release(context.Background(), order)
	}
}

func (d *NotificationDispatcher) dispatch(ctx context.Context, jobs chan<- model.Order) {
	defer d.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.claimAndDispatch(ctx, jobs)
		}
	}
}

func (d *NotificationDispatcher) claimAndDispatch(ctx context.Context, jobs chan<- model.Order) {
	orders, err := d.facade.ClaimApprovalNotices(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("claim approval notices failed", slog.String("error", err.Error()))
		return
	}
	for i, order := range orders {
		select {
		case <-ctx.Done():
			for _, rest := range orders[i:] {
				d.release(context.Background(), rest)
			}
			return
		case jobs <- order:
		}
	}
}

func (d *NotificationDispatcher) worker(ctx context.Context, jobs <-chan model.Order) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-jobs:
			if !ok {
				return
			}
			d.handleOrder(ctx, order)
		}
	}
}

func (d *NotificationDispatcher) handleOrder(ctx context.Context, order model.Order) {
	if err := d.facade.SendApprovalNotice(ctx, order); err != nil {
		d.logger.Error("approval notice failed", slog.String("order", order.Reference), slog.String("error", err.Error()))
		d.release(ctx, order)
		return
	}
	d.logger.Info("approval notice sent", slog.String("order", order.Reference))
}

func (d *NotificationDispatcher) release(ctx context.Context, order model.Order) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := d.facade.ReleaseApprovalNotice(ctx, order.ID); err != nil {
		d.logger.Error("release approval notice failed", slog.String("order", order.Reference), slog.String("error", err.Error()))
	}
}
