package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	syncapp "github.com/erp/shipsync/internal/application/sync"
)

// Runner executes one ingestion pass over all enabled carrier
// connections
type Runner interface {
	Run(ctx context.Context) (*syncapp.Report, error)
}

// IngestTrigger runs the ingestion pipeline on a fixed interval and on
// demand. Triggers are coalesced: a trigger arriving while a run is
// already pending is a no-op, so bursts collapse into one pass.
type IngestTrigger struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger

	pending   chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewIngestTrigger creates an ingestion trigger firing at the given
// interval
func NewIngestTrigger(runner Runner, interval time.Duration, logger *zap.Logger) *IngestTrigger {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &IngestTrigger{
		runner:   runner,
		interval: interval,
		logger:   logger,
		pending:  make(chan struct{}, 1),
	}
}

// Start launches the ticker and the single worker goroutine
func (t *IngestTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(2)
	go t.tickLoop(ctx)
	go t.workLoop(ctx)

	t.logger.Info("Ingestion trigger started", zap.Duration("interval", t.interval))
	return nil
}

// Stop halts the ticker and waits for an in-flight run to finish, up to
// the deadline on ctx
func (t *IngestTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Ingestion trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerNow requests an immediate ingestion pass. Returns false when a
// pass is already pending, in which case the pending pass covers this
// request.
func (t *IngestTrigger) TriggerNow() bool {
	select {
	case t.pending <- struct{}{}:
		return true
	default:
		return false
	}
}

func (t *IngestTrigger) tickLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	// Fire once on startup so a fresh process catches up immediately
	t.TriggerNow()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !t.TriggerNow() {
				t.logger.Debug("Ingestion already pending, tick skipped")
			}
		}
	}
}

func (t *IngestTrigger) workLoop(ctx context.Context) {
	defer t.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.pending:
			start := time.Now()
			report, err := t.runner.Run(ctx)
			if err != nil {
				t.logger.Error("Ingestion run failed", zap.Error(err))
				continue
			}
			t.logger.Info("Ingestion run finished",
				zap.Duration("elapsed", time.Since(start)),
				zap.Int("orders_seen", report.OrdersSeen),
				zap.Int("created", report.Created),
				zap.Int("status_updated", report.StatusUpdated),
				zap.Int("skipped", report.Skipped),
				zap.Int("failed", report.Failed),
			)
		}
	}
}
