package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncapp "github.com/erp/shipsync/internal/application/sync"
)

type countingRunner struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newCountingRunner() *countingRunner {
	return &countingRunner{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (r *countingRunner) Run(ctx context.Context) (*syncapp.Report, error) {
	r.runs.Add(1)
	r.started <- struct{}{}
	select {
	case <-r.release:
	case <-ctx.Done():
	}
	return &syncapp.Report{}, nil
}

var _ Runner = (*countingRunner)(nil)

func TestIngestTrigger(t *testing.T) {
	t.Run("runs once on start", func(t *testing.T) {
		runner := newCountingRunner()
		trigger := NewIngestTrigger(runner, time.Hour, zap.NewNop())
		require.NoError(t, trigger.Start(context.Background()))

		select {
		case <-runner.started:
		case <-time.After(2 * time.Second):
			t.Fatal("startup run never happened")
		}

		close(runner.release)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, trigger.Stop(ctx))
		assert.Equal(t, int32(1), runner.runs.Load())
	})

	t.Run("coalesces triggers while a run is pending", func(t *testing.T) {
		runner := newCountingRunner()
		trigger := NewIngestTrigger(runner, time.Hour, zap.NewNop())
		require.NoError(t, trigger.Start(context.Background()))

		// Wait for the startup run to occupy the worker
		select {
		case <-runner.started:
		case <-time.After(2 * time.Second):
			t.Fatal("startup run never happened")
		}

		// First manual trigger queues, the rest are no-ops
		assert.True(t, trigger.TriggerNow())
		assert.False(t, trigger.TriggerNow())
		assert.False(t, trigger.TriggerNow())

		close(runner.release)

		// The queued trigger produces exactly one more run
		select {
		case <-runner.started:
		case <-time.After(2 * time.Second):
			t.Fatal("queued run never happened")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, trigger.Stop(ctx))
		assert.Equal(t, int32(2), runner.runs.Load())
	})

	t.Run("start is idempotent", func(t *testing.T) {
		runner := newCountingRunner()
		close(runner.release)
		trigger := NewIngestTrigger(runner, time.Hour, zap.NewNop())
		require.NoError(t, trigger.Start(context.Background()))
		require.NoError(t, trigger.Start(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, trigger.Stop(ctx))
		require.NoError(t, trigger.Stop(ctx))
	})
}
