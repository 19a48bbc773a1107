package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker_EnqueueAsync(t *testing.T) {
	w := NewWorker(1)
	defer w.Shutdown()

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		w.EnqueueAsync(func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	w.EnqueueAsync(func(ctx context.Context) error {
		return errors.New("boom")
	})
	w.EnqueueAsync(func(ctx context.Context) error {
		panic("unexpected")
	})

	w.Wait()

	stats := w.GetStats()
	assert.Equal(t, int32(5), ran.Load())
	assert.Equal(t, int64(7), stats.CompletedJobs)
	assert.Equal(t, int64(2), stats.FailedJobs)
	assert.Zero(t, stats.ActiveJobs)
	assert.Equal(t, 10, stats.MaxConcurrent)
}

func TestWorker_ScheduleEvery(t *testing.T) {
	w := NewWorker(1)

	done := make(chan struct{}, 1)
	w.ScheduleEvery("stale_adjustments", time.Hour, true, func(ctx context.Context) error {
		done <- struct{}{}
		return errors.New("database unavailable")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate scheduled job did not run")
	}
	w.Shutdown()

	run, ok := w.GetStats().Scheduled["stale_adjustments"]
	require.True(t, ok)
	assert.Equal(t, "1h0m0s", run.Interval)
	assert.Equal(t, int64(1), run.Runs)
	assert.Equal(t, "database unavailable", run.LastError)
}

func TestWorker_Enqueue(t *testing.T) {
	w := NewWorker(2)

	done := make(chan struct{})
	w.Enqueue(func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued job did not run")
	}
	w.Shutdown()
	assert.Equal(t, int64(1), w.GetStats().CompletedJobs)
}
