package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"notifyprefs/internal/logger"
)

type countingFlusher struct {
	calls atomic.Int32
	err   error
}

func (f *countingFlusher) Flush(ctx context.Context) error {
	f.calls.Add(1)
	return f.err
}

func TestSchedulerFlushesPeriodically(t *testing.T) {
	f := &countingFlusher{}
	s := NewScheduler(f, 10*time.Millisecond, logger.Nop())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return f.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	n := f.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, f.calls.Load(), "no flushes after Stop")
}

func TestSchedulerFlushesOncePerTick(t *testing.T) {
	f := &countingFlusher{err: errors.New("redis down")}
	s := NewScheduler(f, time.Hour, logger.Nop())

	s.flush(context.Background())
	assert.Equal(t, int32(1), f.calls.Load(), "failures wait for the next tick")

	s.flush(context.Background())
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestSchedulerStopsWithContext(t *testing.T) {
	f := &countingFlusher{}
	s := NewScheduler(f, time.Hour, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not exit after context cancellation")
	}
}
