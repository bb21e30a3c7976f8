package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Flusher writes pending state to durable storage. Implementations retry
// their own writes, so the scheduler calls Flush once per tick.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Scheduler periodically re-persists stores whose last save failed or that
// were never written.
type Scheduler struct {
	flusher  Flusher
	interval time.Duration
	logger   *zerolog.Logger
	stopChan chan struct{}
	done     chan struct{}
}

func NewScheduler(flusher Flusher, interval time.Duration, logger *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Scheduler{
		flusher:  flusher,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
	s.logger.Info().Dur("interval", s.interval).Msg("flush scheduler started")
}

// Stop ends the loop and waits for an in-flight flush to finish.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	<-s.done
	s.logger.Info().Msg("flush scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) flush(ctx context.Context) {
	if err := s.flusher.Flush(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to flush stores")
	}
}
