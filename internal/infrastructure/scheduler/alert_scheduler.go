package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AlertSweeper runs one pass over alert-enabled thresholds and creates
// alerts for breached budgets
type AlertSweeper interface {
	CheckAndCreateAlerts(ctx context.Context) (int, error)
}

// AlertScheduler periodically sweeps budget thresholds
type AlertScheduler struct {
	sweeper  AlertSweeper
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAlertScheduler creates a scheduler that sweeps at the given interval
func NewAlertScheduler(sweeper AlertSweeper, interval time.Duration, logger *zap.Logger) *AlertScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &AlertScheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the sweep loop. The first sweep runs immediately.
// Calling Start on a running scheduler is a no-op.
func (s *AlertScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
	s.logger.Info("alert scheduler started", zap.Duration("interval", s.interval))
}

// Stop cancels the sweep loop and waits for the current sweep to finish
func (s *AlertScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("alert scheduler stopped")
}

func (s *AlertScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *AlertScheduler) sweep(ctx context.Context) {
	created, err := s.sweeper.CheckAndCreateAlerts(ctx)
	if err != nil {
		s.logger.Error("threshold sweep failed", zap.Error(err))
		return
	}
	if created > 0 {
		s.logger.Info("threshold sweep created alerts", zap.Int("count", created))
	}
}
