package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StaleCounter counts contacted leads with no reply inside the window.
type StaleCounter interface {
	StaleAwaitingReply(ctx context.Context, window time.Duration) int
}

// StaleOutreachWorker periodically publishes how many leads have been left
// waiting on a reply for longer than the window.
type StaleOutreachWorker struct {
	counter      StaleCounter
	publish      func(n int)
	window       time.Duration
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewStaleOutreachWorker(counter StaleCounter, publish func(n int), window, tick time.Duration, logger *zap.Logger) *StaleOutreachWorker {
	return &StaleOutreachWorker{
		counter:      counter,
		publish:      publish,
		window:       window,
		tickInterval: tick,
		logger:       logger,
	}
}

// Start blocks until ctx is done.
func (w *StaleOutreachWorker) Start(ctx context.Context) {
	w.logger.Info("stale outreach worker started",
		zap.Duration("window", w.window), zap.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.check(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stale outreach worker stopped")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *StaleOutreachWorker) check(ctx context.Context) {
	n := w.counter.StaleAwaitingReply(ctx, w.window)
	w.publish(n)
	if n > 0 {
		w.logger.Info("leads awaiting reply past window", zap.Int("count", n))
	}
}
