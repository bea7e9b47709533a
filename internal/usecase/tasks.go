package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BackgroundTasks runs side effects the request path does not wait for.
//
// Contract: best effort, no retry. A failing task is logged and counted and
// nothing else happens; the caller never observes the result. Wait blocks
// until every started task has returned and is meant for shutdown.
type BackgroundTasks struct {
	Timeout  time.Duration
	Recorder Recorder
	Logger   *zap.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func NewBackgroundTasks(timeout time.Duration, recorder Recorder, logger *zap.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		Timeout:  timeout,
		Recorder: recorderOrNop(recorder),
		Logger:   logger,
	}
}

// Go starts fn detached from the caller's context. It reports false when the
// runner is already draining and the task was dropped.
func (b *BackgroundTasks) Go(name string, fn func(ctx context.Context) error) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.Logger.Warn("background task dropped during shutdown", zap.String("task", name))
		return false
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.Recorder.TaskFailed(name)
				b.Logger.Error("background task panicked", zap.String("task", name), zap.Any("panic", r))
			}
		}()

		ctx := context.Background()
		if b.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.Timeout)
			defer cancel()
		}

		if err := fn(ctx); err != nil {
			b.Recorder.TaskFailed(name)
			b.Logger.Warn("background task failed", zap.String("task", name), zap.Error(err))
		}
	}()
	return true
}

// Wait stops accepting tasks and drains the running ones, or gives up when ctx ends.
func (b *BackgroundTasks) Wait(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
