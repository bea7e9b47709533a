package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestBackgroundTasks_DrainsAndCountsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := newCountingRecorder()
	tasks := NewBackgroundTasks(time.Second, rec, zap.NewNop())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.True(t, tasks.Go("ok", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}))
	}
	tasks.Go("broken", func(ctx context.Context) error {
		return errors.New("sheet quota exceeded")
	})
	tasks.Go("panicky", func(ctx context.Context) error {
		panic("boom")
	})

	require.NoError(t, tasks.Wait(context.Background()))
	assert.Equal(t, int32(5), ran.Load())
	assert.Equal(t, 1, rec.taskFailures("broken"))
	assert.Equal(t, 1, rec.taskFailures("panicky"))
}

func TestBackgroundTasks_RejectsAfterWait(t *testing.T) {
	defer goleak.VerifyNone(t)

	tasks := NewBackgroundTasks(0, nil, zap.NewNop())
	require.NoError(t, tasks.Wait(context.Background()))

	assert.False(t, tasks.Go("late", func(ctx context.Context) error { return nil }))
}

func TestBackgroundTasks_TaskTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := newCountingRecorder()
	tasks := NewBackgroundTasks(10*time.Millisecond, rec, zap.NewNop())

	tasks.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.NoError(t, tasks.Wait(context.Background()))
	assert.Equal(t, 1, rec.taskFailures("slow"))
}

func TestBackgroundTasks_WaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	tasks := NewBackgroundTasks(0, nil, zap.NewNop())
	tasks.Go("stuck", func(ctx context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tasks.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, tasks.Wait(context.Background()))
}
