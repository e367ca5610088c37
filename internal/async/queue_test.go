package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerQueue_DrainsOnShutdown(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	q := NewWorkerQueue(func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[job.ID] = true
		if job.ID == "job-3" {
			return errors.New("boom")
		}
		return nil
	}, nil, WithWorkers(3), WithQueueSize(2))

	for i := 0; i < 20; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{ID: fmt.Sprintf("job-%d", i)}))
	}
	require.NoError(t, q.Shutdown(context.Background()))
	assert.Len(t, seen, 20)

	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{ID: "late"}), ErrQueueClosed)
	assert.NoError(t, q.Shutdown(context.Background()))
}

func TestWorkerQueue_ProcessTimeout(t *testing.T) {
	var expired atomic.Bool
	q := NewWorkerQueue(func(ctx context.Context, _ Job) error {
		<-ctx.Done()
		expired.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	}, nil, WithWorkers(1), WithProcessTimeout(10*time.Millisecond))

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "slow"}))
	require.NoError(t, q.Shutdown(context.Background()))
	assert.True(t, expired.Load())
}

func TestWorkerQueue_EnqueueHonorsContext(t *testing.T) {
	release := make(chan struct{})
	q := NewWorkerQueue(func(context.Context, Job) error {
		<-release
		return nil
	}, nil, WithWorkers(1), WithQueueSize(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "a"}))
	// wait for the worker to pick up "a" so "b" fills the buffer
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "b"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, Job{ID: "c"}), context.DeadlineExceeded)

	close(release)
	require.NoError(t, q.Shutdown(context.Background()))
}

func TestWorkerQueue_ParentCancelReachesRunningJob(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var cause atomic.Value
	q := NewWorkerQueue(func(ctx context.Context, _ Job) error {
		close(started)
		<-ctx.Done()
		cause.Store(ctx.Err())
		return ctx.Err()
	}, nil, WithParent(parent), WithWorkers(1), WithProcessTimeout(time.Minute))

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "running"}))
	<-started
	cancel()

	done := make(chan error, 1)
	go func() { done <- q.Shutdown(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("running job did not observe parent cancellation")
	}
	assert.ErrorIs(t, cause.Load().(error), context.Canceled)
}
