package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one unit of work handed to a worker.
type Job struct {
	ID          string
	Path        string
	SubmittedAt time.Time
}

// Handler processes a single job. Its context carries the per-job timeout
// and ends with the queue's parent context.
type Handler func(ctx context.Context, job Job) error

var ErrQueueClosed = errors.New("queue is shutting down")

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context) error
}

// WorkerQueue runs jobs on a fixed number of workers over a bounded channel.
// Enqueue blocks while the channel is full.
type WorkerQueue struct {
	handle  Handler
	logger  *zap.Logger
	parent  context.Context
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*WorkerQueue)

func WithWorkers(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
// WithParent derives every job context from ctx, so cancelling it reaches
// jobs already running.
func WithParent(ctx context.Context) Option {
	return func(q *WorkerQueue) {
		if ctx != nil {
			q.parent = ctx
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *WorkerQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewWorkerQueue(handle Handler, logger *zap.Logger, opts ...Option) *WorkerQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &WorkerQueue{
		handle:  handle,
		logger:  logger,
		parent:  context.Background(),
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *WorkerQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", zap.Int("worker_id", workerID))

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(q.parent, q.timeout)
					start := time.Now()
					err := q.handle(ctx, job)
					cancel()

					if err != nil {
						q.logger.Error("job failed",
							zap.Int("worker_id", workerID),
							zap.String("job_id", job.ID),
							zap.String("path", job.Path),
							zap.Error(err),
						)
					} else {
						q.logger.Info("job done",
							zap.Int("worker_id", workerID),
							zap.String("job_id", job.ID),
							zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
						)
					}
				}

				q.logger.Debug("worker stopped", zap.Int("worker_id", workerID))
			}(i + 1)
		}
	})
}

// Enqueue hands job to the workers. It fails once Shutdown has been called
// or when ctx ends while waiting for room.
func (q *WorkerQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", zap.String("job_id", job.ID))
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		return nil
	default:
		q.logger.Debug("queue full, applying backpressure", zap.String("job_id", job.ID))
	}
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
func (q *WorkerQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
		return ctx.Err()
	case <-done:
		q.logger.Debug("queue drained, shutdown complete")
		return nil
	}
}
