package workerpool

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Job func(ctx context.Context)

type WorkerPool struct {
	queue chan Job
	wg    sync.WaitGroup
}

func NewWorkerPool(ctx context.Context, workerCount int, queueSize int) *WorkerPool {
	pool := &WorkerPool{
		queue: make(chan Job, queueSize),
	}

	for i := 0; i < workerCount; i++ {
		go pool.worker(ctx)
	}

	return pool
}

func (p *WorkerPool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Debug("worker received shutdown signal")
			return
		case job, ok := <-p.queue:
			if !ok {
				// queue closed
				return
			}
			job(ctx)
			p.wg.Done()
		}
	}
}

// Submit queues a job. It reports false when the queue is full and the
// job was dropped.
func (p *WorkerPool) Submit(job Job) bool {
	p.wg.Add(1)
	select {
	case p.queue <- job:
		return true
	default:
		p.wg.Done()
		slog.Warn("worker pool queue full: job dropped")
		return false
	}
}

func (p *WorkerPool) Shutdown(ctx context.Context) {
	close(p.queue)

	done := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		slog.Warn("worker pool shutdown timed out")
	case <-done:
		slog.Info("worker pool shutdown complete")
	}
}

func WithRetry(retries int, delay time.Duration, job func() error) func(ctx context.Context) {
	return func(ctx context.Context) {
		for i := 0; i < retries; i++ {
			if ctx.Err() != nil {
				slog.Debug("job canceled before execution")
				return
			}

			err := job()

			if err == nil {
				return // success
			}
			slog.Warn("job failed", "attempt", i+1, "retries", retries, "error", err)
			time.Sleep(delay)
		}
		slog.Error("job failed after max retries")
	}
}
