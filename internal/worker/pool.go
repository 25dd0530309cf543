// Package worker runs job bodies on a fixed pool of goroutines with a
// bounded queue. Saturation surfaces as an error at submit time so the
// admission path can reject with backpressure instead of queueing
// unboundedly.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

// Task is one job body. It receives a context detached from the
// submitting request: once started, a task runs to completion or fault;
// there is no cancellation.
type Task func(ctx context.Context)

type item struct {
	name string
	run  Task
}

// Pool processes submitted tasks concurrently.
type Pool struct {
	logger  *slog.Logger
	workers int
	queue   chan item

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds pool configuration.
type Config struct {
	// Workers is the number of concurrent task processors
	Workers int

	// QueueSize bounds the number of tasks waiting for a worker
	QueueSize int

	Logger *slog.Logger
}

// New creates a worker pool.
func New(cfg Config) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Pool{
		logger:  logger,
		workers: workers,
		queue:   make(chan item, queueSize),
	}
}

// Start begins the worker goroutines. It returns immediately.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	p.logger.Info("worker pool starting", "workers", p.workers, "queue_size", cap(p.queue))

	// Tasks never observe request or shutdown cancellation.
	taskCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, taskCtx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(p.doneCh)
	}()
}

// Submit enqueues a task. Returns domain.ErrQueueFull when the queue is
// saturated; callers should reject the request rather than wait.
func (p *Pool) Submit(name string, task Task) error {
	select {
	case p.queue <- item{name: name, run: task}:
		return nil
	default:
		p.logger.Warn("task rejected, queue full", "task", name)
		return domain.ErrQueueFull
	}
}

// Stop signals the workers to drain and waits for in-flight tasks.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.mu.Unlock()

	<-p.doneCh

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("worker pool stopped")
}

func (p *Pool) loop(ctx, taskCtx context.Context, workerID int) {
	logger := p.logger.With("worker_id", workerID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			// Drain what is already queued, then exit.
			for {
				select {
				case it := <-p.queue:
					p.runTask(taskCtx, it, logger)
				default:
					return
				}
			}
		case it := <-p.queue:
			p.runTask(taskCtx, it, logger)
		}
	}
}

func (p *Pool) runTask(ctx context.Context, it item, logger *slog.Logger) {
	logger.Info("task started", "task", it.name)
	it.run(ctx)
	logger.Info("task finished", "task", it.name)
}
