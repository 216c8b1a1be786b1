// Package worker runs submitted tasks on a fixed set of goroutines fed by a
// bounded queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/kyrieos/intelligence-engine/internal/metrics"
)

var (
	ErrQueueFull   = errors.New("worker queue is full")
	ErrPoolStopped = errors.New("worker pool is not running")
)

// Task is a unit of work. ctx is cancelled only when Stop runs out of time.
type Task func(ctx context.Context)

// Pool executes tasks with bounded concurrency. Each submitted task is
// attempted at most once.
type Pool struct {
	concurrency int
	queueSize   int
	logger      *slog.Logger

	queue  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	running bool
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithConcurrency sets the number of worker goroutines.
func WithConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithQueueSize sets how many tasks may wait for a free worker.
func WithQueueSize(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// NewPool creates a worker pool. Call Start before submitting.
func NewPool(logger *slog.Logger, opts ...PoolOption) *Pool {
	p := &Pool{
		concurrency: 8,
		queueSize:   256,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the worker goroutines. It returns immediately.
func (p *Pool) Start(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	p.running = true
	p.queue = make(chan Task, p.queueSize)
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("worker pool starting",
		slog.Int("concurrency", p.concurrency),
		slog.Int("queue_size", p.queueSize),
	)

	for range p.concurrency {
		p.wg.Add(1)
		go p.loop()
	}
	return nil
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		metrics.WorkerRejectedTotal.WithLabelValues("stopped").Inc()
		return ErrPoolStopped
	}

	select {
	case p.queue <- task:
		metrics.WorkerQueueDepth.Inc()
		return nil
	default:
		metrics.WorkerRejectedTotal.WithLabelValues("queue_full").Inc()
		return fmt.Errorf("%w (%d queued)", ErrQueueFull, p.queueSize)
	}
}

// Stop refuses new tasks, lets workers drain the queue and waits for them.
// If ctx expires first, the context passed to running tasks is cancelled.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.queue)
	p.mu.Unlock()

	p.logger.Info("worker pool stopping")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timed out, cancelling active tasks")
		p.cancel()
		<-done
	}
	p.cancel()
	return nil
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for task := range p.queue {
		metrics.WorkerQueueDepth.Dec()
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordPanic(metrics.PanicSourceWorker)
			p.logger.Error("panic in worker task",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	task(p.ctx)
}
