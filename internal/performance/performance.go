// Package performance provides the worker pool that spreads per-date
// aggregation across CPUs.
package performance

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs submitted tasks on a fixed set of goroutines. Tasks carry
// their own completion signalling; the pool only guarantees that an accepted
// task runs on some worker before Stop returns or is discarded by Stop.
type WorkerPool struct {
	workers    int
	taskQueue  chan func()
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	running    atomic.Bool
	tasksTotal atomic.Uint64
	tasksDone  atomic.Uint64
}

// NewWorkerPool creates a pool with the given number of workers. Values
// below 1 default to runtime.NumCPU().
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*100),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the workers. Calling Start on a running pool is a no-op.
func (p *WorkerPool) Start() {
	if p.running.Swap(true) {
		return
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.taskQueue:
			task()
			p.tasksDone.Add(1)
		}
	}
}

// Submit queues a task for execution. It returns false when the pool is not
// running or the queue is full; the caller decides whether to run the task
// inline or drop it.
func (p *WorkerPool) Submit(task func()) bool {
	if !p.running.Load() {
		return false
	}

	select {
	case p.taskQueue <- task:
		p.tasksTotal.Add(1)
		return true
	default:
		return false
	}
}

// Stop shuts the workers down and waits for them to exit. Tasks still queued
// when Stop is called may be discarded, so callers that need completion must
// synchronize on their tasks before stopping.
func (p *WorkerPool) Stop() {
	if !p.running.Swap(false) {
		return
	}

	p.cancel()
	p.wg.Wait()
}

// Stats returns a snapshot of pool counters.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		Running:    p.running.Load(),
		TasksTotal: p.tasksTotal.Load(),
		TasksDone:  p.tasksDone.Load(),
		QueueLen:   len(p.taskQueue),
	}
}

// PoolStats is a point-in-time view of a pool's counters.
type PoolStats struct {
	Workers    int
	Running    bool
	TasksTotal uint64
	TasksDone  uint64
	QueueLen   int
}
