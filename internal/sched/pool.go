package sched

import (
	"runtime"

	"github.com/alitto/pond/v2"
)

// WorkerPool runs jobs on a fixed number of goroutines.
type WorkerPool struct {
	pool    pond.Pool
	workers int
}

// NewWorkerPool creates a pool with the given number of workers. Zero or less
// uses one worker per CPU.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = max(runtime.NumCPU(), 1)
	}
	return &WorkerPool{
		pool:    pond.NewPool(workers),
		workers: workers,
	}
}

// Submit queues a job. It must not race with Shutdown; Scheduler gates both.
func (p *WorkerPool) Submit(job func()) {
	p.pool.Submit(job)
}

// Workers returns the configured concurrency.
func (p *WorkerPool) Workers() int { return p.workers }

// GetQueueLength returns the number of jobs waiting for a worker.
func (p *WorkerPool) GetQueueLength() int {
	return int(p.pool.WaitingTasks())
}

// Running returns the number of jobs currently executing.
func (p *WorkerPool) Running() int {
	return int(p.pool.RunningWorkers())
}

// Shutdown waits for queued jobs to finish and stops the workers.
func (p *WorkerPool) Shutdown() {
	p.pool.StopAndWait()
}
