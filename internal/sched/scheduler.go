package sched

import (
	"sync"

	"golang.org/x/time/rate"
)

// Scheduler combines the worker pool used for generation with the queue that
// carries results back to the control thread.
type Scheduler struct {
	pool *WorkerPool
	main *MainThreadQueue

	// mu orders submissions against Shutdown. Workers hold the read side while
	// they hand the pool a follow-up job.
	mu     sync.RWMutex
	closed bool
}

// Options configures a Scheduler.
type Options struct {
	// Workers is the pool size; zero means one per CPU.
	Workers int
	// JobsPerSecond caps control-thread jobs run per second; zero means no cap.
	JobsPerSecond float64
}

// New creates a scheduler and starts its workers.
func New(opts Options) *Scheduler {
	var limiter *rate.Limiter
	if opts.JobsPerSecond > 0 {
		burst := max(int(opts.JobsPerSecond), 1)
		limiter = rate.NewLimiter(rate.Limit(opts.JobsPerSecond), burst)
	}
	return &Scheduler{
		pool: NewWorkerPool(opts.Workers),
		main: NewMainThreadQueue(limiter),
	}
}

// RunAsync runs job on the worker pool. Jobs submitted after Shutdown has
// started are dropped.
func (s *Scheduler) RunAsync(job func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.pool.Submit(job)
}

// Closed reports whether Shutdown has been called.
func (s *Scheduler) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// RunOnMainThread queues job for the next Process call.
func (s *Scheduler) RunOnMainThread(job func()) {
	s.main.Push(job)
}

// Process runs pending control-thread jobs. Call it once per tick from the
// control thread.
func (s *Scheduler) Process() int {
	return s.main.Process()
}

// JobCount returns the number of pending control-thread jobs.
func (s *Scheduler) JobCount() int {
	return s.main.Len()
}

// Pool exposes the worker pool for diagnostics.
func (s *Scheduler) Pool() *WorkerPool { return s.pool }

// Shutdown waits for running and queued pool jobs. Control-thread jobs that
// are still queued are discarded. Calling it more than once is a no-op.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.pool.Shutdown()
}
