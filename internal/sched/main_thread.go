package sched

import (
	"sync"

	"github.com/gammazero/deque"
	"golang.org/x/time/rate"
)

// MainThreadQueue hands jobs from any goroutine to the single control thread,
// which drains it once per tick with Process.
type MainThreadQueue struct {
	mu      sync.Mutex
	jobs    deque.Deque[func()]
	limiter *rate.Limiter
}

// NewMainThreadQueue creates a queue. A non-nil limiter caps how many jobs
// Process runs; the rest stay queued in order for later ticks.
func NewMainThreadQueue(limiter *rate.Limiter) *MainThreadQueue {
	return &MainThreadQueue{limiter: limiter}
}

// Push queues job for the next Process call.
func (q *MainThreadQueue) Push(job func()) {
	q.mu.Lock()
	q.jobs.PushBack(job)
	q.mu.Unlock()
}

// Len returns the number of pending jobs.
func (q *MainThreadQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.jobs.Len()
}

// Process runs the jobs that were queued when it was called and returns how
// many ran. Jobs queued while processing wait for the next call.
func (q *MainThreadQueue) Process() int {
	n := q.Len()
	ran := 0
	for ; ran < n; ran++ {
		if q.limiter != nil && !q.limiter.Allow() {
			break
		}
		q.mu.Lock()
		job := q.jobs.PopFront()
		q.mu.Unlock()
		job()
	}
	return ran
}
