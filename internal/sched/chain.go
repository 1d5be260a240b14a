package sched

// Runner submits a job for asynchronous execution.
type Runner interface {
	RunAsync(job func())
}

// stopper is implemented by runners that can be shut down.
type stopper interface {
	Closed() bool
}

// Chain is an ordered list of jobs. Dispatch submits the first link; each link
// submits the next one when it returns, so no worker waits on another.
type Chain struct {
	links []func()
}

// Then appends a link and returns the chain.
func (c *Chain) Then(job func()) *Chain {
	c.links = append(c.links, job)
	return c
}

// Len returns the number of links.
func (c *Chain) Len() int { return len(c.links) }

// Dispatch starts the chain on r.
func (c *Chain) Dispatch(r Runner) {
	links := append([]func(){}, c.links...)
	dispatchFrom(r, links, 0)
}

// dispatchFrom submits link i. A chain whose runner has been shut down stops
// at the next link boundary.
func dispatchFrom(r Runner, links []func(), i int) {
	if i >= len(links) {
		return
	}
	if st, ok := r.(stopper); ok && st.Closed() {
		return
	}
	r.RunAsync(func() {
		links[i]()
		dispatchFrom(r, links, i+1)
	})
}
