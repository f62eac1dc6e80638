// Package executor offloads blocking encode calls to a bounded worker
// pool so a slow inference never stalls the request-accepting goroutines.
package executor

import (
	"context"
	"fmt"
	"sync"
)

// Defaults applied when corresponding Pool arguments are unset.
const (
	defaultWorkers    = 4
	defaultQueueDepth = 64
)

type job struct {
	fn   func() error
	done chan error
}

// Pool runs submitted functions on a fixed number of workers. When all
// workers are busy, submissions queue FIFO in a bounded channel; a full
// queue makes Run block rather than reject, which is the service's only
// admission control.
type Pool struct {
	jobs    chan job
	workers int
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts workers goroutines draining a queue of queueDepth slots.
func NewPool(workers, queueDepth int) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueDepth <= 0 {
		queueDepth = defaultQueueDepth
	}
	p := &Pool{jobs: make(chan job, queueDepth), workers: workers}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Run submits fn and waits for it to finish. Cancellation is honored only
// while the job is still queued: once a worker picks it up the call runs
// to completion and Run waits for the result regardless of ctx. A panic
// inside fn is recovered and returned as an error; it never kills the
// worker.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	started := make(chan struct{})
	j := job{done: make(chan error, 1)}
	j.fn = func() error {
		close(started)
		return fn()
	}
	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		// Still queued: try to abandon before a worker starts it.
		select {
		case <-started:
			return <-j.done
		default:
			return ctx.Err()
		}
	}
}

// QueueLen reports how many submissions are waiting for a worker.
func (p *Pool) QueueLen() int { return len(p.jobs) }

// QueueDepth reports the queue capacity.
func (p *Pool) QueueDepth() int { return cap(p.jobs) }

// Workers reports the pool size.
func (p *Pool) Workers() int { return p.workers }

// Close stops accepting work and waits for in-flight jobs to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		j.done <- safeCall(j.fn)
	}
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during inference: %v", r)
		}
	}()
	return fn()
}
