// Package workerpool provides a bounded pool of goroutines draining a
// shared queue of work items, the Go analog of a fixed-size native thread
// pool backed by a channel of jobs.
package workerpool

import (
	stdErrors "errors"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned by Submit once Close has been called.
var ErrClosed = stdErrors.New("operation failed: cannot submit to closed worker pool")

// Job is one unit of work a pool worker runs to completion before picking
// up the next.
type Job func()

// Pool runs a fixed number of workers pulling Jobs off a shared, bounded
// queue. Construction spins up every worker immediately; Close stops
// accepting new work, lets every worker drain whatever is already queued,
// and waits for all of them to exit before returning.
type Pool struct {
	jobs   chan Job
	wg     sync.WaitGroup
	log    *zap.SugaredLogger
	once   sync.Once
	closed chan struct{}
}

// New starts a pool of size workers reading from a queue with the given
// capacity. size must be at least 1; queueSize of 0 makes Submit block
// until a worker is free to accept the job directly.
func New(size, queueSize int, log *zap.SugaredLogger) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{
		jobs:   make(chan Job, queueSize),
		log:    log,
		closed: make(chan struct{}),
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(i)
	}

	log.Infow("worker pool started", "workers", size, "queueSize", queueSize)
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
	p.log.Debugw("worker exiting", "worker", id)
}

// Submit enqueues job for the next free worker. It blocks if the queue is
// full, and returns ErrClosed once Close has been called.
func (p *Pool) Submit(job Job) error {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}

	select {
	case p.jobs <- job:
		return nil
	case <-p.closed:
		return ErrClosed
	}
}

// Close stops accepting new work, lets every worker finish draining the
// queue, and blocks until all workers have exited. It is safe to call more
// than once; only the first call does anything.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.closed)
		close(p.jobs)
	})
	p.wg.Wait()
	p.log.Infow("worker pool stopped")
}
