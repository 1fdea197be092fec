package search

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is a deferred unit of work executed by a pool worker.
type Job func() error

// message is what travels through the pool queue: either a job or a
// termination signal for exactly one worker.
type message struct {
	job       Job
	terminate bool
}

// Pool is a fixed set of long-lived workers consuming an unbounded FIFO
// queue. Submit never blocks, so jobs may submit further jobs.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []message
	closed bool

	size   int
	group  errgroup.Group
	logger *zap.Logger

	errMu sync.Mutex
	errs  []error

	executed atomic.Int64
	shutdown sync.Once
	finalErr error
}

// NewPool starts workers goroutines.
func NewPool(workers int, logger *zap.Logger) (*Pool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkerCount, workers)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{size: workers, logger: logger}
	p.cond = sync.NewCond(&p.mu)

	for id := 0; id < workers; id++ {
		id := id
		p.group.Go(func() error {
			p.work(id)
			return nil
		})
	}
	logger.Debug("worker pool started", zap.Int("workers", workers))
	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Executed returns the number of jobs run so far.
func (p *Pool) Executed() int64 { return p.executed.Load() }

// Submit enqueues job. It fails with ErrPoolClosed once Shutdown has begun.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.queue = append(p.queue, message{job: job})
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

// Shutdown stops accepting jobs, sends one termination signal per worker
// and waits for every worker to exit. Jobs queued before the call still run.
// It returns the errors reported by jobs. Calling it again returns the same
// result.
func (p *Pool) Shutdown() error {
	p.shutdown.Do(func() {
		p.mu.Lock()
		p.closed = true
		for i := 0; i < p.size; i++ {
			p.queue = append(p.queue, message{terminate: true})
		}
		p.mu.Unlock()
		p.cond.Broadcast()

		groupErr := p.group.Wait()

		p.errMu.Lock()
		p.finalErr = errors.Join(append(p.errs, groupErr)...)
		p.errMu.Unlock()

		p.logger.Debug("worker pool stopped", zap.Int64("jobs_executed", p.executed.Load()))
	})
	return p.finalErr
}

// work is the worker loop.
func (p *Pool) work(id int) {
	for {
		msg := p.next()
		if msg.terminate {
			p.logger.Debug("worker terminating", zap.Int("worker", id))
			return
		}
		if err := p.run(msg.job); err != nil {
			p.errMu.Lock()
			p.errs = append(p.errs, err)
			p.errMu.Unlock()
		}
	}
}

// next blocks until a message is available.
func (p *Pool) next() message {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 {
		p.cond.Wait()
	}
	msg := p.queue[0]
	p.queue[0] = message{}
	p.queue = p.queue[1:]
	return msg
}

// run executes job, turning a panic into an error so one bad job cannot
// take a worker down with it.
func (p *Pool) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: job panicked: %v", ErrInvariant, r)
		}
	}()
	defer p.executed.Add(1)
	return job()
}
