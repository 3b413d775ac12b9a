package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of goroutines. Results are drained by a
// single collector goroutine, so workers never block on a slow consumer and
// the result hook is never called concurrently.
type Pool struct {
	workers  int
	jobQueue chan Job
	results  chan Result
	onResult func(Result)

	collected     []Result
	collectorDone chan struct{}

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.RWMutex
	queueClosed  bool
	closeResults sync.Once
}

// PoolOption configures a Pool
type PoolOption func(*Pool)

// WithResultHook calls fn for every result as soon as it is produced.
// fn runs on the collector goroutine.
func WithResultHook(fn func(Result)) PoolOption {
	return func(p *Pool) {
		p.onResult = fn
	}
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops workers from
// picking up new jobs; jobs already running see the cancellation.
func NewPool(ctx context.Context, workers int, opts ...PoolOption) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:       workers,
		jobQueue:      make(chan Job, workers*2),
		results:       make(chan Result, workers*2),
		collectorDone: make(chan struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start starts the workers and the collector
func (p *Pool) Start() {
	go p.collect()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- job.Execute(p.ctx)
		}
	}
}

func (p *Pool) collect() {
	defer close(p.collectorDone)

	for result := range p.results {
		if p.onResult != nil {
			p.onResult(result)
		}
		p.collected = append(p.collected, result)
	}
}

// Submit queues a job. It returns false when the pool is shutting down or
// its context is done; the job will not run.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.queueClosed || p.ctx.Err() != nil {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Wait closes the queue, waits for queued jobs to finish and returns every
// result in completion order
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.closeResults.Do(func() { close(p.results) })
	<-p.collectorDone

	p.cancel()
	return p.collected
}

// Shutdown cancels the pool and waits for running jobs to return.
// Queued jobs that have not started are dropped.
func (p *Pool) Shutdown() []Result {
	p.cancel()
	return p.Wait()
}

func (p *Pool) closeQueue() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.queueClosed {
		p.queueClosed = true
		close(p.jobQueue)
	}
}
