package worker

import (
	"context"
	"sync"
)

type Job any

type ProcessFunc func(ctx context.Context, job Job) error

// WorkerPool runs submitted jobs on a fixed number of goroutines. The first
// error returned by the processor is kept and reported by Stop.
type WorkerPool struct {
	numWorkers int
	jobs       chan Job
	processor  ProcessFunc
	wg         sync.WaitGroup

	errOnce sync.Once
	err     error
}

func NewWorkerPool(numWorkers int, bufferSize int, processor ProcessFunc) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, bufferSize),
		processor:  processor,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			if err := wp.processor(ctx, job); err != nil {
				wp.errOnce.Do(func() { wp.err = err })
			}
		}
	}
}

func (wp *WorkerPool) Submit(job Job) {
	wp.jobs <- job
}

// Stop closes the queue, waits for the workers and returns the first
// processing error, if any.
func (wp *WorkerPool) Stop() error {
	close(wp.jobs)
	wp.wg.Wait()
	return wp.err
}
