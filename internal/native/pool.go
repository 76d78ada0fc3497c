// Package native implements the bounded OS-thread pool §9 calls for
// blocking native work (:bd queries, :red dial/accept, :sa large reads):
// a fixed number of worker goroutines drain a job queue and settle the
// value.Promise each submitted job was given. Grounded on
// sentra/internal/concurrency.WorkerPool's context-cancelable worker
// goroutines and WaitGroup shutdown, trimmed from that file's five
// resource-pool kinds (worker pools, rate limiters, task queues,
// connection pools, semaphores) down to the one shape this runtime
// needs, and supervised with golang.org/x/sync/errgroup instead of a
// bare sync.WaitGroup. A panicking job is recovered into a rejected
// Promise by execute; it does not surface through Close.
package native

import (
	"context"
	"fmt"

	"agal/internal/value"
	"golang.org/x/sync/errgroup"
)

// job pairs a blocking closure with the Promise its result settles.
type job struct {
	run func() (value.Value, error)
	p   *value.Promise
}

// Pool implements vm.BlockingRunner. Size workers drain jobs until
// Close cancels the pool's context; any job still queued at that point
// may be dropped (its Promise then never settles), matching sentra's
// StopWorkerPool semantics of abandoning unstarted jobs rather than
// draining them.
type Pool struct {
	jobs   chan job
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewPool starts size worker goroutines (size<=0 defaults to 1, since
// unlike sentra's CreateWorkerPool this runtime has no runtime.NumCPU
// fallback need — the pool only exists to bound concurrent blocking I/O,
// not to saturate CPU).
func NewPool(size, queueDepth int) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	p := &Pool{jobs: make(chan job, queueDepth), cancel: cancel, group: g}
	for i := 0; i < size; i++ {
		g.Go(func() error { return p.runWorker(gctx) })
	}
	return p
}

func (p *Pool) runWorker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case j, ok := <-p.jobs:
			if !ok {
				return nil
			}
			p.execute(j)
		}
	}
}

// execute runs one job, recovering a panic into a rejected Promise
// rather than taking the whole pool down with it (sentra/internal/
// concurrency.executeJob's recover(), same reasoning).
func (p *Pool) execute(j job) {
	defer func() {
		if r := recover(); r != nil {
			j.p.Reject(value.String(fmt.Sprintf("panico en trabajo nativo: %v", r)))
		}
	}()
	v, err := j.run()
	if err != nil {
		j.p.Reject(value.String(err.Error()))
		return
	}
	j.p.Resolve(v)
}

// Run implements vm.BlockingRunner (§9): submits job to the pool and
// returns immediately with its Promise. A full queue blocks the
// submitting call briefly rather than rejecting outright, since the
// caller here is a library function, not a request-handling loop that
// must stay responsive.
func (p *Pool) Run(fn func() (value.Value, error)) *value.Promise {
	promise := value.NewPromise()
	p.jobs <- job{run: fn, p: promise}
	return promise
}

// Close stops accepting new work and waits for in-flight jobs to finish.
// It returns the errgroup's result, which is always nil: runWorker never
// returns an error, and execute turns a job's panic into a rejected
// Promise.
func (p *Pool) Close() error {
	close(p.jobs)
	p.cancel()
	return p.group.Wait()
}
