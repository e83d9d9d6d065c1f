// File: workerpool/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool is the core's worker-pool collaborator: Submit places a task on
// a FIFO queue, one of a fixed number of worker goroutines executes it
// eventually. Grounded on the original chat server's ThreadPool
// (std::queue + std::mutex + std::condition_variable) and on the
// teacher's internal/concurrency.Executor, which already reaches for
// github.com/eapache/queue for this exact job.

package workerpool

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/reactorchat/api"
)

var _ api.WorkerPool = (*Pool)(nil)

// Pool is safe for Submit to be called from any goroutine, including
// concurrently with Close.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  *queue.Queue
	closed bool
	wg     sync.WaitGroup
}

// New starts a Pool with numWorkers goroutines draining a shared FIFO
// queue. numWorkers <= 0 is treated as 1.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	p := &Pool{tasks: queue.New()}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues task for execution by the next free worker. Returns
// ErrClosed if the pool has already been closed.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.tasks.Add(task)
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

// Close stops accepting new tasks and waits for all workers to drain
// whatever is already queued before returning. Safe to call once;
// subsequent calls are no-ops.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.tasks.Length() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.tasks.Length() == 0 && p.closed {
			p.mu.Unlock()
			return
		}
		task := p.tasks.Remove().(func())
		p.mu.Unlock()

		runTaskSafely(task)
	}
}

// runTaskSafely executes task, recovering a panic so one bad message
// can't take down a worker goroutine (and with it, the whole pool).
func runTaskSafely(task func()) {
	defer func() { _ = recover() }()
	task()
}
