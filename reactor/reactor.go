// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor couples a Demultiplexer to a Handle→Handler registry and a
// cross-thread pending-task queue: register/remove/modify, a blocking
// wait loop, and a queue of deferred tasks drained once per iteration,
// using an atomic running flag and mutex-guarded collections swapped
// out before draining.

package reactor

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/momentics/reactorchat/api"
)

// Reactor implements api.Reactor. The zero value is not usable; build
// one with New.
type Reactor struct {
	demux  api.Demultiplexer
	wakeup wakeupChannel

	regMu    sync.Mutex
	registry map[api.Handle]api.Handler

	tasksMu sync.Mutex
	pending []api.Task

	running atomic.Bool

	iterations atomic.Uint64
	dispatched atomic.Uint64
	tasksRun   atomic.Uint64
	waitErrors atomic.Uint64
}

var _ api.Reactor = (*Reactor)(nil)

// New builds a Reactor around demux, owning a wakeup channel that is
// registered as a readable handler from the outset so a goroutine
// calling QueueInLoop or Quit can always interrupt a blocked Wait.
func New(demux api.Demultiplexer) (*Reactor, error) {
	wake, err := newWakeupChannel()
	if err != nil {
		return nil, err
	}

	r := &Reactor{
		demux:    demux,
		wakeup:   wake,
		registry: make(map[api.Handle]api.Handler),
	}

	if err := r.Register(&wakeupHandler{ch: wake}, api.Readable); err != nil {
		_ = wake.Close()
		return nil, err
	}
	return r, nil
}

// Register inserts handler into the registry and demultiplexer.
func (r *Reactor) Register(handler api.Handler, interest api.Interest) error {
	h := handler.Handle()

	r.regMu.Lock()
	if _, exists := r.registry[h]; exists {
		r.regMu.Unlock()
		return api.ErrDuplicateHandle
	}
	if err := r.demux.Register(h, interest); err != nil {
		r.regMu.Unlock()
		return err
	}
	r.registry[h] = handler
	r.regMu.Unlock()
	return nil
}

// Modify updates demultiplexer interest for an already-registered handle.
func (r *Reactor) Modify(h api.Handle, interest api.Interest) error {
	r.regMu.Lock()
	if _, exists := r.registry[h]; !exists {
		r.regMu.Unlock()
		return api.ErrUnknownHandle
	}
	err := r.demux.Modify(h, interest)
	r.regMu.Unlock()
	return err
}

// Remove drops handler from the registry and demultiplexer, invokes
// its OnClose, then releases it. The registry mutex is released
// before OnClose runs so a callback that calls back into the reactor
// (e.g. to register a replacement handle) cannot deadlock against it.
func (r *Reactor) Remove(h api.Handle) error {
	r.regMu.Lock()
	handler, exists := r.registry[h]
	if !exists {
		r.regMu.Unlock()
		return api.ErrUnknownHandle
	}
	delete(r.registry, h)
	if err := r.demux.Remove(h); err != nil {
		log.Printf("reactor: demux remove %v: %v", h, err)
	}
	r.regMu.Unlock()

	handler.OnClose()
	return nil
}

// QueueInLoop appends task to the pending queue and signals the
// wakeup channel so a reactor blocked in Wait returns promptly.
func (r *Reactor) QueueInLoop(task api.Task) {
	r.tasksMu.Lock()
	r.pending = append(r.pending, task)
	r.tasksMu.Unlock()

	if err := r.wakeup.Signal(); err != nil {
		log.Printf("reactor: wakeup signal: %v", err)
	}
}

// Quit requests loop exit; Run returns after finishing the current
// iteration, including any pending tasks already queued.
func (r *Reactor) Quit() {
	r.running.Store(false)
	if err := r.wakeup.Signal(); err != nil {
		log.Printf("reactor: wakeup signal: %v", err)
	}
}

// Run executes the event loop until Quit is observed.
func (r *Reactor) Run() error {
	r.running.Store(true)
	defer r.running.Store(false)

	for r.running.Load() {
		events, err := r.demux.Wait(-1)
		if err != nil {
			r.waitErrors.Add(1)
			log.Printf("reactor: demultiplexer wait: %v", err)
			continue
		}
		r.iterations.Add(1)
		r.dispatch(events)
		r.drainPending()
	}
	return nil
}

// dispatch resolves every (handle, interest) pair in this batch to a
// handler reference before invoking any callback, then re-checks
// registration before each subsequent callback to the same handle —
// so a callback that removes its own handler (always via a deferred
// QueueInLoop task; see conn.Handler) can never cause a dispatch to a
// freed handler later in the same batch.
func (r *Reactor) dispatch(events []api.ReadyEvent) {
	type resolved struct {
		handle  api.Handle
		handler api.Handler
		fired   api.Interest
		err     error
	}

	batch := make([]resolved, 0, len(events))
	r.regMu.Lock()
	for _, ev := range events {
		if h, ok := r.registry[ev.Handle]; ok {
			batch = append(batch, resolved{ev.Handle, h, ev.Fired, ev.Err})
		}
	}
	r.regMu.Unlock()

	for _, item := range batch {
		if !r.stillRegistered(item.handle) {
			continue
		}
		if item.fired.Has(api.Error) {
			cause := item.err
			if cause == nil {
				cause = api.ErrConnReset
			}
			item.handler.OnError(cause)
			r.dispatched.Add(1)
			continue
		}
		if item.fired.Has(api.Readable) {
			item.handler.OnReadable()
			r.dispatched.Add(1)
		}
		if !r.stillRegistered(item.handle) {
			continue
		}
		if item.fired.Has(api.Writable) {
			item.handler.OnWritable()
			r.dispatched.Add(1)
		}
	}
}

func (r *Reactor) stillRegistered(h api.Handle) bool {
	r.regMu.Lock()
	_, ok := r.registry[h]
	r.regMu.Unlock()
	return ok
}

// drainPending swaps the pending task list into a local slice and
// runs each task in submission order; tasks enqueued during draining
// defer to the next iteration.
func (r *Reactor) drainPending() {
	r.tasksMu.Lock()
	if len(r.pending) == 0 {
		r.tasksMu.Unlock()
		return
	}
	tasks := r.pending
	r.pending = nil
	r.tasksMu.Unlock()

	for _, task := range tasks {
		runTaskSafely(task)
		r.tasksRun.Add(1)
	}
}

func runTaskSafely(task api.Task) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("reactor: recovered panic in queued task: %v", rec)
		}
	}()
	task()
}

// Close removes and closes every remaining registered handler (the
// wakeup handler included), then closes the demultiplexer. Call after
// Run has returned.
func (r *Reactor) Close() error {
	r.regMu.Lock()
	handles := make([]api.Handle, 0, len(r.registry))
	for h := range r.registry {
		handles = append(handles, h)
	}
	r.regMu.Unlock()

	for _, h := range handles {
		_ = r.Remove(h)
	}
	return r.demux.Close()
}

// Stats is a point-in-time snapshot of reactor activity: plain
// counters, no external metrics dependency.
type Stats struct {
	RegistrySize    int
	Iterations      uint64
	Dispatched      uint64
	TasksRun        uint64
	DemuxWaitErrors uint64
}

// Stats returns a snapshot safe to call from any goroutine.
func (r *Reactor) Stats() Stats {
	r.regMu.Lock()
	size := len(r.registry)
	r.regMu.Unlock()

	return Stats{
		RegistrySize:    size,
		Iterations:      r.iterations.Load(),
		Dispatched:      r.dispatched.Load(),
		TasksRun:        r.tasksRun.Load(),
		DemuxWaitErrors: r.waitErrors.Load(),
	}
}
