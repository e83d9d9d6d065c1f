// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor is the event loop coupling a Demultiplexer to a Handler
// registry and a cross-thread task queue.

package api

// Task is a zero-argument callable deferred for execution on the
// reactor thread that owns it.
type Task func()

// Reactor is safe for Register/Modify/Remove/QueueInLoop/Quit to be
// called from any goroutine. Run must be called from the goroutine
// that is to become "the reactor thread" for this instance, and must
// not be called concurrently with itself.
type Reactor interface {
	// Register inserts handler into the registry and demultiplexer
	// under the given interest. Fails with ErrDuplicateHandle if a
	// handler is already registered for handler.Handle().
	Register(handler Handler, interest Interest) error

	// Modify updates demultiplexer interest for an already-registered
	// handle. Fails with ErrUnknownHandle otherwise.
	Modify(h Handle, interest Interest) error

	// Remove drops the handler from the registry and demultiplexer,
	// invokes its OnClose, then releases it, all before returning. Safe
	// to call from within the handler's own callback: no lock is held
	// while callbacks run, and the loop re-checks registration before
	// each further callback to that handle.
	Remove(h Handle) error

	// QueueInLoop appends task to the pending queue and wakes the
	// loop if it is blocked in Wait. Tasks run in submission order on
	// the reactor thread.
	QueueInLoop(task Task)

	// Run executes the event loop until Quit is observed. It returns
	// once the loop has exited.
	Run() error

	// Quit requests loop exit; Run returns after finishing the
	// current iteration (including any pending tasks).
	Quit()
}
