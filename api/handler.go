// File: api/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handler is the polymorphic per-handle callback object a Reactor
// dispatches readiness notifications to.

package api

// Handler is bound to exactly one Handle for as long as it is
// registered with a Reactor. The reactor owns the handler after
// registration: removal from the reactor is the only legitimate
// trigger for the handler's cleanup (OnClose).
//
// All callbacks run on the reactor thread that owns the handler's
// registration. They must not block: a blocking callback stalls the
// whole reactor.
type Handler interface {
	// Handle reports the OS handle this Handler is bound to.
	Handle() Handle

	// OnReadable is invoked when the handle is readable (or, for a
	// listening socket, has a pending connection).
	OnReadable()

	// OnWritable is invoked when the handle can accept more bytes.
	OnWritable()

	// OnError is invoked when the demultiplexer reports an error
	// condition for the handle. ERROR supersedes READABLE/WRITABLE
	// for the same readiness notification.
	OnError(err error)

	// OnClose is invoked exactly once by the reactor after the
	// handler has been removed from the registry and demultiplexer,
	// and before the reactor releases its reference to the handler.
	OnClose()
}
