// File: api/connhandler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ConnHandler extends Handler with the thread-safe send path every
// per-connection handler in the core exposes.

package api

// ConnHandler is a Handler bound to a non-blocking stream socket.
// SendMessage is safe to call from any goroutine — the worker pool,
// other connections' reactor callbacks, or an external caller.
type ConnHandler interface {
	Handler

	// SendMessage appends framed bytes to the connection's write
	// buffer and arranges for the owning reactor to flush them. It
	// never blocks on the socket itself.
	SendMessage(payload []byte) error
}
