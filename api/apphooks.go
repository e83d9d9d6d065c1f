// File: api/apphooks.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// AppHooks is the application-layer collaborator the connection
// handler and acceptor notify of connection lifecycle and framed
// messages. The core never implements this interface itself; it is
// provided by whatever is layered on top (see the chat package for a
// concrete example).

package api

// AppHooks receives connection lifecycle callbacks and parsed
// messages. OnConnected runs on the reactor thread that runs the
// acceptor, after the handler is registered on its sub-reactor;
// OnDisconnected runs on the reactor thread that owns the connection;
// ProcessMessage runs on a worker-pool
// goroutine and must not touch handler state directly except through
// ConnHandler.SendMessage.
type AppHooks interface {
	OnConnected(handler ConnHandler)
	OnDisconnected(h Handle)
	ProcessMessage(h Handle, frame []byte)
}
