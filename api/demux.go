// File: api/demux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Demultiplexer is the common contract both the scan-based and the
// kernel-notification back-ends implement.

package api

// ReadyEvent reports a single Handle's fired interest from one Wait
// call. If Fired contains Error, it supersedes Readable/Writable: the
// reactor dispatches OnError alone for that handle this iteration. Err
// carries the concrete cause when the back-end can determine one
// (e.g. SO_ERROR via getsockopt); it may be nil even when Error is set.
type ReadyEvent struct {
	Handle Handle
	Fired  Interest
	Err    error
}

// Demultiplexer waits on many handles at once and reports which are
// ready. Register fails on a duplicate handle; Modify/Remove fail on
// an unknown one. Wait blocks until at least one handle is ready or
// timeoutMs elapses (negative means block indefinitely, zero polls
// once and returns immediately).
//
// The Reactor serializes Register/Modify/Remove through its own
// registry mutex, but calls Wait from its loop without holding that
// mutex, so an implementation must tolerate Wait running concurrently
// with one of the other three calls.
type Demultiplexer interface {
	Register(h Handle, interest Interest) error
	Modify(h Handle, interest Interest) error
	Remove(h Handle) error
	Wait(timeoutMs int) ([]ReadyEvent, error)
	Close() error
}
