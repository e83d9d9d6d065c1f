// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error values shared across the reactor core.

package api

import "errors"

var (
	// ErrDuplicateHandle is returned by Register when the handle is
	// already known to the registry or demultiplexer.
	ErrDuplicateHandle = errors.New("reactor: handle already registered")

	// ErrUnknownHandle is returned by Modify/Remove for a handle the
	// registry or demultiplexer has no record of.
	ErrUnknownHandle = errors.New("reactor: unknown handle")

	// ErrReactorClosed is returned by a connection handler's
	// SendMessage once that handler's removal has been scheduled.
	ErrReactorClosed = errors.New("reactor: closed")

	// ErrWouldBlock marks a non-blocking I/O call that has no data
	// or buffer space available right now; callers must treat it as
	// "try again on the next readiness notification", never as fatal.
	ErrWouldBlock = errors.New("reactor: operation would block")

	// ErrBackendUnsupported is returned by demultiplexer constructors
	// for a back-end not available on the current platform.
	ErrBackendUnsupported = errors.New("reactor: demultiplexer backend not supported on this platform")

	// ErrConnReset is used as the OnError cause when a back-end flags a
	// handle's Error interest but leaves ReadyEvent.Err nil. Neither
	// back-end in package reactor resolves a concrete errno, so every
	// Error event they report carries this cause.
	ErrConnReset = errors.New("reactor: handle reported an error condition")
)
