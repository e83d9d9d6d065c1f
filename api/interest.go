// File: api/interest.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Interest is the bitfield of readiness conditions a demultiplexer
// watches for on a Handle.

package api

// Interest is a bitfield over {Readable, Writable, Error}.
type Interest uint8

const (
	// Readable is set when the handle has data to read or, for a
	// listening socket, an incoming connection to accept.
	Readable Interest = 1 << iota
	// Writable is set when the handle can accept outbound bytes
	// without blocking.
	Writable
	// Error is implicitly present once any other interest is
	// registered; it is broken out as its own bit so dispatch can
	// distinguish "this fired because of an error" from "this fired
	// because it's ready".
	Error
)

// Has reports whether i contains all bits of other.
func (i Interest) Has(other Interest) bool {
	return i&other == other
}

// String renders the interest set for logging.
func (i Interest) String() string {
	if i == 0 {
		return "none"
	}
	s := ""
	if i.Has(Readable) {
		s += "R"
	}
	if i.Has(Writable) {
		s += "W"
	}
	if i.Has(Error) {
		s += "E"
	}
	return s
}
