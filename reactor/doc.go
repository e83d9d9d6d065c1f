// File: reactor/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package reactor implements a single-threaded event loop: it owns a
// Demultiplexer, a Handle→Handler registry, and a pending task queue,
// and guarantees at most one goroutine dispatches readiness callbacks
// for a given handle at a time. Other goroutines hand work to the loop
// through QueueInLoop rather than touching the registry directly.
package reactor
