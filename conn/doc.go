// File: conn/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package conn implements the per-connection Handler: non-blocking
// recv into a growable buffer, newline-delimited frame extraction
// handed off to a worker pool, and a mutex-guarded write buffer whose
// flush toggles the handle's write interest.
package conn
