// File: reactor/wakeup.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// wakeupChannel lets any goroutine interrupt a reactor blocked in
// Demultiplexer.Wait. Linux uses eventfd(2); other non-Windows
// platforms fall back to a self-pipe, both wrapped behind the same
// small interface so reactor.go never branches on OS. Windows has no
// wakeup channel and fails with ErrBackendUnsupported.

package reactor

import (
	"log"

	"github.com/momentics/reactorchat/api"
)

// wakeupChannel is a readable handle that Signal makes ready exactly
// once (repeated Signal calls before a Drain coalesce into a single
// readiness notification, matching eventfd's counter semantics).
type wakeupChannel interface {
	Handle() api.Handle
	Signal() error
	Drain() error
	Close() error
}

// wakeupHandler adapts a wakeupChannel to api.Handler so it can be
// registered into the reactor's own registry like any other handle.
// It never reports Writable interest and never removes itself.
type wakeupHandler struct {
	ch wakeupChannel
}

var _ api.Handler = (*wakeupHandler)(nil)

func (w *wakeupHandler) Handle() api.Handle { return w.ch.Handle() }

func (w *wakeupHandler) OnReadable() {
	if err := w.ch.Drain(); err != nil {
		log.Printf("reactor: wakeup drain: %v", err)
	}
}

func (w *wakeupHandler) OnWritable() {}

func (w *wakeupHandler) OnError(err error) {
	log.Printf("reactor: wakeup channel reported an error: %v", err)
}

func (w *wakeupHandler) OnClose() {
	if err := w.ch.Close(); err != nil {
		log.Printf("reactor: wakeup close: %v", err)
	}
}
