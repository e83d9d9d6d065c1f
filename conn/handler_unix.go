//go:build unix

// File: conn/handler_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handler is a non-blocking stream socket's api.ConnHandler. It owns
// no lock over its read path — OnReadable only ever runs on the
// reactor thread that dispatches it — but its write buffer and the
// removed flag are shared with SendMessage, which is callable from any
// goroutine.

package conn

import (
	"bytes"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactorchat/api"
	"github.com/momentics/reactorchat/bufpool"
)

// Handler implements api.ConnHandler over a raw, non-blocking socket.
type Handler struct {
	fd      api.Handle
	reactor api.Reactor
	pool    *bufpool.Pool
	workers api.WorkerPool
	hooks   api.AppHooks

	readBuf []byte

	writeMu  sync.Mutex
	writeBuf []byte

	removed atomic.Bool
}

var _ api.ConnHandler = (*Handler)(nil)

// New builds a Handler for fd. The caller is responsible for
// registering it with a reactor and, once registered, notifying hooks
// via OnConnected — New itself does neither, so construction can never
// race a broadcast against an unregistered handle.
func New(fd api.Handle, reactor api.Reactor, pool *bufpool.Pool, workers api.WorkerPool, hooks api.AppHooks) *Handler {
	return &Handler{
		fd:      fd,
		reactor: reactor,
		pool:    pool,
		workers: workers,
		hooks:   hooks,
	}
}

func (h *Handler) Handle() api.Handle { return h.fd }

// OnReadable drains the socket until EWOULDBLOCK (or EOF, or a fatal
// error), then splits whatever accumulated into newline-delimited
// frames and offloads each to the worker pool.
func (h *Handler) OnReadable() {
	for {
		scratch := h.pool.Get()
		n, err := unix.Read(int(h.fd), scratch)
		if n > 0 {
			h.readBuf = append(h.readBuf, scratch[:n]...)
		}
		h.pool.Put(scratch)

		if n == 0 {
			h.fail(nil) // peer performed an orderly shutdown
			return
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			h.fail(err)
			return
		}
	}
	h.extractFrames()
}

func (h *Handler) extractFrames() {
	for {
		idx := bytes.IndexByte(h.readBuf, '\n')
		if idx < 0 {
			return
		}
		frame := h.readBuf[:idx]
		h.readBuf = h.readBuf[idx+1:]
		if len(frame) == 0 {
			continue
		}

		owned := make([]byte, len(frame))
		copy(owned, frame)

		handle := h.fd
		hooks := h.hooks
		if hooks == nil {
			continue
		}
		if err := h.workers.Submit(func() { hooks.ProcessMessage(handle, owned) }); err != nil {
			log.Printf("conn: dropping frame for %v, worker pool: %v", handle, err)
		}
	}
}

// SendMessage appends a newline-framed copy of payload to the write
// buffer and asks the reactor to watch for write readiness. It always
// re-asserts Readable|Writable, matching the idempotent-modify
// guarantee: a handle that is already being watched for both is
// unaffected. The actual Modify call is deferred through QueueInLoop —
// SendMessage carries no guarantee it is called from the reactor
// thread, so the interest change is made from the loop itself.
func (h *Handler) SendMessage(payload []byte) error {
	if h.removed.Load() {
		return api.ErrReactorClosed
	}

	framed := make([]byte, 0, len(payload)+1)
	framed = append(framed, payload...)
	framed = append(framed, '\n')

	h.writeMu.Lock()
	h.writeBuf = append(h.writeBuf, framed...)
	h.writeMu.Unlock()

	h.reactor.QueueInLoop(func() {
		if err := h.reactor.Modify(h.fd, api.Readable|api.Writable); err != nil {
			log.Printf("conn: modify %v to read-write: %v", h.fd, err)
		}
	})
	return nil
}

// OnWritable flushes as much of the write buffer as the socket will
// currently accept. An empty buffer demotes interest back to
// Readable-only; a full flush does the same; a partial flush leaves
// Writable set for the next notification.
func (h *Handler) OnWritable() {
	h.writeMu.Lock()
	if len(h.writeBuf) == 0 {
		h.writeMu.Unlock()
		h.demoteToReadOnly()
		return
	}
	toSend := h.writeBuf
	h.writeBuf = nil
	h.writeMu.Unlock()

	sent := 0
	for sent < len(toSend) {
		n, err := unix.Write(int(h.fd), toSend[sent:])
		if n > 0 {
			sent += n
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			h.fail(err)
			return
		}
		if n == 0 {
			break
		}
	}

	if sent < len(toSend) {
		h.writeMu.Lock()
		h.writeBuf = append(append([]byte{}, toSend[sent:]...), h.writeBuf...)
		h.writeMu.Unlock()
		return
	}
	h.demoteToReadOnly()
}

// demoteToReadOnly is called from OnWritable, itself only ever invoked
// on the reactor thread during dispatch — but it defers through
// QueueInLoop anyway, so the only path that ever calls Modify is the
// same one SendMessage uses, rather than leaving two different
// threading contracts for the same demultiplexer call.
func (h *Handler) demoteToReadOnly() {
	h.reactor.QueueInLoop(func() {
		if err := h.reactor.Modify(h.fd, api.Readable); err != nil {
			log.Printf("conn: modify %v to read-only: %v", h.fd, err)
		}
	})
}

// OnError is always deferred to a reactor task, per the core's
// self-removal discipline: a callback never tears down its own handle
// synchronously.
func (h *Handler) OnError(err error) {
	h.fail(err)
}

func (h *Handler) fail(cause error) {
	if !h.removed.CompareAndSwap(false, true) {
		return
	}
	if cause != nil {
		log.Printf("conn: handle %v failed: %v", h.fd, cause)
	}
	h.reactor.QueueInLoop(func() {
		if err := h.reactor.Remove(h.fd); err != nil {
			log.Printf("conn: remove %v: %v", h.fd, err)
		}
	})
}

// OnClose runs once the reactor has dropped this handle from its
// registry and demultiplexer. It notifies the application layer
// before releasing the OS resource, so hooks can still query handler
// state that would otherwise have already been torn down.
func (h *Handler) OnClose() {
	if h.hooks != nil {
		h.hooks.OnDisconnected(h.fd)
	}
	if err := unix.Close(int(h.fd)); err != nil {
		log.Printf("conn: close %v: %v", h.fd, err)
	}
}
