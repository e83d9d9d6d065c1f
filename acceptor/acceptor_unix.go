//go:build unix

// File: acceptor/acceptor_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Listener owns the raw IPv4 listening socket and the Handler that
// drains its accept backlog. Built directly on golang.org/x/sys/unix
// rather than net.Listen: a raw fd is what the Demultiplexer contract
// needs, and driving accept(2) ourselves avoids layering a second,
// competing readiness mechanism over Go's own net-poller-owned fd.

package acceptor

import (
	"fmt"
	"log"
	"net"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactorchat/api"
	"github.com/momentics/reactorchat/bufpool"
	"github.com/momentics/reactorchat/conn"
)

const listenBacklog = 1024

// Listener implements api.Handler for a listening socket. OnReadable
// accepts until the kernel backlog reports EAGAIN, skipping transient
// accept errors; any other accept error ends the pass.
type Listener struct {
	fd      api.Handle
	sub     api.Reactor
	pool    *bufpool.Pool
	workers api.WorkerPool
	hooks   api.AppHooks
}

var _ api.Handler = (*Listener)(nil)

// New binds and listens on addr (host:port, IPv4), then wraps the
// resulting non-blocking socket as a Listener. It does not register
// itself with any reactor — the caller does that, then starts Run.
func New(addr string, sub api.Reactor, pool *bufpool.Pool, workers api.WorkerPool, hooks api.AppHooks) (*Listener, error) {
	sockaddr, err := resolveSockaddr(addr)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("acceptor: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("acceptor: setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.Bind(fd, sockaddr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("acceptor: bind %s: %w", addr, err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("acceptor: listen %s: %w", addr, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("acceptor: set non-blocking: %w", err)
	}

	return &Listener{
		fd:      api.Handle(fd),
		sub:     sub,
		pool:    pool,
		workers: workers,
		hooks:   hooks,
	}, nil
}

func resolveSockaddr(addr string) (unix.Sockaddr, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("acceptor: resolve %s: %w", addr, err)
	}
	var ip [4]byte
	if ipv4 := tcpAddr.IP.To4(); ipv4 != nil {
		copy(ip[:], ipv4)
	}
	return &unix.SockaddrInet4{Port: tcpAddr.Port, Addr: ip}, nil
}

func (l *Listener) Handle() api.Handle { return l.fd }

// Addr reports the socket's bound local address, resolved via
// getsockname so a caller that bound to port 0 can discover the
// kernel-assigned port.
func (l *Listener) Addr() (net.Addr, error) {
	sa, err := unix.Getsockname(int(l.fd))
	if err != nil {
		return nil, fmt.Errorf("acceptor: getsockname: %w", err)
	}
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(sa.Addr[:]), Port: sa.Port}, nil
	default:
		return nil, fmt.Errorf("acceptor: unexpected sockaddr type %T", sa)
	}
}

// OnReadable accepts every pending connection, sets each non-blocking,
// constructs a conn.Handler for it, registers that handler with the
// sub-reactor for Readable interest, then notifies the application.
// A transient accept error (ECONNABORTED, EINTR, EPROTO) is logged and
// the loop keeps accepting; any other error is logged and ends this
// pass until the next readiness notification.
func (l *Listener) OnReadable() {
	for {
		connFd, _, err := unix.Accept4(int(l.fd), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			log.Printf("acceptor: accept: %v", err)
			if err == unix.ECONNABORTED || err == unix.EINTR || err == unix.EPROTO {
				continue
			}
			return
		}

		handle := api.Handle(connFd)
		handler := conn.New(handle, l.sub, l.pool, l.workers, l.hooks)
		if err := l.sub.Register(handler, api.Readable); err != nil {
			log.Printf("acceptor: register %v: %v", handle, err)
			_ = unix.Close(connFd)
			continue
		}
		if l.hooks != nil {
			l.hooks.OnConnected(handler)
		}
	}
}

func (l *Listener) OnWritable() {}

func (l *Listener) OnError(err error) {
	log.Printf("acceptor: listen socket %v reported an error: %v", l.fd, err)
}

func (l *Listener) OnClose() {
	if err := unix.Close(int(l.fd)); err != nil {
		log.Printf("acceptor: close %v: %v", l.fd, err)
	}
}
