//go:build linux
// +build linux

// File: reactor/demux_epoll_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Kernel-notification demultiplexer back-end: epoll(7) in
// edge-triggered mode (EPOLLET). A handle is reported ready only at
// the transition to ready, so handlers must drain completely on each
// notification (read until EWOULDBLOCK, write until EWOULDBLOCK or
// empty) — see conn.Handler.

package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactorchat/api"
)

const epollInitialEventBuf = 64

type epollDemux struct {
	epfd     int
	entries  map[api.Handle]api.Interest
	eventBuf []unix.EpollEvent
}

func newEpollDemux() (api.Demultiplexer, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	return &epollDemux{
		epfd:     epfd,
		entries:  make(map[api.Handle]api.Interest),
		eventBuf: make([]unix.EpollEvent, epollInitialEventBuf),
	}, nil
}

func interestToEpollEvents(interest api.Interest) uint32 {
	ev := uint32(unix.EPOLLET)
	if interest.Has(api.Readable) {
		ev |= unix.EPOLLIN
	}
	if interest.Has(api.Writable) {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (d *epollDemux) Register(h api.Handle, interest api.Interest) error {
	if _, exists := d.entries[h]; exists {
		return api.ErrDuplicateHandle
	}
	ev := &unix.EpollEvent{Events: interestToEpollEvents(interest), Fd: int32(h)}
	if err := unix.EpollCtl(d.epfd, unix.EPOLL_CTL_ADD, int(h), ev); err != nil {
		return fmt.Errorf("reactor: epoll_ctl add %v: %w", h, err)
	}
	d.entries[h] = interest
	return nil
}

func (d *epollDemux) Modify(h api.Handle, interest api.Interest) error {
	if _, exists := d.entries[h]; !exists {
		return api.ErrUnknownHandle
	}
	ev := &unix.EpollEvent{Events: interestToEpollEvents(interest), Fd: int32(h)}
	if err := unix.EpollCtl(d.epfd, unix.EPOLL_CTL_MOD, int(h), ev); err != nil {
		return fmt.Errorf("reactor: epoll_ctl mod %v: %w", h, err)
	}
	d.entries[h] = interest
	return nil
}

// Remove is not idempotent: a second call for the same handle returns
// ErrUnknownHandle. Callers must not rely on a double-remove
// succeeding on back-ends that don't document it.
func (d *epollDemux) Remove(h api.Handle) error {
	if _, exists := d.entries[h]; !exists {
		return api.ErrUnknownHandle
	}
	delete(d.entries, h)
	if err := unix.EpollCtl(d.epfd, unix.EPOLL_CTL_DEL, int(h), nil); err != nil {
		return fmt.Errorf("reactor: epoll_ctl del %v: %w", h, err)
	}
	return nil
}

// Wait grows the event buffer geometrically whenever a call returns a
// full buffer, so a subsequent call can surface more handles at once
// instead of starving the tail of the registry under heavy load.
func (d *epollDemux) Wait(timeoutMs int) ([]api.ReadyEvent, error) {
	n, err := unix.EpollWait(d.epfd, d.eventBuf, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, fmt.Errorf("reactor: epoll_wait: %w", err)
	}

	events := make([]api.ReadyEvent, 0, n)
	for i := 0; i < n; i++ {
		raw := d.eventBuf[i]
		h := api.Handle(raw.Fd)

		var fired api.Interest
		if raw.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			fired |= api.Error
		}
		if raw.Events&unix.EPOLLIN != 0 {
			fired |= api.Readable
		}
		if raw.Events&unix.EPOLLOUT != 0 {
			fired |= api.Writable
		}
		if fired == 0 {
			continue
		}
		events = append(events, api.ReadyEvent{Handle: h, Fired: fired})
	}

	if n == len(d.eventBuf) {
		d.eventBuf = make([]unix.EpollEvent, len(d.eventBuf)*2)
	}
	return events, nil
}

func (d *epollDemux) Close() error {
	return unix.Close(d.epfd)
}
