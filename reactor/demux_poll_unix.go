//go:build unix

// File: reactor/demux_poll_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scan-based demultiplexer back-end: poll(2) via golang.org/x/sys/unix,
// standing in for the source's bitmap-indexed select(2) scan (select's
// FD_SETSIZE cap makes a literal port impractical; poll is the same
// "snapshot interest, scan on return" algorithm without that limit).
// Level-triggered: a handle stays ready across calls until its
// condition is cleared. Registered handles are always scanned in
// ascending Handle order, matching the source's iteration order.

package reactor

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactorchat/api"
)

// pollDemux's interest map is mutated by Register/Modify/Remove, which
// run on whatever goroutine a caller holds the Reactor's registry lock
// from, while Wait reads it to build a snapshot from the reactor's own
// goroutine. mu covers both sides of that handoff.
type pollDemux struct {
	mu       sync.Mutex
	interest map[api.Handle]api.Interest
}

func newPollDemux() (api.Demultiplexer, error) {
	return &pollDemux{interest: make(map[api.Handle]api.Interest)}, nil
}

func (d *pollDemux) Register(h api.Handle, interest api.Interest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.interest[h]; exists {
		return api.ErrDuplicateHandle
	}
	d.interest[h] = interest
	return nil
}

func (d *pollDemux) Modify(h api.Handle, interest api.Interest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.interest[h]; !exists {
		return api.ErrUnknownHandle
	}
	d.interest[h] = interest
	return nil
}

// Remove is not idempotent: as with the epoll back-end, removing an
// unknown handle returns ErrUnknownHandle (with no side effects).
// There is no kernel state to release beyond the map entry itself.
func (d *pollDemux) Remove(h api.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.interest[h]; !exists {
		return api.ErrUnknownHandle
	}
	delete(d.interest, h)
	return nil
}

// Wait snapshots the registry under mu, builds a pollfd array in
// ascending Handle order, then releases mu before blocking in
// unix.Poll — a pending Register/Modify/Remove must never wait on a
// poll call that can block indefinitely. The scan on return only
// touches the local fds slice, not the map, so it needs no lock.
// An empty registry still honors timeoutMs via unix.Poll with a
// nil/empty fd slice.
func (d *pollDemux) Wait(timeoutMs int) ([]api.ReadyEvent, error) {
	d.mu.Lock()
	handles := make([]api.Handle, 0, len(d.interest))
	for h := range d.interest {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	fds := make([]unix.PollFd, len(handles))
	for i, h := range handles {
		fds[i] = unix.PollFd{Fd: int32(h), Events: interestToPollEvents(d.interest[h])}
	}
	d.mu.Unlock()

	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, fmt.Errorf("reactor: poll: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	events := make([]api.ReadyEvent, 0, n)
	for _, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}
		var fired api.Interest
		if pfd.Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			fired |= api.Error
		}
		if pfd.Revents&unix.POLLIN != 0 {
			fired |= api.Readable
		}
		if pfd.Revents&unix.POLLOUT != 0 {
			fired |= api.Writable
		}
		events = append(events, api.ReadyEvent{Handle: api.Handle(pfd.Fd), Fired: fired})
	}
	return events, nil
}

func (d *pollDemux) Close() error {
	return nil
}

func interestToPollEvents(interest api.Interest) int16 {
	var ev int16
	if interest.Has(api.Readable) {
		ev |= unix.POLLIN
	}
	if interest.Has(api.Writable) {
		ev |= unix.POLLOUT
	}
	return ev
}
