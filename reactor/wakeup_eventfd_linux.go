//go:build linux
// +build linux

// File: reactor/wakeup_eventfd_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux wakeup channel backed by eventfd(2): a single fd that is both
// readable and writable, with an in-kernel 64-bit counter that
// coalesces repeated Signal calls into one readiness notification
// until drained.

package reactor

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactorchat/api"
)

type eventfdWakeup struct {
	fd int
}

func newWakeupChannel() (wakeupChannel, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("reactor: eventfd: %w", err)
	}
	return &eventfdWakeup{fd: fd}, nil
}

func (w *eventfdWakeup) Handle() api.Handle { return api.Handle(w.fd) }

func (w *eventfdWakeup) Signal() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(w.fd, buf[:])
	if err != nil && err != unix.EAGAIN {
		return fmt.Errorf("reactor: eventfd write: %w", err)
	}
	return nil
}

func (w *eventfdWakeup) Drain() error {
	var buf [8]byte
	for {
		_, err := unix.Read(w.fd, buf[:])
		if err == unix.EAGAIN {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reactor: eventfd read: %w", err)
		}
	}
}

func (w *eventfdWakeup) Close() error {
	return unix.Close(w.fd)
}
