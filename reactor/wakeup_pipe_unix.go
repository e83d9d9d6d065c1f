//go:build !linux && !windows
// +build !linux,!windows

// File: reactor/wakeup_pipe_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Self-pipe wakeup channel for Unix platforms without eventfd (BSD,
// Darwin). The registered handle is the pipe's read end; Signal
// writes a single byte, Drain reads until EAGAIN.

package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactorchat/api"
)

type pipeWakeup struct {
	readFd  int
	writeFd int
}

func newWakeupChannel() (wakeupChannel, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("reactor: pipe2: %w", err)
	}
	return &pipeWakeup{readFd: fds[0], writeFd: fds[1]}, nil
}

func (w *pipeWakeup) Handle() api.Handle { return api.Handle(w.readFd) }

func (w *pipeWakeup) Signal() error {
	_, err := unix.Write(w.writeFd, []byte{0})
	if err != nil && err != unix.EAGAIN {
		return fmt.Errorf("reactor: pipe write: %w", err)
	}
	return nil
}

func (w *pipeWakeup) Drain() error {
	var buf [64]byte
	for {
		_, err := unix.Read(w.readFd, buf[:])
		if err == unix.EAGAIN {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reactor: pipe read: %w", err)
		}
	}
}

func (w *pipeWakeup) Close() error {
	_ = unix.Close(w.writeFd)
	return unix.Close(w.readFd)
}
