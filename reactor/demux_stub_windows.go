//go:build windows
// +build windows

// File: reactor/demux_stub_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Neither demultiplexer back-end has a Windows implementation: a
// readiness-based model doesn't map cleanly onto IOCP's
// completion-based one, and that port is out of scope here. Both
// constructors fail uniformly so reactor.NewReactor behaves the same
// way regardless of which Backend the caller requested.

package reactor

import "github.com/momentics/reactorchat/api"

func newEpollDemux() (api.Demultiplexer, error) {
	return nil, api.ErrBackendUnsupported
}

func newPollDemux() (api.Demultiplexer, error) {
	return nil, api.ErrBackendUnsupported
}
