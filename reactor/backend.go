// File: reactor/backend.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Backend selects a Demultiplexer implementation at construction time,
// so both back-ends stay compiled in on platforms that support them
// and a test can run the same scenario against each without a build
// tag.

package reactor

import "github.com/momentics/reactorchat/api"

// Backend names a Demultiplexer implementation.
type Backend int

const (
	// BackendEpoll selects the edge-triggered epoll(7) back-end.
	// Linux only; requesting it elsewhere returns ErrBackendUnsupported.
	BackendEpoll Backend = iota

	// BackendSelect selects the level-triggered scan-based back-end
	// (poll(2) under the hood). Available on any Unix platform.
	BackendSelect
)

func newDemultiplexer(backend Backend) (api.Demultiplexer, error) {
	switch backend {
	case BackendEpoll:
		return newEpollDemux()
	case BackendSelect:
		return newPollDemux()
	default:
		return nil, api.ErrBackendUnsupported
	}
}

// NewReactor builds a Demultiplexer for backend and wraps it in a
// Reactor. It is the usual entry point; New remains available for
// tests that want to inject a fake Demultiplexer directly.
func NewReactor(backend Backend) (*Reactor, error) {
	demux, err := newDemultiplexer(backend)
	if err != nil {
		return nil, err
	}
	return New(demux)
}
