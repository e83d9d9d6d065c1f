// File: cmd/chatserver/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Functional options for the chat server process: a plain Config
// struct mutated by a chain of small Option closures rather than a
// config-file library.

package main

import "github.com/momentics/reactorchat/reactor"

// Config holds every process-level knob the reference application
// exposes.
type Config struct {
	ListenAddr     string
	WorkerPoolSize int
	RecvBufSize    int
	RecvBufCount   int
	Backend        reactor.Backend

	// AcceptReactorCPU/SubReactorCPU pin the respective reactor's OS
	// thread to a logical CPU. -1 (the default) leaves scheduling to
	// the Go runtime.
	AcceptReactorCPU int
	SubReactorCPU    int
}

// Option mutates a Config during construction.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		ListenAddr:       ":9000",
		WorkerPoolSize:   8,
		RecvBufSize:      4096,
		RecvBufCount:     256,
		Backend:          reactor.BackendEpoll,
		AcceptReactorCPU: -1,
		SubReactorCPU:    -1,
	}
}

// WithListenAddr overrides the default listening address (":9000").
func WithListenAddr(addr string) Option {
	return func(c *Config) { c.ListenAddr = addr }
}

// WithWorkerPoolSize overrides the number of message-processing
// worker goroutines.
func WithWorkerPoolSize(n int) Option {
	return func(c *Config) { c.WorkerPoolSize = n }
}

// WithBackend selects the demultiplexer back-end both the accept
// reactor and the sub-reactor use.
func WithBackend(b reactor.Backend) Option {
	return func(c *Config) { c.Backend = b }
}

// WithRecvBufPool overrides the connection handler's scratch buffer
// pool dimensions.
func WithRecvBufPool(count, size int) Option {
	return func(c *Config) {
		c.RecvBufCount = count
		c.RecvBufSize = size
	}
}

// WithReactorAffinity pins the accept and sub reactor OS threads to
// the given logical CPUs. Pass -1 for either to leave it unpinned.
func WithReactorAffinity(acceptCPU, subCPU int) Option {
	return func(c *Config) {
		c.AcceptReactorCPU = acceptCPU
		c.SubReactorCPU = subCPU
	}
}
