//go:build unix

// File: cmd/chatserver/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// cmd/chatserver is the reference application: it wires an accept
// reactor, a sub-reactor, a worker pool, and the chat application
// layer into a running TCP service, and exercises every interface the
// core exposes.

package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/momentics/reactorchat/acceptor"
	"github.com/momentics/reactorchat/affinity"
	"github.com/momentics/reactorchat/api"
	"github.com/momentics/reactorchat/bufpool"
	"github.com/momentics/reactorchat/chat"
	"github.com/momentics/reactorchat/reactor"
	"github.com/momentics/reactorchat/workerpool"
)

func main() {
	cfg := defaultConfig()

	addr := flag.String("addr", cfg.ListenAddr, "TCP listen address")
	workers := flag.Int("workers", cfg.WorkerPoolSize, "message-processing worker pool size")
	useSelect := flag.Bool("select-backend", false, "use the scan-based demultiplexer instead of epoll")
	acceptCPU := flag.Int("accept-cpu", cfg.AcceptReactorCPU, "pin the accept reactor to this logical CPU (-1 leaves it unpinned)")
	subCPU := flag.Int("sub-cpu", cfg.SubReactorCPU, "pin the sub reactor to this logical CPU (-1 leaves it unpinned)")
	flag.Parse()

	opts := []Option{
		WithListenAddr(*addr),
		WithWorkerPoolSize(*workers),
		WithReactorAffinity(*acceptCPU, *subCPU),
	}
	if *useSelect {
		opts = append(opts, WithBackend(reactor.BackendSelect))
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("chatserver: %v", err)
	}
}

func run(cfg Config) error {
	acceptReactor, err := reactor.NewReactor(cfg.Backend)
	if err != nil {
		return err
	}
	subReactor, err := reactor.NewReactor(cfg.Backend)
	if err != nil {
		return err
	}

	pool := bufpool.New(cfg.RecvBufCount, cfg.RecvBufSize)
	workers := workerpool.New(cfg.WorkerPoolSize)
	server := chat.NewServer(subReactor)

	listener, err := acceptor.New(cfg.ListenAddr, subReactor, pool, workers, server)
	if err != nil {
		return err
	}
	if err := acceptReactor.Register(listener, api.Readable); err != nil {
		return err
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if cfg.SubReactorCPU >= 0 {
			if err := affinity.SetAffinity(cfg.SubReactorCPU); err != nil {
				log.Printf("chatserver: sub reactor affinity: %v", err)
			}
		}
		if err := subReactor.Run(); err != nil {
			log.Printf("chatserver: sub reactor: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if cfg.AcceptReactorCPU >= 0 {
			if err := affinity.SetAffinity(cfg.AcceptReactorCPU); err != nil {
				log.Printf("chatserver: accept reactor affinity: %v", err)
			}
		}
		if err := acceptReactor.Run(); err != nil {
			log.Printf("chatserver: accept reactor: %v", err)
		}
	}()

	log.Printf("chatserver: listening on %s (backend=%d, workers=%d)", cfg.ListenAddr, cfg.Backend, cfg.WorkerPoolSize)

	<-shutdown
	log.Print("chatserver: shutdown signal received")

	acceptReactor.Quit()
	subReactor.Quit()
	wg.Wait()

	if err := acceptReactor.Close(); err != nil {
		log.Printf("chatserver: accept reactor close: %v", err)
	}
	if err := subReactor.Close(); err != nil {
		log.Printf("chatserver: sub reactor close: %v", err)
	}
	workers.Close()
	return nil
}
