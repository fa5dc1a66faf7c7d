// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package events

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/tomtom215/videoparty/internal/logging"
)

// ErrServerStopped is returned by Serve when the broker exits on its own.
var ErrServerStopped = errors.New("embedded NATS server stopped unexpectedly")

// EmbeddedServer runs an in-process NATS broker for single-instance
// deployments. It implements suture.Service; a crashed broker is restarted
// on the same address.
type EmbeddedServer struct {
	opts *server.Options

	mu     sync.Mutex
	server *server.Server
}

// NewEmbeddedServer starts a broker on host:port. Port -1 picks a random
// free port.
func NewEmbeddedServer(host string, port int) (*EmbeddedServer, error) {
	s := &EmbeddedServer{
		opts: &server.Options{
			ServerName: "videoparty-events",
			Host:       host,
			Port:       port,
			NoLog:      true,
			NoSigs:     true,
			MaxPayload: 1024 * 1024,
		},
	}
	if err := s.start(); err != nil {
		return nil, err
	}
	// Pin the resolved port so restarts keep the address clients know.
	if addr, ok := s.server.Addr().(*net.TCPAddr); ok {
		s.opts.Port = addr.Port
	}
	return s, nil
}

func (s *EmbeddedServer) start() error {
	ns, err := server.NewServer(s.opts)
	if err != nil {
		return fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return fmt.Errorf("NATS server not ready within timeout")
	}

	s.mu.Lock()
	s.server = ns
	s.mu.Unlock()

	logging.Info().Str("url", ns.ClientURL()).Msg("Embedded NATS server started")
	return nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server.ClientURL()
}

// IsRunning reports whether the broker is accepting connections.
func (s *EmbeddedServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server != nil && s.server.Running()
}

// Serve blocks until ctx is cancelled, then shuts the broker down. If the
// broker exits first Serve returns ErrServerStopped and the next call
// starts a fresh one.
func (s *EmbeddedServer) Serve(ctx context.Context) error {
	if !s.IsRunning() {
		if err := s.start(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	ns := s.server
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		ns.WaitForShutdown()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		ns.Shutdown()
		<-stopped
		return ctx.Err()
	case <-stopped:
		return ErrServerStopped
	}
}

// Shutdown stops the broker.
func (s *EmbeddedServer) Shutdown() {
	s.mu.Lock()
	ns := s.server
	s.mu.Unlock()
	if ns != nil {
		ns.Shutdown()
		ns.WaitForShutdown()
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *EmbeddedServer) String() string {
	return "embedded-nats"
}
