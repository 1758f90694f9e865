// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server hosts the RESP TCP listener and the separate admin HTTP
// surface that exposes metrics, health, and log-level control.
package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/kvedge/respd/confengine"
	"github.com/kvedge/respd/logger"
	"github.com/kvedge/respd/store"
)

// RespConfig configures the primary RESP listener.
type RespConfig struct {
	Address     string        `config:"address"`
	IdleTimeout time.Duration `config:"idleTimeout"`
}

// RespServer accepts RESP client connections and dispatches each one to
// its own goroutine running the read-decode-execute-reply loop.
type RespServer struct {
	config   RespConfig
	store    *store.Store
	listener net.Listener

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup

	// OnListen, if set, is called once the listener is bound and before
	// the accept loop starts. Used to flip the admin server's readiness
	// state at the right moment instead of guessing.
	OnListen func()
}

// NewRespServer builds a RespServer from the "server" config section.
func NewRespServer(conf *confengine.Config, st *store.Store) (*RespServer, error) {
	config := RespConfig{Address: "0.0.0.0:6379"}
	if conf.Has("server") {
		if err := conf.UnpackChild("server", &config); err != nil {
			return nil, errors.Wrap(err, "unpack server config")
		}
	}

	return &RespServer{config: config, store: st}, nil
}

// ListenAndServe binds the configured address and accepts connections
// until Shutdown is called or Accept returns a permanent error.
func (s *RespServer) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	s.listener = l
	logger.Infof("resp server listening on %s", s.config.Address)
	if s.OnListen != nil {
		s.OnListen()
	}

	for {
		conn, err := l.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing {
				return nil
			}
			return errors.Wrap(err, "accept")
		}

		connectionsTotal.Inc()
		connectionsActive.Inc()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer connectionsActive.Dec()
			s.serve(conn)
		}()
	}
}

// Shutdown stops accepting new connections and waits for in-flight
// connections to finish, or for ctx to expire first.
func (s *RespServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	if s.listener != nil {
		_ = s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RespServer) serve(conn net.Conn) {
	defer conn.Close()

	c := &connection{
		conn:        conn,
		store:       s.store,
		idleTimeout: s.config.IdleTimeout,
	}
	c.run()
}
