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

package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kvedge/respd/command"
	"github.com/kvedge/respd/common"
	"github.com/kvedge/respd/internal/rescue"
	"github.com/kvedge/respd/internal/tracing"
	"github.com/kvedge/respd/logger"
	"github.com/kvedge/respd/resp"
	"github.com/kvedge/respd/store"
)

// connection runs the per-connection state machine: read bytes, decode
// one Frame, parse it into a Command, execute against the shared store,
// encode the reply, write it back. Request/response ordering is strict
// within a connection — the next read only happens after the current
// reply has been written.
type connection struct {
	id          string
	conn        net.Conn
	store       *store.Store
	idleTimeout time.Duration

	dec readBuf
}

// readBuf is a thin wrapper combining a resp.Decoder with the raw read
// buffer conn.Read fills, mirroring the teacher's fixed-size block read
// pattern (common.ReadWriteBlockSize) instead of bufio's growable ring.
type readBuf struct {
	decoder *resp.Decoder
	scratch [common.ReadWriteBlockSize]byte
}

func (c *connection) run() {
	if c.id == "" {
		c.id = uuid.NewString()
	}
	c.dec.decoder = resp.NewDecoder()

	for {
		frame, err := c.nextFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) && !isClosedOrTimeout(err) {
				logger.Debugf("connection %s from %s closing: %v", c.id, c.conn.RemoteAddr(), err)
			}
			return
		}

		reply := c.execute(frame)
		if _, err := c.conn.Write(resp.Encode(reply)); err != nil {
			logger.Debugf("connection from %s write failed: %v", c.conn.RemoteAddr(), err)
			return
		}
	}
}

// nextFrame reads from the socket until a complete Frame is decoded. A
// decode error other than NotComplete means the stream's framing can no
// longer be trusted: nextFrame sends one best-effort error reply and
// returns the error so the caller closes the connection.
func (c *connection) nextFrame() (resp.Frame, error) {
	for {
		f, err := c.dec.decoder.Next()
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, resp.ErrNotComplete) {
			decodeErrorsTotal.Inc()
			c.conn.Write(resp.Encode(resp.Errorf("ERR Protocol error: %s", err.Error())))
			return resp.Frame{}, err
		}

		if err := c.setIdleDeadline(); err != nil {
			return resp.Frame{}, err
		}
		n, err := c.conn.Read(c.dec.scratch[:])
		if n > 0 {
			c.dec.decoder.Feed(c.dec.scratch[:n])
		}
		if err != nil {
			return resp.Frame{}, err
		}
	}
}

func (c *connection) setIdleDeadline() error {
	if c.idleTimeout <= 0 {
		return nil
	}
	return c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
}

// execute parses and runs one command, recovering from any panic so a
// single bad request can't take the listener or other connections down
// with it.
func (c *connection) execute(frame resp.Frame) (reply resp.Frame) {
	defer func() {
		if r := recover(); r != nil {
			for _, fn := range rescue.PanicHandlers {
				fn(r)
			}
			reply = resp.Error("ERR internal error")
		}
	}()

	cmd, err := command.Parse(frame)
	if err != nil {
		return resp.Error(err.Error())
	}

	commandsTotal.WithLabelValues(verbLabel(cmd)).Inc()

	_, span := tracing.StartCommand(context.Background(), verbLabel(cmd), c.id)
	defer span.End()

	return command.Execute(cmd, c.store)
}

func verbLabel(cmd command.Command) string {
	if cmd.Kind == command.Unrecognized {
		return "unknown"
	}
	return strings.ToLower(cmd.Verb)
}

func isClosedOrTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}
