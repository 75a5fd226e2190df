// Copyright © 2016 Sidharth Kshatriya
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package daemon is the long-lived per-session background process: it
// owns exactly one engine.Session, listens on a Unix domain control
// socket for newline-framed ctlproto requests, and serializes every
// command through a single mutex so the engine package never has to
// reason about concurrent callers — the direct generalization of the
// teacher running as one foreground process per `dontbug record`
// invocation to one background process per jsdbg session directory.
package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/agentdbg/jsdbg/ctlproto"
	"github.com/agentdbg/jsdbg/engine"
	"github.com/agentdbg/jsdbg/lockfile"
)

// Server is the daemon process's main object: the control-socket
// listener, the single Session it serializes access to, and the logger.
type Server struct {
	sessionDir string
	sockPath   string
	lockPath   string
	logPath    string

	lock   *lockfile.Lock
	log    *zap.Logger
	sess   *engine.Session

	mu sync.Mutex // single-task scheduler: one command dispatched at a time

	listener net.Listener
}

// New constructs a Server rooted at sessionDir (typically
// $XDG_STATE_HOME/jsdbg/<session-hash>). It does not start listening;
// call Run for that.
func New(sessionDir string, log *zap.Logger) *Server {
	return &Server{
		sessionDir: sessionDir,
		sockPath:   filepath.Join(sessionDir, "ctl.sock"),
		lockPath:   filepath.Join(sessionDir, "daemon.lock"),
		logPath:    filepath.Join(sessionDir, "protocol.jsonl"),
		log:        log,
	}
}

// Run acquires the session's singleton lock, opens the control socket,
// and serves connections until the listener is closed or the process
// receives a terminal signal the caller handles elsewhere. Acquiring the
// lock first means a second `jsdbg launch` against the same session
// directory fails fast with a clear error rather than racing to bind the
// same socket path.
func (s *Server) Run() error {
	if err := os.MkdirAll(s.sessionDir, 0755); err != nil {
		return err
	}

	lock, err := lockfile.Acquire(s.lockPath)
	if err != nil {
		return err
	}
	s.lock = lock
	defer s.lock.Release()

	os.Remove(s.sockPath) // stale socket from an unclean previous exit
	listener, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return err
	}
	s.listener = listener
	defer listener.Close()

	s.sess = engine.NewSession(s.logPath)
	s.log.Info("daemon listening", zap.String("socket", s.sockPath))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("accept failed", zap.Error(err))
			continue
		}
		go s.serveConn(conn)
	}
}

// serveConn reads newline-framed requests off one client connection,
// dispatching each through the shared mutex, until the client disconnects.
// Multiple CLI invocations may connect concurrently (each gets its own
// conn/goroutine here) but every request still waits its turn at the
// mutex, so commands from different client processes never interleave
// against the engine.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			resp := s.handleLine(line)
			out, marshalErr := json.Marshal(resp)
			if marshalErr != nil {
				s.log.Error("failed to marshal response", zap.Error(marshalErr))
				continue
			}
			out = append(out, '\n')
			if _, werr := writer.Write(out); werr != nil {
				return
			}
			if werr := writer.Flush(); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Server) handleLine(line []byte) (resp ctlproto.Response) {
	var req ctlproto.Request
	if err := json.Unmarshal(line, &req); err != nil {
		return ctlproto.Fail("malformed request: "+err.Error(), "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			resp = ctlproto.Fail(fmt.Sprintf("internal error: %v", r), "")
		}
	}()

	s.log.Debug("dispatch", zap.String("cmd", req.Cmd))
	return dispatch(s.sess, req)
}
