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

// Package engine is the debug session engine: it brokers the DP transport,
// maintains the idle/running/paused execution-control machine, owns the
// reference table and breakpoint store, and implements the command
// catalogue described in the project's spec.
package engine

import (
	"os/exec"
	"time"
)

// sessionState is the idle/running/paused execution-control machine.
type sessionState string

const (
	stateIdle    sessionState = "idle"
	stateRunning sessionState = "running"
	statePaused  sessionState = "paused"
)

// script is a generated script the runtime has parsed.
type script struct {
	id           string
	url          string
	sourceMapURL string
}

// pauseInfo is present only while the session is paused.
type pauseInfo struct {
	reason      string
	scriptID    string
	url         string
	line        int
	column      int
	frameCount  int
}

// callFrame is only valid until the next resume. frameID is the current
// client-facing @fN handle; it is re-minted (by BuildState/GetStack) each
// time the volatile refs are cleared, while remoteID — the DP CallFrameID —
// stays stable across re-minting within the same pause.
type callFrame struct {
	frameID      string
	remoteID     string
	functionName string
	scriptID     string
	line         int
	column       int
	scopeChain   []scopeRef
}

// scopeRef holds the raw DP remote object id for a scope's variable object,
// not a minted handle — GetVars mints a fresh @vN per surfaced property
// instead of per scope.
type scopeRef struct {
	kind           string
	remoteObjectID string
}

// consoleMessage and exceptionEntry are the bounded ring-buffer entries of
// spec §3.
type consoleMessage struct {
	ts       int64
	level    string
	text     string
	location string
}

type exceptionEntry struct {
	ts       int64
	text     string
	description string
	location string
	stack    string
}

// Session owns one debug target end to end: the DP transport, the
// reference table, the breakpoint store, the source-map resolver, the
// ring buffers, and the child process (if launched rather than attached).
//
// The daemon hosts exactly one Session; there is no locking inside it
// because a single scheduler services one control-socket request at a
// time (see daemon.Server).
type Session struct {
	state sessionState
	pause *pauseInfo
	frames []callFrame

	scripts   map[string]*script
	scriptsBy []string // insertion order, for scripts{} listing

	transport   *transport
	refs        *refTable
	bps         *breakpointStore
	maps        *sourceMapResolver
	prefs       prefs
	pauseWaiter *pauseWaiter
	disconnected chan struct{}

	console    []consoleMessage
	exceptions []exceptionEntry

	blackbox []string

	exceptionPauseMode string

	child      *exec.Cmd
	childExited chan struct{}
	wsURL      string
	pid        int
	startedAt  time.Time
	lastLaunch LaunchOptions

	protocolLog *protocolLogger
}

const ringBufferCap = 1000

// NewSession constructs an idle session with empty tables. Callers then
// call Launch or Attach to bring up a debug target.
func NewSession(logPath string) *Session {
	return &Session{
		state:              stateIdle,
		scripts:            make(map[string]*script),
		refs:               newRefTable(),
		bps:                newBreakpointStore(),
		maps:               newSourceMapResolver(),
		prefs:              newPrefs(),
		pauseWaiter:        newPauseWaiter(),
		disconnected:       make(chan struct{}),
		exceptionPauseMode: "uncaught",
		protocolLog:        newProtocolLogger(logPath),
	}
}
