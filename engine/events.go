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

package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// installEventHandlers wires every DP notification this engine cares
// about to the session's state. Must run before Session.resumeAndWait's
// first call per pausewaiter.go's ordering requirement, so Launch/Attach
// call this immediately after dialTransport succeeds and before issuing
// Runtime.enable/Debugger.enable.
func (s *Session) installEventHandlers() {
	s.transport.on("Debugger.paused", s.onPaused)
	s.transport.on("Debugger.resumed", s.onResumed)
	s.transport.on("Debugger.scriptParsed", s.onScriptParsed)
	s.transport.on("Runtime.executionContextDestroyed", s.onExecutionContextDestroyed)
	s.transport.on("Runtime.consoleAPICalled", s.onConsoleAPICalled)
	s.transport.on("Runtime.exceptionThrown", s.onExceptionThrown)
}

type dpPausedParams struct {
	CallFrames []dpCallFrame `json:"callFrames"`
	Reason     string        `json:"reason"`
}

type dpCallFrame struct {
	CallFrameID  string       `json:"callFrameId"`
	FunctionName string       `json:"functionName"`
	Location     dpLocation   `json:"location"`
	ScopeChain   []dpScope    `json:"scopeChain"`
}

type dpLocation struct {
	ScriptID     string `json:"scriptId"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber"`
}

type dpScope struct {
	Type   string       `json:"type"`
	Object dpRemoteObj  `json:"object"`
}

type dpRemoteObj struct {
	ObjectID string `json:"objectId"`
}

// onPaused handles Debugger.paused. Per spec §4.2, every pause first
// clears volatile (v/f-kind) handles from the previous pause, then
// re-populates the frame list and notifies whoever is blocked in
// resumeAndWait.
func (s *Session) onPaused(raw json.RawMessage) {
	var p dpPausedParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}

	s.refs.clearVolatile()
	s.state = statePaused
	s.frames = make([]callFrame, 0, len(p.CallFrames))

	for i, f := range p.CallFrames {
		handle := s.refs.addFrame(f.CallFrameID, i)
		cf := callFrame{
			frameID:      handle,
			remoteID:     f.CallFrameID,
			functionName: f.FunctionName,
			scriptID:     f.Location.ScriptID,
			line:         f.Location.LineNumber + 1,
			column:       f.Location.ColumnNumber,
		}
		for _, sc := range f.ScopeChain {
			cf.scopeChain = append(cf.scopeChain, scopeRef{kind: sc.Type, remoteObjectID: sc.Object.ObjectID})
		}
		s.frames = append(s.frames, cf)
	}

	info := pauseInfo{reason: p.Reason, frameCount: len(s.frames)}
	if len(s.frames) > 0 {
		info.scriptID = s.frames[0].scriptID
		info.line = s.frames[0].line
		info.column = s.frames[0].column
		if sc, ok := s.scripts[info.scriptID]; ok {
			info.url = sc.url
		}
	}
	s.pause = &info
	s.pauseWaiter.notify(info)
}

func (s *Session) onResumed(json.RawMessage) {
	s.state = stateRunning
	s.pause = nil
	s.frames = nil
}

type dpScriptParsedParams struct {
	ScriptID     string `json:"scriptId"`
	URL          string `json:"url"`
	SourceMapURL string `json:"sourceMapURL"`
}

func (s *Session) onScriptParsed(raw json.RawMessage) {
	var p dpScriptParsedParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}
	if _, exists := s.scripts[p.ScriptID]; !exists {
		s.scriptsBy = append(s.scriptsBy, p.ScriptID)
	}
	s.scripts[p.ScriptID] = &script{id: p.ScriptID, url: p.URL, sourceMapURL: p.SourceMapURL}
	if p.SourceMapURL != "" {
		s.maps.load(p.ScriptID, p.URL, p.SourceMapURL)
	}
}

func (s *Session) onExecutionContextDestroyed(json.RawMessage) {
	s.state = stateIdle
	s.pause = nil
	s.frames = nil
	s.refs.clearAll()
}

type dpConsoleAPICalledParams struct {
	Type      string       `json:"type"`
	Args      []dpRemoteValue `json:"args"`
	Timestamp float64      `json:"timestamp"`
	StackTrace *dpStackTrace `json:"stackTrace,omitempty"`
}

type dpRemoteValue struct {
	Type        string      `json:"type"`
	Value       interface{} `json:"value"`
	Description string      `json:"description"`
}

type dpStackTrace struct {
	CallFrames []dpLocation `json:"callFrames"`
}

func (s *Session) onConsoleAPICalled(raw json.RawMessage) {
	var p dpConsoleAPICalledParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}

	text := formatConsoleArgs(p.Args)
	loc := ""
	if p.StackTrace != nil && len(p.StackTrace.CallFrames) > 0 {
		top := p.StackTrace.CallFrames[0]
		loc = fmt.Sprintf("%s:%d:%d", top.ScriptID, top.LineNumber+1, top.ColumnNumber)
	}

	msg := consoleMessage{
		ts:       time.Now().UnixNano() / int64(time.Millisecond),
		level:    p.Type,
		text:     text,
		location: loc,
	}
	s.console = appendRing(s.console, msg, ringBufferCap)
}

func formatConsoleArgs(args []dpRemoteValue) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		if a.Description != "" {
			out += a.Description
		} else if a.Value != nil {
			out += fmt.Sprintf("%v", a.Value)
		} else {
			out += a.Type
		}
	}
	return out
}

type dpExceptionThrownParams struct {
	Timestamp        float64            `json:"timestamp"`
	ExceptionDetails dpExceptionDetails `json:"exceptionDetails"`
}

type dpExceptionDetails struct {
	Text               string        `json:"text"`
	LineNumber         int           `json:"lineNumber"`
	ColumnNumber       int           `json:"columnNumber"`
	ScriptID           string        `json:"scriptId"`
	Exception          *dpRemoteValue `json:"exception,omitempty"`
	StackTrace         *dpStackTrace  `json:"stackTrace,omitempty"`
}

func (s *Session) onExceptionThrown(raw json.RawMessage) {
	var p dpExceptionThrownParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return
	}

	description := p.ExceptionDetails.Text
	if p.ExceptionDetails.Exception != nil && p.ExceptionDetails.Exception.Description != "" {
		description = p.ExceptionDetails.Exception.Description
	}

	stack := ""
	if p.ExceptionDetails.StackTrace != nil {
		for i, f := range p.ExceptionDetails.StackTrace.CallFrames {
			if i > 0 {
				stack += "\n"
			}
			stack += fmt.Sprintf("  at %s:%d:%d", f.ScriptID, f.LineNumber+1, f.ColumnNumber)
		}
	}

	entry := exceptionEntry{
		ts:          time.Now().UnixNano() / int64(time.Millisecond),
		text:        p.ExceptionDetails.Text,
		description: description,
		location:    fmt.Sprintf("%s:%d:%d", p.ExceptionDetails.ScriptID, p.ExceptionDetails.LineNumber+1, p.ExceptionDetails.ColumnNumber),
		stack:       stack,
	}
	s.exceptions = appendRing(s.exceptions, entry, ringBufferCap)
}

// appendRing appends to a bounded ring buffer, dropping the oldest entry
// once cap is exceeded (spec §3's console/exception buffers).
func appendRing[T any](buf []T, item T, cap int) []T {
	buf = append(buf, item)
	if len(buf) > cap {
		buf = buf[len(buf)-cap:]
	}
	return buf
}
