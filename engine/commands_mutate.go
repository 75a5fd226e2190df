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
	"regexp"
)

type dpCallFunctionOnParams struct {
	ObjectID            string `json:"objectId"`
	FunctionDeclaration string `json:"functionDeclaration"`
	Arguments            []dpCallArgument `json:"arguments"`
}

// SetVariable assigns a new value to a property on the object behind
// handle, by calling a setter function on it through
// Runtime.callFunctionOn — DP has no direct "set a property" request, so
// this synthesizes one the same way synthesizeLogpointCondition
// synthesizes a breakpoint condition: as a small piece of JS text the
// runtime evaluates.
func (s *Session) SetVariable(objectHandle, propertyName, valueExpression string) error {
	entry, err := s.refs.resolveKind(objectHandle, refObject)
	if err != nil {
		return err
	}
	decl := "function(value) { this[" + jsStringLiteral(propertyName) + "] = value; }"
	_, err = s.send("Runtime.callFunctionOn", dpCallFunctionOnParams{
		ObjectID:            entry.remoteID,
		FunctionDeclaration: decl,
		Arguments:           []dpCallArgument{{Expression: valueExpression}},
	})
	if err != nil {
		return ErrMutationFailed{Text: err.Error()}
	}
	return nil
}

type dpSetVariableValueParams struct {
	ScopeNumber int    `json:"scopeNumber"`
	VariableName string `json:"variableName"`
	NewValue    dpCallArgument `json:"newValue"`
	CallFrameID string `json:"callFrameId"`
}

// SetReturnValue overrides the value a paused frame is about to return,
// via Debugger.setReturnValue — valid only immediately before a step-out/
// return completes, per spec §4.7.
func (s *Session) SetReturnValue(valueExpression string) error {
	if s.state != statePaused {
		return ErrBadState{Expected: string(statePaused), Actual: string(s.state)}
	}
	_, err := s.send("Debugger.setReturnValue", struct {
		NewValue dpCallArgument `json:"newValue"`
	}{NewValue: dpCallArgument{Expression: valueExpression}})
	if err != nil {
		return ErrMutationFailed{Text: err.Error()}
	}
	return nil
}

type dpSetScriptSourceParams struct {
	ScriptID     string `json:"scriptId"`
	ScriptSource string `json:"scriptSource"`
	DryRun       bool   `json:"dryRun,omitempty"`
}

type dpSetScriptSourceResult struct {
	Status string `json:"status"`
}

// Hotpatch replaces the live source of scriptID via
// Debugger.setScriptSource (spec §4.7). With dryRun set, the edit is
// validated but never committed — the runtime reports back whether it
// would have applied cleanly, without the target observing any change.
// A runtime that rejects the edit (e.g. a change to function signatures
// on some engines) surfaces the rejection as ErrMutationFailed rather
// than a panic.
func (s *Session) Hotpatch(scriptID, newSource string, dryRun bool) (string, error) {
	raw, err := s.send("Debugger.setScriptSource", dpSetScriptSourceParams{ScriptID: scriptID, ScriptSource: newSource, DryRun: dryRun})
	if err != nil {
		return "", ErrMutationFailed{Text: err.Error()}
	}
	var res dpSetScriptSourceResult
	_ = json.Unmarshal(raw, &res)
	return res.Status, nil
}

func jsStringLiteral(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

type dpSetBreakpointByURLParams struct {
	URL          string `json:"url,omitempty"`
	URLRegex     string `json:"urlRegex,omitempty"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

type dpSetBreakpointByURLResult struct {
	BreakpointID string `json:"breakpointId"`
}

// breakpointTarget is what resolveBreakpointTarget decides to actually
// send to Debugger.setBreakpointByUrl, plus the translation metadata spec
// §4.5 says to keep around for break-ls once a source-map hop happened.
type breakpointTarget struct {
	dpURL      string
	dpURLRegex string
	line       int
	column     int

	translated    bool
	originalUrl   string
	originalLine  int
	generatedUrl  string
	generatedLine int
}

// resolveBreakpointTarget implements spec §4.5's breakpoint-placement
// procedure: an explicit urlRegex always wins outright; otherwise url is
// translated from original to generated coordinates via a loaded source
// map, then via a suffix match against an already-parsed script's url
// (tolerating a file:// prefix on either side), and only once both of
// those miss does it fall back to a synthesized "matches any path ending
// in this" regex — the same escalation order GetSource's
// resolveScriptByPath uses for source-to-script lookups, run in reverse.
func (s *Session) resolveBreakpointTarget(url string, line, column int, urlRegex string) breakpointTarget {
	if urlRegex != "" {
		return breakpointTarget{dpURLRegex: urlRegex, line: line, column: column}
	}

	if loc, ok := s.maps.toGenerated(url, line, column); ok {
		generatedURL := loc.scriptID
		if sc, ok := s.scripts[loc.scriptID]; ok {
			generatedURL = sc.url
		}
		return breakpointTarget{
			dpURL: generatedURL, line: loc.line, column: loc.column,
			translated: true, originalUrl: url, originalLine: line,
			generatedUrl: generatedURL, generatedLine: loc.line,
		}
	}

	for _, id := range s.scriptsBy {
		if sc, ok := s.scripts[id]; ok && suffixMatchURL(sc.url, url) {
			return breakpointTarget{dpURL: sc.url, line: line, column: column}
		}
	}

	return breakpointTarget{
		dpURLRegex: "^.*" + regexp.QuoteMeta(url) + "$",
		line:       line, column: column,
	}
}

// SetBreakpoint installs a line breakpoint at url:line, or across every
// script whose URL matches urlRegex when url is empty (spec §4.5). An
// optional condition and hitCount get folded into the DP condition via
// synthesizeCondition, whose hit counter is a JS global kept in the
// target, so DP needs no native hit-count support.
func (s *Session) SetBreakpoint(url string, line, column int, condition string, hitCount int, urlRegex string) (string, error) {
	target := s.resolveBreakpointTarget(url, line, column, urlRegex)
	cond := synthesizeCondition(condition, hitCount)
	raw, err := s.send("Debugger.setBreakpointByUrl", dpSetBreakpointByURLParams{
		URL: target.dpURL, URLRegex: target.dpURLRegex, LineNumber: target.line - 1, ColumnNumber: target.column, Condition: cond,
	})
	if err != nil {
		return "", err
	}
	var res dpSetBreakpointByURLResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", ErrMutationFailed{Text: err.Error()}
	}

	handle := s.refs.addBreakpoint(res.BreakpointID, map[string]interface{}{
		"url": url, "urlRegex": urlRegex, "line": line, "column": column,
	})
	rec := &breakpointRecord{
		handle: handle, remoteID: res.BreakpointID, url: url, line: line, column: column,
		urlRegex: urlRegex, condition: condition, hitCount: hitCount, state: bpStateEnabled,
	}
	if target.translated {
		rec.originalUrl = target.originalUrl
		rec.originalLine = target.originalLine
		rec.generatedUrl = target.generatedUrl
		rec.generatedLine = target.generatedLine
	}
	s.bps.put(rec)
	return handle, nil
}

// SetLogpoint installs a line breakpoint whose condition always
// evaluates false after emitting a console message (spec §4.7).
func (s *Session) SetLogpoint(url string, line, column int, template string) (string, error) {
	cond := synthesizeLogpointCondition(template)
	raw, err := s.send("Debugger.setBreakpointByUrl", dpSetBreakpointByURLParams{
		URL: url, LineNumber: line - 1, ColumnNumber: column, Condition: cond,
	})
	if err != nil {
		return "", err
	}
	var res dpSetBreakpointByURLResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return "", ErrMutationFailed{Text: err.Error()}
	}

	handle := s.refs.addLogpoint(res.BreakpointID, map[string]interface{}{
		"url": url, "line": line, "column": column, "template": template,
	})
	s.bps.put(&breakpointRecord{
		handle: handle, remoteID: res.BreakpointID, url: url, line: line, column: column,
		isLogpoint: true, logTemplate: template, state: bpStateEnabled,
	})
	return handle, nil
}

type dpRemoveBreakpointParams struct {
	BreakpointID string `json:"breakpointId"`
}

// RemoveBreakpoint tears down a breakpoint or logpoint and frees its
// handle.
func (s *Session) RemoveBreakpoint(handle string) error {
	rec, ok := s.bps.get(handle)
	if !ok {
		return ErrUnknownRef{Ref: handle}
	}
	if rec.state == bpStateEnabled {
		if _, err := s.send("Debugger.removeBreakpoint", dpRemoveBreakpointParams{BreakpointID: rec.remoteID}); err != nil {
			return err
		}
	}
	s.bps.remove(handle)
	s.refs.remove(handle)
	return nil
}

// ToggleBreakpoint sets a breakpoint's enabled state to enabled (a no-op
// when it is already there), reissuing the underlying DP breakpoint at the
// same target SetBreakpoint resolved or removing it (spec §4.5's enable/
// disable semantics, the generalization of the teacher's
// enableGdbBreakpoint/disableGdbBreakpoint pair in breakpoints.go, minus
// GDB's internal/PHP breakpoint split since DP has only one kind).
func (s *Session) ToggleBreakpoint(handle string, enabled bool) error {
	rec, ok := s.bps.get(handle)
	if !ok {
		return ErrUnknownRef{Ref: handle}
	}

	if enabled && rec.state == bpStateDisabled {
		cond := synthesizeCondition(rec.condition, rec.hitCount)
		if rec.isLogpoint {
			cond = synthesizeLogpointCondition(rec.logTemplate)
		}
		params := dpSetBreakpointByURLParams{
			URL: rec.url, LineNumber: rec.line - 1, ColumnNumber: rec.column, Condition: cond,
		}
		if !rec.isLogpoint {
			target := s.resolveBreakpointTarget(rec.url, rec.line, rec.column, rec.urlRegex)
			params.URL, params.URLRegex = target.dpURL, target.dpURLRegex
			params.LineNumber, params.ColumnNumber = target.line-1, target.column
		}
		raw, err := s.send("Debugger.setBreakpointByUrl", params)
		if err != nil {
			return err
		}
		var res dpSetBreakpointByURLResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return ErrMutationFailed{Text: err.Error()}
		}
		rec.remoteID = res.BreakpointID
		rec.state = bpStateEnabled
		return nil
	}

	if !enabled && rec.state == bpStateEnabled {
		if _, err := s.send("Debugger.removeBreakpoint", dpRemoveBreakpointParams{BreakpointID: rec.remoteID}); err != nil {
			return err
		}
		rec.remoteID = ""
		rec.state = bpStateDisabled
		return nil
	}

	return nil // already in the requested state
}

// BreakpointView is one entry of ListBreakpoints's result.
type BreakpointView struct {
	Handle     string
	URL        string
	Line       int
	Column     int
	Condition  string
	HitCount   int
	Enabled    bool
	IsLogpoint bool

	// Set only when SetBreakpoint's §4.5 procedure resolved this
	// breakpoint's location through a reverse source-map translation.
	OriginalURL   string `json:",omitempty"`
	OriginalLine  int    `json:",omitempty"`
	GeneratedURL  string `json:",omitempty"`
	GeneratedLine int    `json:",omitempty"`
}

// ListBreakpoints returns every breakpoint and logpoint in insertion
// order (spec §4.5/§4.7's break-ls/logpoint-ls).
func (s *Session) ListBreakpoints() []BreakpointView {
	var out []BreakpointView
	for _, h := range s.refs.list(refBreakpoint) {
		if rec, ok := s.bps.get(h); ok {
			out = append(out, breakpointViewOf(rec))
		}
	}
	for _, h := range s.refs.list(refLogpoint) {
		if rec, ok := s.bps.get(h); ok {
			out = append(out, breakpointViewOf(rec))
		}
	}
	return out
}

func breakpointViewOf(r *breakpointRecord) BreakpointView {
	return BreakpointView{
		Handle: r.handle, URL: r.url, Line: r.line, Column: r.column,
		Condition: r.condition, HitCount: r.hitCount,
		Enabled: r.state == bpStateEnabled, IsLogpoint: r.isLogpoint,
		OriginalURL: r.originalUrl, OriginalLine: r.originalLine,
		GeneratedURL: r.generatedUrl, GeneratedLine: r.generatedLine,
	}
}

type dpSetPauseOnExceptionsParams struct {
	State string `json:"state"`
}

// SetExceptionPauseMode sets the catch mode (spec §4.8): "all",
// "uncaught", "caught", or "none".
func (s *Session) SetExceptionPauseMode(mode string) error {
	state, ok := exceptionPauseState(mode)
	if !ok {
		return ErrInvalidArgument{Field: "mode", Reason: "must be one of all, uncaught, caught, none"}
	}
	if _, err := s.send("Debugger.setPauseOnExceptions", dpSetPauseOnExceptionsParams{State: state}); err != nil {
		return err
	}
	s.exceptionPauseMode = state
	return nil
}

func (s *Session) GetExceptionPauseMode() string { return s.exceptionPauseMode }

type dpSetBlackboxPatternsParams struct {
	Patterns []string `json:"patterns"`
}

// Blackbox adds pattern to the set of URL substrings the stepper treats
// as library code to skip over transparently (spec §4.9).
func (s *Session) Blackbox(pattern string) error {
	for _, p := range s.blackbox {
		if p == pattern {
			return nil
		}
	}
	s.blackbox = append(s.blackbox, pattern)
	return s.syncBlackboxPatterns()
}

// BlackboxRemove removes a previously added blackbox pattern.
func (s *Session) BlackboxRemove(pattern string) error {
	for i, p := range s.blackbox {
		if p == pattern {
			s.blackbox = append(s.blackbox[:i], s.blackbox[i+1:]...)
			return s.syncBlackboxPatterns()
		}
	}
	return ErrInvalidArgument{Field: "pattern", Reason: "not currently blackboxed"}
}

func (s *Session) BlackboxList() []string {
	return append([]string(nil), s.blackbox...)
}

func (s *Session) syncBlackboxPatterns() error {
	_, err := s.send("Debugger.setBlackboxPatterns", dpSetBlackboxPatternsParams{Patterns: s.blackbox})
	return err
}

// DisableSourceMaps turns off source-map translation for the rest of the
// session's lifetime (spec §4.3's disable flag).
func (s *Session) DisableSourceMaps() { s.maps.disable() }

// GetPref and SetPref expose the compact/depth/maxEmissions pass-through
// preferences of spec §4.9.
func (s *Session) GetPref(name string) (string, error) { return s.prefs.get(name) }
func (s *Session) SetPref(name, value string) error    { return s.prefs.set(name, value) }
