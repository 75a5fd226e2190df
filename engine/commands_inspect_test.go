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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeIncludedAlwaysIncludesLexicalScopes(t *testing.T) {
	for _, kind := range []string{"local", "module", "block", "script", "catch", "eval", "with"} {
		assert.True(t, scopeIncluded(kind, false), kind)
		assert.True(t, scopeIncluded(kind, true), kind)
	}
}

func TestScopeIncludedClosureGatedByAllScopes(t *testing.T) {
	assert.False(t, scopeIncluded("closure", false))
	assert.True(t, scopeIncluded("closure", true))
}

func TestScopeIncludedGlobalAndWasmNeverIncluded(t *testing.T) {
	assert.False(t, scopeIncluded("global", true))
	assert.False(t, scopeIncluded("wasm-expression-stack", true))
}

func newIdleSession() *Session {
	return &Session{
		state:  stateIdle,
		scripts: make(map[string]*script),
		refs:   newRefTable(),
		bps:    newBreakpointStore(),
		maps:   newSourceMapResolver(),
	}
}

func TestBuildStateNotPausedReturnsStatusOnly(t *testing.T) {
	s := newIdleSession()
	view, err := s.BuildState(StateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "idle", view.Status)
	assert.Nil(t, view.Location)
	assert.Nil(t, view.Stack)
	assert.Nil(t, view.Locals)
}

func pausedSessionWithOneFrame() *Session {
	s := newIdleSession()
	s.state = statePaused
	s.pause = &pauseInfo{reason: "breakpoint"}
	frameID := s.refs.addFrame("cf-1", 0)
	s.frames = []callFrame{{
		frameID:      frameID,
		remoteID:     "cf-1",
		functionName: "main",
		scriptID:     "script1",
		line:         10,
		column:       2,
	}}
	s.scripts["script1"] = &script{id: "script1", url: "file:///app/a.js"}
	return s
}

func TestBuildStatePausedPopulatesLocationAndResetsFrameHandle(t *testing.T) {
	s := pausedSessionWithOneFrame()
	oldHandle := s.frames[0].frameID

	view, err := s.BuildState(StateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "paused", view.Status)
	assert.Equal(t, "breakpoint", view.Reason)
	require.NotNil(t, view.Location)
	assert.Equal(t, "file:///app/a.js", view.Location.URL)
	assert.Equal(t, 10, view.Location.Line)
	require.Len(t, view.Stack, 1)
	// BuildState clears and re-mints frame handles before building the
	// stack section; with a single frame the counter reset lands back on
	// the same handle string, but it now resolves to a freshly inserted
	// refTable entry rather than the stale pre-call one.
	assert.Equal(t, oldHandle, view.Stack[0].Handle)
	_, ok := s.refs.resolve(view.Stack[0].Handle)
	assert.True(t, ok)
}

func TestBuildStateUnknownFrameHandleErrors(t *testing.T) {
	s := pausedSessionWithOneFrame()
	_, err := s.BuildState(StateOptions{Frame: "@f99"})
	assert.ErrorAs(t, err, &ErrUnknownRef{})
}

func TestBuildStateSuppressesSectionsWhenOptedOut(t *testing.T) {
	s := pausedSessionWithOneFrame()
	no := false
	view, err := s.BuildState(StateOptions{Stack: &no, Vars: &no, Code: &no, Breakpoints: &no})
	require.NoError(t, err)
	assert.Nil(t, view.Stack)
	assert.Nil(t, view.Locals)
	assert.Nil(t, view.Source)
	assert.Nil(t, view.BreakpointCount)
}

func TestSelectFrameDefaultsToTopOfStackWithoutTouchingRefTable(t *testing.T) {
	s := pausedSessionWithOneFrame()
	// Remove the frame's own handle from the table to prove the
	// empty-handle path never resolves through it.
	s.refs.remove(s.frames[0].frameID)

	frame, err := s.selectFrame("")
	require.NoError(t, err)
	assert.Equal(t, "cf-1", frame.remoteID)
}

func TestSelectFrameNotPausedErrors(t *testing.T) {
	s := newIdleSession()
	_, err := s.selectFrame("")
	assert.ErrorAs(t, err, &ErrBadState{})
}

func TestRewriteForHandlesPrimitiveBecomesLiteral(t *testing.T) {
	s := newIdleSession()
	handle := s.refs.addVar("", false, "x", float64(41))

	rewritten, args, _, useCallFunctionOn, err := s.rewriteForHandles(handle + " + 1")
	require.NoError(t, err)
	assert.False(t, useCallFunctionOn)
	assert.Nil(t, args)
	assert.Equal(t, "41 + 1", rewritten)
}

func TestRewriteForHandlesObjectBindsViaCallFunctionOn(t *testing.T) {
	s := newIdleSession()
	handle := s.refs.addVar("remote-obj-1", true, "obj", nil)

	rewritten, args, target, useCallFunctionOn, err := s.rewriteForHandles(handle + ".count")
	require.NoError(t, err)
	require.True(t, useCallFunctionOn)
	require.Len(t, args, 1)
	assert.Equal(t, "remote-obj-1", args[0].ObjectID)
	assert.Equal(t, "remote-obj-1", target)
	assert.Equal(t, "__jsdbg_h0.count", rewritten)
}

func TestRewriteForHandlesUnknownHandleErrors(t *testing.T) {
	s := newIdleSession()
	_, _, _, _, err := s.rewriteForHandles("@v404")
	assert.ErrorAs(t, err, &ErrUnknownRef{})
}

func TestRewriteForHandlesDedupesRepeatedToken(t *testing.T) {
	s := newIdleSession()
	handle := s.refs.addVar("remote-obj-1", true, "obj", nil)

	_, args, _, useCallFunctionOn, err := s.rewriteForHandles(handle + " === " + handle)
	require.NoError(t, err)
	require.True(t, useCallFunctionOn)
	assert.Len(t, args, 1)
}

func TestResolveScriptByPathExactScriptID(t *testing.T) {
	s := newIdleSession()
	s.scripts["script1"] = &script{id: "script1", url: "file:///app/a.js"}
	s.scriptsBy = []string{"script1"}

	id, err := s.resolveScriptByPath("script1")
	require.NoError(t, err)
	assert.Equal(t, "script1", id)
}

func TestResolveScriptByPathSuffixMatchTolerantOfFileScheme(t *testing.T) {
	s := newIdleSession()
	s.scripts["script1"] = &script{id: "script1", url: "file:///app/dist/a.js"}
	s.scriptsBy = []string{"script1"}

	id, err := s.resolveScriptByPath("/app/dist/a.js")
	require.NoError(t, err)
	assert.Equal(t, "script1", id)
}

func TestResolveScriptByPathMissUnknownScript(t *testing.T) {
	s := newIdleSession()
	_, err := s.resolveScriptByPath("nope.js")
	assert.ErrorAs(t, err, &ErrScriptNotFound{})
}

func TestGetPropsRejectsNonObjectHandle(t *testing.T) {
	s := newIdleSession()
	handle := s.refs.addVar("", false, "x", float64(1))
	_, err := s.GetProps(handle)
	assert.ErrorAs(t, err, &ErrBadRefKind{})
}
