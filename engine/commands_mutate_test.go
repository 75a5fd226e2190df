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

func TestResolveBreakpointTargetExplicitRegexWinsOutright(t *testing.T) {
	s := newIdleSession()
	s.scripts["script1"] = &script{id: "script1", url: "file:///app/a.js"}

	target := s.resolveBreakpointTarget("", 5, 0, "^.*a\\.js$")
	assert.Equal(t, "^.*a\\.js$", target.dpURLRegex)
	assert.Empty(t, target.dpURL)
	assert.False(t, target.translated)
}

func TestResolveBreakpointTargetSourceMapTranslation(t *testing.T) {
	s := newIdleSession()
	s.scripts["script1"] = &script{id: "script1", url: "/app/dist/a.js"}
	s.maps.load("script1", "/app/dist/a.js", mapDataURI)

	target := s.resolveBreakpointTarget("/app/dist/a.js", 1, 0, "")
	require.True(t, target.translated)
	assert.Equal(t, "/app/dist/a.js", target.dpURL)
	assert.Equal(t, "/app/dist/a.js", target.originalUrl)
	assert.Equal(t, 1, target.originalLine)
	assert.Equal(t, "/app/dist/a.js", target.generatedUrl)
}

func TestResolveBreakpointTargetSuffixMatchAgainstLoadedScript(t *testing.T) {
	s := newIdleSession()
	s.scripts["script1"] = &script{id: "script1", url: "file:///app/dist/a.js"}
	s.scriptsBy = []string{"script1"}

	target := s.resolveBreakpointTarget("/app/dist/a.js", 7, 0, "")
	assert.False(t, target.translated)
	assert.Equal(t, "file:///app/dist/a.js", target.dpURL)
	assert.Empty(t, target.dpURLRegex)
	assert.Equal(t, 7, target.line)
}

func TestResolveBreakpointTargetFallsBackToSynthesizedRegex(t *testing.T) {
	s := newIdleSession()

	target := s.resolveBreakpointTarget("/nowhere/seen/before.js", 3, 0, "")
	assert.Empty(t, target.dpURL)
	assert.Equal(t, "^.*/nowhere/seen/before\\.js$", target.dpURLRegex)
}

func TestActiveCountOnlyCountsEnabled(t *testing.T) {
	store := newBreakpointStore()
	store.put(&breakpointRecord{handle: "BP#1", state: bpStateEnabled})
	store.put(&breakpointRecord{handle: "BP#2", state: bpStateDisabled})
	store.put(&breakpointRecord{handle: "LP#1", state: bpStateEnabled})

	assert.Equal(t, 2, store.activeCount())
}
