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
)

func TestSynthesizeConditionNoHitCount(t *testing.T) {
	assert.Equal(t, "i > 3", synthesizeCondition("i > 3", 0))
	assert.Equal(t, "", synthesizeCondition("", 0))
}

func TestSynthesizeConditionHitCountOnly(t *testing.T) {
	cond := synthesizeCondition("", 5)
	assert.Contains(t, cond, "% 5 === 0")
	assert.Contains(t, cond, "__jsdbg_hits")
}

func TestSynthesizeConditionCombinesUserConditionAndHitCount(t *testing.T) {
	cond := synthesizeCondition("i > 3", 5)
	assert.Contains(t, cond, "i > 3")
	assert.Contains(t, cond, "% 5 === 0")
	assert.True(t, cond[0] == '(', "combined condition should be parenthesized so && binds correctly")
}

func TestSynthesizeLogpointConditionNeverPauses(t *testing.T) {
	cond := synthesizeLogpointCondition("i is {i}")
	assert.Contains(t, cond, "console.log(`i is ${i}`)")
	assert.Contains(t, cond, ", false)", "a logpoint condition must always evaluate false")
}

func TestLogpointTemplateToExprEscapesBackticks(t *testing.T) {
	expr := logpointTemplateToExpr("value is `{x}`")
	assert.Equal(t, "`value is \\`${x}\\``", expr)
}

func TestExceptionPauseStateFoldsCaughtIntoAll(t *testing.T) {
	state, ok := exceptionPauseState("caught")
	assert.True(t, ok)
	assert.Equal(t, "all", state)

	state, ok = exceptionPauseState("uncaught")
	assert.True(t, ok)
	assert.Equal(t, "uncaught", state)

	_, ok = exceptionPauseState("bogus")
	assert.False(t, ok)
}

func TestBreakpointStorePutGetRemove(t *testing.T) {
	store := newBreakpointStore()
	rec := &breakpointRecord{handle: "BP#1", url: "app.js", line: 10, state: bpStateEnabled}
	store.put(rec)

	got, ok := store.get("BP#1")
	assert.True(t, ok)
	assert.Equal(t, rec, got)

	store.remove("BP#1")
	_, ok = store.get("BP#1")
	assert.False(t, ok)
}
