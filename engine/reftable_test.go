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

func TestRefTableHandlePrefixes(t *testing.T) {
	rt := newRefTable()

	assert.Equal(t, "@v1", rt.addVar("rid-1", true, "x", nil))
	assert.Equal(t, "@f0", rt.addFrame("cf-1", 0))
	assert.Equal(t, "@o1", rt.addObject("oid-1", "Object"))
	assert.Equal(t, "BP#1", rt.addBreakpoint("bp-1", nil))
	assert.Equal(t, "LP#1", rt.addLogpoint("lp-1", nil))
	assert.Equal(t, "HS#1", rt.addHeapSnapshot("hs-1", nil))
}

func TestRefTableResolveKind(t *testing.T) {
	rt := newRefTable()
	h := rt.addFrame("cf-7", 2)

	entry, err := rt.resolveKind(h, refFrame)
	require.NoError(t, err)
	assert.Equal(t, "cf-7", entry.remoteID)
	assert.Equal(t, 2, entry.meta["index"])

	_, err = rt.resolveKind(h, refObject)
	assert.ErrorAs(t, err, &ErrBadRefKind{})

	_, err = rt.resolveKind("@f99", refFrame)
	assert.ErrorAs(t, err, &ErrUnknownRef{})
}

func TestRefTableClearVolatileResetsCounters(t *testing.T) {
	rt := newRefTable()
	rt.addVar("r1", false, "a", 1)
	rt.addFrame("cf1", 0)
	bp := rt.addBreakpoint("bp1", nil)

	rt.clearVolatile()

	assert.Empty(t, rt.list(refVar))
	assert.Empty(t, rt.list(refFrame))
	assert.Equal(t, []string{bp}, rt.list(refBreakpoint), "breakpoints are persistent, not cleared on resume")

	// Counters reset, so a fresh var gets the same handle a prior one had.
	assert.Equal(t, "@v1", rt.addVar("r2", false, "b", 2))
	assert.Equal(t, "@f0", rt.addFrame("cf2", 0))
}

func TestRefTableListPreservesInsertionOrderAcrossRemoval(t *testing.T) {
	rt := newRefTable()
	first := rt.addBreakpoint("bp1", nil)
	second := rt.addBreakpoint("bp2", nil)
	third := rt.addBreakpoint("bp3", nil)

	rt.remove(second)

	assert.Equal(t, []string{first, third}, rt.list(refBreakpoint))
}

func TestRefTableClearAllResetsEveryCounter(t *testing.T) {
	rt := newRefTable()
	rt.addVar("r1", false, "a", 1)
	rt.addObject("o1", "Object")
	rt.addBreakpoint("bp1", nil)

	rt.clearAll()

	assert.Empty(t, rt.entries)
	assert.Equal(t, "@v1", rt.addVar("r2", false, "b", 2))
	assert.Equal(t, "@o1", rt.addObject("o2", "Object"))
	assert.Equal(t, "BP#1", rt.addBreakpoint("bp2", nil))
}
