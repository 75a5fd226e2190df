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

import "fmt"

// refKind is one of the six handle kinds spec §3 defines.
type refKind string

const (
	refVar        refKind = "v"
	refFrame      refKind = "f"
	refObject     refKind = "o"
	refBreakpoint refKind = "BP"
	refLogpoint   refKind = "LP"
	refHeapSnap   refKind = "HS"
)

// refEntry is what a handle resolves to. metadata is kind-specific: a
// frame index for refFrame, breakpoint reconstruction fields for
// refBreakpoint/refLogpoint, and so on — stored as a plain map rather than
// a union type because each kind's metadata shape is fixed and small and
// the table itself never interprets it.
type refEntry struct {
	kind     refKind
	remoteID string
	isObject bool // true when remoteID is a real DP object id a later call-functionOn can bind
	name     string
	meta     map[string]interface{}
}

// refTable allocates and resolves opaque handles. It is the direct
// generalization of the teacher's breakpoints map (engine/breakpoints.go,
// es.breakpoints map[string]*engineBreakPoint) to all six handle kinds,
// with kind-prefixed counters in place of gdb's own breakpoint numbering.
type refTable struct {
	entries map[string]*refEntry
	order   []string // insertion order, across all kinds

	varCounter   int
	frameCounter int
	objCounter   int
	bpCounter    int
	lpCounter    int
	hsCounter    int
}

func newRefTable() *refTable {
	return &refTable{
		entries:      make(map[string]*refEntry),
		varCounter:   1,
		frameCounter: 0,
		objCounter:   1,
		bpCounter:    0,
		lpCounter:    0,
		hsCounter:    0,
	}
}

func (t *refTable) insert(h string, e *refEntry) string {
	t.entries[h] = e
	t.order = append(t.order, h)
	return h
}

// addVar mints a variable/value handle (spec §3/§4.6's @v kind). isObject
// marks remoteID as a real DP object id a later eval's handle
// interpolation can bind via Runtime.callFunctionOn; when false, value is
// the decoded primitive so interpolation can fall back to a JS literal.
func (t *refTable) addVar(remoteID string, isObject bool, name string, value interface{}) string {
	h := fmt.Sprintf("@v%d", t.varCounter)
	t.varCounter++
	var meta map[string]interface{}
	if !isObject {
		meta = map[string]interface{}{"value": value}
	}
	return t.insert(h, &refEntry{kind: refVar, remoteID: remoteID, isObject: isObject, name: name, meta: meta})
}

func (t *refTable) addFrame(remoteID string, index int) string {
	h := fmt.Sprintf("@f%d", t.frameCounter)
	t.frameCounter++
	return t.insert(h, &refEntry{kind: refFrame, remoteID: remoteID, meta: map[string]interface{}{"index": index}})
}

func (t *refTable) addObject(remoteID string, name string) string {
	h := fmt.Sprintf("@o%d", t.objCounter)
	t.objCounter++
	return t.insert(h, &refEntry{kind: refObject, remoteID: remoteID, isObject: true, name: name})
}

func (t *refTable) addBreakpoint(remoteID string, meta map[string]interface{}) string {
	t.bpCounter++
	h := fmt.Sprintf("BP#%d", t.bpCounter)
	return t.insert(h, &refEntry{kind: refBreakpoint, remoteID: remoteID, meta: meta})
}

func (t *refTable) addLogpoint(remoteID string, meta map[string]interface{}) string {
	t.lpCounter++
	h := fmt.Sprintf("LP#%d", t.lpCounter)
	return t.insert(h, &refEntry{kind: refLogpoint, remoteID: remoteID, meta: meta})
}

func (t *refTable) addHeapSnapshot(remoteID string, meta map[string]interface{}) string {
	t.hsCounter++
	h := fmt.Sprintf("HS#%d", t.hsCounter)
	return t.insert(h, &refEntry{kind: refHeapSnap, remoteID: remoteID, meta: meta})
}

func (t *refTable) resolve(handle string) (*refEntry, bool) {
	e, ok := t.entries[handle]
	return e, ok
}

func (t *refTable) resolveID(handle string) (string, bool) {
	e, ok := t.entries[handle]
	if !ok {
		return "", false
	}
	return e.remoteID, true
}

// resolveKind resolves a handle and checks its kind in one step, the
// pattern every mutation/breakpoint command in §4.5/§4.7 needs.
func (t *refTable) resolveKind(handle string, kind refKind) (*refEntry, error) {
	e, ok := t.entries[handle]
	if !ok {
		return nil, ErrUnknownRef{Ref: handle}
	}
	if e.kind != kind {
		return nil, ErrBadRefKind{Ref: handle, ExpectedKind: string(kind)}
	}
	return e, nil
}

// resolveValueKind resolves a handle that must carry a value: either a
// variable/eval-result handle (v) or an expanded-object handle (o). Used
// by commands that accept either, such as getProps on a variable that
// turned out to be an object.
func (t *refTable) resolveValueKind(handle string) (*refEntry, error) {
	e, ok := t.entries[handle]
	if !ok {
		return nil, ErrUnknownRef{Ref: handle}
	}
	if e.kind != refVar && e.kind != refObject {
		return nil, ErrBadRefKind{Ref: handle, ExpectedKind: "v or o"}
	}
	return e, nil
}

// list returns handles of a given kind in insertion order. Go maps don't
// preserve insertion order, so the table also keeps a single order slice
// across all kinds, filtered here by kind.
func (t *refTable) list(kind refKind) []string {
	var out []string
	for _, h := range t.order {
		if e, ok := t.entries[h]; ok && e.kind == kind {
			out = append(out, h)
		}
	}
	return out
}

func (t *refTable) remove(handle string) bool {
	if _, ok := t.entries[handle]; !ok {
		return false
	}
	delete(t.entries, handle)
	t.pruneOrder()
	return true
}

// pruneOrder drops handles from the order slice that no longer resolve.
// Called after any removal so a handle retired by clearVolatile/
// clearObjects and later re-minted (after its counter resets) appears in
// list() exactly once.
func (t *refTable) pruneOrder() {
	kept := t.order[:0]
	for _, h := range t.order {
		if _, ok := t.entries[h]; ok {
			kept = append(kept, h)
		}
	}
	t.order = kept
}

// clearVolatile removes all v and f entries and resets their counters —
// the realization of spec §4.2's volatile-clear-on-resume rule.
func (t *refTable) clearVolatile() {
	for h, e := range t.entries {
		if e.kind == refVar || e.kind == refFrame {
			delete(t.entries, h)
		}
	}
	t.pruneOrder()
	t.varCounter = 1
	t.frameCounter = 0
}

// clearObjects removes all o entries and resets their counter.
func (t *refTable) clearObjects() {
	for h, e := range t.entries {
		if e.kind == refObject {
			delete(t.entries, h)
		}
	}
	t.pruneOrder()
	t.objCounter = 1
}

// clearAll removes everything and resets every counter.
func (t *refTable) clearAll() {
	t.entries = make(map[string]*refEntry)
	t.order = nil
	t.varCounter = 1
	t.frameCounter = 0
	t.objCounter = 1
	t.bpCounter = 0
	t.lpCounter = 0
	t.hsCounter = 0
}
