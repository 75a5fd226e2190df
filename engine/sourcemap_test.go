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

// mapDataURI is `{"version":3,"sources":["a.js"],"mappings":"AAAA"}`
// base64-encoded, a single segment mapping generated (0,0) to original
// (0,0) in source index 0.
const mapDataURI = "data:application/json;base64,eyJ2ZXJzaW9uIjozLCJzb3VyY2VzIjpbImEuanMiXSwibWFwcGluZ3MiOiJBQUFBIn0="

func TestSourceMapResolverLoadAndTranslateForward(t *testing.T) {
	r := newSourceMapResolver()
	r.load("script1", "/app/dist/a.js", mapDataURI)

	require.True(t, r.hasMap("script1"))

	loc, ok := r.toOriginal("script1", 1, 0)
	require.True(t, ok)
	assert.Equal(t, 1, loc.line)
	assert.Equal(t, 0, loc.column)
	assert.Equal(t, "/app/dist/a.js", loc.source)
}

func TestSourceMapResolverDisableShortCircuitsLookups(t *testing.T) {
	r := newSourceMapResolver()
	r.load("script1", "/app/dist/a.js", mapDataURI)
	r.disable()

	assert.False(t, r.hasMap("script1"))
	_, ok := r.toOriginal("script1", 1, 0)
	assert.False(t, ok)
}

func TestSourceMapResolverUnknownScriptMisses(t *testing.T) {
	r := newSourceMapResolver()
	_, ok := r.toOriginal("nope", 1, 0)
	assert.False(t, ok)
	assert.False(t, r.hasMap("nope"))
}

func TestSourceMapResolverResolveOriginalLocationFallsBackToFirstSource(t *testing.T) {
	r := newSourceMapResolver()
	r.load("script1", "/app/dist/a.js", mapDataURI)

	// Line 5 has no exact mapping in this single-segment map, so the
	// Option A fallback should synthesize sources[0] at the generated line.
	loc, ok := r.resolveOriginalLocation("script1", 5, 3)
	require.True(t, ok)
	assert.Equal(t, "/app/dist/a.js", loc.source)
	assert.Equal(t, 5, loc.line)
}

func TestSourceMapResolverLoadIgnoresBadDataSilently(t *testing.T) {
	r := newSourceMapResolver()
	r.load("script1", "/app/dist/a.js", "data:application/json;base64,not-valid-base64!!")
	assert.False(t, r.hasMap("script1"))
}

func TestDecodeDataURIPercentEncoded(t *testing.T) {
	b, ok := decodeDataURI("data:application/json,%7B%22a%22%3A1%7D")
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(b))
}

func TestDecodeDataURIRejectsMissingComma(t *testing.T) {
	_, ok := decodeDataURI("data:application/json")
	assert.False(t, ok)
}
