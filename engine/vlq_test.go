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

func TestDecodeVLQSegmentSingleValue(t *testing.T) {
	// "A" decodes to 0.
	vals, ok := decodeVLQSegment("A")
	require.True(t, ok)
	assert.Equal(t, []int{0}, vals)
}

func TestVLQEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]int{
		{0},
		{1, 0, 0, 0},
		{-5, 3, -2, 7, 1},
		{16},
		{-16},
	}
	for _, vals := range cases {
		encoded := encodeVLQSegment(vals)
		decoded, ok := decodeVLQSegment(encoded)
		require.True(t, ok, "encoded %q for %v should decode", encoded, vals)
		assert.Equal(t, vals, decoded)
	}
}

func TestDecodeVLQSegmentRejectsInvalidCharacter(t *testing.T) {
	_, ok := decodeVLQSegment("!!!")
	assert.False(t, ok)
}

func TestDecodeMappingsAccumulatesDeltasAcrossSegments(t *testing.T) {
	// Two segments on one generated line, each with source/origLine/
	// origCol/name fields, the second one a delta off the first.
	first := encodeVLQSegment([]int{0, 0, 0, 0, 0})
	second := encodeVLQSegment([]int{2, 0, 1, 3, 0})
	mappings := decodeMappings(first + "," + second)

	require.Len(t, mappings, 2)
	assert.Equal(t, mapping{genLine: 0, genCol: 0, source: 0, origLine: 0, origCol: 0, name: 0}, mappings[0])
	assert.Equal(t, mapping{genLine: 0, genCol: 2, source: 0, origLine: 1, origCol: 3, name: 0}, mappings[1])
}

func TestDecodeMappingsHandlesEmptyLines(t *testing.T) {
	// Three generated lines, only the first and third have segments.
	seg := encodeVLQSegment([]int{0})
	mappings := decodeMappings(seg + ";;" + seg)

	require.Len(t, mappings, 2)
	assert.Equal(t, 0, mappings[0].genLine)
	assert.Equal(t, 2, mappings[1].genLine)
}
