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

func TestFormatConsoleArgsPrefersDescription(t *testing.T) {
	args := []dpRemoteValue{
		{Type: "string", Description: "hello"},
		{Type: "number", Value: float64(42)},
		{Type: "undefined"},
	}
	assert.Equal(t, "hello 42 undefined", formatConsoleArgs(args))
}

func TestFormatConsoleArgsEmpty(t *testing.T) {
	assert.Equal(t, "", formatConsoleArgs(nil))
}

func TestAppendRingDropsOldestPastCap(t *testing.T) {
	var buf []int
	for i := 0; i < 5; i++ {
		buf = appendRing(buf, i, 3)
	}
	assert.Equal(t, []int{2, 3, 4}, buf)
}

func TestAppendRingUnderCapKeepsEverything(t *testing.T) {
	var buf []string
	buf = appendRing(buf, "a", 10)
	buf = appendRing(buf, "b", 10)
	assert.Equal(t, []string{"a", "b"}, buf)
}
