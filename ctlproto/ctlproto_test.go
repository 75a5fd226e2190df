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

package ctlproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	type args struct {
		File string `json:"file"`
		Line int    `json:"line"`
	}

	raw, err := Encode(args{File: "app.js", Line: 10})
	require.NoError(t, err)

	var got args
	require.NoError(t, Decode(raw, &got))
	assert.Equal(t, args{File: "app.js", Line: 10}, got)
}

func TestEncodeNilProducesNoArgs(t *testing.T) {
	raw, err := Encode(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDecodeEmptyRawIsANoop(t *testing.T) {
	var got struct{ X int }
	assert.NoError(t, Decode(nil, &got))
	assert.Zero(t, got.X)
}

func TestOKBuildsSuccessResponse(t *testing.T) {
	resp := OK(map[string]string{"ref": "BP#1"})
	assert.True(t, resp.Ok)
	assert.Empty(t, resp.Error)

	var data map[string]string
	require.NoError(t, Decode(resp.Data, &data))
	assert.Equal(t, "BP#1", data["ref"])
}

func TestFailBuildsFailureResponseWithSuggestion(t *testing.T) {
	resp := Fail("unknown ref", "it may have been cleared on resume")
	assert.False(t, resp.Ok)
	assert.Equal(t, "unknown ref", resp.Error)
	assert.Equal(t, "it may have been cleared on resume", resp.Suggestion)
}
