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

package daemon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdbg/jsdbg/ctlproto"
	"github.com/agentdbg/jsdbg/engine"
)

func TestDispatchPing(t *testing.T) {
	sess := engine.NewSession("")
	resp := dispatch(sess, ctlproto.Request{Cmd: "ping"})
	assert.True(t, resp.Ok)

	var data map[string]string
	require.NoError(t, ctlproto.Decode(resp.Data, &data))
	assert.Equal(t, "jsdbg", data["pong"])
}

func TestDispatchUnknownCommand(t *testing.T) {
	sess := engine.NewSession("")
	resp := dispatch(sess, ctlproto.Request{Cmd: "does-not-exist"})
	assert.False(t, resp.Ok)
	assert.Contains(t, resp.Error, "does-not-exist")
	assert.NotEmpty(t, resp.Suggestion)
}

func TestDispatchLaunchRejectsEmptyCommand(t *testing.T) {
	sess := engine.NewSession("")
	args, err := ctlproto.Encode(map[string]interface{}{"command": []string{}})
	require.NoError(t, err)

	resp := dispatch(sess, ctlproto.Request{Cmd: "launch", Args: args})
	assert.False(t, resp.Ok)
	assert.Contains(t, resp.Error, "non-empty command")
}

func TestDispatchCommandsRequiringConnectionFailCleanlyWhenIdle(t *testing.T) {
	sess := engine.NewSession("")

	resp := dispatch(sess, ctlproto.Request{Cmd: "continue"})
	assert.False(t, resp.Ok)
	assert.NotEmpty(t, resp.Suggestion, "a bad-state error should suggest checking status")
}

func TestDispatchBreakRequiresFileOrURLRegex(t *testing.T) {
	sess := engine.NewSession("")
	args, err := ctlproto.Encode(map[string]interface{}{"line": 10})
	require.NoError(t, err)

	resp := dispatch(sess, ctlproto.Request{Cmd: "break", Args: args})
	assert.False(t, resp.Ok)
	assert.Contains(t, resp.Error, "file or urlRegex")
}

func TestDispatchStatusAndStateNeverErrorWhenIdle(t *testing.T) {
	sess := engine.NewSession("")

	resp := dispatch(sess, ctlproto.Request{Cmd: "status"})
	assert.True(t, resp.Ok)

	resp = dispatch(sess, ctlproto.Request{Cmd: "state"})
	assert.True(t, resp.Ok)
}

func TestDispatchBlackboxLsOnFreshSessionIsEmpty(t *testing.T) {
	sess := engine.NewSession("")

	resp := dispatch(sess, ctlproto.Request{Cmd: "blackbox-ls"})
	require.True(t, resp.Ok)
	var patterns []string
	require.NoError(t, json.Unmarshal(resp.Data, &patterns))
	assert.Empty(t, patterns)
}

func TestDispatchBlackboxFailsCleanlyWithoutATarget(t *testing.T) {
	sess := engine.NewSession("")

	args, err := ctlproto.Encode(map[string]interface{}{"patterns": []string{"node_modules"}})
	require.NoError(t, err)
	resp := dispatch(sess, ctlproto.Request{Cmd: "blackbox", Args: args})
	assert.False(t, resp.Ok, "adding a blackbox pattern talks to the runtime, which isn't connected yet")
}
