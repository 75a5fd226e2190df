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

package cmd

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdbg/jsdbg/ctlproto"
)

// listenOnSessionSocket stands in for a running daemon: it binds the
// exact socket path dial() would look for, so request() exercises its
// real happy path (connect succeeds on the first try, no spawn needed).
func listenOnSessionSocket(t *testing.T) net.Listener {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	viper.Set("session", "client-test-session")
	t.Cleanup(func() { viper.Set("session", "default") })

	dir, err := sessionDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0755))

	ln, err := net.Listen("unix", dir+"/ctl.sock")
	require.NoError(t, err)
	return ln
}

func TestRequestRoundTripsThroughTheControlSocket(t *testing.T) {
	ln := listenOnSessionSocket(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		var req ctlproto.Request
		_ = json.Unmarshal(line, &req)

		data, _ := ctlproto.Encode(map[string]string{"pong": "jsdbg"})
		resp := ctlproto.Response{Ok: true, Data: data}
		out, _ := json.Marshal(resp)
		out = append(out, '\n')
		conn.Write(out)
	}()

	var result map[string]string
	resp, err := request("ping", nil, &result)
	require.NoError(t, err)
	assert.True(t, resp.Ok)
	assert.Equal(t, "jsdbg", result["pong"])
}

func TestRequestSurfacesDaemonFailure(t *testing.T) {
	ln := listenOnSessionSocket(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		_, _ = reader.ReadBytes('\n')

		resp := ctlproto.Response{Ok: false, Error: "no target attached", Suggestion: "launch or attach first"}
		out, _ := json.Marshal(resp)
		out = append(out, '\n')
		conn.Write(out)
	}()

	resp, err := request("status", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "no target attached", resp.Error)
	assert.Equal(t, "launch or attach first", resp.Suggestion)
}
