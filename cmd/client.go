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
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/agentdbg/jsdbg/ctlproto"
)

// mustAtoi parses a positional integer argument, fatal on a bad one —
// cobra's own Args validators only check arg count, not shape, so every
// command taking a numeric positional argument parses it the same way.
func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("jsdbg: expected an integer, got %q", s)
	}
	return n
}

// printJSON pretty-prints v to stdout, the default rendering for every
// leaf command that doesn't need a bespoke human-readable format.
func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("jsdbg: failed to format response: %v", err)
	}
	fmt.Println(string(b))
}

const daemonDialTimeout = 5 * time.Second

// dial connects to the session's daemon, spawning a detached one first if
// none is listening yet. This is the generalization of the teacher's
// recordCmd directly calling into the engine package in-process: here the
// CLI invocation is always a short-lived client of a long-lived daemon it
// may itself have to bring up.
func dial() (net.Conn, error) {
	dir, err := sessionDir()
	if err != nil {
		return nil, err
	}
	sockPath := dir + "/ctl.sock"

	if conn, err := net.Dial("unix", sockPath); err == nil {
		return conn, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if err := spawnDaemon(dir); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(daemonDialTimeout)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("unix", sockPath); err == nil {
			return conn, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil, fmt.Errorf("jsdbg: daemon did not start listening on %v within %v", sockPath, daemonDialTimeout)
}

// spawnDaemon launches `jsdbg __daemon` as a detached background process
// rooted at the same session directory. The lock-file singleton protocol
// (lockfile package) means a losing race here is harmless: the loser's
// daemon exits immediately on failing to acquire daemon.lock, and dial's
// retry loop picks up the winner's socket.
func spawnDaemon(dir string) error {
	self, err := os.Executable()
	if err != nil {
		return err
	}
	c := exec.Command(self, "__daemon", "--session-dir", dir)
	c.Stdout = nil
	c.Stderr = nil
	c.Stdin = nil
	if err := c.Start(); err != nil {
		return err
	}
	return c.Process.Release()
}

// request sends one ctlproto command to the daemon and returns its
// response, unmarshalling Data into out when out is non-nil.
func request(cmdName string, args interface{}, out interface{}) (*ctlproto.Response, error) {
	conn, err := dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	encodedArgs, err := ctlproto.Encode(args)
	if err != nil {
		return nil, err
	}
	req := ctlproto.Request{Cmd: cmdName, Args: encodedArgs}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	line = append(line, '\n')
	if _, err := conn.Write(line); err != nil {
		return nil, err
	}

	reader := bufio.NewReader(conn)
	respLine, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	var resp ctlproto.Response
	if err := json.Unmarshal(respLine, &resp); err != nil {
		return nil, err
	}
	if !resp.Ok {
		return &resp, errors.New(resp.Error)
	}
	if resp.Warning != "" {
		color.Yellow("jsdbg: %v", resp.Warning)
	}
	if out != nil {
		if err := ctlproto.Decode(resp.Data, out); err != nil {
			return &resp, err
		}
	}
	return &resp, nil
}

// mustRequest is request, but fatal on error — the shape most leaf
// commands want, mirroring the teacher's own log.Fatal-on-error texture
// in recordCmd/replayCmd's Run functions.
func mustRequest(cmdName string, args interface{}, out interface{}) *ctlproto.Response {
	resp, err := request(cmdName, args, out)
	if err != nil {
		if resp != nil && resp.Suggestion != "" {
			log.Fatalf("jsdbg: %v (%v)", err, resp.Suggestion)
		}
		log.Fatalf("jsdbg: %v", err)
	}
	return resp
}
