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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"time"

	"github.com/Masterminds/semver"
)

// inspectorListeningRE matches the runtime's stderr banner line,
// "Debugger listening on ws://127.0.0.1:9229/<uuid>", the generalization
// of the teacher's fixed-handshake DBGp-over-TCP connect (record.go's
// startBasicDebuggerClient, which just net.Listens on :9000 and waits for
// the runtime to dial in) to a runtime that prints its own endpoint
// rather than connecting out.
var inspectorListeningRE = regexp.MustCompile(`Debugger listening on (ws://\S+)`)

// inspectorDetectTimeout bounds how long Launch waits for the banner line
// before giving up.
const inspectorDetectTimeout = 10 * time.Second

// minSupportedConstraint is the floor this engine has been exercised
// against. A version outside it is not refused, only warned about — see
// checkRuntimeVersionString. Modeled on the teacher's checkPhpExecutable/
// CheckRRExecutable (base.go), which use the same NewVersion/
// NewConstraint/Check sequence to gate on a minimum tool version, except
// those call log.Fatal on mismatch where this one downgrades to a
// returned warning since an older runtime is still usable here.
const minSupportedConstraint = ">= 12.0.0"

// LaunchOptions configures Launch. Command/Args form the target argv
// (Command is argv[0], the runtime executable; Args is everything after
// it, typically the script path and its own arguments). Launch inserts
// the inspect flag as the new second argv element, ahead of whatever
// Args already holds.
type LaunchOptions struct {
	Command      string
	Args         []string
	Cwd          string
	Env          []string
	BreakOnStart bool
	Port         int // 0 means let the runtime pick an ephemeral port
}

// Launch spawns the target runtime with its inspector enabled, waits for
// the listening banner on stderr, and connects the DP transport. Mirrors
// the teacher's doRecordSession/doReplaySession shape (spawn, scan
// output for a readiness signal, wire stdout through) generalized from
// rr's pty-captured stdout banner to the runtime's stderr banner line,
// and from a blocking foreground wait to a supervised background child.
func (s *Session) Launch(ctx context.Context, opts LaunchOptions) (warning string, err error) {
	if s.state != stateIdle {
		return "", ErrBadState{Expected: string(stateIdle), Actual: string(s.state)}
	}
	s.lastLaunch = opts

	inspectFlag := fmt.Sprintf("--inspect=%d", opts.Port)
	if opts.BreakOnStart {
		inspectFlag = fmt.Sprintf("--inspect-brk=%d", opts.Port)
	}
	args := append([]string{inspectFlag}, opts.Args...)
	cmd := exec.CommandContext(ctx, opts.Command, args...)
	cmd.Dir = opts.Cwd
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", ErrTransportFailed{Message: err.Error()}
	}
	cmd.Stdout = os.Stdout

	if err := cmd.Start(); err != nil {
		return "", ErrTransportFailed{Message: err.Error()}
	}

	wsURL, bannerErr := scanForListeningBanner(stderr, inspectorDetectTimeout)
	if bannerErr != nil {
		_ = cmd.Process.Kill()
		return "", bannerErr
	}

	s.child = cmd
	s.pid = cmd.Process.Pid
	s.wsURL = wsURL
	s.startedAt = time.Now()
	s.childExited = make(chan struct{})

	go func() {
		cmd.Wait()
		close(s.childExited)
	}()

	if err := s.connectTransport(wsURL); err != nil {
		_ = cmd.Process.Kill()
		return "", err
	}

	warning = s.checkRuntimeVersion(stderr)

	if opts.BreakOnStart {
		if err := s.awaitBrkPause(); err != nil {
			return warning, err
		}
	} else {
		// Runtime pauses at the program's first line by default when
		// launched with --inspect-brk; resume immediately unless the
		// caller asked to stay paused there.
		_, _ = s.send("Runtime.runIfWaitingForDebugger", struct{}{})
	}

	return warning, nil
}

// AttachOptions configures Attach.
type AttachOptions struct {
	WSURL string
}

// Attach connects to an already-running inspector endpoint instead of
// spawning a child.
func (s *Session) Attach(opts AttachOptions) error {
	if s.state != stateIdle {
		return ErrBadState{Expected: string(stateIdle), Actual: string(s.state)}
	}
	s.wsURL = opts.WSURL
	s.startedAt = time.Now()
	return s.connectTransport(opts.WSURL)
}

// requiredDomains must come up for the session to be usable at all.
// optionalDomains are enabled best-effort since some runtimes lack one
// of them.
var (
	requiredDomains = []string{"Runtime.enable", "Debugger.enable"}
	optionalDomains = []string{"Profiler.enable", "HeapProfiler.enable"}
)

func (s *Session) connectTransport(wsURL string) error {
	t, err := dialTransport(wsURL, s.protocolLog)
	if err != nil {
		return err
	}
	s.transport = t
	s.installEventHandlers()

	all := append(append([]string{}, requiredDomains...), optionalDomains...)
	results := make([]error, len(all))
	done := make(chan int, len(all))
	for i, method := range all {
		go func(i int, method string) {
			_, err := s.send(method, struct{}{})
			results[i] = err
			done <- i
		}(i, method)
	}
	for range all {
		<-done
	}

	for i := range requiredDomains {
		if results[i] != nil {
			t.disconnect()
			return results[i]
		}
	}

	if len(s.blackbox) > 0 {
		_ = s.syncBlackboxPatterns()
	}

	s.state = stateRunning
	return nil
}

// send is the thin wrapper every command file uses; it exists so
// higher-level files don't reach into s.transport directly and so a nil
// transport surfaces ErrNotConnected instead of a panic.
func (s *Session) send(method string, params interface{}) ([]byte, error) {
	if s.transport == nil {
		return nil, ErrNotConnected{}
	}
	return s.transport.send(method, params)
}

// Stop disconnects the transport and, if the target was launched rather
// than attached, terminates the child process.
func (s *Session) Stop() error {
	if s.transport != nil {
		s.transport.disconnect()
		close(s.disconnected)
		s.transport = nil
	}
	if s.child != nil && s.child.Process != nil {
		_ = s.child.Process.Kill()
		s.child = nil
	}
	s.state = stateIdle
	s.pause = nil
	s.frames = nil
	s.refs.clearAll()
	s.protocolLog.close()
	return nil
}

// SessionStatus is the getStatus command's result shape.
type SessionStatus struct {
	State     string
	PID       int
	WSURL     string
	StartedAt time.Time
	Uptime    time.Duration
}

func (s *Session) GetStatus() SessionStatus {
	return SessionStatus{
		State:     string(s.state),
		PID:       s.pid,
		WSURL:     s.wsURL,
		StartedAt: s.startedAt,
		Uptime:    time.Since(s.startedAt),
	}
}

// scanForListeningBanner reads r line by line until it matches the
// inspector's listening banner or the timeout elapses. Every line is
// forwarded to os.Stderr so the child's own diagnostics are never
// swallowed, matching the teacher's io.Copy(os.Stdout, f) passthrough.
func scanForListeningBanner(r io.Reader, timeout time.Duration) (string, error) {
	type result struct {
		url string
		err error
	}
	done := make(chan result, 1)

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			fmt.Fprintln(os.Stderr, line)
			if m := inspectorListeningRE.FindStringSubmatch(line); m != nil {
				done <- result{url: m[1]}
				go io.Copy(os.Stderr, r)
				return
			}
		}
		done <- result{err: ErrInspectorDetectionFailed{}}
	}()

	select {
	case res := <-done:
		return res.url, res.err
	case <-time.After(timeout):
		return "", ErrInspectorDetectionFailed{}
	}
}

var runtimeVersionRE = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// checkRuntimeVersion is a non-fatal compatibility check: older runtimes
// stay usable, they just get a warning string surfaced to the CLI. There
// is no DBGp analogue for this in the teacher (PHP's DBGp handshake
// includes the language_version feature instead), so this is grounded
// directly on Masterminds/semver's own comparison API rather than an
// adapted teacher routine.
func (s *Session) checkRuntimeVersion(stderr io.Reader) string {
	// The child is not queried and stderr is not read: the version comes
	// from the JSDBG_RUNTIME_VERSION environment variable, and the check
	// is skipped when that is unset.
	return checkRuntimeVersionString(os.Getenv("JSDBG_RUNTIME_VERSION"))
}

func checkRuntimeVersionString(versionStr string) string {
	if versionStr == "" {
		return ""
	}
	m := runtimeVersionRE.FindStringSubmatch(versionStr)
	if m == nil {
		return ""
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return ""
	}
	constraint, err := semver.NewConstraint(minSupportedConstraint)
	if err != nil {
		return ""
	}
	if !constraint.Check(v) {
		return fmt.Sprintf("runtime version %s does not satisfy the tested range %s; some commands may behave unexpectedly", v, minSupportedConstraint)
	}
	return ""
}

