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

import "context"

// resumeAndWait is the shared shape behind Continue/StepInto/StepOver/
// StepOut/RunTo: arm the waiter before sending the DP request (the
// ordering pausewaiter.go calls out), send it, then block for the
// matching Debugger.paused the way the teacher's continueExecution
// blocks on es.BreakStopNotify after exec-continue. method/params is the
// DP resume request to issue; it never repeats the arm/wait dance
// itself.
func (s *Session) resumeAndWait(method string, params interface{}) (pauseInfo, error) {
	if s.state != statePaused && s.state != stateRunning {
		return pauseInfo{}, ErrBadState{Expected: "running or paused", Actual: string(s.state)}
	}

	s.pauseWaiter.arm()
	s.state = stateRunning

	if _, err := s.send(method, params); err != nil {
		return pauseInfo{}, err
	}

	return s.pauseWaiter.wait(s.disconnected)
}

// Continue resumes a paused session (spec §4.4).
func (s *Session) Continue() (pauseInfo, error) {
	if s.state != statePaused {
		return pauseInfo{}, ErrBadState{Expected: string(statePaused), Actual: string(s.state)}
	}
	return s.resumeAndWait("Debugger.resume", struct{}{})
}

// StepInto steps into the next statement, entering any function call
// made on it.
func (s *Session) StepInto() (pauseInfo, error) {
	if s.state != statePaused {
		return pauseInfo{}, ErrBadState{Expected: string(statePaused), Actual: string(s.state)}
	}
	return s.resumeAndWait("Debugger.stepInto", struct{}{})
}

// StepOver steps over the next statement without entering calls it makes.
func (s *Session) StepOver() (pauseInfo, error) {
	if s.state != statePaused {
		return pauseInfo{}, ErrBadState{Expected: string(statePaused), Actual: string(s.state)}
	}
	return s.resumeAndWait("Debugger.stepOver", struct{}{})
}

// StepOut resumes until the current function returns to its caller.
func (s *Session) StepOut() (pauseInfo, error) {
	if s.state != statePaused {
		return pauseInfo{}, ErrBadState{Expected: string(statePaused), Actual: string(s.state)}
	}
	return s.resumeAndWait("Debugger.stepOut", struct{}{})
}

type dpRunToLocationParams struct {
	Location dpLocation `json:"location"`
}

// RunTo resumes execution until line/column in file is reached, via
// a one-shot breakpoint the runtime removes itself once hit
// (Debugger.continueToLocation). file is resolved to a script through
// resolveScriptByPath, so a scriptID, a script url or an original source
// path all work.
func (s *Session) RunTo(file string, line, column int) (pauseInfo, error) {
	if s.state != statePaused {
		return pauseInfo{}, ErrBadState{Expected: string(statePaused), Actual: string(s.state)}
	}
	scriptID, err := s.resolveScriptByPath(file)
	if err != nil {
		return pauseInfo{}, err
	}
	return s.resumeAndWait("Debugger.continueToLocation", dpRunToLocationParams{
		Location: dpLocation{ScriptID: scriptID, LineNumber: line - 1, ColumnNumber: column},
	})
}

// Pause interrupts a running session at the next statement boundary.
func (s *Session) Pause() error {
	if s.state != stateRunning {
		return ErrBadState{Expected: string(stateRunning), Actual: string(s.state)}
	}
	s.pauseWaiter.arm()
	if _, err := s.send("Debugger.pause", struct{}{}); err != nil {
		return err
	}
	_, err := s.pauseWaiter.wait(s.disconnected)
	return err
}

type dpRestartFrameParams struct {
	CallFrameID string `json:"callFrameId"`
}

// RestartFrame reruns the frame identified by handle from its start,
// per spec §4.4's restart-frame command. The runtime re-emits a paused
// event for the restarted frame, so this follows the same
// arm-then-wait shape as resumeAndWait.
func (s *Session) RestartFrame(handle string) (pauseInfo, error) {
	frame, err := s.selectFrame(handle)
	if err != nil {
		return pauseInfo{}, err
	}

	s.pauseWaiter.arm()
	s.state = stateRunning
	if _, err := s.send("Debugger.restartFrame", dpRestartFrameParams{CallFrameID: frame.remoteID}); err != nil {
		return pauseInfo{}, err
	}
	return s.pauseWaiter.wait(s.disconnected)
}

// Restart tears down the current target and relaunches it with the same
// options Launch was called with last, for sessions that were launched
// rather than attached. There is no analogue in the teacher, which never
// relaunched php-src mid-recording; this mirrors what a browser devtools
// "restart frame at top" action does for an entire process instead of a
// single frame.
func (s *Session) Restart() (string, error) {
	if s.child == nil {
		return "", ErrInvalidArgument{Field: "session", Reason: "restart is only supported for launched sessions, not attached ones"}
	}
	opts := s.lastLaunch
	if err := s.Stop(); err != nil {
		return "", err
	}
	s.resetForRestart()
	return s.Launch(context.Background(), opts)
}

// resetForRestart clears everything Stop doesn't already reset so the
// next Launch starts from a genuinely idle session.
func (s *Session) resetForRestart() {
	s.scripts = make(map[string]*script)
	s.scriptsBy = nil
	s.console = nil
	s.exceptions = nil
	s.blackbox = nil
	s.disconnected = make(chan struct{})
}
