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

import "time"

// brkPauseRecoveryAttempts/Interval bound the recovery loop below. Chosen
// to fit comfortably inside inspectorDetectTimeout's budget so a launch
// with --brk never appears to hang past the time a caller would already
// be waiting on the banner scan.
const (
	brkPauseRecoveryAttempts = 5
	brkPauseRecoveryInterval = 200 * time.Millisecond
)

type dpGetPossibleBreakpointsParams struct {
	Start dpLocation `json:"start"`
}

// awaitBrkPause is the recovery procedure for a launch with BreakOnStart
// set: some runtimes spawn with --inspect-brk and hold the process at
// the first line, but the Debugger.paused event announcing it can race
// Debugger.enable's acknowledgement and arrive before installEventHandlers
// has registered onPaused for this connection. Rather than trust the
// event alone, this polls until either onPaused has already flipped
// s.state to paused, or a liveness probe against the Debugger domain
// fails outright (meaning the child exited or the transport died, which
// should surface as an error rather than a silent timeout).
//
// There is no teacher routine this adapts — DBGp's synchronous
// request/response handshake has no equivalent race, since the engine
// never proceeds past its own init packet until the IDE replies. This is
// grounded directly in the spec's description of the quirk rather than
// in teacher code; see DESIGN.md.
func (s *Session) awaitBrkPause() error {
	for attempt := 0; attempt < brkPauseRecoveryAttempts; attempt++ {
		if s.state == statePaused {
			return nil
		}
		if _, err := s.send("Debugger.getPossibleBreakpoints", dpGetPossibleBreakpointsParams{
			Start: dpLocation{},
		}); err != nil {
			return err
		}
		time.Sleep(brkPauseRecoveryInterval)
	}
	if s.state == statePaused {
		return nil
	}
	return ErrInspectorDetectionFailed{}
}
