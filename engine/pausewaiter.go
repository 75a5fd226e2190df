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

// pauseWaitTimeout bounds how long continue/step/run-to block for the
// matching paused event before giving up, per spec §4.4.
const pauseWaitTimeout = 30 * time.Second

// pauseWaiter is the direct generalization of the teacher's
// es.BreakStopNotify channel (engine.go's continueExecution, which blocks
// on `breakId := <-es.BreakStopNotify` after issuing exec-continue): a
// one-shot channel the resume/step commands block on, filled by the
// Debugger.paused event handler in events.go once the single in-flight
// resume is satisfied.
//
// Only one waiter is ever armed at a time, mirroring the teacher's single
// BreakStopNotify channel, since the daemon's single-mutex scheduler
// (spec §6) guarantees at most one resume-family command is in flight.
type pauseWaiter struct {
	ch chan pauseInfo
}

func newPauseWaiter() *pauseWaiter {
	return &pauseWaiter{ch: make(chan pauseInfo, 1)}
}

// arm must be called before the resume request that can produce the
// paused event is sent, not after — a race the teacher's code sidesteps
// by construction (BreakStopNotify is written to only by the fixed
// notification-dispatch goroutine set up once at startup) but which this
// engine must call out explicitly because on() handlers are registered
// per-session rather than globally. See Session.resumeAndWait for the
// call order this enforces.
func (w *pauseWaiter) arm() {
	// Drain any stale value so a previous timed-out wait can't be
	// mistaken for this one's result.
	select {
	case <-w.ch:
	default:
	}
}

// notify is called from the Debugger.paused handler. Non-blocking: if
// nothing is waiting (shouldn't happen given the single-flight
// invariant, but defensive against a stray duplicate event), the value is
// dropped rather than deadlocking the read pump.
func (w *pauseWaiter) notify(info pauseInfo) {
	select {
	case w.ch <- info:
	default:
	}
}

// wait blocks for the next notify, ErrDisconnected once disconnected is
// closed, or ErrRequestTimedOut after pauseWaitTimeout. The 100ms tick
// only wakes the loop; it checks nothing the select does not already
// watch.
func (w *pauseWaiter) wait(disconnected <-chan struct{}) (pauseInfo, error) {
	deadline := time.NewTimer(pauseWaitTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case info := <-w.ch:
			return info, nil
		case <-disconnected:
			return pauseInfo{}, ErrDisconnected{}
		case <-deadline.C:
			return pauseInfo{}, ErrRequestTimedOut{Method: "paused", ID: 0}
		case <-ticker.C:
			// Resilience tick only; nothing to act on, the next
			// select iteration re-checks ch/disconnected/deadline.
		}
	}
}
