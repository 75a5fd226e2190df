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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPauseWaiterDeliversNotify(t *testing.T) {
	w := newPauseWaiter()
	w.arm()

	go func() {
		time.Sleep(10 * time.Millisecond)
		w.notify(pauseInfo{reason: "breakpoint"})
	}()

	info, err := w.wait(make(chan struct{}))
	require.NoError(t, err)
	assert.Equal(t, "breakpoint", info.reason)
}

func TestPauseWaiterReturnsDisconnectedError(t *testing.T) {
	w := newPauseWaiter()
	w.arm()

	disconnected := make(chan struct{})
	close(disconnected)

	_, err := w.wait(disconnected)
	assert.ErrorAs(t, err, &ErrDisconnected{})
}

func TestPauseWaiterArmDrainsStaleValue(t *testing.T) {
	w := newPauseWaiter()
	w.arm()
	w.notify(pauseInfo{reason: "stale"})

	// Re-arming before a new wait must discard the stale notification.
	w.arm()

	go func() {
		time.Sleep(10 * time.Millisecond)
		w.notify(pauseInfo{reason: "fresh"})
	}()

	info, err := w.wait(make(chan struct{}))
	require.NoError(t, err)
	assert.Equal(t, "fresh", info.reason)
}
