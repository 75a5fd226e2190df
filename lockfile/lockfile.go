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

// Package lockfile enforces the one-daemon-per-session-directory
// invariant a dontbug record session got for free from owning its own
// terminal: here a session directory can be addressed by any number of
// concurrent CLI invocations, so something has to stop two of them from
// racing to spawn competing daemons over the same target.
package lockfile

import (
	"fmt"
	"os"
	"strconv"
	"syscall"
)

// Lock is a held advisory lock on a session's lock file. The file stays
// open for the daemon process's entire lifetime; the lock is released
// implicitly when the process exits even on a crash, which is the whole
// point of using flock rather than a lock file whose mere existence is
// the signal.
type Lock struct {
	file *os.File
	path string
}

// ErrHeld means another process already holds the lock.
type ErrHeld struct {
	Path string
	PID  int // best-effort; 0 if the holder didn't record one
}

func (e ErrHeld) Error() string {
	if e.PID != 0 {
		return fmt.Sprintf("%s is locked by pid %d", e.Path, e.PID)
	}
	return fmt.Sprintf("%s is locked by another process", e.Path)
}

// Acquire opens (creating if needed) the lock file at path and takes a
// non-blocking exclusive flock on it. On success, the file is truncated
// and overwritten with the caller's own pid so a competing
// acquirer that loses the race can report who holds it.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		holder := readHolderPID(f)
		f.Close()
		return nil, ErrHeld{Path: path, PID: holder}
	}

	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0); err != nil {
		f.Close()
		return nil, err
	}

	return &Lock{file: f, path: path}, nil
}

func readHolderPID(f *os.File) int {
	buf := make([]byte, 32)
	n, _ := f.ReadAt(buf, 0)
	pid, err := strconv.Atoi(string(buf[:n]))
	if err != nil {
		return 0
	}
	return pid
}

// Release drops the flock and closes the file. The lock file itself is
// left on disk; Acquire is idempotent against a stale-but-unlocked file.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	return l.file.Close()
}

func (l *Lock) Path() string { return l.path }
