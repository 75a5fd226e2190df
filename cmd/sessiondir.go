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
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// sessionDir resolves the directory a daemon for the current session
// lives in: $XDG_STATE_HOME/jsdbg/<session-hash>, <session-hash> a short
// digest of the working directory (or the explicit --session name, when
// given, so a caller can address a session by a friendly handle instead
// of by cwd). One daemon per session directory is the whole of the
// addressing scheme (spec's "the daemon hosts exactly one session").
func sessionDir() (string, error) {
	name := viper.GetString("session")
	var key string
	if name != "" && name != "default" {
		key = name
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		key = cwd
	}

	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])[:16]

	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "jsdbg", hash), nil
}
