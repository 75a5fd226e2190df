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
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDirNamedSessionIsDeterministic(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	viper.Set("session", "my-project")
	defer viper.Set("session", "default")

	dir, err := sessionDir()
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("my-project"))
	wantHash := hex.EncodeToString(sum[:])[:16]

	assert.Equal(t, wantHash, filepath.Base(dir))
	assert.Equal(t, "jsdbg", filepath.Base(filepath.Dir(dir)))
}

func TestSessionDirSameNameIsStable(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	viper.Set("session", "stable-name")
	defer viper.Set("session", "default")

	a, err := sessionDir()
	require.NoError(t, err)
	b, err := sessionDir()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSessionDirDefaultFallsBackToCwd(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	viper.Set("session", "default")

	dir, err := sessionDir()
	require.NoError(t, err)
	assert.Len(t, filepath.Base(dir), 16)
}
