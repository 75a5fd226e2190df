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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefsDefaults(t *testing.T) {
	p := newPrefs()

	v, err := p.get("compact")
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	v, err = p.get("depth")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	v, err = p.get("maxEmissions")
	require.NoError(t, err)
	assert.Equal(t, "200", v)
}

func TestPrefsSetBoolAcceptsMultipleSpellings(t *testing.T) {
	p := newPrefs()

	require.NoError(t, p.set("compact", "true"))
	assert.True(t, p.compact())

	require.NoError(t, p.set("compact", "0"))
	assert.False(t, p.compact())

	require.NoError(t, p.set("compact", "1"))
	assert.True(t, p.compact())
}

func TestPrefsSetBoolRejectsGarbage(t *testing.T) {
	p := newPrefs()
	err := p.set("compact", "yes")
	assert.Error(t, err)
	assert.False(t, p.compact(), "a failed Set must not mutate the stored value")
}

func TestPrefsSetIntRoundTrips(t *testing.T) {
	p := newPrefs()
	require.NoError(t, p.set("depth", "5"))
	assert.Equal(t, 5, p.depth())

	require.NoError(t, p.set("maxEmissions", "50"))
	assert.Equal(t, 50, p.maxEmissions())
}

func TestPrefsSetIntRejectsNonNumeric(t *testing.T) {
	p := newPrefs()
	assert.Error(t, p.set("depth", "deep"))
}

func TestPrefsUnknownNameErrorsOnGetAndSet(t *testing.T) {
	p := newPrefs()
	_, err := p.get("bogus")
	assert.Error(t, err)
	assert.Error(t, p.set("bogus", "1"))
}

func TestPrefsNamesListsAllThree(t *testing.T) {
	p := newPrefs()
	assert.ElementsMatch(t, []string{"compact", "depth", "maxEmissions"}, p.names())
}
