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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckRuntimeVersionStringEmptyIsSilent(t *testing.T) {
	assert.Equal(t, "", checkRuntimeVersionString(""))
}

func TestCheckRuntimeVersionStringSatisfiesConstraint(t *testing.T) {
	assert.Equal(t, "", checkRuntimeVersionString("v18.16.0"))
}

func TestCheckRuntimeVersionStringBelowConstraintWarns(t *testing.T) {
	warning := checkRuntimeVersionString("v8.11.0")
	assert.NotEmpty(t, warning)
	assert.Contains(t, warning, "8.11.0")
}

func TestCheckRuntimeVersionStringUnparseableIsSilent(t *testing.T) {
	assert.Equal(t, "", checkRuntimeVersionString("not a version"))
}

func TestScanForListeningBannerFindsURL(t *testing.T) {
	r := strings.NewReader("some startup noise\nDebugger listening on ws://127.0.0.1:9229/abc-def\nmore noise\n")
	url, err := scanForListeningBanner(r, time.Second)
	assert.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9229/abc-def", url)
}

func TestScanForListeningBannerFailsWithoutBanner(t *testing.T) {
	r := strings.NewReader("nothing interesting here\n")
	_, err := scanForListeningBanner(r, 50*time.Millisecond)
	assert.Error(t, err)
}
