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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomyMatchesWithErrorsAs(t *testing.T) {
	var err error = ErrBadState{Expected: "paused", Actual: "running"}

	var bad ErrBadState
	assert.True(t, errors.As(err, &bad))
	assert.Equal(t, "paused", bad.Expected)
	assert.Equal(t, "running", bad.Actual)

	var unknown ErrUnknownRef
	assert.False(t, errors.As(err, &unknown))
}

func TestErrorMessagesIncludeRelevantDetail(t *testing.T) {
	assert.Contains(t, ErrUnknownRef{Ref: "@f9"}.Error(), "@f9")
	assert.Contains(t, ErrBadRefKind{Ref: "@o1", ExpectedKind: "f"}.Error(), "@o1")
	assert.Contains(t, ErrScriptNotFound{Path: "app.js"}.Error(), "app.js")
	assert.Contains(t, ErrRequestTimedOut{Method: "Debugger.resume", ID: 3}.Error(), "Debugger.resume")
	assert.Contains(t, ErrInvalidArgument{Field: "mode", Reason: "must be a known mode"}.Error(), "mode")
}
