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

// Package ctlproto is the newline-framed JSON wire format spoken over
// the daemon's Unix domain control socket. Both cmd (the client) and
// daemon (the server) import this package so the two sides never drift
// out of sync on field names, unlike the teacher's DBGp layer where the
// wire format is a hand-built XML string assembled separately on each
// side (see response_formats.go's format strings).
package ctlproto

import "encoding/json"

// Request is one control-socket request: a command name plus its
// arguments, encoded as a single JSON object terminated by a newline.
type Request struct {
	Cmd  string          `json:"cmd"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response is the daemon's reply to a Request, also newline-terminated.
// Ok=false always carries Error; it may also carry Suggestion, a short
// human-readable hint the CLI prints alongside the error (e.g. "session
// not running; did you mean `jsdbg launch`?").
type Response struct {
	Ok         bool            `json:"ok"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Suggestion string          `json:"suggestion,omitempty"`
	Warning    string          `json:"warning,omitempty"`
}

// Encode marshals v into an Args payload for a Request.
func Encode(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Decode unmarshals a Request's Args (or a Response's Data) into v.
func Decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// OK builds a successful Response around v.
func OK(v interface{}) Response {
	data, _ := Encode(v)
	return Response{Ok: true, Data: data}
}

// Fail builds a failure Response, optionally with a suggestion.
func Fail(errMsg, suggestion string) Response {
	return Response{Ok: false, Error: errMsg, Suggestion: suggestion}
}
