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
	"encoding/json"
	"os"
	"sync"
	"time"
)

// protocolLogger writes every DP frame crossing the wire, one JSON object
// per line, to the session's protocol log file. The wire format itself is
// pinned by spec §9 ("use encoding/json, not a structured logger, for the
// on-disk protocol log"), so this intentionally does not go through zap —
// see SPEC_FULL.md's ambient-stack section for the rationale.
type protocolLogger struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

type protocolLogEntry struct {
	Time      string          `json:"time"`
	Direction string          `json:"direction"` // "send" or "recv"
	Payload   json.RawMessage `json:"payload"`
}

// newProtocolLogger opens logPath for appending. A failure to open is not
// fatal: subsequent writes become no-ops rather than taking down the
// session over a logging concern. An empty logPath disables logging
// entirely (used by tests).
func newProtocolLogger(logPath string) *protocolLogger {
	if logPath == "" {
		return &protocolLogger{}
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &protocolLogger{}
	}
	return &protocolLogger{file: f, enc: json.NewEncoder(f)}
}

func (p *protocolLogger) logSend(payload []byte) { p.log("send", payload) }
func (p *protocolLogger) logRecv(payload []byte) { p.log("recv", payload) }

func (p *protocolLogger) log(direction string, payload []byte) {
	if p == nil || p.enc == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.enc.Encode(protocolLogEntry{
		Time:      time.Now().UTC().Format(time.RFC3339Nano),
		Direction: direction,
		Payload:   json.RawMessage(payload),
	})
}

func (p *protocolLogger) close() {
	if p == nil || p.file == nil {
		return
	}
	_ = p.file.Close()
}
