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
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// requestTimeout is the per-request budget of spec §9: a DP request that
// gets no matching response within this window surfaces
// ErrRequestTimedOut rather than blocking the single-task scheduler
// forever.
const requestTimeout = 30 * time.Second

// dpMessage is the wire envelope. A frame from the runtime is either a
// response to a request this process sent (Id set) or an unsolicited
// event (Method/Params set, no Id).
type dpMessage struct {
	ID     int             `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *dpError        `json:"error,omitempty"`
}

type dpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *dpError) Error() string { return fmt.Sprintf("dp error %d: %s", e.Code, e.Message) }

// eventHandler is registered with on() and invoked for every event frame
// whose Method matches, in the order registered.
type eventHandler func(params json.RawMessage)

// transport is the DP connection: one gorilla/websocket connection, a
// table of in-flight requests keyed by id, and a registry of event
// handlers. This generalizes the teacher's single gdbSession.Send
// request/response cycle (engine.go's sendGdbCommand) to a duplex,
// asynchronous protocol where events can arrive at any time, not just as
// the tail of a response.
type transport struct {
	conn *websocket.Conn
	log  *protocolLogger

	mu       sync.Mutex
	nextID   int
	pending  map[int]chan dpMessage
	handlers map[string][]eventHandler
	closed   bool
	closeErr error

	writeMu sync.Mutex
}

// dialTransport connects to the runtime's DP endpoint and starts the read
// pump. The caller must register event handlers with on() before any
// request that could produce those events is sent; see pausewaiter.go for
// why that ordering matters.
func dialTransport(wsURL string, log *protocolLogger) (*transport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, ErrTransportFailed{Message: err.Error()}
	}

	t := &transport{
		conn:     conn,
		log:      log,
		nextID:   1,
		pending:  make(map[int]chan dpMessage),
		handlers: make(map[string][]eventHandler),
	}
	go t.readPump()
	return t, nil
}

// on registers a handler for an event method. Handlers run synchronously
// on the read pump goroutine, in registration order; a handler must not
// block or it stalls delivery of subsequent frames.
func (t *transport) on(method string, h eventHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[method] = append(t.handlers[method], h)
}

// send issues a request and blocks for its response or requestTimeout,
// whichever comes first. id allocation is a monotonically increasing
// 32-bit counter per session, matching spec §9.
func (t *transport) send(method string, params interface{}) (json.RawMessage, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrDisconnected{}
	}
	id := t.nextID
	t.nextID++
	ch := make(chan dpMessage, 1)
	t.pending[id] = ch
	t.mu.Unlock()

	raw, err := json.Marshal(params)
	if err != nil {
		t.forgetPending(id)
		return nil, err
	}

	frame := dpMessage{ID: id, Method: method, Params: raw}
	payload, err := json.Marshal(frame)
	if err != nil {
		t.forgetPending(id)
		return nil, err
	}

	if err := t.writeFrame(payload); err != nil {
		t.forgetPending(id)
		return nil, ErrTransportFailed{Message: err.Error()}
	}

	select {
	case resp := <-ch:
		if resp.Error != nil && resp.ID == 0 {
			return nil, ErrDisconnected{} // delivered by fail, not by the wire
		}
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	case <-time.After(requestTimeout):
		t.forgetPending(id)
		return nil, ErrRequestTimedOut{Method: method, ID: id}
	}
}

func (t *transport) writeFrame(payload []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if t.log != nil {
		t.log.logSend(payload)
	}
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

func (t *transport) forgetPending(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

// readPump is the sole reader of the websocket connection. It demuxes
// each frame to either a waiting pending channel (response) or the event
// handler registry (notification), then on EOF/error fails every
// still-pending request with ErrDisconnected — the direct analogue of
// the teacher's breakStopNotify channel being the only way
// continueExecution learns the target stopped, generalized to cover
// every outstanding request rather than just the resume/step family.
func (t *transport) readPump() {
	for {
		_, payload, err := t.conn.ReadMessage()
		if err != nil {
			t.fail(ErrTransportFailed{Message: err.Error()})
			return
		}
		if t.log != nil {
			t.log.logRecv(payload)
		}

		var msg dpMessage
		if jsonErr := json.Unmarshal(payload, &msg); jsonErr != nil {
			continue
		}

		if msg.ID != 0 {
			t.mu.Lock()
			ch, ok := t.pending[msg.ID]
			if ok {
				delete(t.pending, msg.ID)
			}
			t.mu.Unlock()
			if ok {
				ch <- msg
			}
			continue
		}

		if msg.Method != "" {
			t.mu.Lock()
			hs := append([]eventHandler(nil), t.handlers[msg.Method]...)
			t.mu.Unlock()
			for _, h := range hs {
				h(msg.Params)
			}
		}
	}
}

func (t *transport) fail(err error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.closeErr = err
	pending := t.pending
	t.pending = make(map[int]chan dpMessage)
	t.mu.Unlock()

	for _, ch := range pending {
		ch <- dpMessage{Error: &dpError{Code: -1, Message: err.Error()}}
	}
}

func (t *transport) disconnect() error {
	t.fail(ErrDisconnected{})
	return t.conn.Close()
}

func (t *transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
