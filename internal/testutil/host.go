// Package testutil provides test helpers shared by the bridge packages: a
// recording host object, callback assertions and a WebAssembly module
// builder with ready-made lambda fixtures.
package testutil

import (
	"fmt"
	"sync"

	"github.com/reglet-dev/compute-bridge/domain/entities"
)

// EventKind distinguishes the callbacks a host receives.
type EventKind int

const (
	EventResult EventKind = iota + 1
	EventLog
)

// Event is one callback received by a RecordingHost.
type Event struct {
	Message  string
	Kind     EventKind
	Code     entities.Code
	LambdaID int32
	BatchID  int32
}

func (e Event) String() string {
	switch e.Kind {
	case EventResult:
		return fmt.Sprintf("result(%d, %q)", e.Code, e.Message)
	case EventLog:
		return fmt.Sprintf("log(%d, %d, %q)", e.LambdaID, e.BatchID, e.Message)
	default:
		return "unknown event"
	}
}

// RecordingHost is a host object that records every callback in order.
type RecordingHost struct {
	mu     sync.Mutex
	events []Event
	handle entities.Handle
}

// NewRecordingHost returns a host with no native handle.
func NewRecordingHost() *RecordingHost {
	return &RecordingHost{}
}

func (h *RecordingHost) OnResult(code entities.Code, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, Event{Kind: EventResult, Code: code, Message: message})
}

func (h *RecordingHost) OnLog(lambdaID, batchID int32, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, Event{Kind: EventLog, LambdaID: lambdaID, BatchID: batchID, Message: message})
}

func (h *RecordingHost) NativeHandle() entities.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handle
}

func (h *RecordingHost) SetNativeHandle(handle entities.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handle = handle
}

// Events returns a copy of the recorded callbacks.
func (h *RecordingHost) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

// Results returns only the result callbacks.
func (h *RecordingHost) Results() []Event {
	return h.filter(EventResult)
}

// Logs returns only the log callbacks.
func (h *RecordingHost) Logs() []Event {
	return h.filter(EventLog)
}

// Reset forgets recorded callbacks but keeps the native handle.
func (h *RecordingHost) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}

func (h *RecordingHost) filter(kind EventKind) []Event {
	var out []Event
	for _, e := range h.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
