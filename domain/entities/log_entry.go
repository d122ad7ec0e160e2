package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// LogEntry is a message logged by a lambda while it was being registered or
// while it processed a batch. Entries logged during registration carry
// BatchID 0.
type LogEntry struct {
	Timestamp time.Time
	Message   string
	LambdaID  int32
	BatchID   int32
}

// NewLogEntry creates a LogEntry stamped with the current time.
func NewLogEntry(lambdaID, batchID int32, message string) LogEntry {
	return LogEntry{
		Timestamp: time.Now(),
		LambdaID:  lambdaID,
		BatchID:   batchID,
		Message:   message,
	}
}

func (e LogEntry) String() string {
	return fmt.Sprintf("[%d,%d] %q", e.LambdaID, e.BatchID, e.Message)
}

// logEntryWire is the compact media encoding of a LogEntry.
type logEntryWire struct {
	Message   *string `json:"msg"`
	Timestamp int64   `json:"tim"`
	LambdaID  int32   `json:"lid"`
	BatchID   int32   `json:"bid"`
}

// MarshalJSON encodes the entry as {"tim":<unix ms>,"lid":..,"bid":..,"msg":..}.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	msg := e.Message
	return json.Marshal(logEntryWire{
		Timestamp: e.Timestamp.UnixMilli(),
		LambdaID:  e.LambdaID,
		BatchID:   e.BatchID,
		Message:   &msg,
	})
}

// UnmarshalJSON decodes the compact media encoding. The msg key is required.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var w logEntryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Message == nil {
		return fmt.Errorf("log entry: missing msg")
	}
	*e = LogEntry{
		Timestamp: time.UnixMilli(w.Timestamp),
		LambdaID:  w.LambdaID,
		BatchID:   w.BatchID,
		Message:   *w.Message,
	}
	return nil
}
