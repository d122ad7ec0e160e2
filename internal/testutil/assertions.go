package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/compute-bridge/domain/entities"
)

// AssertResultOnly asserts that the host received exactly one result
// callback with code and no log callbacks.
func AssertResultOnly(t *testing.T, h *RecordingHost, code entities.Code, msgAndArgs ...interface{}) {
	t.Helper()

	events := h.Events()
	require.Len(t, events, 1, msgAndArgs...)
	assert.Equal(t, EventResult, events[0].Kind, msgAndArgs...)
	assert.Equal(t, code, events[0].Code, msgAndArgs...)
	assert.Equal(t, code.Description(), events[0].Message, msgAndArgs...)
}

// AssertLogsThenResult asserts that the host received the given log
// messages in order, followed by exactly one result callback with code.
func AssertLogsThenResult(t *testing.T, h *RecordingHost, code entities.Code, logs []string, msgAndArgs ...interface{}) {
	t.Helper()

	events := h.Events()
	require.Len(t, events, len(logs)+1, "events: %v", events)
	for i, msg := range logs {
		assert.Equal(t, EventLog, events[i].Kind, msgAndArgs...)
		assert.Equal(t, msg, events[i].Message, msgAndArgs...)
	}
	last := events[len(events)-1]
	assert.Equal(t, EventResult, last.Kind, msgAndArgs...)
	assert.Equal(t, code, last.Code, msgAndArgs...)
}

// AssertNoCallbacks asserts that the host received nothing.
func AssertNoCallbacks(t *testing.T, h *RecordingHost, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Empty(t, h.Events(), msgAndArgs...)
}

// AssertNoResult asserts that no result callback was delivered. Logs
// delivered before a fatal error are allowed.
func AssertNoResult(t *testing.T, h *RecordingHost, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Empty(t, h.Results(), msgAndArgs...)
}
