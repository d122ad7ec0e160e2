package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogEntry(t *testing.T) {
	before := time.Now()
	e := NewLogEntry(1, 100, "hello")

	assert.Equal(t, int32(1), e.LambdaID)
	assert.Equal(t, int32(100), e.BatchID)
	assert.Equal(t, "hello", e.Message)
	assert.False(t, e.Timestamp.Before(before))
}

func TestLogEntry_MarshalJSON(t *testing.T) {
	e := LogEntry{
		Timestamp: time.UnixMilli(1_700_000_000_123),
		LambdaID:  3,
		BatchID:   9,
		Message:   "processing",
	}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tim":1700000000123,"lid":3,"bid":9,"msg":"processing"}`, string(data))
}

func TestLogEntry_UnmarshalJSON(t *testing.T) {
	t.Run("keeps lambda and batch ids apart", func(t *testing.T) {
		var e LogEntry
		err := json.Unmarshal([]byte(`{"tim":1000,"lid":3,"bid":9,"msg":"x"}`), &e)
		require.NoError(t, err)

		assert.Equal(t, int32(3), e.LambdaID)
		assert.Equal(t, int32(9), e.BatchID)
		assert.Equal(t, "x", e.Message)
		assert.Equal(t, int64(1000), e.Timestamp.UnixMilli())
	})

	t.Run("empty message is allowed", func(t *testing.T) {
		var e LogEntry
		require.NoError(t, json.Unmarshal([]byte(`{"tim":0,"lid":1,"bid":0,"msg":""}`), &e))
		assert.Empty(t, e.Message)
	})

	t.Run("missing message", func(t *testing.T) {
		var e LogEntry
		err := json.Unmarshal([]byte(`{"tim":0,"lid":1,"bid":2}`), &e)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing msg")
	})

	t.Run("malformed", func(t *testing.T) {
		var e LogEntry
		assert.Error(t, json.Unmarshal([]byte(`{"lid":"one"}`), &e))
	})
}

func TestLogEntry_String(t *testing.T) {
	e := NewLogEntry(1, 2, "hi")
	assert.Equal(t, `[1,2] "hi"`, e.String())
}
