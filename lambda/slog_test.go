//go:build !wasip1

package lambda

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logLines runs fn inside a handler and returns what reached the engine log.
func logLines(t *testing.T, fn func()) []string {
	t.Helper()
	Register(func(context.Context, []byte) ([]byte, error) {
		fn()
		return nil, nil
	})
	t.Cleanup(func() { Register(nil) })
	res := Invoke(context.Background(), nil)
	require.True(t, res.OK())
	return res.Logs
}

func TestLogHandler(t *testing.T) {
	logger := slog.New(NewLogHandler())

	lines := logLines(t, func() {
		logger.Info("processing", "bytes", 12, "name", "batch one", "ok", true)
		logger.Debug("hidden")
		logger.Warn("slow", "took", 1500*time.Millisecond)
	})

	assert.Equal(t, []string{
		`INFO processing bytes=12 name="batch one" ok=true`,
		`WARN slow took=1.5s`,
	}, lines)
}

func TestLogHandler_Options(t *testing.T) {
	logger := slog.New(NewLogHandler(WithLevel(slog.LevelDebug), WithoutLevel()))

	lines := logLines(t, func() {
		logger.Debug("visible", "f", 0.5)
	})
	assert.Equal(t, []string{"visible f=0.5"}, lines)
}

func TestLogHandler_AttrsAndGroups(t *testing.T) {
	logger := slog.New(NewLogHandler()).With("lambda", 3).WithGroup("req")

	lines := logLines(t, func() {
		logger.Info("done", "id", 7, slog.Group("size", "in", 1, "out", 2))
		logger.Error("failed", "err", errors.New("no input"))
	})

	assert.Equal(t, []string{
		`INFO done lambda=3 req.id=7 req.size.in=1 req.size.out=2`,
		`ERROR failed lambda=3 req.err="no input"`,
	}, lines)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value slog.Value
		want  string
	}{
		{value: slog.StringValue(""), want: `""`},
		{value: slog.StringValue("plain"), want: "plain"},
		{value: slog.Uint64Value(42), want: "42"},
		{value: slog.TimeValue(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), want: "2024-01-01T00:00:00Z"},
		{value: slog.AnyValue(map[string]int{"a": 1}), want: `{"a":1}`},
		{value: slog.AnyValue(nil), want: "<nil>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.value))
	}
}
