//go:build !wasip1

package lambda

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoke(t *testing.T) {
	Register(func(_ context.Context, batch []byte) ([]byte, error) {
		Log("upper")
		return bytes.ToUpper(batch), nil
	})
	t.Cleanup(func() { Register(nil) })

	res := Invoke(context.Background(), []byte("abc"))
	assert.True(t, res.OK())
	assert.Equal(t, []byte("ABC"), res.Output)
	assert.Equal(t, []string{"upper"}, res.Logs)
}

func TestInvoke_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler Handler
		wantLog string
	}{
		{
			name:    "no handler",
			wantLog: "lambda: no handler registered",
		},
		{
			name: "error",
			handler: func(context.Context, []byte) ([]byte, error) {
				return []byte("ignored"), errors.New("bad batch")
			},
			wantLog: "lambda: bad batch",
		},
		{
			name: "panic",
			handler: func(context.Context, []byte) ([]byte, error) {
				panic("boom")
			},
			wantLog: "lambda: panic: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Register(tt.handler)
			t.Cleanup(func() { Register(nil) })

			res := Invoke(context.Background(), []byte("x"))
			assert.False(t, res.OK())
			assert.Equal(t, statusFailed, res.Status)
			assert.Nil(t, res.Output)
			assert.Equal(t, []string{tt.wantLog}, res.Logs)
		})
	}
}

func TestInvoke_NilOutputEmitsNothing(t *testing.T) {
	Register(func(context.Context, []byte) ([]byte, error) { return nil, nil })
	t.Cleanup(func() { Register(nil) })

	res := Invoke(context.Background(), []byte("x"))
	assert.True(t, res.OK())
	assert.Nil(t, res.Output)

	Register(func(context.Context, []byte) ([]byte, error) { return []byte{}, nil })
	res = Invoke(context.Background(), nil)
	assert.NotNil(t, res.Output)
	assert.Empty(t, res.Output)
}

func TestLogf(t *testing.T) {
	Register(func(context.Context, []byte) ([]byte, error) {
		Logf("%d bytes", 3)
		return nil, nil
	})
	t.Cleanup(func() { Register(nil) })

	res := Invoke(context.Background(), []byte("abc"))
	assert.Equal(t, []string{"3 bytes"}, res.Logs)
}
