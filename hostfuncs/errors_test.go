package hostfuncs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownFunctionError(t *testing.T) {
	err := &UnknownFunctionError{Name: "missing"}
	assert.Equal(t, "unknown host function: missing", err.Error())
}

func TestRequestTooLargeError(t *testing.T) {
	err := &RequestTooLargeError{Function: "log", Size: 2048, Limit: 1024}
	assert.Equal(t, "host function log: request size 2048 exceeds maximum 1024 bytes", err.Error())
}

func TestPanicError(t *testing.T) {
	tests := []struct {
		name string
		err  *PanicError
		want string
	}{
		{"string value", &PanicError{Value: "oops"}, "panic: oops"},
		{"other value", &PanicError{Value: 42}, "panic: panic recovered"},
		{"with function", &PanicError{Value: "oops", Function: "emit"}, "host function emit: panic: oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	assert.Nil(t, (&PanicError{Value: "oops"}).Unwrap())
}
