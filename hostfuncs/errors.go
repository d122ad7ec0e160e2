package hostfuncs

import (
	"fmt"
)

// UnknownFunctionError is returned by Invoke for a name with no handler.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return "unknown host function: " + e.Name
}

// RequestTooLargeError is returned when a guest request exceeds the
// configured maximum size.
type RequestTooLargeError struct {
	Function string
	Size     uint32
	Limit    uint32
}

func (e *RequestTooLargeError) Error() string {
	return fmt.Sprintf("host function %s: request size %d exceeds maximum %d bytes", e.Function, e.Size, e.Limit)
}

// PanicError wraps a panic recovered from a handler.
type PanicError struct {
	Value    any
	Function string
}

func (e *PanicError) Error() string {
	var msg string
	switch v := e.Value.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = "panic recovered"
	}
	if e.Function != "" {
		return fmt.Sprintf("host function %s: panic: %s", e.Function, msg)
	}
	return "panic: " + msg
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
