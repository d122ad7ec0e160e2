// Package errors provides the error types of the compute bridge.
//
// Two families exist. ComputeError carries an operational result code that an
// engine reported through the normal result channel. AllocationError and
// IllegalStateError are fatal bridge errors: they abort the current call and
// are never reported through the result channel. All types support
// errors.Is and errors.As.
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/compute-bridge/domain/entities"
)

var (
	// ErrNotConstructed is returned when an entrypoint is called on a host
	// object that holds no live native state.
	ErrNotConstructed = &IllegalStateError{Message: "compute context not constructed"}

	// ErrAlreadyConstructed is returned when construct is called on a host
	// object whose native state is still alive.
	ErrAlreadyConstructed = &IllegalStateError{Message: "compute context already constructed"}

	// ErrNilHost is returned when an entrypoint is given no host object.
	ErrNilHost = &IllegalStateError{Message: "no host object"}
)

// FatalError is implemented by errors that must abort a bridge call.
type FatalError interface {
	error
	Fatal() bool
}

// IsFatal reports whether err, or any error it wraps, is a fatal bridge error.
func IsFatal(err error) bool {
	var fe FatalError
	return stdErrors.As(err, &fe) && fe.Fatal()
}

// AllocationError reports that the bridge could not obtain memory for a
// callback argument (message string or output buffer) within its limits.
type AllocationError struct {
	Err       error
	What      string // what was being allocated, e.g. "batch result"
	Requested int    // requested size in bytes
	Limit     int    // maximum allowed
}

func (e *AllocationError) Error() string {
	msg := fmt.Sprintf("failed to allocate memory for %s: requested %d bytes, limit %d bytes",
		e.What, e.Requested, e.Limit)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// Fatal implements FatalError.
func (e *AllocationError) Fatal() bool {
	return true
}

// IllegalStateError reports that the bridge could not access a host supplied
// resource, or that required native state is missing.
type IllegalStateError struct {
	Err     error
	Message string
}

func (e *IllegalStateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *IllegalStateError) Unwrap() error {
	return e.Err
}

// Is matches sentinel IllegalStateErrors by message so that wrapped copies
// still compare equal.
func (e *IllegalStateError) Is(target error) bool {
	t, ok := target.(*IllegalStateError)
	if !ok {
		return false
	}
	return e == t || (t.Err == nil && e.Message == t.Message)
}

// Fatal implements FatalError.
func (e *IllegalStateError) Fatal() bool {
	return true
}

// ComputeError is an operational failure reported by an engine through the
// result channel.
type ComputeError struct {
	Message string
	Code    entities.Code
}

// NewComputeError creates a ComputeError from a result callback.
func NewComputeError(code entities.Code, message string) *ComputeError {
	return &ComputeError{Code: code, Message: message}
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute error %d: %s", int32(e.Code), e.Message)
}

// Is matches any ComputeError with the same code.
func (e *ComputeError) Is(target error) bool {
	t, ok := target.(*ComputeError)
	return ok && t.Code == e.Code
}
