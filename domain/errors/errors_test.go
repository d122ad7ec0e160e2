package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/reglet-dev/compute-bridge/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationError(t *testing.T) {
	err := &AllocationError{What: "batch result", Requested: 2048, Limit: 1024}

	assert.Equal(t, "failed to allocate memory for batch result: requested 2048 bytes, limit 1024 bytes", err.Error())
	assert.True(t, IsFatal(err))

	var allocErr *AllocationError
	require.True(t, errors.As(fmt.Errorf("process: %w", err), &allocErr))
	assert.Equal(t, 2048, allocErr.Requested)
}

func TestAllocationError_Wrapped(t *testing.T) {
	base := fmt.Errorf("arena exhausted")
	err := &AllocationError{What: "log message", Requested: 10, Limit: 5, Err: base}

	assert.Contains(t, err.Error(), "arena exhausted")
	assert.True(t, errors.Is(err, base))
}

func TestIllegalStateError(t *testing.T) {
	base := fmt.Errorf("engine open failed")
	err := &IllegalStateError{Message: "failed to create engine context", Err: base}

	assert.Equal(t, "failed to create engine context: engine open failed", err.Error())
	assert.True(t, errors.Is(err, base))
	assert.True(t, IsFatal(err))
}

func TestIllegalStateError_Sentinels(t *testing.T) {
	wrapped := fmt.Errorf("register lambda: %w", ErrNotConstructed)

	assert.True(t, errors.Is(wrapped, ErrNotConstructed))
	assert.False(t, errors.Is(wrapped, ErrAlreadyConstructed))
	assert.True(t, errors.Is(&IllegalStateError{Message: "compute context not constructed"}, ErrNotConstructed))
	assert.False(t, errors.Is(&IllegalStateError{Message: "other"}, ErrNotConstructed))
	assert.True(t, IsFatal(wrapped))
}

func TestComputeError(t *testing.T) {
	err := NewComputeError(entities.CodeLambdaUnknown, "unknown lambda")

	assert.Equal(t, "compute error 1: unknown lambda", err.Error())
	assert.False(t, IsFatal(err))
	assert.True(t, errors.Is(err, &ComputeError{Code: entities.CodeLambdaUnknown}))
	assert.False(t, errors.Is(err, &ComputeError{Code: entities.CodeLambdaRuntime}))

	var ce *ComputeError
	require.True(t, errors.As(fmt.Errorf("process: %w", err), &ce))
	assert.Equal(t, entities.CodeLambdaUnknown, ce.Code)
}

func TestIsFatal_PlainError(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(fmt.Errorf("plain")))
}
