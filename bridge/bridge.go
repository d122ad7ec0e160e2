package bridge

import (
	"context"
	"fmt"

	"github.com/reglet-dev/compute-bridge/domain/entities"
	"github.com/reglet-dev/compute-bridge/domain/errors"
	"github.com/reglet-dev/compute-bridge/domain/ports"
)

// Construct creates the native state for obj and stores its handle in obj.
// It fails with errors.ErrAlreadyConstructed when obj already holds a live
// handle, leaving that state untouched.
func Construct(ctx context.Context, obj ports.Object, opts ...Option) error {
	if obj == nil {
		return errors.ErrNilHost
	}
	if h := obj.NativeHandle(); !h.IsZero() {
		if _, ok := states.get(h); ok {
			return errors.ErrAlreadyConstructed
		}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.limits.Validate(); err != nil {
		return &errors.IllegalStateError{Message: "invalid bridge limits", Err: err}
	}

	eng, err := o.opener(ctx)
	if err != nil {
		return &errors.IllegalStateError{Message: "failed to open compute engine", Err: err}
	}
	if eng == nil {
		return &errors.IllegalStateError{Message: "failed to open compute engine", Err: fmt.Errorf("opener returned no engine")}
	}

	state := newContextState(eng, o)
	h := states.add(state)
	obj.SetNativeHandle(h)

	state.logger.DebugContext(ctx, "compute context constructed", "handle", h.String())
	return nil
}

// Destroy releases the native state of obj and clears its handle. It is a
// no-op when obj holds no live handle. obj may be constructed again
// afterwards.
func Destroy(ctx context.Context, obj ports.Object) {
	if obj == nil {
		return
	}
	h := obj.NativeHandle()
	if h.IsZero() {
		return
	}
	obj.SetNativeHandle(entities.NoHandle)

	state, ok := states.remove(h)
	if !ok {
		return
	}
	state.result.clear()
	if err := state.engine.Close(ctx); err != nil {
		state.logger.WarnContext(ctx, "failed to close compute engine", "error", err)
	}
	state.logger.DebugContext(ctx, "compute context destroyed", "handle", h.String())
}

// RegisterLambda registers program under lambdaID and reports the engine
// result through obj.OnResult. Log entries written while the lambda starts
// are relayed through obj.OnLog first, with batch id 0.
func RegisterLambda(ctx context.Context, obj ports.Object, lambdaID int32, program []byte) error {
	scope, err := resolveScope(ctx, obj)
	if err != nil {
		return err
	}
	state := scope.state
	defer state.result.clear()

	if limit := state.limits.MaxProgramBytes; len(program) > limit {
		return &errors.IllegalStateError{
			Message: "cannot access lambda program",
			Err:     fmt.Errorf("%d bytes exceeds limit of %d", len(program), limit),
		}
	}

	code, err := state.engine.Register(ctx, lambdaID, program, scope.sink())
	if err != nil {
		return err
	}
	if !code.IsOK() {
		state.logger.DebugContext(ctx, "lambda registration failed", "lambda_id", lambdaID, "code", int32(code))
	}
	return scope.report(code)
}

// ProcessBatch runs data through lambda lambdaID and returns its output, or
// nil when the lambda produced none. Log entries are relayed through
// obj.OnLog as they arrive and the engine result is reported through
// obj.OnResult before ProcessBatch returns.
func ProcessBatch(ctx context.Context, obj ports.Object, lambdaID, batchID int32, data []byte) ([]byte, error) {
	scope, err := resolveScope(ctx, obj)
	if err != nil {
		return nil, err
	}
	state := scope.state
	defer state.result.clear()

	if limit := state.limits.MaxInputBytes; len(data) > limit {
		return nil, &errors.IllegalStateError{
			Message: "cannot access batch data",
			Err:     fmt.Errorf("%d bytes exceeds limit of %d", len(data), limit),
		}
	}

	code, err := state.engine.Process(ctx, lambdaID, batchID, data, scope.sink())
	if err != nil {
		return nil, err
	}
	if err := scope.report(code); err != nil {
		return nil, err
	}
	return state.result.take(), nil
}
