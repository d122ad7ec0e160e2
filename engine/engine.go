package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/reglet-dev/compute-bridge/domain/entities"
	"github.com/reglet-dev/compute-bridge/domain/ports"
)

// compilationCache is shared by every Engine in the process so that a
// program registered in several contexts is compiled once.
var compilationCache = wazero.NewCompilationCache()

// Engine runs lambdas in a wazero runtime.
type Engine struct {
	runtime wazero.Runtime
	lambdas map[int32]*lambda
	logger  *slog.Logger
	config  Config
	closed  bool
}

var _ ports.Engine = (*Engine)(nil)

// Open creates an engine with its own runtime and "lcm" host module.
func Open(ctx context.Context, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	rtConfig := wazero.NewRuntimeConfig().WithCompilationCache(compilationCache)
	if o.config.MemoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(o.config.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)

	if o.config.EnableWASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
		}
	}

	registry, err := newHostRegistry(o.logger)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to create host registry: %w", err)
	}
	limits := map[string]uint32{
		FuncLog:  o.config.MaxLogBytes,
		FuncEmit: o.config.MaxOutputBytes,
	}
	if err := registerHostModule(ctx, rt, registry, limits); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	return &Engine{
		runtime: rt,
		lambdas: make(map[int32]*lambda),
		logger:  o.logger,
		config:  o.config,
	}, nil
}

// NewOpener returns a function that opens engines with opts. It matches the
// opener expected by the bridge.
func NewOpener(opts ...Option) func(context.Context) (ports.Engine, error) {
	return func(ctx context.Context) (ports.Engine, error) {
		e, err := Open(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Config returns the limits the engine was opened with.
func (e *Engine) Config() Config {
	return e.config
}

// Register compiles and instantiates program as lambda lambdaID, replacing
// any lambda registered under the same id. The previous lambda is kept when
// the new program does not compile or lacks the required exports. Messages
// logged by _initialize reach sink with batch id 0.
func (e *Engine) Register(ctx context.Context, lambdaID int32, program []byte, sink ports.Sink) (entities.Code, error) {
	logger := e.logger.With("lambda_id", lambdaID)

	compiled, err := e.runtime.CompileModule(ctx, program)
	if err != nil {
		logger.DebugContext(ctx, "lambda compile failed", "error", err)
		return entities.CodeLambdaCompile, nil
	}

	if err := checkInterface(compiled); err != nil {
		logger.DebugContext(ctx, "lambda interface check failed", "error", err)
		_ = compiled.Close(ctx)
		return entities.CodeLambdaInterface, nil
	}

	if old, ok := e.lambdas[lambdaID]; ok {
		delete(e.lambdas, lambdaID)
		if err := old.close(ctx); err != nil {
			logger.WarnContext(ctx, "failed to close replaced lambda", "error", err)
		}
	}

	cs := &callState{sink: sink, lambdaID: lambdaID}
	callCtx := withCallState(ctx, cs)

	modConfig := wazero.NewModuleConfig().
		WithName(lambdaModuleName(lambdaID)).
		WithStartFunctions()
	mod, err := e.runtime.InstantiateModule(callCtx, compiled, modConfig)
	if err != nil {
		logger.DebugContext(ctx, "lambda instantiation failed", "error", err)
		_ = compiled.Close(ctx)
		cs.rethrow()
		if cs.fatal != nil {
			return entities.CodeLambdaInit, cs.fatal
		}
		return entities.CodeLambdaInit, nil
	}

	l := newLambda(lambdaID, compiled, mod)
	if err := l.initialize(callCtx); err != nil {
		_ = l.close(ctx)
		cs.rethrow()
		if cs.fatal != nil {
			return entities.CodeLambdaInit, cs.fatal
		}
		logger.DebugContext(ctx, "lambda initialization failed", "error", err)
		return entities.CodeLambdaInit, nil
	}

	e.lambdas[lambdaID] = l
	logger.DebugContext(ctx, "lambda registered")
	return entities.CodeOK, nil
}

// Process runs input through lambda lambdaID. Log messages reach sink as the
// lambda writes them. The output batch reaches sink only when process
// returns 0.
func (e *Engine) Process(ctx context.Context, lambdaID, batchID int32, input []byte, sink ports.Sink) (entities.Code, error) {
	l, ok := e.lambdas[lambdaID]
	if !ok {
		return entities.CodeLambdaUnknown, nil
	}
	if uint64(len(input)) > uint64(e.config.MaxBatchBytes) {
		return entities.CodeBatchTooLarge, nil
	}

	cs := &callState{sink: sink, lambdaID: lambdaID, batchID: batchID, allowEmit: true}
	status, err := l.call(withCallState(ctx, cs), input)
	cs.rethrow()

	switch {
	case cs.fatal != nil:
		return entities.CodeLambdaRuntime, cs.fatal
	case cs.duplicate:
		return entities.CodeBatchDuplicate, nil
	case err != nil:
		e.logger.DebugContext(ctx, "lambda trapped", "lambda_id", lambdaID, "batch_id", batchID, "error", err)
		return entities.CodeLambdaRuntime, nil
	case status != 0:
		return entities.CodeLambdaFailed, nil
	}

	if cs.emitted {
		if err := sink.Batch(cs.output); err != nil {
			return entities.CodeOK, err
		}
	}
	return entities.CodeOK, nil
}

// ErrStr describes code.
func (e *Engine) ErrStr(code entities.Code) string {
	return code.Description()
}

// Lambdas returns the registered lambda ids in ascending order.
func (e *Engine) Lambdas() []int32 {
	return slices.Sorted(maps.Keys(e.lambdas))
}

// Close releases the runtime and every lambda. Calling Close again is a
// no-op.
func (e *Engine) Close(ctx context.Context) error {
	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for id, l := range e.lambdas {
		if err := l.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close lambda %d: %w", id, err))
		}
	}
	clear(e.lambdas)
	errs = append(errs, e.runtime.Close(ctx))
	return errors.Join(errs...)
}
