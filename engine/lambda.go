package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

const (
	exportMemory     = "memory"
	exportAllocate   = "allocate"
	exportProcess    = "process"
	exportInitialize = "_initialize"
)

type signature struct {
	params  []api.ValueType
	results []api.ValueType
}

var requiredFunctions = map[string]signature{
	exportAllocate: {params: []api.ValueType{api.ValueTypeI32}, results: []api.ValueType{api.ValueTypeI32}},
	exportProcess:  {params: []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, results: []api.ValueType{api.ValueTypeI32}},
}

// checkInterface verifies that a compiled lambda exports what the engine
// calls.
func checkInterface(compiled wazero.CompiledModule) error {
	if _, ok := compiled.ExportedMemories()[exportMemory]; !ok {
		return fmt.Errorf("missing %q export", exportMemory)
	}

	fns := compiled.ExportedFunctions()
	for name, want := range requiredFunctions {
		def, ok := fns[name]
		if !ok {
			return fmt.Errorf("missing %q export", name)
		}
		if !slices.Equal(def.ParamTypes(), want.params) || !slices.Equal(def.ResultTypes(), want.results) {
			return fmt.Errorf("export %q has signature %v -> %v", name, def.ParamTypes(), def.ResultTypes())
		}
	}

	if def, ok := fns[exportInitialize]; ok && (len(def.ParamTypes()) > 0 || len(def.ResultTypes()) > 0) {
		return fmt.Errorf("export %q must take and return nothing", exportInitialize)
	}
	return nil
}

// lambda is an instantiated lambda module. It owns its compiled module,
// whose native code is released only once both are closed.
type lambda struct {
	compiled wazero.CompiledModule
	module   api.Module
	allocate api.Function
	process  api.Function
	id       int32
}

func newLambda(id int32, compiled wazero.CompiledModule, mod api.Module) *lambda {
	return &lambda{
		id:       id,
		compiled: compiled,
		module:   mod,
		allocate: mod.ExportedFunction(exportAllocate),
		process:  mod.ExportedFunction(exportProcess),
	}
}

func lambdaModuleName(id int32) string {
	return fmt.Sprintf("lambda-%d", id)
}

// initialize runs the optional _initialize export.
func (l *lambda) initialize(ctx context.Context) error {
	init := l.module.ExportedFunction(exportInitialize)
	if init == nil {
		return nil
	}
	if _, err := init.Call(ctx); err != nil {
		return fmt.Errorf("failed to call %s: %w", exportInitialize, err)
	}
	return nil
}

// call copies input into guest memory and runs process. An empty input is
// passed as (0, 0) without calling allocate.
func (l *lambda) call(ctx context.Context, input []byte) (uint32, error) {
	var ptr uint32
	if len(input) > 0 {
		res, err := l.allocate.Call(ctx, uint64(len(input)))
		if err != nil {
			return 0, fmt.Errorf("failed to allocate in guest: %w", err)
		}
		ptr = uint32(res[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
		if !l.module.Memory().Write(ptr, input) {
			return 0, fmt.Errorf("failed to write %d input bytes at %d", len(input), ptr)
		}
	}

	res, err := l.process.Call(ctx, uint64(ptr), uint64(len(input)))
	if err != nil {
		return 0, err
	}
	return uint32(res[0]), nil //nolint:gosec // G115: i32 result
}

func (l *lambda) close(ctx context.Context) error {
	return errors.Join(l.module.Close(ctx), l.compiled.Close(ctx))
}
