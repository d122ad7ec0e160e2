package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/compute-bridge/hostfuncs"
)

// Host module and function names imported by lambdas.
const (
	HostModuleName = "lcm"
	FuncLog        = "log"
	FuncEmit       = "emit"
)

// newHostRegistry builds the host functions exported to lambdas.
func newHostRegistry(logger *slog.Logger) (*hostfuncs.HandlerRegistry, error) {
	return hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(
			hostfuncs.PanicRecoveryMiddleware(),
			hostfuncs.LoggingMiddleware(logger),
		),
		hostfuncs.WithNotifyHandler(FuncLog, handleLog),
		hostfuncs.WithNotifyHandler(FuncEmit, handleEmit),
	)
}

// registerHostModule instantiates the registry as the "lcm" host module.
// limits caps the payload size per function name.
func registerHostModule(ctx context.Context, rt wazero.Runtime, registry *hostfuncs.HandlerRegistry, limits map[string]uint32) error {
	builder := rt.NewHostModuleBuilder(HostModuleName)

	for _, name := range registry.Names() {
		funcName := name
		limit, ok := limits[funcName]
		if !ok {
			limit = hostfuncs.DefaultMaxRequestSize
		}
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				handleHostCall(ctx, mod, stack, registry, funcName, limit)
			}), []api.ValueType{api.ValueTypeI64}, nil).
			Export(funcName)
	}

	_, err := builder.Instantiate(ctx)
	return err
}

// handleHostCall reads the packed payload from guest memory and invokes the
// handler. Any failure panics, which wazero turns into a guest trap.
func handleHostCall(ctx context.Context, mod api.Module, stack []uint64, registry *hostfuncs.HandlerRegistry, name string, limit uint32) {
	ptr, length := unpackPtrLen(stack[0])
	if length > limit {
		panic(&hostfuncs.RequestTooLargeError{Function: name, Size: length, Limit: limit})
	}

	mem := mod.Memory()
	if mem == nil {
		panic(fmt.Errorf("host function %s: lambda has no memory", name))
	}
	payload, ok := mem.Read(ptr, length)
	if !ok {
		panic(fmt.Errorf("host function %s: %d bytes at %d out of bounds", name, length, ptr))
	}

	if _, err := registry.Invoke(ctx, name, payload); err != nil {
		panic(err)
	}
}

// unpackPtrLen splits a packed i64 into pointer (upper 32 bits) and length.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}
