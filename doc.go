// Package compute provides a compute context: an embedded engine in which
// numbered lambdas are registered ahead of time and through which opaque
// byte batches are later processed.
//
// Lambdas are WebAssembly modules following the ABI described in package
// engine.
//
// Usage:
//
//	cc, err := compute.New(ctx)
//	if err != nil {
//	    return err
//	}
//	defer cc.Close()
//
//	cancel := cc.WhenLogEntry(func(e entities.LogEntry) {
//	    fmt.Println(e)
//	})
//	defer cancel()
//
//	if err := cc.Register(ctx, entities.Lambda{ID: 1, Program: wasm}); err != nil {
//	    return err
//	}
//	out, err := cc.Process(ctx, entities.Batch{LambdaID: 1, BatchID: 100, Data: data})
//
// Failures reported by the engine are returned as *errors.ComputeError and
// carry the result code. Bridge failures (*errors.AllocationError,
// *errors.IllegalStateError) are returned unchanged.
package compute
