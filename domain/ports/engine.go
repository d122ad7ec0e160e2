package ports

import (
	"context"

	"github.com/reglet-dev/compute-bridge/domain/entities"
)

// Sink receives the callbacks an engine makes while it runs a lambda.
// A fresh Sink is created for every bridge call and must not be retained by
// the engine after Register or Process returns.
type Sink interface {
	// Batch receives the output of a processed batch. It is called at most
	// once per Process call. The engine may reuse out after Batch returns.
	Batch(out []byte) error

	// Log receives a log entry emitted by the lambda. Entries are delivered
	// in emission order.
	Log(entry entities.LogEntry) error
}

// Engine is an embedded compute runtime in which numbered lambdas are
// registered and through which batches are processed.
//
// Register and Process report operational outcomes as a Code. The returned
// error is non-nil only when a Sink callback failed; the engine then aborts
// the running lambda and returns that error unchanged.
type Engine interface {
	Register(ctx context.Context, lambdaID int32, program []byte, sink Sink) (entities.Code, error)
	Process(ctx context.Context, lambdaID, batchID int32, input []byte, sink Sink) (entities.Code, error)

	// ErrStr returns a human-readable description of code.
	ErrStr(code entities.Code) string

	// Close releases the engine and every lambda registered in it.
	Close(ctx context.Context) error
}
