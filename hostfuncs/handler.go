package hostfuncs

import (
	"context"
)

// DefaultMaxRequestSize limits the size of a request read from guest memory
// (1MB). Prevents a guest from claiming an arbitrarily large region.
const DefaultMaxRequestSize = 1 * 1024 * 1024

// ByteHandler is a host function over the raw request bytes read from guest
// memory. The payload is only valid for the duration of the call; handlers
// that keep it must copy it. A nil response means nothing is written back.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NotifyHandler is a host function that returns nothing to the guest.
type NotifyHandler func(context.Context, []byte) error

// Notify adapts a NotifyHandler to a ByteHandler.
//
// Usage:
//
//	logHandler := hostfuncs.Notify(func(ctx context.Context, msg []byte) error {
//	    return sink.Log(entities.NewLogEntry(lambdaID, batchID, string(msg)))
//	})
func Notify(fn NotifyHandler) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		return nil, fn(ctx, payload)
	}
}
