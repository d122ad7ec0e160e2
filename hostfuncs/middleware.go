package hostfuncs

import (
	"context"
	"log/slog"
)

// Middleware wraps a ByteHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next ByteHandler) ByteHandler

// PanicRecoveryMiddleware converts a handler panic into a *PanicError so that
// the binding layer can trap the guest instead of crashing the host.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					name, _ := FunctionName(ctx)
					resp = nil
					err = &PanicError{Function: name, Value: r}
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware logs every host function invocation at debug level.
// A nil logger uses slog.Default().
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name, ok := FunctionName(ctx)
			if !ok {
				name = "unknown"
			}
			resp, err := next(ctx, payload)
			if err != nil {
				logger.DebugContext(ctx, "host function failed", "function", name, "size", len(payload), "error", err)
			} else {
				logger.DebugContext(ctx, "host function completed", "function", name, "size", len(payload))
			}
			return resp, err
		}
	}
}
