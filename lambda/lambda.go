// Package lambda is the guest side of the compute engine ABI: it lets a Go
// program compiled to wasip1 act as a lambda.
//
// Build a lambda as a WASI reactor so the engine's _initialize call runs the
// Go runtime and package init functions:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o upper.wasm .
//
// and register it in an engine opened with WASI enabled. A minimal lambda:
//
//	func init() {
//	    lambda.Register(func(ctx context.Context, batch []byte) ([]byte, error) {
//	        lambda.Log("processing")
//	        return bytes.ToUpper(batch), nil
//	    })
//	}
//
//	func main() {}
//
// Outside wasip1 the host functions are replaced by in-process stubs and
// Invoke runs a handler the way the engine would, for unit tests.
package lambda

import (
	"context"
	"fmt"
	"sync"
)

// Handler processes one batch. A nil output emits nothing. An error is
// logged and reported to the engine as a failure status.
type Handler func(ctx context.Context, batch []byte) ([]byte, error)

const (
	statusOK     int32 = 0
	statusFailed int32 = 1
)

var (
	handlerMu sync.RWMutex
	handler   Handler
)

// Register installs the batch handler. Calling it again replaces the
// handler.
func Register(h Handler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	handler = h
}

// Log writes a message to the engine log.
func Log(msg string) {
	hostLog([]byte(msg))
}

// Logf formats and writes a message to the engine log.
func Logf(format string, args ...any) {
	Log(fmt.Sprintf(format, args...))
}

// processBatch runs the registered handler and emits its output. Panics are
// reported as failures so the engine sees a status rather than a trap.
func processBatch(ctx context.Context, input []byte) (status int32) {
	handlerMu.RLock()
	h := handler
	handlerMu.RUnlock()

	if h == nil {
		Log("lambda: no handler registered")
		return statusFailed
	}

	defer func() {
		if r := recover(); r != nil {
			Logf("lambda: panic: %v", r)
			status = statusFailed
		}
	}()

	out, err := h(ctx, input)
	if err != nil {
		Logf("lambda: %v", err)
		return statusFailed
	}
	if out != nil {
		hostEmit(out)
	}
	return statusOK
}
