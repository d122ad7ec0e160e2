//go:build !wasip1

package lambda

import (
	"context"
	"sync"
)

// stub collects host calls when running outside the engine.
var stub struct {
	sync.Mutex
	logs    []string
	output  []byte
	emitted bool
}

func hostLog(msg []byte) {
	stub.Lock()
	defer stub.Unlock()
	stub.logs = append(stub.logs, string(msg))
}

func hostEmit(out []byte) {
	stub.Lock()
	defer stub.Unlock()
	stub.output = append([]byte{}, out...)
	stub.emitted = true
}

// Result is the outcome of Invoke.
type Result struct {
	// Output is nil when the handler emitted nothing.
	Output []byte
	Logs   []string
	Status int32
}

// OK reports whether the handler succeeded.
func (r Result) OK() bool {
	return r.Status == statusOK
}

// Invoke runs the registered handler on input as the engine would and
// returns what it logged and emitted. Calls are serialized.
func Invoke(ctx context.Context, input []byte) Result {
	invokeMu.Lock()
	defer invokeMu.Unlock()

	resetStub()
	status := processBatch(ctx, input)

	stub.Lock()
	defer stub.Unlock()
	res := Result{Logs: stub.logs, Status: status}
	if stub.emitted {
		res.Output = stub.output
	}
	return res
}

var invokeMu sync.Mutex

func resetStub() {
	stub.Lock()
	defer stub.Unlock()
	stub.logs = nil
	stub.output = nil
	stub.emitted = false
}
