package ports

import "github.com/reglet-dev/compute-bridge/domain/entities"

// Host receives the outcome of bridge calls.
type Host interface {
	// OnResult is called exactly once at the end of every successful
	// register or process call.
	OnResult(code entities.Code, message string)

	// OnLog is called for every log entry, before the OnResult of the call
	// that produced it.
	OnLog(lambdaID, batchID int32, message string)
}

// Object is a host-visible compute context instance. It stores the opaque
// handle to its native state between calls.
type Object interface {
	Host

	NativeHandle() entities.Handle
	SetNativeHandle(h entities.Handle)
}
