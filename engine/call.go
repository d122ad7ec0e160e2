package engine

import (
	"context"
	"errors"

	"github.com/reglet-dev/compute-bridge/domain/entities"
	"github.com/reglet-dev/compute-bridge/domain/ports"
)

var (
	errNoCall         = errors.New("host function called outside of a lambda call")
	errEmitNotAllowed = errors.New("emit is not allowed while a lambda is initializing")
	errDuplicateEmit  = errors.New("lambda emitted more than one output batch")
	errSinkPanicked   = errors.New("log sink panicked")
)

// callState tracks one Register or Process call. It travels to the host
// functions through the context passed to the guest.
type callState struct {
	sink ports.Sink

	// fatal is the first sink error. It aborts the guest and is returned to
	// the caller in place of a result code.
	fatal error

	output []byte

	lambdaID int32
	batchID  int32

	// hostPanic is a panic raised by the sink. The guest is trapped and the
	// panic resumes on the caller's goroutine once the guest call returns.
	hostPanic any

	allowEmit bool
	emitted   bool
	duplicate bool
	panicked  bool
}

// rethrow re-raises a panic captured from the sink.
func (cs *callState) rethrow() {
	if cs.panicked {
		panic(cs.hostPanic)
	}
}

type callStateKey struct{}

func withCallState(ctx context.Context, cs *callState) context.Context {
	return context.WithValue(ctx, callStateKey{}, cs)
}

func callStateFrom(ctx context.Context) (*callState, bool) {
	cs, ok := ctx.Value(callStateKey{}).(*callState)
	return cs, ok
}

// handleLog forwards a guest log message to the sink immediately.
func handleLog(ctx context.Context, payload []byte) error {
	cs, ok := callStateFrom(ctx)
	if !ok {
		return errNoCall
	}
	entry := entities.NewLogEntry(cs.lambdaID, cs.batchID, string(payload))
	if err := cs.logToSink(entry); err != nil {
		cs.fatal = err
		return err
	}
	return nil
}

// logToSink calls the sink, capturing a panic instead of letting the guest
// trap absorb it.
func (cs *callState) logToSink(entry entities.LogEntry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cs.hostPanic = r
			cs.panicked = true
			err = errSinkPanicked
		}
	}()
	return cs.sink.Log(entry)
}

// handleEmit copies the output batch. It is delivered once process returns
// successfully.
func handleEmit(ctx context.Context, payload []byte) error {
	cs, ok := callStateFrom(ctx)
	if !ok {
		return errNoCall
	}
	if !cs.allowEmit {
		return errEmitNotAllowed
	}
	if cs.emitted {
		cs.duplicate = true
		return errDuplicateEmit
	}
	cs.emitted = true
	cs.output = append(make([]byte, 0, len(payload)), payload...)
	return nil
}
