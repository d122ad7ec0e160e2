package bridge

import (
	"context"

	"github.com/reglet-dev/compute-bridge/domain/entities"
	"github.com/reglet-dev/compute-bridge/domain/errors"
	"github.com/reglet-dev/compute-bridge/domain/ports"
)

// callScope binds one entrypoint call to its host object and native state.
// It is built at the start of the call and dropped when the call returns.
type callScope struct {
	ctx   context.Context
	host  ports.Host
	state *contextState
}

func resolveScope(ctx context.Context, obj ports.Object) (*callScope, error) {
	if obj == nil {
		return nil, errors.ErrNilHost
	}
	h := obj.NativeHandle()
	if h.IsZero() {
		return nil, errors.ErrNotConstructed
	}
	state, ok := states.get(h)
	if !ok {
		return nil, errors.ErrNotConstructed
	}
	return &callScope{ctx: ctx, host: obj, state: state}, nil
}

// message copies text into a host string within the message limit.
func (s *callScope) message(text, what string) (string, error) {
	if limit := s.state.limits.MaxMessageBytes; len(text) > limit {
		return "", &errors.AllocationError{What: what, Requested: len(text), Limit: limit}
	}
	return text, nil
}

// report delivers the engine result to the host.
func (s *callScope) report(code entities.Code) error {
	msg, err := s.message(s.state.engine.ErrStr(code), "result message")
	if err != nil {
		return err
	}
	s.host.OnResult(code, msg)
	return nil
}

func (s *callScope) sink() ports.Sink {
	return &scopeSink{scope: s}
}

// scopeSink receives engine callbacks for one call.
type scopeSink struct {
	scope *callScope
}

// Batch copies the output into a host buffer and stages it.
func (k *scopeSink) Batch(out []byte) error {
	if limit := k.scope.state.limits.MaxOutputBytes; len(out) > limit {
		return &errors.AllocationError{What: "batch result", Requested: len(out), Limit: limit}
	}
	buf := make([]byte, len(out))
	copy(buf, out)
	k.scope.state.result.put(buf)
	return nil
}

// Log relays the entry to the host immediately.
func (k *scopeSink) Log(entry entities.LogEntry) error {
	msg, err := k.scope.message(entry.Message, "log message")
	if err != nil {
		return err
	}
	k.scope.state.logger.DebugContext(k.scope.ctx, "lambda log",
		"lambda_id", entry.LambdaID, "batch_id", entry.BatchID, "message", msg)
	k.scope.host.OnLog(entry.LambdaID, entry.BatchID, msg)
	return nil
}
