package bridge

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/reglet-dev/compute-bridge/domain/ports"
)

// contextState is the native state of one compute context. It owns exactly
// one engine for its whole lifetime.
type contextState struct {
	engine ports.Engine
	logger *slog.Logger
	result resultBuffer
	limits Limits
	id     uuid.UUID
}

func newContextState(eng ports.Engine, o options) *contextState {
	id := uuid.New()
	return &contextState{
		id:     id,
		engine: eng,
		limits: o.limits,
		logger: o.logger.With("context_id", id.String()),
	}
}
