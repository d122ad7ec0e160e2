package bridge

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/compute-bridge/domain/ports"
	"github.com/reglet-dev/compute-bridge/engine"
)

var validate = validator.New()

// EngineOpener opens the engine owned by a new compute context.
type EngineOpener func(ctx context.Context) (ports.Engine, error)

// Limits bounds what the bridge copies across the host boundary.
type Limits struct {
	// MaxInputBytes is the largest batch the bridge reads from the host.
	MaxInputBytes int `yaml:"max_input_bytes" json:"max_input_bytes,omitempty" validate:"gt=0"`

	// MaxProgramBytes is the largest lambda program the bridge reads.
	MaxProgramBytes int `yaml:"max_program_bytes" json:"max_program_bytes,omitempty" validate:"gt=0"`

	// MaxOutputBytes is the largest output buffer the bridge allocates.
	MaxOutputBytes int `yaml:"max_output_bytes" json:"max_output_bytes,omitempty" validate:"gt=0"`

	// MaxMessageBytes is the largest log or result message the bridge
	// allocates.
	MaxMessageBytes int `yaml:"max_message_bytes" json:"max_message_bytes,omitempty" validate:"gt=0"`
}

// DefaultLimits returns generous limits suitable for most hosts.
func DefaultLimits() Limits {
	return Limits{
		MaxInputBytes:   16 * 1024 * 1024,
		MaxProgramBytes: 16 * 1024 * 1024,
		MaxOutputBytes:  16 * 1024 * 1024,
		MaxMessageBytes: 1024 * 1024,
	}
}

// Validate checks that every limit is positive.
func (l Limits) Validate() error {
	return validate.Struct(l)
}

type options struct {
	opener EngineOpener
	logger *slog.Logger
	limits Limits
}

func defaultOptions() options {
	return options{
		opener: engine.NewOpener(),
		logger: slog.Default(),
		limits: DefaultLimits(),
	}
}

// Option configures a compute context at construction.
type Option func(*options)

// WithEngineOpener sets how the context's engine is opened. The default
// opens a wasm engine with default limits.
func WithEngineOpener(opener EngineOpener) Option {
	return func(o *options) {
		if opener != nil {
			o.opener = opener
		}
	}
}

// WithLimits sets the bridge copy limits.
func WithLimits(limits Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithLogger sets the logger for bridge diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
