package compute

import (
	"log/slog"

	"github.com/reglet-dev/compute-bridge/bridge"
	"github.com/reglet-dev/compute-bridge/engine"
)

type options struct {
	opener     bridge.EngineOpener
	logger     *slog.Logger
	limits     bridge.Limits
	engineOpts []engine.Option
}

func defaultOptions() options {
	return options{
		logger: slog.Default(),
		limits: bridge.DefaultLimits(),
	}
}

func (o options) bridgeOptions() []bridge.Option {
	opener := o.opener
	if opener == nil {
		engineOpts := append([]engine.Option{engine.WithLogger(o.logger)}, o.engineOpts...)
		opener = engine.NewOpener(engineOpts...)
	}
	return []bridge.Option{
		bridge.WithEngineOpener(opener),
		bridge.WithLimits(o.limits),
		bridge.WithLogger(o.logger),
	}
}

// Option configures a Context.
type Option func(*options)

// WithEngine configures the wasm engine opened for the context. It has no
// effect together with WithEngineOpener.
func WithEngine(opts ...engine.Option) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithEngineOpener replaces the engine implementation.
func WithEngineOpener(opener bridge.EngineOpener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

// WithLimits sets the bridge copy limits.
func WithLimits(limits bridge.Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithLogger sets the logger for the context, its bridge state and its
// engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
