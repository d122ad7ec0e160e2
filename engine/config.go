package engine

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/compute-bridge/hostfuncs"
)

var validate = validator.New()

// Config holds the runtime limits of an Engine.
type Config struct {
	// MemoryLimitPages caps the linear memory of every lambda, in 64KiB
	// pages. Zero keeps the wazero default of 65536 pages (4GiB).
	MemoryLimitPages uint32 `yaml:"memory_limit_pages" json:"memory_limit_pages,omitempty" validate:"lte=65536"`

	// MaxBatchBytes is the largest input batch accepted by Process.
	MaxBatchBytes uint32 `yaml:"max_batch_bytes" json:"max_batch_bytes,omitempty" validate:"gt=0"`

	// MaxOutputBytes is the largest batch a lambda may emit.
	MaxOutputBytes uint32 `yaml:"max_output_bytes" json:"max_output_bytes,omitempty" validate:"gt=0"`

	// MaxLogBytes is the largest log message a lambda may write.
	MaxLogBytes uint32 `yaml:"max_log_bytes" json:"max_log_bytes,omitempty" validate:"gt=0"`

	// EnableWASI makes wasi_snapshot_preview1 available to lambdas built by
	// toolchains that import it unconditionally.
	EnableWASI bool `yaml:"enable_wasi" json:"enable_wasi,omitempty"`
}

// DefaultConfig returns the limits used when no configuration is given.
func DefaultConfig() Config {
	return Config{
		MemoryLimitPages: 256, // 16MiB
		MaxBatchBytes:    hostfuncs.DefaultMaxRequestSize,
		MaxOutputBytes:   hostfuncs.DefaultMaxRequestSize,
		MaxLogBytes:      64 * 1024,
	}
}

// Validate checks the limits.
func (c Config) Validate() error {
	return validate.Struct(c)
}

type options struct {
	logger *slog.Logger
	config Config
}

func defaultOptions() options {
	return options{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
}

// Option configures an Engine.
type Option func(*options)

// WithConfig replaces the engine limits.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithWASI enables or disables wasi_snapshot_preview1.
func WithWASI(enabled bool) Option {
	return func(o *options) {
		o.config.EnableWASI = enabled
	}
}

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
