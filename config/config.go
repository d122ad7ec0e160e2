// Package config loads run configurations for compute contexts: engine and
// bridge limits, logging, the lambdas to register and the batches to
// process.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/compute-bridge/bridge"
	"github.com/reglet-dev/compute-bridge/engine"
)

// Config is a run configuration.
type Config struct {
	// BaseDir resolves relative lambda and batch paths. Load sets it to the
	// directory of the configuration file.
	BaseDir string `yaml:"-" json:"-"`

	Log     LogConfig      `yaml:"log" json:"log"`
	Lambdas []LambdaConfig `yaml:"lambdas" json:"lambdas" validate:"dive"`
	Batches []BatchConfig  `yaml:"batches" json:"batches" validate:"dive"`
	Limits  bridge.Limits  `yaml:"limits" json:"limits"`
	Engine  engine.Config  `yaml:"engine" json:"engine"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" json:"format,omitempty" validate:"omitempty,oneof=text json"`
}

// LambdaConfig names a lambda program file.
type LambdaConfig struct {
	Path string `yaml:"path" json:"path" validate:"required" jsonschema:"required"`
	ID   int32  `yaml:"id" json:"id"`
}

// BatchConfig is a batch to process. The payload is either inline text or
// the contents of a file.
type BatchConfig struct {
	Data     string `yaml:"data" json:"data,omitempty" validate:"excluded_with=File"`
	File     string `yaml:"file" json:"file,omitempty"`
	LambdaID int32  `yaml:"lambda_id" json:"lambda_id"`
	BatchID  int32  `yaml:"batch_id" json:"batch_id"`
}

// Default returns a configuration with default limits and no lambdas.
func Default() Config {
	return Config{
		Engine: engine.DefaultConfig(),
		Limits: bridge.DefaultLimits(),
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// EngineConfig returns the engine limits.
func (c *Config) EngineConfig() engine.Config {
	return c.Engine
}

// BridgeLimits returns the bridge copy limits.
func (c *Config) BridgeLimits() bridge.Limits {
	return c.Limits
}

// Resolve returns path relative to BaseDir unless it is absolute.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.BaseDir == "" {
		return path
	}
	return filepath.Join(c.BaseDir, path)
}

// Program reads the program file of l.
func (c *Config) Program(l LambdaConfig) ([]byte, error) {
	data, err := os.ReadFile(c.Resolve(l.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to read lambda %d program: %w", l.ID, err)
	}
	return data, nil
}

// Payload returns the bytes of b.
func (c *Config) Payload(b BatchConfig) ([]byte, error) {
	if b.File == "" {
		return []byte(b.Data), nil
	}
	data, err := os.ReadFile(c.Resolve(b.File))
	if err != nil {
		return nil, fmt.Errorf("failed to read batch %d payload: %w", b.BatchID, err)
	}
	return data, nil
}

// SlogLevel returns the slog level. Unknown levels mean info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
