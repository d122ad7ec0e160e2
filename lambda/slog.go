package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// LogHandler is a slog.Handler that writes each record to the engine log as
// a single line: "LEVEL message key=value ...".
type LogHandler struct {
	prefix string // pre-rendered attrs from WithAttrs
	group  string // dotted group prefix for attr keys
	opts   handlerConfig
}

// HandlerOption configures the LogHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	showLevel bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level:     slog.LevelInfo,
		showLevel: true,
	}
}

// WithLevel sets the minimum level written to the engine log.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithoutLevel omits the level from each line.
func WithoutLevel() HandlerOption {
	return func(c *handlerConfig) {
		c.showLevel = false
	}
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(opts ...HandlerOption) *LogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LogHandler{opts: cfg}
}

// Enabled reports whether records at level are written.
func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle renders the record and sends it to the engine.
func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	if h.opts.showLevel {
		b.WriteString(record.Level.String())
		b.WriteByte(' ')
	}
	b.WriteString(record.Message)
	b.WriteString(h.prefix)
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, h.group, attr)
		return true
	})
	Log(b.String())
	return nil
}

// WithAttrs returns a handler that writes attrs on every record.
func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, attr := range attrs {
		writeAttr(&b, h.group, attr)
	}
	next := *h
	next.prefix = b.String()
	return &next
}

// WithGroup returns a handler that qualifies later attr keys with name.
func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

func writeAttr(b *strings.Builder, group string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		prefix := group
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, a := range attr.Value.Group() {
			writeAttr(b, prefix, a)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(group)
	b.WriteString(attr.Key)
	b.WriteByte('=')
	b.WriteString(formatValue(attr.Value))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " =\"\n") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		a := v.Any()
		switch x := a.(type) {
		case nil:
			return "<nil>"
		case error:
			return strconv.Quote(x.Error())
		}
		if data, err := json.Marshal(a); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", a)
	}
}
