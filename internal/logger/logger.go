// Package logger configures slog for padlink: colored text for development
// and JSON for production.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
)

const (
	formatJSON   = "json"
	formatPretty = "pretty"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorGray    = "\033[37m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
)

// Logger wraps slog.Logger with padlink helpers.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Writer      io.Writer
	Format      string
	Environment string
	Level       slog.Level
	AddSource   bool
}

// New creates a new logger with the given configuration.
func New(cfg Config) *Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	if cfg.Format == "" {
		if cfg.Environment == "production" {
			cfg.Format = formatJSON
		} else {
			cfg.Format = formatPretty
		}
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == formatJSON {
		handler = slog.NewJSONHandler(cfg.Writer, opts)
	} else {
		handler = NewPrettyHandler(cfg.Writer, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Used by tests and the CLI.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel converts a string to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component returns a logger tagged with the emitting component.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.With(slog.String("component", name))}
}

// WithError adds the error and, for domain errors, its code.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{Logger: l.With(ErrorAttrs(err)...)}
}

// WithField adds a single field to the logger.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(slog.Any(key, value))}
}

// ErrorAttrs returns the attributes logged for err.
func ErrorAttrs(err error) []any {
	attrs := []any{slog.String("error", err.Error())}
	var de *domainerrors.Error
	if domainerrors.As(err, &de) {
		attrs = append(attrs, slog.String("error_code", string(de.Code)))
	}
	return attrs
}

// PrettyHandler writes one colored line per record:
//
//	15:04:05 INF store.go:42 message key=value group.key=value
//
// Groups become dotted key prefixes.
type PrettyHandler struct {
	opts   slog.HandlerOptions
	w      io.Writer
	attrs  []slog.Attr
	prefix string
}

// NewPrettyHandler creates a new pretty handler. opts may be nil.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	h := &PrettyHandler{w: w}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// Enabled reports whether level reaches the configured minimum (info by default).
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.opts.Level.Level()
}

// Handle writes r.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 512)

	buf = paint(buf, colorDim, r.Time.Format("15:04:05"))
	buf = append(buf, ' ')

	label, color := formatLevel(r.Level)
	buf = paint(buf, color, label)
	buf = append(buf, ' ')

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		buf = paint(buf, colorDim, filepath.Base(frame.File)+":"+strconv.Itoa(frame.Line))
		buf = append(buf, ' ')
	}

	buf = paint(buf, colorBold, r.Message)

	fields := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields = append(fields, a.Key+"="+formatValue(a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		a = prefixed(h.prefix, a)
		fields = append(fields, a.Key+"="+formatValue(a.Value))
		return true
	})
	if len(fields) > 0 {
		buf = append(buf, ' ')
		buf = paint(buf, colorCyan, strings.Join(fields, " "))
	}

	buf = append(buf, '\n')
	_, err := h.w.Write(buf)
	return err
}

// WithAttrs returns a handler that also writes attrs.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, prefixed(h.prefix, a))
	}
	return &clone
}

// WithGroup returns a handler that prefixes later keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func paint(buf []byte, color, s string) []byte {
	buf = append(buf, color...)
	buf = append(buf, s...)
	return append(buf, colorReset...)
}

func prefixed(prefix string, a slog.Attr) slog.Attr {
	if prefix == "" {
		return a
	}
	return slog.Attr{Key: prefix + a.Key, Value: a.Value}
}

var levelLabels = map[slog.Level][2]string{
	slog.LevelDebug: {"DBG", colorMagenta},
	slog.LevelInfo:  {"INF", colorGreen},
	slog.LevelWarn:  {"WRN", colorYellow},
	slog.LevelError: {"ERR", colorRed},
}

func formatLevel(level slog.Level) (label, color string) {
	if l, ok := levelLabels[level]; ok {
		return l[0], l[1]
	}
	return level.String(), colorGray
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindString:
		if s := v.String(); strings.ContainsAny(s, " \t\"=") {
			return strconv.Quote(s)
		}
	}
	return v.String()
}
