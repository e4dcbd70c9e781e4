package logger_i

import (
	"io"
	"log/slog"
	"os"

	"github.com/akolanti/FormFlow/internal/config"
)

// Logger resolves the default slog logger on every call, so package-level
// loggers created before Init still pick up the configured handler.
type Logger struct {
	attrs []any
}

// Init installs the process-wide handler. The CLI passes stderr so stdout stays clean for output.
func Init(level slog.Level, json bool) {
	InitTo(os.Stdout, level, json)
}

func InitTo(w io.Writer, level slog.Level, json bool) {
	options := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if config.IS_PROD || json {
		if config.IS_PROD {
			options.Level = config.LOG_LEVEL_PROD
		}
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func NewLogger(section string) *Logger {
	return &Logger{attrs: []any{"component", section}}
}

func (l *Logger) inner() *slog.Logger {
	return slog.Default().With(l.attrs...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner().Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.inner().Error(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.inner().Warn(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.inner().Debug(msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, args...)
	return &Logger{attrs: attrs}
}

// Slog exposes the underlying logger for libraries that take a *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.inner()
}
