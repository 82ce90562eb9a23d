package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/envsense-core/internal/infrastructure/config"
)

// serviceName is attached to every log entry.
const serviceName = "envsense"

// Build identifies the running binary. Both values come from ldflags.
type Build struct {
	Version string
	Commit  string
}

// attrs returns the build fields attached to every entry. An empty version
// is reported as "dev"; an empty commit is left out.
func (b Build) attrs() []slog.Attr {
	version := b.Version
	if version == "" {
		version = "dev"
	}
	attrs := []slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	}
	if b.Commit != "" {
		attrs = append(attrs, slog.String("commit", b.Commit))
	}
	return attrs
}

// Logger wraps slog.Logger so every entry carries the service and build.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
}

// New creates the service logger described by cfg.
//
// Parameters:
//   - cfg: Level, format (json or text) and output (stdout or stderr)
//   - build: Version and commit attached to every entry
//
// Returns:
//   - *Logger: Configured logger ready for use
func New(cfg config.LoggingConfig, build Build) *Logger {
	return NewWriter(outputFor(cfg.Output), cfg, build)
}

// NewWriter is New with an explicit destination. cfg.Output is ignored.
func NewWriter(w io.Writer, cfg config.LoggingConfig, build Build) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler.WithAttrs(build.attrs()))}
}

func outputFor(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel maps debug, info, warn/warning and error to slog levels.
// Anything else is info.
func parseLevel(level string) slog.Level {
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

// With returns a child Logger with additional attributes.
//
// Example:
//
//	genLogger := logger.With("component", "generator")
//	genLogger.Info("tick") // Includes component=generator
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Component returns a child logger tagged with component=name.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default returns a JSON info logger on stdout, for use before the
// configuration is loaded.
func Default(build Build) *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, build)
}

// Discard returns a logger that drops every entry. Used by tests and by
// components constructed without a logger.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}
