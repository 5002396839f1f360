package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LoggingConfig configures log level, format, and an optional rotating file sink.
type LoggingConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	File   LogFileConfig `yaml:"file"`
}

// LogFileConfig configures rotation for the optional file sink. An empty
// path disables file logging.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func (lc *LoggingConfig) applyDefaults() {
	if lc.Level == "" {
		lc.Level = string(LogLevelInfo)
	}
	if lc.Format == "" {
		lc.Format = string(LogFormatText)
	}
	if lc.File.MaxSizeMB == 0 {
		lc.File.MaxSizeMB = 50
	}
	if lc.File.MaxBackups == 0 {
		lc.File.MaxBackups = 3
	}
}

// NormalizeLogLevel maps a raw level string to a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// NormalizeLogFormat maps a raw format string to a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(raw), "json") {
		return LogFormatJSON
	}
	return LogFormatText
}

// SlogLevel converts a LogLevel to the corresponding slog.Level.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// BuildLogger constructs the process logger from the logging config.
// Stdout is always written; a rotating file sink is added when a path is set.
func (lc LoggingConfig) BuildLogger() *slog.Logger {
	var out io.Writer = os.Stdout
	if lc.File.Path != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   lc.File.Path,
			MaxSize:    lc.File.MaxSizeMB,
			MaxBackups: lc.File.MaxBackups,
		})
	}

	opts := &slog.HandlerOptions{Level: NormalizeLogLevel(lc.Level).SlogLevel()}
	var handler slog.Handler
	if NormalizeLogFormat(lc.Format) == LogFormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}
