// Package logger builds the zap loggers used across clubdata.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the encoder.
type Format string

const (
	FormatConsole Format = "CONSOLE"
	FormatJSON    Format = "JSON"
)

// FormatEnv overrides the configured format when set.
const FormatEnv = "LOGGING_FORMAT"

var levels = map[string]zapcore.Level{
	"DEBUG":      zapcore.DebugLevel,
	"INFO":       zapcore.InfoLevel,
	"WARN":       zapcore.WarnLevel,
	"ERROR":      zapcore.ErrorLevel,
	"DPANIC":     zapcore.DPanicLevel,
	"PANIC":      zapcore.PanicLevel,
	"FATAL":      zapcore.FatalLevel,
	"PRODUCTION": zapcore.InfoLevel,
}

// ParseLevel maps a level name to its zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	if lvl, ok := levels[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return lvl, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToUpper(strings.TrimSpace(name))); f {
	case FormatConsole, FormatJSON:
		return f, nil
	}
	return FormatConsole, fmt.Errorf("unknown log format %q", name)
}

// resolveFormat applies the environment override. Unknown values are ignored.
func resolveFormat(configured Format) Format {
	if env := os.Getenv(FormatEnv); env != "" {
		if f, err := ParseFormat(env); err == nil {
			return f
		}
	}
	return configured
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05 MST"))
}

// New builds a logger writing to w. Unknown level names fall back to INFO.
func New(level string, format Format, w io.Writer) *zap.Logger {
	lvl, _ := ParseLevel(level)
	format = resolveFormat(format)

	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if format == FormatJSON {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncodeTime = timeEncoder
		cfg.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	if w == nil {
		w = os.Stderr
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return zap.New(core, zap.AddCaller())
}

// OpenFile opens path for appending log output, creating parent
// directories. The TUI logs here so output does not tear the screen.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
