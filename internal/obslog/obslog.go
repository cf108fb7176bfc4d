// Package obslog holds the process-wide zap logger shared by the bot, the
// match layer and the replay CLI.
package obslog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats accepted in LOG_FORMAT.
const (
	FormatLegacy  = "legacy"
	FormatJSON    = "json"
	FormatConsole = "console"
)

var globalLogger = zap.NewNop()

// L returns the process-wide logger. It is a no-op until InitFromEnv or Set runs.
func L() *zap.Logger { return globalLogger }

// Named returns a child of the global logger tagged with component.
func Named(component string) *zap.Logger {
	return globalLogger.With(zap.String("component", component))
}

// Set replaces the global logger. nil installs a no-op logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	globalLogger = l
}

// Options describes where and how log entries are written.
type Options struct {
	Level   zapcore.Level
	Format  string
	Console bool
	File    string // empty disables file output
	Caller  bool
	Output  io.Writer // console destination, os.Stdout when nil
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_TO_CONSOLE, LOG_TO_FILE,
// LOG_FILE and LOG_CALLER.
func OptionsFromEnv() Options {
	o := Options{
		Level:   parseLevel(os.Getenv("LOG_LEVEL")),
		Format:  parseFormat(os.Getenv("LOG_FORMAT")),
		Console: envBool("LOG_TO_CONSOLE", true),
		Caller:  envBool("LOG_CALLER", false),
	}
	if envBool("LOG_TO_FILE", false) {
		o.File = strings.TrimSpace(os.Getenv("LOG_FILE"))
		if o.File == "" {
			o.File = filepath.Join("logs", "checkers-bot.log")
		}
	}
	return o
}

// New builds a logger from o. With neither console nor file output it falls
// back to a development console logger so nothing is silently dropped.
func New(o Options) (*zap.Logger, error) {
	stdout := o.Output
	if stdout == nil {
		stdout = os.Stdout
	}
	enc := encoderFor(o.Format)

	var cores []zapcore.Core
	if o.Console {
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(stdout), o.Level))
	}
	if o.File != "" {
		if dir := filepath.Dir(o.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(o.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.AddSync(f), o.Level))
	}
	if len(cores) == 0 {
		dev := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(dev, zapcore.AddSync(stdout), o.Level))
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if o.Caller || o.Format == FormatLegacy {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...), nil
}

// InitFromEnv installs a logger built from the LOG_* environment.
func InitFromEnv() error {
	l, err := New(OptionsFromEnv())
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func parseFormat(s string) string {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatJSON, FormatConsole:
		return f
	default:
		return FormatLegacy
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func encoderFor(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	switch format {
	case FormatJSON:
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(cfg)
	case FormatConsole:
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	default:
		// 2006-01-02 15:04:05 | INFO | caller | msg
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.ConsoleSeparator = " | "
		return zapcore.NewConsoleEncoder(cfg)
	}
}
