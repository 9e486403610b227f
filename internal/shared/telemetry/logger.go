package telemetry

import (
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = newLogger()
)

// stdoutSink resolves os.Stdout on every write so redirected output is honoured.
type stdoutSink struct{}

func (stdoutSink) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdoutSink) Sync() error { return nil }

func newLogger() *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format(time.RFC3339))
		},
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(stdoutSink{}), level)
	return zap.New(core)
}

// SetLevel changes the minimum level; unknown names leave it unchanged.
func SetLevel(name string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return
	}
	level.SetLevel(l)
}

// Logger returns the process logger for callers that want typed zap fields.
func Logger() *zap.Logger {
	return logger
}

// Redirect sends log output to core until the returned restore is called.
// Tests use it with zaptest/observer.
func Redirect(core zapcore.Core) (restore func()) {
	prev := logger
	logger = zap.New(core)
	return func() { logger = prev }
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	logger.Info(msg, toFields(fields)...)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	logger.Warn(msg, toFields(fields)...)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	logger.Error(msg, toFields(fields)...)
}

func toFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if err, ok := fields[k].(error); ok {
			out = append(out, zap.String(k, err.Error()))
			continue
		}
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
