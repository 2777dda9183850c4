package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global = zap.NewNop()

// Config controls how Build assembles the logger.
type Config struct {
	Level       string
	Encoding    string // json | console
	Development bool
}

// L returns the process logger.
func L() *zap.Logger {
	return global
}

// ReplaceGlobal installs l as the process logger and as zap's global.
// Call once at startup; tests install zap.NewNop().
func ReplaceGlobal(l *zap.Logger) {
	global = l
	zap.ReplaceGlobals(l)
}

// Build creates a zap logger writing to stdout/stderr. An unknown level
// falls back to info.
func Build(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout(time.RFC3339Nano),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Encoding) == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	opts := []zap.Option{
		zap.ErrorOutput(zapcore.AddSync(os.Stderr)),
		zap.AddCaller(),
		// skip the package-level wrappers below
		zap.AddCallerSkip(1),
	}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(core, opts...), nil
}

type ctxFieldsKey struct{}

// WithFields returns a context whose log lines carry fields in addition to
// anything already attached.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing := fieldsFrom(ctx)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, ctxFieldsKey{}, merged)
}

func fieldsFrom(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(ctxFieldsKey{}).([]zap.Field)
	return fields
}

func withCtx(ctx context.Context, fields []zap.Field) []zap.Field {
	extra := fieldsFrom(ctx)
	if len(extra) == 0 {
		return fields
	}
	return append(append(make([]zap.Field, 0, len(extra)+len(fields)), extra...), fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	global.Debug(msg, withCtx(ctx, fields)...)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	global.Info(msg, withCtx(ctx, fields)...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	global.Warn(msg, withCtx(ctx, fields)...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	global.Error(msg, withCtx(ctx, fields)...)
}

func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	global.Fatal(msg, withCtx(ctx, fields)...)
}

// Field is a structured log field.
type Field = zap.Field

// Field helpers so callers do not import zap directly.

func String(key, value string) zap.Field {
	return zap.String(key, value)
}

func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

func Int64(key string, value int64) zap.Field {
	return zap.Int64(key, value)
}

func Bool(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

func ErrorField(err error) zap.Field {
	return zap.Error(err)
}

func Any(key string, value interface{}) zap.Field {
	return zap.Any(key, value)
}

func Duration(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}

func Stringer(key string, value interface{ String() string }) zap.Field {
	return zap.Stringer(key, value)
}
