// Package logger carries a zap logger through context.Context. Handlers,
// workers and offline commands log through the package helpers so request
// and run fields attached upstream end up on every entry.
package logger

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

const (
	// DevelopmentEnvironment logs colored console output at debug level.
	DevelopmentEnvironment = "development"
	// ProductionEnvironment logs sampled JSON at info level.
	ProductionEnvironment = "production"
)

// discards everything until Setup is called
var defaultLogger = zap.NewNop() //nolint: gochecknoglobals

func newConfig(environment string) (zap.Config, error) {
	switch environment {
	case DevelopmentEnvironment, "":
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

		return cfg, nil
	case ProductionEnvironment:
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		return cfg, nil
	default:
		return zap.Config{}, fmt.Errorf("unknown environment %q", environment)
	}
}

// Setup replaces the default logger. level (debug, info, warn, error)
// overrides the level implied by environment when non-empty.
func Setup(environment, level string) error {
	cfg, err := newConfig(environment)
	if err != nil {
		return err
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("could not build logger: %w", err)
	}
	defaultLogger = l

	return nil
}

// Sync flushes the default logger.
func Sync() {
	_ = defaultLogger.Sync()
}

type key struct{}

// Get returns the logger attached to ctx, falling back to the default one.
func Get(ctx context.Context) *zap.Logger {
	if l, _ := ctx.Value(key{}).(*zap.Logger); l != nil {
		return l
	}

	return defaultLogger
}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, key{}, l)
}

// WithFields attaches a child logger carrying fields to ctx.
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}

// Named attaches a child logger with name appended to the logger name.
func Named(ctx context.Context, name string) context.Context {
	return WithLogger(ctx, Get(ctx).Named(name))
}

// Slog adapts the logger of ctx for libraries that take a *slog.Logger,
// such as the River client.
func Slog(ctx context.Context) *slog.Logger {
	l := Get(ctx)

	return slog.New(zapslog.NewHandler(l.Core(), zapslog.WithName(l.Name())))
}

func IsDebug(ctx context.Context) bool {
	return Get(ctx).Core().Enabled(zap.DebugLevel)
}

func Debug(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Debug(msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Info(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Warn(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Error(msg, fields...)
}

// Fatal logs and exits the process.
func Fatal(ctx context.Context, msg string, fields ...zapcore.Field) {
	Get(ctx).Fatal(msg, fields...)
}
