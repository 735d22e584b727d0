// Package logger wraps zap for the kioskforge commands. First-boot output is
// read on a kiosk console by non-technical operators, so the development
// encoder stays human-friendly; the journald capture gets structured JSON.
package logger

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	zap *zap.Logger
}

// New builds a logger for the given environment: "console" for interactive
// commands, "service" for the daemons started from systemd and cron.
func New(env string) (*Logger, error) {
	var cfg zap.Config
	switch env {
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
	case "service":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{zap: zapLogger}, nil
}

// Zap exposes the underlying logger for packages that take *zap.Logger.
func (l *Logger) Zap() *zap.Logger { return l.zap }

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, err error, fields ...zap.Field) {
	l.zap.Error(msg, append(fields, zap.Error(err))...)
}

func (l *Logger) Sync() {
	_ = l.zap.Sync()
}

// Trace logs and records the message on the active span, if any.
func (l *Logger) Trace(ctx context.Context, msg string, fields ...zap.Field) {
	_, span := otel.Tracer("kioskforge").Start(ctx, msg)
	defer span.End()
	l.zap.Info(msg, fields...)
	span.SetAttributes(
		attribute.String("log.message", msg),
		attribute.String("timestamp", time.Now().Format(time.RFC3339)),
	)
}
