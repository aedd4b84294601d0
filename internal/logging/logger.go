package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const invocationIDKey contextKey = "invocation_id"

type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// NewLogger builds a console logger writing to stderr, so diagnostics never
// mix with command output on stdout.
func NewLogger(level string) (*Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.Sampling = nil

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: logger, level: config.Level}, nil
}

// SetLevel changes the level of a logger built by NewLogger. Loggers derived
// with With share the change.
func (l *Logger) SetLevel(level string) error {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return err
	}
	if l.level == (zap.AtomicLevel{}) {
		return nil
	}
	l.level.SetLevel(zapLevel)
	return nil
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

func ContextWithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey, id)
}

func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDKey).(string)
	return id
}

func (l *Logger) WithInvocationID(ctx context.Context) *zap.Logger {
	if id := InvocationID(ctx); id != "" {
		return l.With(zap.String("invocation_id", id))
	}
	return l.Logger
}
