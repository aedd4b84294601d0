package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			l, err := NewLogger(level)
			require.NoError(t, err)
			assert.NotNil(t, l.Logger)
		})
	}

	_, err := NewLogger("loud")
	assert.Error(t, err)
}

func TestInvocationID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, InvocationID(ctx))

	ctx = ContextWithInvocationID(ctx, "abc")
	assert.Equal(t, "abc", InvocationID(ctx))
	assert.NotNil(t, Nop().WithInvocationID(ctx))
}

func TestSetLevel(t *testing.T) {
	l, err := NewLogger("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, l.SetLevel("debug"))
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, l.SetLevel("chatty"))
	assert.NoError(t, Nop().SetLevel("info"))
}
