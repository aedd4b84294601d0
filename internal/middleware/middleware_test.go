package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/mstvb/forge/internal/logging"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "probe"}
	cmd.SetContext(context.Background())
	return cmd
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next RunE) RunE {
			return func(cmd *cobra.Command, args []string) error {
				order = append(order, name)
				return next(cmd, args)
			}
		}
	}

	h := Chain(func(cmd *cobra.Command, args []string) error {
		order = append(order, "body")
		return nil
	}, mark("outer"), mark("inner"))

	require.NoError(t, h(newCmd(), nil))
	assert.Equal(t, []string{"outer", "inner", "body"}, order)
}

func TestInvocationID(t *testing.T) {
	var seen string
	h := Chain(func(cmd *cobra.Command, args []string) error {
		seen = logging.InvocationID(cmd.Context())
		return nil
	}, InvocationID)

	require.NoError(t, h(newCmd(), nil))
	assert.Len(t, seen, 36)
}

func TestRecover(t *testing.T) {
	h := Chain(func(cmd *cobra.Command, args []string) error {
		panic("boom")
	}, Recover(logging.Nop()))

	err := h(newCmd(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestLoggerPassesErrorThrough(t *testing.T) {
	want := errors.New("failed")
	h := Chain(func(cmd *cobra.Command, args []string) error {
		return want
	}, Logger(logging.Nop()))

	assert.ErrorIs(t, h(newCmd(), []string{"a"}), want)
}
